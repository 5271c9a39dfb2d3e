package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/mock"
	"github.com/quillhq/quill/queue"
)

func TestRegisterWithPasswordHandler_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		requestBody string
		wantCode    string
		wantField   string
	}{
		{
			name:        "malformed json",
			requestBody: `{"username":"alice",`,
			wantCode:    CodeErrorInvalidRequest,
		},
		{
			name:        "missing email",
			requestBody: `{"username":"alice","password":"password123","password_confirm":"password123"}`,
			wantCode:    CodeErrorInvalidRequest,
			wantField:   "email",
		},
		{
			name:        "invalid email format",
			requestBody: `{"username":"alice","email":"not-an-email","password":"password123","password_confirm":"password123"}`,
			wantCode:    CodeErrorInvalidRequest,
			wantField:   "email",
		},
		{
			name:        "username too short",
			requestBody: `{"username":"al","email":"alice@example.com","password":"password123","password_confirm":"password123"}`,
			wantCode:    CodeErrorInvalidRequest,
			wantField:   "username",
		},
		{
			name:        "username too long",
			requestBody: `{"username":"a_very_long_username_over_twenty","email":"alice@example.com","password":"password123","password_confirm":"password123"}`,
			wantCode:    CodeErrorInvalidRequest,
			wantField:   "username",
		},
		{
			name:        "password too short",
			requestBody: `{"username":"alice","email":"alice@example.com","password":"short","password_confirm":"short"}`,
			wantCode:    CodeErrorInvalidRequest,
			wantField:   "password",
		},
		{
			name:        "password mismatch",
			requestBody: `{"username":"alice","email":"alice@example.com","password":"password123","password_confirm":"password456"}`,
			wantCode:    CodeErrorPasswordMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &mock.Db{
				CreateUserWithPasswordFunc: func(user db.User) (*db.User, error) {
					t.Error("no user should be created for an invalid request")
					return nil, nil
				},
			})

			rr := doJSON(app.RegisterWithPasswordHandler, "POST", "/api/auth/register", tc.requestBody)
			body := checkCode(t, rr, 400, tc.wantCode)
			if tc.wantField != "" && body["field"] != tc.wantField {
				t.Errorf("field = %v, want %q", body["field"], tc.wantField)
			}
		})
	}
}

func TestRegisterWithPasswordHandler_CreatesUnverifiedUserAndQueuesEmail(t *testing.T) {
	var createdUser *db.User
	var insertedJob *db.Job

	app := newTestApp(t, &mock.Db{
		CreateUserWithPasswordFunc: func(user db.User) (*db.User, error) {
			user.ID = "user123"
			createdUser = &user
			return &user, nil
		},
		InsertJobFunc: func(job db.Job) error {
			insertedJob = &job
			return nil
		},
	})

	rr := doJSON(app.RegisterWithPasswordHandler, "POST", "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"password123","password_confirm":"password123"}`)
	checkResponse(t, rr, okRegistered)

	if createdUser == nil {
		t.Fatal("expected user to be created")
	}
	if createdUser.Verified {
		t.Error("new user must be unverified")
	}
	if createdUser.Password == "password123" {
		t.Error("password stored in plaintext")
	}

	if insertedJob == nil {
		t.Fatal("expected verification job to be queued")
	}
	if insertedJob.JobType != queue.JobTypeEmailVerification {
		t.Errorf("job type = %q", insertedJob.JobType)
	}
	var payload queue.PayloadEmailVerification
	if err := json.Unmarshal(insertedJob.Payload, &payload); err != nil {
		t.Fatalf("failed to decode job payload: %v", err)
	}
	if payload.Email != "alice@example.com" {
		t.Errorf("payload email = %q", payload.Email)
	}

	// No session token: registration never logs the user in.
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err == nil {
		if _, ok := body["data"]; ok {
			t.Error("registration response must not carry auth data")
		}
	}
}

func TestRegisterWithPasswordHandler_Duplicates(t *testing.T) {
	testCases := []struct {
		name      string
		createErr error
		wantError jsonResponse
	}{
		{"duplicate email", db.ErrDuplicateEmail, errorEmailConflict},
		{"duplicate username", db.ErrDuplicateUsername, errorUsernameConflict},
		{"other db error", errors.New("disk full"), errorAuthDatabaseError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &mock.Db{
				CreateUserWithPasswordFunc: func(user db.User) (*db.User, error) {
					return nil, tc.createErr
				},
			})

			rr := doJSON(app.RegisterWithPasswordHandler, "POST", "/api/auth/register",
				`{"username":"alice","email":"alice@example.com","password":"password123","password_confirm":"password123"}`)
			checkResponse(t, rr, tc.wantError)
		})
	}
}

func TestRegisterWithPasswordHandler_DuplicateJobIsNotAnError(t *testing.T) {
	app := newTestApp(t, &mock.Db{
		InsertJobFunc: func(job db.Job) error {
			return db.ErrConstraintUnique
		},
	})

	rr := doJSON(app.RegisterWithPasswordHandler, "POST", "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"password123","password_confirm":"password123"}`)
	checkResponse(t, rr, okRegistered)
}

func TestRegisterWithPasswordHandler_InvalidContentType(t *testing.T) {
	app := newTestApp(t, &mock.Db{})

	rr := doJSON(app.RegisterWithPasswordHandler, "POST", "/api/auth/register", `{}`)
	_ = rr // the doJSON helper always sets JSON; exercise the plain path below

	req := doPlain(app.RegisterWithPasswordHandler, "POST", "/api/auth/register", "text/plain")
	checkResponse(t, req, errorInvalidContentType)
}
