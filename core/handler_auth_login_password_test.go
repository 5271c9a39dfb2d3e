package core

import (
	"testing"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/mock"
)

func TestAuthWithPasswordHandler(t *testing.T) {
	hashedPassword, _ := crypto.GenerateHash("password123")
	verifiedUser := &db.User{
		ID:       "user123",
		Username: "alice",
		Email:    "alice@example.com",
		Password: string(hashedPassword),
		Verified: true,
	}

	testCases := []struct {
		name        string
		requestBody string
		user        *db.User
		wantStatus  int
		wantCode    string
	}{
		{
			name:        "successful login",
			requestBody: `{"identity":"alice@example.com","password":"password123"}`,
			user:        verifiedUser,
			wantStatus:  200,
			wantCode:    CodeOkAuthentication,
		},
		{
			name:        "wrong password",
			requestBody: `{"identity":"alice@example.com","password":"wrong"}`,
			user:        verifiedUser,
			wantStatus:  401,
			wantCode:    CodeErrorInvalidCredentials,
		},
		{
			name:        "unknown email",
			requestBody: `{"identity":"ghost@example.com","password":"password123"}`,
			user:        nil,
			wantStatus:  401,
			wantCode:    CodeErrorInvalidCredentials,
		},
		{
			name:        "unverified account",
			requestBody: `{"identity":"alice@example.com","password":"password123"}`,
			user: &db.User{
				ID:       "user123",
				Email:    "alice@example.com",
				Password: string(hashedPassword),
				Verified: false,
			},
			wantStatus: 403,
			wantCode:   CodeErrorUnverifiedEmail,
		},
		{
			name:        "oauth2-only account has no password login",
			requestBody: `{"identity":"alice@example.com","password":"password123"}`,
			user: &db.User{
				ID:       "user123",
				Email:    "alice@example.com",
				Password: "",
				Verified: true,
			},
			wantStatus: 401,
			wantCode:   CodeErrorInvalidCredentials,
		},
		{
			name:        "missing fields",
			requestBody: `{"identity":"alice@example.com"}`,
			user:        verifiedUser,
			wantStatus:  400,
			wantCode:    CodeErrorInvalidRequest,
		},
		{
			name:        "identity is not an email",
			requestBody: `{"identity":"alice","password":"password123"}`,
			user:        verifiedUser,
			wantStatus:  400,
			wantCode:    CodeErrorInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &mock.Db{
				GetUserByEmailFunc: func(email string) (*db.User, error) {
					return tc.user, nil
				},
			})

			rr := doJSON(app.AuthWithPasswordHandler, "POST", "/api/auth/login", tc.requestBody)
			checkCode(t, rr, tc.wantStatus, tc.wantCode)
		})
	}
}

func TestAuthWithPasswordHandler_TokenIsUsableAccessToken(t *testing.T) {
	hashedPassword, _ := crypto.GenerateHash("password123")
	app := newTestApp(t, &mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) {
			return &db.User{ID: "user123", Email: email, Password: string(hashedPassword), Verified: true}, nil
		},
	})

	rr := doJSON(app.AuthWithPasswordHandler, "POST", "/api/auth/login",
		`{"identity":"alice@example.com","password":"password123"}`)
	body := checkCode(t, rr, 200, CodeOkAuthentication)

	data, _ := body["data"].(map[string]interface{})
	token, _ := data["access_token"].(string)
	if token == "" {
		t.Fatal("response carries no access token")
	}

	claims, err := app.TokenCodec().Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims[crypto.ClaimType] != crypto.ClaimTypeAccess {
		t.Errorf("token type = %v, want access", claims[crypto.ClaimType])
	}
	if claims[crypto.ClaimUserID] != "user123" {
		t.Errorf("token user_id = %v", claims[crypto.ClaimUserID])
	}
}
