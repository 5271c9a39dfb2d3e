package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/queue"
)

// RegisterWithPasswordHandler handles password-based user registration.
// Endpoint: POST /api/auth/register
// Authenticated: No
// Allowed Mimetype: application/json
//
// Registration does not log the user in: the account stays unusable for
// password login until the email is verified.
func (a *App) RegisterWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Username        string `json:"username" validate:"required,min=4,max=20"`
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required,min=6"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := a.Validator().Struct(req); err != nil {
		if fe, ok := FirstFieldError(err); ok {
			writeJsonFieldError(w, fe)
			return
		}
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Password != req.PasswordConfirm {
		writeJsonError(w, errorPasswordMismatch)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.Password)
	if err != nil {
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	user, err := a.DbAuth().CreateUserWithPassword(db.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Verified: false,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateEmail):
			writeJsonError(w, errorEmailConflict)
		case errors.Is(err, db.ErrDuplicateUsername):
			writeJsonError(w, errorUsernameConflict)
		default:
			a.Logger().Error("failed to create user", "error", err)
			writeJsonError(w, errorAuthDatabaseError)
		}
		return
	}

	payload, _ := json.Marshal(queue.PayloadEmailVerification{
		Email:          user.Email,
		CooldownBucket: queue.CoolDownBucket(a.cfg.RateLimits.EmailVerificationCooldown.Duration, time.Now()),
	})
	err = a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypeEmailVerification,
		Payload: payload,
	})
	// A duplicate job means an email for this address is already on its way.
	if err != nil && !errors.Is(err, db.ErrConstraintUnique) {
		a.Logger().Error("failed to insert verification job", "error", err, "user_id", user.ID)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okRegistered)
}
