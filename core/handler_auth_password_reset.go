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

// RequestPasswordResetHandler queues a password reset email.
// Endpoint: POST /api/auth/forgot-password
// Authenticated: No
// Allowed Mimetype: application/json
//
// The response is identical whether or not the email exists, including when
// the cooldown suppresses a resend. Nothing here may leak account existence.
func (a *App) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := a.Validator().Email(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil {
		a.Logger().Error("failed to look up user", "error", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if user == nil {
		writeJsonOk(w, okPasswordResetRequested)
		return
	}

	payload, _ := json.Marshal(queue.PayloadPasswordReset{
		Email:          req.Email,
		CooldownBucket: queue.CoolDownBucket(a.cfg.RateLimits.PasswordResetCooldown.Duration, time.Now()),
	})
	err = a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypePasswordReset,
		Payload: payload,
	})
	if err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			// Already requested within the cooldown window. Still the
			// uniform response; a different answer would reveal the account.
			a.Logger().Debug("password reset already queued", "email", req.Email)
			writeJsonOk(w, okPasswordResetRequested)
			return
		}
		a.Logger().Error("failed to insert password reset job", "error", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okPasswordResetRequested)
}

// ConfirmPasswordResetHandler consumes a reset token and sets the new
// password. The old password is not required.
// Endpoint: POST /api/auth/reset-password
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) ConfirmPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Token           string `json:"token"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Token == "" || req.Password == "" || req.PasswordConfirm == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if len(req.Password) < 6 {
		writeJsonError(w, errorPasswordComplexity)
		return
	}
	if req.Password != req.PasswordConfirm {
		writeJsonError(w, errorPasswordMismatch)
		return
	}

	claims, err := a.codec.Verify(req.Token)
	if err != nil {
		a.Logger().Debug("reset token rejected", "error", err)
		writeJsonError(w, errorInvalidResetToken)
		return
	}
	if claims[crypto.ClaimType] != crypto.ClaimTypePasswordReset {
		a.Logger().Debug("reset token has wrong type", "type", claims[crypto.ClaimType])
		writeJsonError(w, errorInvalidResetToken)
		return
	}

	userID, _ := claims[crypto.ClaimUserID].(string)
	user, err := a.DbAuth().GetUserById(userID)
	if err != nil || user == nil {
		a.Logger().Debug("reset token for unknown user", "user_id", userID, "error", err)
		writeJsonError(w, errorInvalidResetToken)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.Password)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if err := a.DbAuth().UpdatePassword(user.ID, string(hashedPassword)); err != nil {
		a.Logger().Error("failed to update password", "user_id", user.ID, "error", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okPasswordReset)
}
