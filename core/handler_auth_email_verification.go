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

// RequestEmailVerificationHandler queues a (re)send of the verification
// email.
// Endpoint: POST /api/auth/request-verification
// Authenticated: No
// Allowed Mimetype: application/json
//
// The response for an unknown email is the generic success so the endpoint
// cannot be used for enumeration.
func (a *App) RequestEmailVerificationHandler(w http.ResponseWriter, r *http.Request) {
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
	// Unknown and already-verified addresses get the same answer as the real
	// send: any distinct response would reveal whether the email is registered.
	if user == nil {
		a.Logger().Debug("verification requested for unknown email")
		writeJsonOk(w, okVerificationRequested)
		return
	}
	if user.Verified {
		a.Logger().Debug("verification requested for verified account", "user_id", user.ID)
		writeJsonOk(w, okVerificationRequested)
		return
	}

	payload, _ := json.Marshal(queue.PayloadEmailVerification{
		Email:          req.Email,
		CooldownBucket: queue.CoolDownBucket(a.cfg.RateLimits.EmailVerificationCooldown.Duration, time.Now()),
	})
	err = a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypeEmailVerification,
		Payload: payload,
	})
	if err != nil {
		// A job for this address is already queued in the current cooldown
		// bucket. The uniform answer applies here too.
		if errors.Is(err, db.ErrConstraintUnique) {
			a.Logger().Debug("verification already queued in cooldown window", "user_id", user.ID)
			writeJsonOk(w, okVerificationRequested)
			return
		}
		a.Logger().Error("failed to insert verification job", "error", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okVerificationRequested)
}

// ConfirmEmailVerificationHandler consumes a verification token and marks
// the account verified.
// Endpoint: POST /api/auth/confirm-verification
// Authenticated: No
// Allowed Mimetype: application/json
//
// Every token failure collapses into the same generic response; the real
// reason is only logged. Confirming an already verified account succeeds.
func (a *App) ConfirmEmailVerificationHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	claims, err := a.codec.Verify(req.Token)
	if err != nil {
		a.Logger().Debug("verification token rejected", "error", err)
		writeJsonError(w, errorInvalidVerificationToken)
		return
	}
	if claims[crypto.ClaimType] != crypto.ClaimTypeVerification {
		a.Logger().Debug("verification token has wrong type", "type", claims[crypto.ClaimType])
		writeJsonError(w, errorInvalidVerificationToken)
		return
	}

	userID, _ := claims[crypto.ClaimUserID].(string)
	user, err := a.DbAuth().GetUserById(userID)
	if err != nil || user == nil {
		a.Logger().Debug("verification token for unknown user", "user_id", userID, "error", err)
		writeJsonError(w, errorInvalidVerificationToken)
		return
	}

	if user.Verified {
		writeJsonOk(w, okAlreadyVerified)
		return
	}

	if err := a.DbAuth().VerifyEmail(user.ID); err != nil {
		a.Logger().Error("failed to mark email verified", "user_id", user.ID, "error", err)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okEmailVerified)
}
