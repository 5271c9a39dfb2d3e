package core

import (
	"encoding/json"
	"net/http"

	"github.com/quillhq/quill/crypto"
)

// AuthWithPasswordHandler handles password-based authentication (login).
// Endpoint: POST /api/auth/login
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) AuthWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Identity string `json:"identity"` // email
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Identity == "" || req.Password == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if err := a.Validator().Email(req.Identity); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Identity)
	if err != nil || user == nil {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	// CheckPassword is false for empty stored hashes, so OAuth2-only
	// accounts can never be entered with a guessed password.
	if !crypto.CheckPassword(req.Password, user.Password) {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	// Unverified accounts get a distinguishable error so clients can offer
	// to resend the verification email.
	if !user.Verified {
		writeJsonError(w, errorUnverifiedEmail)
		return
	}

	token, expiresIn, err := a.issueAccessToken(user)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, token, expiresIn, user)
}
