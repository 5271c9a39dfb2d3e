package core

import (
	"net/http"

	"github.com/quillhq/quill/db"
)

const (
	// oks for non precomputed, dynamic auth responses
	CodeOkAuthentication      = "ok_authentication"
	CodeOkMe                  = "ok_me"
	CodeOkOAuth2ProvidersList = "ok_oauth2_providers_list"
)

// AuthRecord represents the user record in authentication responses
type AuthRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// AuthData represents the authentication response structure
type AuthData struct {
	TokenType   string     `json:"token_type"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
	Record      AuthRecord `json:"record"`
}

func newAuthRecord(user *db.User) AuthRecord {
	return AuthRecord{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Verified: user.Verified,
	}
}

// writeAuthResponse writes a standardized authentication response
func writeAuthResponse(w http.ResponseWriter, token string, expiresIn int, user *db.User) {
	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkAuthentication,
			Message: "Authentication successful",
		},
		Data: AuthData{
			TokenType:   "Bearer",
			AccessToken: token,
			ExpiresIn:   expiresIn,
			Record:      newAuthRecord(user),
		},
	}
	writeJsonWithData(w, response)
}
