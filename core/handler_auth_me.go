package core

import (
	"net/http"
)

// MeHandler returns the record of the authenticated user.
// Endpoint: GET /api/auth/me
// Authenticated: Yes (Bearer access token)
func (a *App) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err, resp := a.Auth().Authenticate(r)
	if err != nil {
		writeJsonError(w, resp)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkMe,
			Message: "Authenticated user",
		},
		Data: newAuthRecord(user),
	})
}
