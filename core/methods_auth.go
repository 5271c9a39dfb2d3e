package core

import (
	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
)

// issueAccessToken creates the session token for a user and returns it with
// its lifetime in seconds.
func (a *App) issueAccessToken(user *db.User) (string, int, error) {
	ttl := a.cfg.Token.AccessTokenDuration.Duration
	token, _, err := a.codec.Issue(map[string]any{
		crypto.ClaimType:   crypto.ClaimTypeAccess,
		crypto.ClaimUserID: user.ID,
		crypto.ClaimEmail:  user.Email,
	}, ttl)
	if err != nil {
		return "", 0, err
	}
	return token, int(ttl.Seconds()), nil
}
