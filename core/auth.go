package core

import (
	"errors"
	"log/slog"
	"strings"

	"net/http"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
)

// Authenticator resolves the bearer token of a request to a user.
type Authenticator interface {
	Authenticate(r *http.Request) (*db.User, error, jsonResponse)
}

// DefaultAuthenticator implements Authenticator using the signed-token codec.
type DefaultAuthenticator struct {
	dbAuth db.DbAuth
	codec  *crypto.Codec
	logger *slog.Logger
}

func NewDefaultAuthenticator(dbAuth db.DbAuth, codec *crypto.Codec, logger *slog.Logger) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		dbAuth: dbAuth,
		codec:  codec,
		logger: logger,
	}
}

var errAuth = errors.New("authentication failed")

// Authenticate verifies the Authorization header carries a valid access
// token and returns its user. Verification and reset tokens are rejected
// here: only the "access" type grants a session.
func (a *DefaultAuthenticator) Authenticate(r *http.Request) (*db.User, error, jsonResponse) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errAuth, errorNoAuthHeader
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errAuth, errorInvalidTokenFormat
	}

	claims, err := a.codec.Verify(tokenString)
	if err != nil {
		if errors.Is(err, crypto.ErrTokenExpired) {
			return nil, errAuth, errorTokenExpired
		}
		return nil, errAuth, errorInvalidToken
	}

	if claims[crypto.ClaimType] != crypto.ClaimTypeAccess {
		a.logger.Debug("non-access token presented as bearer token", "type", claims[crypto.ClaimType])
		return nil, errAuth, errorInvalidToken
	}

	userID, ok := claims[crypto.ClaimUserID].(string)
	if !ok || userID == "" {
		return nil, errAuth, errorInvalidToken
	}

	user, err := a.dbAuth.GetUserById(userID)
	if err != nil || user == nil {
		return nil, errAuth, errorInvalidToken
	}

	return user, nil, jsonResponse{}
}
