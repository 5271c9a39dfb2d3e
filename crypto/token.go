package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// MinSecretLength is the minimum required length for token signing secrets.
	// 32 bytes (256 bits) is the minimum recommended length for HMAC-SHA256 keys.
	MinSecretLength = 32

	// Claim keys shared by all token kinds.
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimType      = "type"
	ClaimUserID    = "user_id"
	ClaimEmail     = "email"

	// Values for the "type" claim. Every token carries exactly one of these
	// so a verification token can never be replayed as a session token.
	ClaimTypeAccess        = "access"
	ClaimTypeVerification  = "verify_email"
	ClaimTypePasswordReset = "reset_password"
)

var (
	// ErrTokenMalformed is returned when the token cannot be split or decoded
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenBadSignature is returned when the signature does not match
	ErrTokenBadSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidSecretLength is returned for too short signing secrets
	ErrInvalidSecretLength = errors.New("invalid secret length")
)

// Codec issues and verifies compact signed tokens. The wire format is
//
//	base64url(json(claims)) + "." + hex(hmac_sha256(json(claims), secret))
//
// The JSON payload carries the caller's claims plus iat/exp. encoding/json
// marshals map keys in sorted order, so signing and verifying the same
// payload always produces the same bytes. Tokens are self contained; there
// is no server side revocation.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec creates a Codec signing with secret. The clock defaults to
// time.Now and can be overridden with NewCodecWithClock for tests.
func NewCodec(secret []byte) (*Codec, error) {
	return NewCodecWithClock(secret, time.Now)
}

// NewCodecWithClock creates a Codec with an injectable clock.
func NewCodecWithClock(secret []byte, now func() time.Time) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrInvalidSecretLength
	}
	return &Codec{secret: secret, now: now}, nil
}

// Issue signs the given claims with iat set to the current time and exp to
// iat + ttl. The claims map is not modified. Returns the encoded token and
// its expiry time.
func (c *Codec) Issue(claims map[string]any, ttl time.Duration) (string, time.Time, error) {
	now := c.now().UTC()
	exp := now.Add(ttl)

	payload := make(map[string]any, len(claims)+2)
	for k, v := range claims {
		payload[k] = v
	}
	payload[ClaimIssuedAt] = now.Unix()
	payload[ClaimExpiresAt] = exp.Unix()

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to encode claims: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw) + "." + c.sign(raw), exp, nil
}

// Verify checks the token's signature and expiry and returns its claims.
// Failures are reported as ErrTokenMalformed, ErrTokenBadSignature or
// ErrTokenExpired; callers branch on these and must not leak the sub-reason
// to clients.
func (c *Codec) Verify(token string) (map[string]any, error) {
	payloadPart, sig, found := strings.Cut(token, ".")
	if !found {
		return nil, ErrTokenMalformed
	}

	raw, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	// Constant-time comparison of the hex digests.
	if !hmac.Equal([]byte(c.sign(raw)), []byte(sig)) {
		return nil, ErrTokenBadSignature
	}

	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, ErrTokenMalformed
	}

	exp, ok := claims[ClaimExpiresAt].(float64)
	if !ok {
		return nil, ErrTokenMalformed
	}
	if c.now().UTC().Unix() > int64(exp) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

func (c *Codec) sign(payload []byte) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
