package handlers

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/crypto"
)

// mailerMock implements Mailer with overridable functions.
type mailerMock struct {
	SendVerificationEmailFunc  func(ctx context.Context, email, link string) error
	SendPasswordResetEmailFunc func(ctx context.Context, email, link string) error
}

func (m *mailerMock) SendVerificationEmail(ctx context.Context, email, link string) error {
	if m.SendVerificationEmailFunc != nil {
		return m.SendVerificationEmailFunc(ctx, email, link)
	}
	return nil
}

func (m *mailerMock) SendPasswordResetEmail(ctx context.Context, email, link string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, link)
	}
	return nil
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Server.BaseURL = "https://blog.example.com"
	cfg.Token.Secret = "test_secret_32_bytes_long_xxxxxx"
	return cfg
}

func testCodec(t *testing.T, cfg *config.Config) *crypto.Codec {
	t.Helper()
	codec, err := crypto.NewCodec([]byte(cfg.Token.Secret))
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return codec
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tokenFromLink extracts the token query parameter from a callback link.
func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	_, token, found := strings.Cut(link, "?token=")
	if !found {
		t.Fatalf("link %q carries no token", link)
	}
	return token
}

// requireClaim fails the test unless the token verifies and carries the
// given claim value.
func requireClaim(t *testing.T, codec *crypto.Codec, token, claim string, want any) map[string]any {
	t.Helper()
	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims[claim] != want {
		t.Errorf("claim %s = %v, want %v", claim, claims[claim], want)
	}
	return claims
}

// almostEqualDuration reports whether the exp-iat distance matches want.
func claimTTL(t *testing.T, claims map[string]any) time.Duration {
	t.Helper()
	iat, _ := claims[crypto.ClaimIssuedAt].(float64)
	exp, _ := claims[crypto.ClaimExpiresAt].(float64)
	return time.Duration(exp-iat) * time.Second
}
