package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/mock"
	"github.com/quillhq/quill/queue"
)

func resetJob(t *testing.T, email string) db.Job {
	t.Helper()
	payload, err := json.Marshal(queue.PayloadPasswordReset{Email: email, CooldownBucket: 7})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return db.Job{JobType: queue.JobTypePasswordReset, Payload: payload}
}

func TestPasswordResetHandlerSendsTokenLink(t *testing.T) {
	cfg := testConfig()
	codec := testCodec(t, cfg)

	mockDb := &mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) {
			return &db.User{ID: "user-9", Email: email, Verified: true}, nil
		},
	}

	var capturedLink string
	mailer := &mailerMock{
		SendPasswordResetEmailFunc: func(ctx context.Context, email, link string) error {
			capturedLink = link
			return nil
		},
	}

	handler := NewPasswordResetHandler(mockDb, cfg, codec, mailer, testLogger())
	if err := handler.Handle(context.Background(), resetJob(t, "test@example.com")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if !strings.HasPrefix(capturedLink, "https://blog.example.com/api/auth/reset-password?token=") {
		t.Errorf("unexpected link: %q", capturedLink)
	}

	claims := requireClaim(t, codec, tokenFromLink(t, capturedLink), crypto.ClaimType, crypto.ClaimTypePasswordReset)
	if claims[crypto.ClaimUserID] != "user-9" {
		t.Errorf("user_id claim = %v, want user-9", claims[crypto.ClaimUserID])
	}
	if ttl := claimTTL(t, claims); ttl != time.Hour {
		t.Errorf("token ttl = %v, want 1h", ttl)
	}
}

func TestPasswordResetHandlerUnknownUserIsSilent(t *testing.T) {
	cfg := testConfig()
	mailer := &mailerMock{
		SendPasswordResetEmailFunc: func(ctx context.Context, email, link string) error {
			t.Error("no email should be sent for an unknown user")
			return nil
		},
	}

	handler := NewPasswordResetHandler(&mock.Db{}, cfg, testCodec(t, cfg), mailer, testLogger())
	// Unknown user completes the job without error; there is nothing to retry.
	if err := handler.Handle(context.Background(), resetJob(t, "gone@example.com")); err != nil {
		t.Errorf("Handle() error = %v, want nil", err)
	}
}
