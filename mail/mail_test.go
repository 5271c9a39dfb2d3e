package mail

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/quillhq/quill/config"
)

func TestNewBuildsServerAddr(t *testing.T) {
	m := New(config.Smtp{
		Host:        "smtp.example.com",
		Port:        2525,
		FromAddress: "no-reply@example.com",
		FromName:    "Quill",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if m.addr != "smtp.example.com:2525" {
		t.Errorf("addr = %q, want smtp.example.com:2525", m.addr)
	}
	if m.auth != nil {
		t.Error("expected no auth without a username")
	}
}

func TestSendHonorsContextDeadline(t *testing.T) {
	// Port 1 is never listening; without the context the dial would block
	// until the TCP timeout.
	m := New(config.Smtp{
		Host:        "127.0.0.1",
		Port:        1,
		FromAddress: "no-reply@example.com",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.SendVerificationEmail(ctx, "user@example.com", "http://localhost/verify?token=x")
	if err == nil {
		t.Fatal("expected an error sending to a dead SMTP server")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("send did not respect the context deadline, took %v", elapsed)
	}
}
