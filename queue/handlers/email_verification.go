package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/queue"
)

// Mailer is the email surface the job handlers need. *mail.Mailer satisfies it.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, link string) error
	SendPasswordResetEmail(ctx context.Context, email, link string) error
}

// EmailVerificationHandler sends verification emails for queued jobs.
type EmailVerificationHandler struct {
	db     db.DbAuth
	cfg    *config.Config
	codec  *crypto.Codec
	mailer Mailer
	logger *slog.Logger
}

func NewEmailVerificationHandler(dbAuth db.DbAuth, cfg *config.Config, codec *crypto.Codec, mailer Mailer, logger *slog.Logger) *EmailVerificationHandler {
	return &EmailVerificationHandler{
		db:     dbAuth,
		cfg:    cfg,
		codec:  codec,
		mailer: mailer,
		logger: logger,
	}
}

func (h *EmailVerificationHandler) Handle(ctx context.Context, job db.Job) error {
	var payload queue.PayloadEmailVerification
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse email verification payload: %w", err)
	}

	user, err := h.db.GetUserByEmail(payload.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found for email: %s", payload.Email)
	}
	if user.Verified {
		// Verified while the job sat in the queue. Nothing to send.
		h.logger.Debug("skipping verification email, user already verified", "user_id", user.ID)
		return nil
	}

	token, _, err := h.codec.Issue(map[string]any{
		crypto.ClaimUserID: user.ID,
		crypto.ClaimEmail:  user.Email,
		crypto.ClaimType:   crypto.ClaimTypeVerification,
	}, h.cfg.Token.VerificationTokenDuration.Duration)
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	link := fmt.Sprintf("%s/api/auth/confirm-verification?token=%s", h.cfg.Server.BaseURL, token)
	if err := h.mailer.SendVerificationEmail(ctx, user.Email, link); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
