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

// PasswordResetHandler sends password reset emails for queued jobs.
type PasswordResetHandler struct {
	db     db.DbAuth
	cfg    *config.Config
	codec  *crypto.Codec
	mailer Mailer
	logger *slog.Logger
}

func NewPasswordResetHandler(dbAuth db.DbAuth, cfg *config.Config, codec *crypto.Codec, mailer Mailer, logger *slog.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{
		db:     dbAuth,
		cfg:    cfg,
		codec:  codec,
		mailer: mailer,
		logger: logger,
	}
}

func (h *PasswordResetHandler) Handle(ctx context.Context, job db.Job) error {
	var payload queue.PayloadPasswordReset
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse password reset payload: %w", err)
	}

	user, err := h.db.GetUserByEmail(payload.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		// The account disappeared after the job was enqueued. Not an error;
		// retrying would never succeed.
		h.logger.Debug("skipping password reset email, user not found", "email", payload.Email)
		return nil
	}

	token, _, err := h.codec.Issue(map[string]any{
		crypto.ClaimUserID: user.ID,
		crypto.ClaimEmail:  user.Email,
		crypto.ClaimType:   crypto.ClaimTypePasswordReset,
	}, h.cfg.Token.PasswordResetTokenDuration.Duration)
	if err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}

	link := fmt.Sprintf("%s/api/auth/reset-password?token=%s", h.cfg.Server.BaseURL, token)
	if err := h.mailer.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
