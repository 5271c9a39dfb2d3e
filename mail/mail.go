package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
	"github.com/quillhq/quill/config"
)

// Mailer sends transactional emails over SMTP.
type Mailer struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
	logger   *slog.Logger
}

func New(cfg config.Smtp, logger *slog.Logger) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:     auth,
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

// SendVerificationEmail sends the email-verification message with the given
// confirmation link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, email, link string) error {
	body := fmt.Sprintf(`
		<h1>Verify your email</h1>
		<p>Click the link below to verify your email address:</p>
		<p><a href="%s">Verify Email</a></p>
		<p>If you did not create an account, you can ignore this message.</p>
	`, link)

	if err := m.send(ctx, email, "Verify your email", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	m.logger.Info("sent verification email", "email", email)
	return nil
}

// SendPasswordResetEmail sends the password-reset message with the given
// reset link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, link string) error {
	body := fmt.Sprintf(`
		<h1>Reset your password</h1>
		<p>Click the link below to choose a new password:</p>
		<p><a href="%s">Reset Password</a></p>
		<p>The link expires in one hour. If you did not request a reset, you
		can ignore this message.</p>
	`, link)

	if err := m.send(ctx, email, "Reset your password", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	m.logger.Info("sent password reset email", "email", email)
	return nil
}

// send dispatches the message in a goroutine so the context deadline is
// honored; mailyak's Send has no context support.
func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	mail := mailyak.New(m.addr, m.auth)
	mail.To(to)
	mail.From(m.from)
	mail.FromName(m.fromName)
	mail.Subject(subject)
	mail.HTML().Set(htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
