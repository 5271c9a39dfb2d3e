package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/quillhq/quill/crypto"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateToken(&cfg.Token); err != nil {
		return fmt.Errorf("token config validation failed: %w", err)
	}
	if err := validateSmtp(&cfg.Smtp); err != nil {
		return fmt.Errorf("smtp config validation failed: %w", err)
	}
	if err := validateScheduler(&cfg.Scheduler); err != nil {
		return fmt.Errorf("scheduler config validation failed: %w", err)
	}
	if err := validateRateLimits(&cfg.RateLimits); err != nil {
		return fmt.Errorf("rate limits config validation failed: %w", err)
	}
	for name, provider := range cfg.OAuth2Providers {
		if err := validateOAuth2Provider(&provider); err != nil {
			return fmt.Errorf("oauth2 provider %q validation failed: %w", name, err)
		}
	}
	return nil
}

// validateServer ensures Addr is host:port or :port. A bare ":8080" gets the
// host defaulted to "localhost".
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		if strings.HasPrefix(server.Addr, ":") {
			port = strings.TrimPrefix(server.Addr, ":")
			host = "localhost"
		} else {
			return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
		}
	}
	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}
	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	if server.BaseURL == "" {
		return fmt.Errorf("server base URL cannot be empty")
	}
	if _, err := url.ParseRequestURI(server.BaseURL); err != nil {
		return fmt.Errorf("invalid server base URL '%s': %w", server.BaseURL, err)
	}
	return nil
}

func validateToken(token *Token) error {
	if len(token.Secret) < crypto.MinSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes", crypto.MinSecretLength)
	}
	if token.AccessTokenDuration.Duration <= 0 {
		return fmt.Errorf("access token duration must be positive")
	}
	if token.VerificationTokenDuration.Duration <= 0 {
		return fmt.Errorf("verification token duration must be positive")
	}
	if token.PasswordResetTokenDuration.Duration <= 0 {
		return fmt.Errorf("password reset token duration must be positive")
	}
	return nil
}

func validateScheduler(s *Scheduler) error {
	if s.Interval.Duration <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if s.MaxJobsPerTick <= 0 {
		return fmt.Errorf("max jobs per tick must be positive")
	}
	if s.ConcurrencyMultiplier <= 0 {
		return fmt.Errorf("concurrency multiplier must be positive")
	}
	return nil
}

// validateRateLimits rejects non-positive cooldowns at boot; the cooldown
// bucket computation requires a positive duration.
func validateRateLimits(r *RateLimits) error {
	if r.EmailVerificationCooldown.Duration <= 0 {
		return fmt.Errorf("email verification cooldown must be positive")
	}
	if r.PasswordResetCooldown.Duration <= 0 {
		return fmt.Errorf("password reset cooldown must be positive")
	}
	return nil
}

func validateSmtp(smtp *Smtp) error {
	if !smtp.Enabled {
		return nil
	}
	if smtp.Host == "" {
		return fmt.Errorf("smtp host cannot be empty")
	}
	if smtp.Port <= 0 || smtp.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d", smtp.Port)
	}
	if smtp.FromAddress == "" {
		return fmt.Errorf("smtp from address cannot be empty")
	}
	return nil
}

func validateOAuth2Provider(p *OAuth2Provider) error {
	for field, value := range map[string]string{
		"auth_url":      p.AuthURL,
		"token_url":     p.TokenURL,
		"user_info_url": p.UserInfoURL,
		"redirect_url":  p.RedirectURL,
	} {
		if value == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", field, value, err)
		}
	}
	return nil
}
