package config

import (
	"time"

	"github.com/quillhq/quill/crypto"
)

// NewDefaultConfig creates a new Config with sensible defaults.
// The token secret is randomly generated; persist it across restarts via
// QUILL_TOKEN_SECRET or every issued token dies with the process.
func NewDefaultConfig() *Config {
	return &Config{
		DBFile: "quill.db",
		Server: Server{
			Addr:                    ":8080",
			BaseURL:                 "http://localhost:8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 3 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
		},
		Token: Token{
			Secret:                     crypto.RandomString(crypto.MinSecretLength, crypto.AlphanumericAlphabet),
			AccessTokenDuration:        Duration{Duration: 15 * time.Minute},
			VerificationTokenDuration:  Duration{Duration: 24 * time.Hour},
			PasswordResetTokenDuration: Duration{Duration: 1 * time.Hour},
		},
		Smtp: Smtp{
			Enabled:     false,
			Host:        "localhost",
			Port:        587,
			FromName:    "Quill",
			FromAddress: "no-reply@localhost",
			UseTLS:      false,
		},
		Scheduler: Scheduler{
			Interval:              Duration{Duration: 30 * time.Second},
			MaxJobsPerTick:        10,
			ConcurrencyMultiplier: 2,
		},
		RateLimits: RateLimits{
			EmailVerificationCooldown: Duration{Duration: 1 * time.Hour},
			PasswordResetCooldown:     Duration{Duration: 2 * time.Hour},
		},
		OAuth2Providers: map[string]OAuth2Provider{
			OAuth2ProviderGoogle: {
				Name:        OAuth2ProviderGoogle,
				DisplayName: "Google",
				RedirectURL: "http://localhost:8080/oauth2/google/callback",
				AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:    "https://oauth2.googleapis.com/token",
				UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
				Scopes:      []string{"openid", "email", "profile"},
				PKCE:        true,
			},
			OAuth2ProviderGitHub: {
				Name:        OAuth2ProviderGitHub,
				DisplayName: "GitHub",
				RedirectURL: "http://localhost:8080/oauth2/github/callback",
				AuthURL:     "https://github.com/login/oauth/authorize",
				TokenURL:    "https://github.com/login/oauth/access_token",
				UserInfoURL: "https://api.github.com/user",
				EmailsURL:   "https://api.github.com/user/emails",
				Scopes:      []string{"read:user", "user:email"},
				PKCE:        true,
			},
		},
	}
}
