package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Env var names for secrets that must never live in the TOML file.
const (
	EnvTokenSecret  = "QUILL_TOKEN_SECRET"
	EnvSmtpPassword = "QUILL_SMTP_PASSWORD"
)

const (
	OAuth2ProviderGoogle = "google"
	OAuth2ProviderGitHub = "github"
)

// Duration wraps time.Duration so TOML files can use "15m" style values.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Server struct {
	Addr string `toml:"addr"`
	// BaseURL is the public URL of the deployment, used to build the links
	// embedded in verification and password reset emails.
	BaseURL                 string   `toml:"base_url"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
}

// Token configures the signed-token codec. One secret signs all token kinds;
// the "type" claim keeps them from being interchangeable.
type Token struct {
	Secret                     string   `toml:"-"`
	AccessTokenDuration        Duration `toml:"access_token_duration"`
	VerificationTokenDuration  Duration `toml:"verification_token_duration"`
	PasswordResetTokenDuration Duration `toml:"password_reset_token_duration"`
}

type Smtp struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
	Username    string `toml:"username"`
	Password    string `toml:"-"`
	UseTLS      bool   `toml:"use_tls"`
}

type OAuth2Provider struct {
	Name         string   `toml:"name"`
	DisplayName  string   `toml:"display_name"`
	ClientID     string   `toml:"-"`
	ClientSecret string   `toml:"-"`
	RedirectURL  string   `toml:"redirect_url"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	UserInfoURL  string   `toml:"user_info_url"`
	EmailsURL    string   `toml:"emails_url"`
	Scopes       []string `toml:"scopes"`
	PKCE         bool     `toml:"pkce"`
}

// fillEnvVars loads the provider credentials from OAUTH2_<NAME>_CLIENT_ID and
// OAUTH2_<NAME>_CLIENT_SECRET.
func (p *OAuth2Provider) fillEnvVars() {
	name := strings.ToUpper(p.Name)
	p.ClientID = os.Getenv("OAUTH2_" + name + "_CLIENT_ID")
	p.ClientSecret = os.Getenv("OAUTH2_" + name + "_CLIENT_SECRET")
}

// hasCredentials reports whether the provider is usable.
func (p *OAuth2Provider) hasCredentials() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type Scheduler struct {
	Interval              Duration `toml:"interval"`
	MaxJobsPerTick        int      `toml:"max_jobs_per_tick"`
	ConcurrencyMultiplier int      `toml:"concurrency_multiplier"`
}

// RateLimits configures the cooldown buckets for email-sending endpoints.
type RateLimits struct {
	EmailVerificationCooldown Duration `toml:"email_verification_cooldown"`
	PasswordResetCooldown     Duration `toml:"password_reset_cooldown"`
}

type Config struct {
	DBFile          string                    `toml:"db_file"`
	Server          Server                    `toml:"server"`
	Token           Token                     `toml:"token"`
	Smtp            Smtp                      `toml:"smtp"`
	Scheduler       Scheduler                 `toml:"scheduler"`
	RateLimits      RateLimits                `toml:"rate_limits"`
	OAuth2Providers map[string]OAuth2Provider `toml:"oauth2_providers"`
}

// FillEnvVars pulls every secret from the environment. Called once at load;
// TOML files carry no credentials. An unset env var leaves the current value
// (e.g. the generated default secret) in place.
func (c *Config) FillEnvVars() {
	if v := os.Getenv(EnvTokenSecret); v != "" {
		c.Token.Secret = v
	}
	if v := os.Getenv(EnvSmtpPassword); v != "" {
		c.Smtp.Password = v
	}
	for name, provider := range c.OAuth2Providers {
		if provider.Name == "" {
			provider.Name = name
		}
		provider.fillEnvVars()
		c.OAuth2Providers[name] = provider
	}
}
