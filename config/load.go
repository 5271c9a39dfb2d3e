package config

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
)

// Load reads the TOML file at path on top of the defaults, pulls secrets from
// the environment and validates the result.
func Load(path string, logger *slog.Logger) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			logger.Warn("config contains unknown keys", "path", path, "keys", undecoded)
		}
	}

	cfg.FillEnvVars()

	// Providers without credentials are dropped rather than failing the boot:
	// a deployment without OAuth2 is valid.
	for name, provider := range cfg.OAuth2Providers {
		if !provider.hasCredentials() {
			logger.Info("oauth2 provider has no credentials, disabling", "provider", name)
			delete(cfg.OAuth2Providers, name)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
