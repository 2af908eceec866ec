package habitauth

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-supplied settings for connecting to the
// external auth service. The redirect base URLs are intentionally absent:
// they are a static switch in the Resolver so the computed URLs always
// match the allow-list registered with the service.
type Config struct {
	// ServiceURL is the base URL of the hosted auth backend.
	ServiceURL string `env:"HABITCHAIN_AUTH_URL"`

	// ServiceKey is the publishable API key for the auth backend.
	ServiceKey string `env:"HABITCHAIN_AUTH_KEY"`

	// Hostname is the host the app is served from, used to pick the
	// local or production redirect base.
	Hostname string `env:"HABITCHAIN_HOSTNAME" envDefault:"localhost"`

	// Production marks a production deployment.
	Production bool `env:"HABITCHAIN_PRODUCTION" envDefault:"false"`

	// RequestTimeout bounds each call to the auth backend.
	RequestTimeout time.Duration `env:"HABITCHAIN_AUTH_TIMEOUT" envDefault:"10s"`

	// SessionFile overrides where the persisted session is cached.
	// Empty means the platform config directory.
	SessionFile string `env:"HABITCHAIN_SESSION_FILE"`

	// ListenAddr is the bind address for the web frontend.
	ListenAddr string `env:"HABITCHAIN_LISTEN_ADDR" envDefault:":8080"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Environment returns the redirect-resolution context for this config.
func (c Config) Environment() Environment {
	return Environment{Hostname: c.Hostname, Production: c.Production}
}
