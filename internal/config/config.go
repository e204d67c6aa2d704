// Package config loads process configuration from the environment.
//
// CONFIGURATION STRATEGY:
// All runtime settings live in one Config struct, constructed exactly once in
// main() and passed down to every component that needs it. Nothing in the
// codebase reads os.Getenv directly — that keeps configuration visible in one
// place and makes components trivially testable (hand them a Config literal).
//
// Values come from environment variables, with an optional .env file loaded
// first for local development (godotenv skips silently if the file is
// missing). The struct tags are parsed by caarlos0/env, so adding a setting
// is one field + one tag, no hand-written getEnv plumbing.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// CredentialPolicy selects how passwords are stored. Exactly one policy is
// active per process — the codec is chosen at startup and never mixed.
type CredentialPolicy string

const (
	PolicyPlaintext CredentialPolicy = "plaintext" // insecure baseline: stored as-is
	PolicyEncrypted CredentialPolicy = "encrypted" // AES-GCM with a process-wide key (reversible)
	PolicyHashed    CredentialPolicy = "hashed"    // bcrypt salted hash (irreversible)
)

// Config holds all runtime configuration.
type Config struct {
	Port        int    `env:"PORT" envDefault:"3000"`
	DBPath      string `env:"DB_PATH" envDefault:"data/whisperwall.db"`
	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"web/templates"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"web/static"`

	// SessionSecret signs the session cookie. Required.
	// Generate with: openssl rand -hex 32
	SessionSecret string `env:"SESSION_SECRET"`

	// Password storage policy and, for the encrypted policy, the symmetric
	// key material. Losing CredentialSecret makes every stored credential
	// unverifiable — there is no recovery path.
	CredentialPolicy CredentialPolicy `env:"CREDENTIAL_POLICY" envDefault:"hashed"`
	CredentialSecret string           `env:"CREDENTIAL_SECRET"`

	// Google OAuth client. When unset, the /auth/google routes are not
	// registered and local login is the only way in.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`
}

// Load reads the optional .env file, parses the environment into a Config,
// and validates it.
func Load() (*Config, error) {
	// Missing .env is fine — production sets real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/secrets", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally coherent.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required")
	}

	switch c.CredentialPolicy {
	case PolicyPlaintext, PolicyHashed:
		// no extra material needed
	case PolicyEncrypted:
		if c.CredentialSecret == "" {
			return fmt.Errorf("config: CREDENTIAL_SECRET is required for the encrypted policy")
		}
	default:
		return fmt.Errorf("config: unknown CREDENTIAL_POLICY %q", c.CredentialPolicy)
	}

	// Google sign-in is optional, but half-configured is a mistake.
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		return fmt.Errorf("config: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}

	return nil
}

// GoogleEnabled reports whether the Google sign-in routes should be mounted.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
