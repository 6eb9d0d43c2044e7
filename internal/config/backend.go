package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvBackendMode          = "MEDDOC_BACKEND_MODE"
	EnvBackendCallTimeout   = "MEDDOC_BACKEND_CALL_TIMEOUT"
	EnvBackendValidateChars = "MEDDOC_BACKEND_VALIDATE_CHARS"
)

// Backend modes. Exactly one is active per process.
const (
	BackendHeuristic = "heuristic"
	BackendRemote    = "remote"
)

// BackendConfig selects the model backend and bounds its calls.
type BackendConfig struct {
	Mode          string `toml:"mode"`
	CallTimeout   string `toml:"call_timeout"`
	ValidateChars int    `toml:"validate_chars"`
}

// CallTimeoutDuration returns CallTimeout as a time.Duration.
func (c *BackendConfig) CallTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CallTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *BackendConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *BackendConfig) Merge(overlay *BackendConfig) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
	}
	if overlay.ValidateChars != 0 {
		c.ValidateChars = overlay.ValidateChars
	}
}

func (c *BackendConfig) loadDefaults() {
	if c.Mode == "" {
		c.Mode = BackendHeuristic
	}
	if c.CallTimeout == "" {
		c.CallTimeout = "60s"
	}
	if c.ValidateChars == 0 {
		c.ValidateChars = 2000
	}
}

func (c *BackendConfig) loadEnv() {
	if v := os.Getenv(EnvBackendMode); v != "" {
		c.Mode = v
	}
	if v := os.Getenv(EnvBackendCallTimeout); v != "" {
		c.CallTimeout = v
	}
	if v := os.Getenv(EnvBackendValidateChars); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ValidateChars = n
		}
	}
}

func (c *BackendConfig) validate() error {
	if c.Mode != BackendHeuristic && c.Mode != BackendRemote {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	d, err := time.ParseDuration(c.CallTimeout)
	if err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("call_timeout must be positive")
	}
	if c.ValidateChars < 1 {
		return fmt.Errorf("validate_chars must be positive")
	}
	return nil
}
