package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/meddoc/pkg/database"
	"github.com/JaimeStill/meddoc/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvMeddocEnv             = "MEDDOC_ENV"
	EnvMeddocShutdownTimeout = "MEDDOC_SHUTDOWN_TIMEOUT"
	EnvMeddocVersion         = "MEDDOC_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "MEDDOC_DB_HOST",
	Port:            "MEDDOC_DB_PORT",
	Name:            "MEDDOC_DB_NAME",
	User:            "MEDDOC_DB_USER",
	Password:        "MEDDOC_DB_PASSWORD",
	SSLMode:         "MEDDOC_DB_SSL_MODE",
	MaxOpenConns:    "MEDDOC_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "MEDDOC_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "MEDDOC_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "MEDDOC_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "MEDDOC_STORAGE_PROVIDER",
	ContainerName:    "MEDDOC_STORAGE_CONTAINER_NAME",
	ConnectionString: "MEDDOC_STORAGE_CONNECTION_STRING",
	ServiceURL:       "MEDDOC_STORAGE_SERVICE_URL",
	S3Endpoint:       "MEDDOC_STORAGE_S3_ENDPOINT",
	S3AccessKey:      "MEDDOC_STORAGE_S3_ACCESS_KEY",
	S3SecretKey:      "MEDDOC_STORAGE_S3_SECRET_KEY",
	S3Region:         "MEDDOC_STORAGE_S3_REGION",
	S3UseSSL:         "MEDDOC_STORAGE_S3_USE_SSL",
	LocalRoot:        "MEDDOC_STORAGE_LOCAL_ROOT",
}

// Config is the root configuration for the meddoc service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Backend         BackendConfig        `toml:"backend"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Evaluation      EvaluationConfig     `toml:"evaluation"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the MEDDOC_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvMeddocEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Backend.Merge(&overlay.Backend)
	c.Agent.Merge(&overlay.Agent)
	c.Evaluation.Merge(&overlay.Evaluation)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Backend.Finalize(); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	// The agent is only dialed by the remote backend.
	if c.Backend.Mode == BackendRemote {
		if err := FinalizeAgent(&c.Agent); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}
	if err := c.Evaluation.Finalize(); err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvMeddocShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvMeddocVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvMeddocEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
