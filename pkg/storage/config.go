package storage

import (
	"fmt"
	"os"
	"slices"
	"strconv"
)

// Supported storage providers.
const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"
	ProviderLocal = "local"
)

var providers = []string{ProviderAzure, ProviderS3, ProviderLocal}

// Config selects a blob storage provider and holds its connection parameters.
// ContainerName is the Azure container, the S3 bucket, or the local root directory name.
type Config struct {
	Provider      string      `toml:"provider"`
	ContainerName string      `toml:"container_name"`
	Azure         AzureConfig `toml:"azure"`
	S3            S3Config    `toml:"s3"`
	Local         LocalConfig `toml:"local"`
}

// AzureConfig authenticates with a connection string or, when only ServiceURL
// is set, with the default Azure credential chain.
type AzureConfig struct {
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
}

// S3Config holds S3-compatible endpoint settings.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
}

// LocalConfig roots the local provider at a filesystem directory.
type LocalConfig struct {
	Root string `toml:"root"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3Region         string
	S3UseSSL         string
	LocalRoot        string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.ServiceURL != "" {
		c.Azure.ServiceURL = overlay.Azure.ServiceURL
	}
	if overlay.S3.Endpoint != "" {
		c.S3.Endpoint = overlay.S3.Endpoint
	}
	if overlay.S3.AccessKey != "" {
		c.S3.AccessKey = overlay.S3.AccessKey
	}
	if overlay.S3.SecretKey != "" {
		c.S3.SecretKey = overlay.S3.SecretKey
	}
	if overlay.S3.Region != "" {
		c.S3.Region = overlay.S3.Region
	}
	if overlay.S3.UseSSL {
		c.S3.UseSSL = true
	}
	if overlay.Local.Root != "" {
		c.Local.Root = overlay.Local.Root
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "documents"
	}
	if c.Local.Root == "" {
		c.Local.Root = "storage"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, target *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.ContainerName, &c.ContainerName)
	set(env.ConnectionString, &c.Azure.ConnectionString)
	set(env.ServiceURL, &c.Azure.ServiceURL)
	set(env.S3Endpoint, &c.S3.Endpoint)
	set(env.S3AccessKey, &c.S3.AccessKey)
	set(env.S3SecretKey, &c.S3.SecretKey)
	set(env.S3Region, &c.S3.Region)
	set(env.LocalRoot, &c.Local.Root)

	if env.S3UseSSL != "" {
		if v := os.Getenv(env.S3UseSSL); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.S3.UseSSL = b
			}
		}
	}
}

func (c *Config) validate() error {
	if !slices.Contains(providers, c.Provider) {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}

	switch c.Provider {
	case ProviderAzure:
		if c.Azure.ConnectionString == "" && c.Azure.ServiceURL == "" {
			return fmt.Errorf("azure connection_string or service_url required")
		}
	case ProviderS3:
		if c.S3.Endpoint == "" {
			return fmt.Errorf("s3 endpoint required")
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("s3 access_key and secret_key required")
		}
	}
	return nil
}
