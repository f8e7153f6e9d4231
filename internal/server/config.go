package server

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// Config holds server configuration.
type Config struct {
	Host string `koanf:"host" yaml:"host"`
	Port int    `koanf:"port" yaml:"port"`

	// CacheBackend selects where solved geometry and rendered artifacts
	// are kept: "file", "redis", or "null" (caching disabled).
	CacheBackend string `koanf:"cache_backend" yaml:"cache_backend"`
	CacheDir     string `koanf:"cache_dir" yaml:"cache_dir"`
	RedisURL     string `koanf:"redis_url" yaml:"redis_url"`

	// StoreBackend selects where chart documents are persisted:
	// "memory" or "mongo".
	StoreBackend  string `koanf:"store_backend" yaml:"store_backend"`
	MongoURI      string `koanf:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database" yaml:"mongo_database"`

	// AllowAllOrigins relaxes CORS to any origin (dev mode).
	AllowAllOrigins bool `koanf:"allow_all_origins" yaml:"allow_all_origins"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Host:          "",
		Port:          8080,
		CacheBackend:  "file",
		StoreBackend:  "memory",
		MongoDatabase: "funnelviz",
	}
}

// LoadConfig reads configuration from the given YAML file, then overlays
// environment variable overrides (FUNNELVIZ_*).
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "reading config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "accessing config %s", path)
		}
	}

	// Overlay environment variables: FUNNELVIZ_PORT -> port, etc.
	if err := k.Load(env.Provider("FUNNELVIZ_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FUNNELVIZ_"))
	}), nil); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "loading env overrides")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "unmarshalling config")
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "marshalling config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "writing config to %s", path)
	}
	return nil
}

// validCacheBackends is the set of recognized cache_backend values.
var validCacheBackends = map[string]bool{
	"file":  true,
	"redis": true,
	"null":  true,
}

// validStoreBackends is the set of recognized store_backend values.
var validStoreBackends = map[string]bool{
	"memory": true,
	"mongo":  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "port %d out of range", c.Port)
	}

	if !validCacheBackends[c.CacheBackend] {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"invalid cache_backend %q: must be one of file, redis, null", c.CacheBackend)
	}
	if c.CacheBackend == "redis" && c.RedisURL == "" {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "redis_url is required for the redis cache backend")
	}

	if !validStoreBackends[c.StoreBackend] {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"invalid store_backend %q: must be one of memory, mongo", c.StoreBackend)
	}
	if c.StoreBackend == "mongo" {
		if c.MongoURI == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "mongo_uri is required for the mongo store backend")
		}
		if c.MongoDatabase == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "mongo_database is required for the mongo store backend")
		}
	}

	return nil
}

// ResolvedCacheDir returns the cache directory, falling back to the
// platform cache directory when unset.
func (c *Config) ResolvedCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return ".funnelviz-cache"
	}
	return filepath.Join(base, "funnelviz")
}
