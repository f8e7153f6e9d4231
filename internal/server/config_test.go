package server

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.CacheBackend != "file" {
		t.Errorf("CacheBackend = %q, want file", cfg.CacheBackend)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "port: 9090\ncache_backend: redis\nredis_url: redis://localhost:6379/0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.CacheBackend != "redis" {
		t.Errorf("CacheBackend = %q, want redis", cfg.CacheBackend)
	}
	// Untouched keys keep their defaults.
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FUNNELVIZ_PORT", "7070")
	t.Setenv("FUNNELVIZ_CACHE_BACKEND", "null")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("Port = %d, want env override 7070", cfg.Port)
	}
	if cfg.CacheBackend != "null" {
		t.Errorf("CacheBackend = %q, want null", cfg.CacheBackend)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "unknown cache backend", mutate: func(c *Config) { c.CacheBackend = "memcached" }, wantErr: true},
		{name: "redis without url", mutate: func(c *Config) { c.CacheBackend = "redis" }, wantErr: true},
		{
			name: "redis with url",
			mutate: func(c *Config) {
				c.CacheBackend = "redis"
				c.RedisURL = "redis://localhost:6379/0"
			},
		},
		{name: "unknown store backend", mutate: func(c *Config) { c.StoreBackend = "postgres" }, wantErr: true},
		{name: "mongo without uri", mutate: func(c *Config) { c.StoreBackend = "mongo" }, wantErr: true},
		{
			name: "mongo with uri",
			mutate: func(c *Config) {
				c.StoreBackend = "mongo"
				c.MongoURI = "mongodb://localhost:27017"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() error = %v, want INVALID_CONFIG", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Port = 9999
	cfg.CacheDir = "/tmp/fv-cache"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Port != 9999 || loaded.CacheDir != "/tmp/fv-cache" {
		t.Errorf("round trip = %+v", loaded)
	}
}

func TestResolvedCacheDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheDir = "/var/cache/funnelviz"
	if got := cfg.ResolvedCacheDir(); got != "/var/cache/funnelviz" {
		t.Errorf("ResolvedCacheDir() = %q", got)
	}

	cfg.CacheDir = ""
	if got := cfg.ResolvedCacheDir(); got == "" {
		t.Error("ResolvedCacheDir() empty for unset cache_dir")
	}
}
