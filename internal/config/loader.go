package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom is Load with an explicit YAML path. A missing file is not an error.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables onto cfg. Empty or unparsable
// values are ignored.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.DatabasePath, "DATABASE_PATH")

	setString(&cfg.Client.APIURL, "BARBERIQ_API_URL")
	setString(&cfg.Client.CachePath, "BARBERIQ_CACHE_PATH")
	setDuration(&cfg.Client.TenantTTL, "BARBERIQ_TENANT_TTL")
	setBool(&cfg.Client.StrictRoutes, "BARBERIQ_STRICT_ROUTES")
	setDuration(&cfg.Client.Timeout, "BARBERIQ_HTTP_TIMEOUT")
	setInt64(&cfg.Client.QueryCacheMB, "BARBERIQ_QUERY_CACHE_MB")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Service, "LOG_SERVICE")
}

func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Server.DatabasePath == "" {
		return errors.New("server.database_path is required")
	}
	if cfg.Client.APIURL == "" {
		return errors.New("client.api_url is required")
	}
	if cfg.Client.TenantTTL <= 0 {
		return errors.New("client.tenant_ttl must be positive")
	}
	if cfg.Client.QueryCacheMB < 1 {
		return errors.New("client.query_cache_mb must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
