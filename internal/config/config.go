// Package config loads barberiq settings: defaults, then an optional YAML
// file, then environment variables.
package config

import "time"

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "barberiq.yaml"

// Config is the configuration of the barberiq server and client tools.
type Config struct {
	Server  Server  `yaml:"server"`
	Client  Client  `yaml:"client"`
	Logging Logging `yaml:"logging"`
}

// Server configures the reference backend.
type Server struct {
	Port         string `yaml:"port"`
	DatabasePath string `yaml:"database_path"`
}

// Client configures a tenant session talking to the backend.
type Client struct {
	APIURL       string        `yaml:"api_url"`
	CachePath    string        `yaml:"cache_path"`
	TenantTTL    time.Duration `yaml:"tenant_ttl"`
	StrictRoutes bool          `yaml:"strict_routes"`
	Timeout      time.Duration `yaml:"timeout"`
	QueryCacheMB int64         `yaml:"query_cache_mb"`
}

// Logging configures the slog logger.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Defaults returns a Config with every field set to its default.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:         "8080",
			DatabasePath: "barberiq.db",
		},
		Client: Client{
			APIURL:       "http://localhost:8080",
			CachePath:    "barberiq-cache.db",
			TenantTTL:    30 * time.Minute,
			Timeout:      10 * time.Second,
			QueryCacheMB: 16,
		},
		Logging: Logging{
			Level:   "info",
			Service: "barberiq",
		},
	}
}
