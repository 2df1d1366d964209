package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "barberiq.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv blanks every variable loadEnv reads; blank values are ignored.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_PATH", "BARBERIQ_API_URL", "BARBERIQ_CACHE_PATH", "BARBERIQ_TENANT_TTL",
		"BARBERIQ_STRICT_ROUTES", "BARBERIQ_HTTP_TIMEOUT", "BARBERIQ_QUERY_CACHE_MB", "LOG_LEVEL", "LOG_SERVICE",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Client.TenantTTL != 30*time.Minute {
		t.Errorf("expected tenant ttl 30m, got %v", cfg.Client.TenantTTL)
	}
	if cfg.Client.StrictRoutes {
		t.Error("expected dual routing by default")
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if diff := cmp.Diff(Defaults(), *cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom_YAMLOverride(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
server:
  port: "9090"
client:
  api_url: "https://api.barberiq.test"
  tenant_ttl: 5m
  strict_routes: true
logging:
  level: "debug"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	want := Defaults()
	want.Server.Port = "9090"
	want.Client.APIURL = "https://api.barberiq.test"
	want.Client.TenantTTL = 5 * time.Minute
	want.Client.StrictRoutes = true
	want.Logging.Level = "debug"
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, "server:\n  port: \"9090\"\n")
	t.Setenv("PORT", "7070")
	t.Setenv("BARBERIQ_TENANT_TTL", "90s")
	t.Setenv("BARBERIQ_STRICT_ROUTES", "true")
	t.Setenv("BARBERIQ_QUERY_CACHE_MB", "64")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("Port = %q, want 7070", cfg.Server.Port)
	}
	if cfg.Client.TenantTTL != 90*time.Second {
		t.Errorf("TenantTTL = %v, want 90s", cfg.Client.TenantTTL)
	}
	if !cfg.Client.StrictRoutes {
		t.Error("StrictRoutes = false, want true")
	}
	if cfg.Client.QueryCacheMB != 64 {
		t.Errorf("QueryCacheMB = %d, want 64", cfg.Client.QueryCacheMB)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadFrom_InvalidEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("BARBERIQ_TENANT_TTL", "soon")
	t.Setenv("BARBERIQ_STRICT_ROUTES", "maybe")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Client.TenantTTL != 30*time.Minute || cfg.Client.StrictRoutes {
		t.Errorf("client = %+v, want defaults", cfg.Client)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"malformed", "server: [", "config yaml"},
		{"zero ttl", "client:\n  tenant_ttl: 0s\n", "tenant_ttl"},
		{"empty api url", "client:\n  api_url: \"\"\n", "api_url"},
		{"tiny cache", "client:\n  query_cache_mb: 0\n", "query_cache_mb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeYAML(t, tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
