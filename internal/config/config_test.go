package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test. Blank counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"JOBS_CSV_URL", "VITE_JOBS_CSV_URL", "SERVER_HOST", "SERVER_PORT",
		"SERVER_READ_TIMEOUT", "SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
		"SERVER_REQUEST_TIMEOUT", "FETCH_TIMEOUT", "FETCH_MAX_BYTES",
		"CATALOG_REFRESH_SCHEDULE", "CATALOG_RELOAD_DEBOUNCE", "PAGE_SIZE",
		"RELOAD_RATE_LIMIT", "TRUSTED_PROXIES", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: time.Second, RequestTimeout: time.Minute},
		Feed:    FeedConfig{FetchTimeout: time.Second, MaxBytes: 1024},
		Catalog: CatalogConfig{RefreshSchedule: "@every 30m", ReloadDebounce: time.Second},
		Board:   BoardConfig{PageSize: 12, ReloadRate: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Feed.URL != "" {
		t.Errorf("Feed.URL = %q, want empty", cfg.Feed.URL)
	}
	if cfg.Feed.FetchTimeout != 30*time.Second {
		t.Errorf("Feed.FetchTimeout = %v, want %v", cfg.Feed.FetchTimeout, 30*time.Second)
	}
	if cfg.Feed.MaxBytes != 10<<20 {
		t.Errorf("Feed.MaxBytes = %d, want %d", cfg.Feed.MaxBytes, 10<<20)
	}
	if cfg.Catalog.RefreshSchedule != "@every 30m" {
		t.Errorf("Catalog.RefreshSchedule = %q, want %q", cfg.Catalog.RefreshSchedule, "@every 30m")
	}
	if cfg.Catalog.ReloadDebounce != 2*time.Second {
		t.Errorf("Catalog.ReloadDebounce = %v, want %v", cfg.Catalog.ReloadDebounce, 2*time.Second)
	}
	if cfg.Board.PageSize != 12 {
		t.Errorf("Board.PageSize = %d, want %d", cfg.Board.PageSize, 12)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOBS_CSV_URL", "https://example.com/jobs.csv")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PAGE_SIZE", "24")
	t.Setenv("CATALOG_REFRESH_SCHEDULE", "off")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Feed.URL != "https://example.com/jobs.csv" {
		t.Errorf("Feed.URL = %q", cfg.Feed.URL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Board.PageSize != 24 {
		t.Errorf("Board.PageSize = %d, want %d", cfg.Board.PageSize, 24)
	}
	if cfg.Catalog.RefreshSchedule != "off" {
		t.Errorf("Catalog.RefreshSchedule = %q, want off", cfg.Catalog.RefreshSchedule)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	clearEnv(t)
	t.Setenv("VITE_JOBS_CSV_URL", "https://example.com/legacy.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Feed.URL != "https://example.com/legacy.csv" {
		t.Errorf("Feed.URL = %q, want %q", cfg.Feed.URL, "https://example.com/legacy.csv")
	}
}

func TestLoad_Duration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("FETCH_TIMEOUT", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Feed.FetchTimeout != 90*time.Second {
		t.Errorf("Feed.FetchTimeout = %v, want %v", cfg.Feed.FetchTimeout, 90*time.Second)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_TIMEOUT", "soon")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "FETCH_TIMEOUT") {
		t.Errorf("Load() error = %v, want FETCH_TIMEOUT parse error", err)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}
	if len(cfg.Security.TrustedProxies) != len(expected) {
		t.Fatalf("TrustedProxies length = %d, want %d", len(cfg.Security.TrustedProxies), len(expected))
	}
	for i, v := range expected {
		if cfg.Security.TrustedProxies[i] != v {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], v)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "schedule disabled", modify: func(c *Config) { c.Catalog.RefreshSchedule = "" }},
		{name: "invalid port", modify: func(c *Config) { c.Server.Port = 99999 }, want: "SERVER_PORT"},
		{name: "relative feed url", modify: func(c *Config) { c.Feed.URL = "jobs.csv" }, want: "JOBS_CSV_URL"},
		{name: "ftp feed url", modify: func(c *Config) { c.Feed.URL = "ftp://example.com/jobs.csv" }, want: "JOBS_CSV_URL"},
		{name: "zero max bytes", modify: func(c *Config) { c.Feed.MaxBytes = 0 }, want: "FETCH_MAX_BYTES"},
		{name: "bad schedule", modify: func(c *Config) { c.Catalog.RefreshSchedule = "every tuesday" }, want: "CATALOG_REFRESH_SCHEDULE"},
		{name: "page size too large", modify: func(c *Config) { c.Board.PageSize = 500 }, want: "PAGE_SIZE"},
		{name: "invalid log level", modify: func(c *Config) { c.Logging.Level = "verbose" }, want: "LOG_LEVEL"},
		{name: "invalid log format", modify: func(c *Config) { c.Logging.Format = "xml" }, want: "LOG_FORMAT"},
		{name: "bad proxy", modify: func(c *Config) { c.Security.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} }, want: "TRUSTED_PROXIES[1]"},
		{name: "proxy address", modify: func(c *Config) { c.Security.TrustedProxies = []string{"192.168.1.10"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"::1", 443, "[::1]:443"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		got := cfg.Addr()
		if got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConfigString_MasksFeedURL(t *testing.T) {
	cfg := validConfig()
	cfg.Feed.URL = "https://feeds.example.com/jobs.csv?token=secret"

	str := cfg.String()
	if strings.Contains(str, "secret") {
		t.Errorf("String() leaked the feed token: %s", str)
	}
	if !strings.Contains(str, "https://feeds.example.com/...") {
		t.Errorf("String() = %s, want feed host", str)
	}
	if !strings.Contains(validConfig().String(), "[bundled sample]") {
		t.Error("String() should name the bundled sample when no URL is set")
	}
}
