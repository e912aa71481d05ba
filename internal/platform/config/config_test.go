package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/hrdesk",
		JWTSecret:          "test-secret",
		Environment:        "development",
		SessionTTL:         time.Hour,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = " " }, wantErr: true},
		{name: "short production secret", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{
			name: "production seed without password",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = "0123456789abcdef0123456789abcdef"
				c.RunSeed = true
			},
			wantErr: true,
		},
		{name: "tiny body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimitPerMinute = 0 }, wantErr: true},
		{name: "zero session ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: true},
		{name: "email without smtp host", mutate: func(c *Config) { c.EmailEnabled = true }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hrdesk")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Fatalf("expected env override 30, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.SessionTTL != 8*time.Hour {
		t.Fatalf("expected default session ttl, got %v", cfg.SessionTTL)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "addr: \":9090\"\ndatabase_url: postgres://db/hrdesk\njwt_secret: file-secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.JWTSecret != "file-secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("expected default smtp port, got %d", cfg.SMTPPort)
	}
}
