package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string        `yaml:"addr" env:"APP_ADDR" env-default:":8080"`
	DatabaseURL        string        `yaml:"database_url" env:"DATABASE_URL"`
	JWTSecret          string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Environment        string        `yaml:"environment" env:"APP_ENV" env-default:"development"`
	LogLevel           string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	SessionTTL         time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"8h"`
	RequestTimeout     time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"15s"`
	MigrationsDir      string        `yaml:"migrations_dir" env:"MIGRATIONS_DIR" env-default:"migrations"`
	SeedCatalogPath    string        `yaml:"seed_catalog_path" env:"SEED_CATALOG_PATH"`
	SeedOrgName        string        `yaml:"seed_org_name" env:"SEED_ORG_NAME" env-default:"Default Organization"`
	SeedAdminEmail     string        `yaml:"seed_admin_email" env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword  string        `yaml:"seed_admin_password" env:"SEED_ADMIN_PASSWORD"`
	EmailFrom          string        `yaml:"email_from" env:"EMAIL_FROM" env-default:"no-reply@example.com"`
	EmailEnabled       bool          `yaml:"email_enabled" env:"EMAIL_ENABLED" env-default:"false"`
	SMTPHost           string        `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort           int           `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser           string        `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword       string        `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	SMTPUseTLS         bool          `yaml:"smtp_use_tls" env:"SMTP_USE_TLS" env-default:"true"`
	RunMigrations      bool          `yaml:"run_migrations" env:"RUN_MIGRATIONS" env-default:"true"`
	RunSeed            bool          `yaml:"run_seed" env:"RUN_SEED" env-default:"true"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" env-default:"1048576"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"120"`
	MetricsEnabled     bool          `yaml:"metrics_enabled" env:"METRICS_ENABLED" env-default:"true"`
}

// Load reads an optional dotenv file, then an optional YAML file, then the
// process environment. Later sources win.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("load env file: %w", err)
			}
		}
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
