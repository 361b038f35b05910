package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		LogLevel  string `env:"APP_LOG_LEVEL" env-default:"info"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port     int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
		User     string `env:"POSTGRES_USER"`
		Pass     string `env:"POSTGRES_PASS"`
		Name     string `env:"POSTGRES_NAME"`
		SslMode  string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
		MaxConns int32  `env:"POSTGRES_MAX_CONNS" env-default:"10"`
	}
	Storage struct {
		Endpoint      string `env:"STORAGE_ENDPOINT" env-default:"http://localhost:9000"`
		Region        string `env:"STORAGE_REGION" env-default:"us-east-1"`
		Bucket        string `env:"STORAGE_BUCKET" env-default:"artfeed"`
		AccessKey     string `env:"STORAGE_ACCESS_KEY"`
		SecretKey     string `env:"STORAGE_SECRET_KEY"`
		UseSSL        bool   `env:"STORAGE_USE_SSL" env-default:"false"`
		UsePathStyle  bool   `env:"STORAGE_USE_PATH_STYLE" env-default:"true"`
		PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`
	}
	Auth struct {
		JWTSecret string        `env:"AUTH_JWT_SECRET"`
		Issuer    string        `env:"AUTH_ISSUER" env-default:"artfeed"`
		TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" env-default:"24h"`
	}
	Telegram struct {
		Token string `env:"TELEGRAM_TOKEN"`
	}
	Feed struct {
		MaxUploadBytes int64  `env:"FEED_MAX_UPLOAD_BYTES" env-default:"10485760"`
		ReconcileCron  string `env:"FEED_RECONCILE_CRON" env-default:"0 3 * * *"`
	}
	Session struct {
		IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT" env-default:"30m"`
		EvictInterval time.Duration `env:"SESSION_EVICT_INTERVAL" env-default:"5m"`
	}
	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" env-default:"5"`
		Per      time.Duration `env:"RATE_LIMIT_PER" env-default:"10s"`
		Burst    int           `env:"RATE_LIMIT_BURST" env-default:"5"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

// New returns the process-wide configuration, reading it from the environment on first use.
func New() (*Config, error) {
	once.Do(func() {
		// A missing .env is fine, the environment may already be populated.
		_ = godotenv.Load()

		c, err := Load()
		if err != nil {
			help, _ := cleanenv.GetDescription(&Config{}, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
		cfg = c
	})
	return cfg, nil
}

// Load reads a fresh configuration from the environment.
func Load() (*Config, error) {
	c := &Config{}
	if err := cleanenv.ReadEnv(c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetDSN returns the lib/pq style connection string used by database/sql and goose.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

// GetURL returns the postgres:// connection URL used by pgxpool.
func (c *Config) GetURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.Name, c.Postgres.SslMode,
	)
}
