package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	POSAPIURL     string        `envconfig:"POS_API_URL" required:"true"`
	POSAPIToken   string        `envconfig:"POS_API_TOKEN"`
	POSAPITimeout time.Duration `envconfig:"POS_API_TIMEOUT" default:"15s"`
	POSAPIRetries int           `envconfig:"POS_API_RETRIES" default:"2"`

	ReportCacheTTL       time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`
	ReportMaxRange       time.Duration `envconfig:"REPORT_MAX_RANGE" default:"8784h"`
	ReportLocale         string        `envconfig:"REPORT_LOCALE" default:"id"`
	ReportCurrencySymbol string        `envconfig:"REPORT_CURRENCY_SYMBOL" default:"Rp"`
	BoardIdleTTL         time.Duration `envconfig:"BOARD_IDLE_TTL" default:"2h"`

	WarmupCron string `envconfig:"WARMUP_CRON" default:"15 1 * * *"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is loaded first when present; real environment
// variables take precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.POSAPIURL = strings.TrimRight(strings.TrimSpace(c.POSAPIURL), "/")
	if c.POSAPIURL == "" {
		return errors.New("pos api url must be provided")
	}
	if c.ReportCacheTTL < 0 {
		return errors.New("report cache ttl must not be negative")
	}
	if c.BoardIdleTTL <= 0 {
		return errors.New("board idle ttl must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
