package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverBolt     Driver = "bolt"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"StoreLedger"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Timezone string `envconfig:"APP_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"storeledger"`
	}

	Store struct {
		Driver   Driver `envconfig:"STORE_DRIVER" default:"bolt"`
		Key      string `envconfig:"STORE_KEY" default:"default"`
		BoltPath string `envconfig:"STORE_BOLT_PATH" default:"storeledger.db"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
	}

	Log struct {
		Level       string `envconfig:"LOG_LEVEL" default:"info"`
		Development bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
		File        string `envconfig:"LOG_FILE" default:""`
	}

	Advice struct {
		APIKey          string        `envconfig:"OPENAI_API_KEY"`
		Model           string        `envconfig:"ADVICE_MODEL" default:"gpt-4o-mini"`
		Timeout         time.Duration `envconfig:"ADVICE_TIMEOUT" default:"25s"`
		CacheTTL        time.Duration `envconfig:"ADVICE_CACHE_TTL" default:"1h"`
		CacheMaxEntries int           `envconfig:"ADVICE_CACHE_MAX_ENTRIES" default:"1000"`
		MaxPayloadBytes int           `envconfig:"ADVICE_MAX_PAYLOAD_BYTES" default:"5000"`
		MaxQueryChars   int           `envconfig:"ADVICE_MAX_QUERY_CHARS" default:"500"`
		MinClientIDLen  int           `envconfig:"ADVICE_MIN_CLIENT_ID_LEN" default:"10"`
	}

	Report struct {
		Dir      string `envconfig:"REPORT_DIR" default:"reports"`
		Schedule string `envconfig:"REPORT_SCHEDULE" default:"55 23 * * *"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves App.Timezone. Day boundaries of every report are taken in
// this location.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Store.Driver {
	case DriverPostgres, DriverBolt:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return &cfg, nil
}
