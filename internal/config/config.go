package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "SUPPORTDESK"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// DatabaseURL is optional; without it the daemon serves the embedded seed
	// corpus from memory.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	// AdminAPIKey guards the /admin routes, which are not mounted when it is empty.
	AdminAPIKey string `envconfig:"ADMIN_API_KEY"`

	SentryDSN        string  `envconfig:"SENTRY_DSN"`
	SentrySampleRate float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"0"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"supportdesk-manuals"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3ManualKey string `envconfig:"S3_MANUAL_KEY" default:"manual.md"`

	RedisURL string `envconfig:"REDIS_URL"`

	FeederInterval       time.Duration `envconfig:"FEEDER_INTERVAL" default:"10m"`
	FeederWindow         int           `envconfig:"FEEDER_WINDOW" default:"50"`
	FeederMinOccurrences int           `envconfig:"FEEDER_MIN_OCCURRENCES" default:"3"`

	BotName     string `envconfig:"BOT_NAME" default:"أحمد"`
	CompanyName string `envconfig:"COMPANY_NAME" default:"Modern Soft"`
	ProductName string `envconfig:"PRODUCT_NAME" default:"E-stock"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want json or console", c.LogFormat)
	}
	if c.FeederInterval <= 0 {
		return fmt.Errorf("FEEDER_INTERVAL must be positive")
	}
	if c.FeederWindow <= 0 {
		return fmt.Errorf("FEEDER_WINDOW must be positive")
	}
	if c.FeederMinOccurrences <= 0 {
		return fmt.Errorf("FEEDER_MIN_OCCURRENCES must be positive")
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		return fmt.Errorf("SENTRY_SAMPLE_RATE must be within [0, 1]")
	}
	return nil
}

// TracesSampleRate returns the configured rate, or 1.0 in development and
// 0.1 elsewhere when none was set.
func (c *Config) TracesSampleRate() float64 {
	if c.SentrySampleRate > 0 {
		return c.SentrySampleRate
	}
	if c.Environment == "development" {
		return 1.0
	}
	return 0.1
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

func (c *Config) HasAdmin() bool {
	return c.AdminAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
