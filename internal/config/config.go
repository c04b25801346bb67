package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Medibill"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"medibill"`
		MaxConns int    `envconfig:"DB_MAX_CONNS" default:"8"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	// Staff tokens are issued by the clinic's user service; we only verify them.
	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	Directory struct {
		BaseURL string `envconfig:"PATIENT_DIRECTORY_URL" default:"http://localhost:8090"`
		Token   string `envconfig:"PATIENT_DIRECTORY_TOKEN"`
	}

	Billing struct {
		// Invoices fall due this many days after creation when no due date is given.
		DueDays int `envconfig:"INVOICE_DUE_DAYS" default:"14"`
		// Credit limit (in kobo) applied to wallets that were never configured.
		DefaultCreditLimit int64 `envconfig:"DEFAULT_CREDIT_LIMIT" default:"0"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
