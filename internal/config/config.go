package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	DBDSN     string `env:"DB_DSN" envDefault:"andonation.db"` // sqlite file in project root
	LogFile   string `env:"LOG_FILE" envDefault:"./andonation.log"`
	BaseURL   string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	CookieKey string `env:"COOKIE_KEY"` // base64, 32 bytes; generated per process when empty

	Auth AuthConfig `envPrefix:"AUTH_"`
	Fund FundConfig `envPrefix:"FUND_"`
}

type AuthConfig struct {
	// TestMode swaps the Google provider for a mock returning the Mock* identity.
	TestMode           bool     `env:"TEST_MODE"`
	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	AllowedDomains     []string `env:"ALLOWED_DOMAINS" envSeparator:","`

	MockUID       string `env:"MOCK_UID" envDefault:"123545"`
	MockEmail     string `env:"MOCK_EMAIL" envDefault:"christopher@andela.co"`
	MockFirstName string `env:"MOCK_FIRST_NAME" envDefault:"Christopher"`
	MockLastName  string `env:"MOCK_LAST_NAME" envDefault:"Jones"`
}

type FundConfig struct {
	URL     string        `env:"URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Rate    float64       `env:"RATE" envDefault:"10"` // requests per second
}

// Load reads the environment. Secrets are never echoed to the log.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s BASE_URL=%s AUTH_TEST_MODE=%t FUND_URL=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.BaseURL, cfg.Auth.TestMode, cfg.Fund.URL)
	return cfg, nil
}

func (c Config) CallbackURL(provider string) string {
	return c.BaseURL + "/auth/" + provider + "/callback"
}
