package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Simplicate struct {
		BaseURL   string // default: https://api.simplicate.com
		APIKey    string
		APISecret string
	}
	MySQL struct {
		DSN string // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
	}
	HTTP struct {
		Addr string // default: :8080
	}
	Sync struct {
		Interval time.Duration // default: 1h
	}
}

// Load reads configuration from the environment, with an optional .env file
// merged in first (a missing .env is not an error).
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config

	cfg.Simplicate.APIKey = os.Getenv("SIMPLICATE_API_KEY")
	if cfg.Simplicate.APIKey == "" {
		return cfg, errors.New("SIMPLICATE_API_KEY is required")
	}
	cfg.Simplicate.APISecret = os.Getenv("SIMPLICATE_API_SECRET")
	if cfg.Simplicate.APISecret == "" {
		return cfg, errors.New("SIMPLICATE_API_SECRET is required")
	}
	cfg.Simplicate.BaseURL = os.Getenv("SIMPLICATE_BASE_URL")
	if cfg.Simplicate.BaseURL == "" {
		cfg.Simplicate.BaseURL = "https://api.simplicate.com"
	}

	cfg.MySQL.DSN = os.Getenv("MYSQL_DSN")

	cfg.HTTP.Addr = os.Getenv("HTTP_ADDR")
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}

	cfg.Sync.Interval = time.Hour
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, errors.New("SYNC_INTERVAL must be a positive duration")
		}
		cfg.Sync.Interval = d
	}

	return cfg, nil
}
