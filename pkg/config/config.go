package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// RateLimit uses the ulule/limiter format, e.g. "100-M" for 100
	// requests per minute per client IP.
	RateLimit string

	// CORSAllowedOrigins is a comma-separated list; empty allows all.
	CORSAllowedOrigins []string

	// Company context. Every amount without an explicit currency is
	// interpreted in the company currency.
	CompanyID       string
	CompanyCurrency string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{})
	viper.SetDefault("COMPANY_ID", "")
	viper.SetDefault("COMPANY_CURRENCY", "USD")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = viper.GetStringSlice("CORS_ALLOWED_ORIGINS")

	cfg.CompanyID = viper.GetString("COMPANY_ID")
	cfg.CompanyCurrency = viper.GetString("COMPANY_CURRENCY")
	if len(cfg.CompanyCurrency) != 3 {
		return nil, fmt.Errorf("COMPANY_CURRENCY must be a 3-letter code, got '%s'", cfg.CompanyCurrency)
	}

	return cfg, nil
}
