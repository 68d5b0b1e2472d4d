package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port          int    `mapstructure:"PORT"`
	Env           string `mapstructure:"APP_ENV"` // development | production
	AuthRateLimit int    `mapstructure:"AUTH_RATE_LIMIT"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBHost      string `mapstructure:"DB_HOST"`
	DBUser      string `mapstructure:"DB_USER"`
	DBPassword  string `mapstructure:"DB_PASSWORD"`
	DBName      string `mapstructure:"DB_NAME"`
	DBPort      string `mapstructure:"DB_PORT"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Barcode lookup
	RedisURL              string `mapstructure:"REDIS_URL"`
	BarcodeTimeoutSeconds int    `mapstructure:"BARCODE_TIMEOUT_SECONDS"`
	BarcodeCacheTTLHours  int    `mapstructure:"BARCODE_CACHE_TTL_HOURS"`
	OpenFoodFactsURL      string `mapstructure:"OPENFOODFACTS_URL"`
	UPCItemDBURL          string `mapstructure:"UPCITEMDB_URL"`

	// Business
	Timezone             string `mapstructure:"TIMEZONE"`
	Currency             string `mapstructure:"CURRENCY"`
	DefaultWorkspaceName string `mapstructure:"DEFAULT_WORKSPACE_NAME"`
	SeedDemo             bool   `mapstructure:"SEED_DEMO"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 3000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pos")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("BARCODE_TIMEOUT_SECONDS", 5)
	v.SetDefault("BARCODE_CACHE_TTL_HOURS", 24)
	v.SetDefault("OPENFOODFACTS_URL", "https://world.openfoodfacts.org")
	v.SetDefault("UPCITEMDB_URL", "https://api.upcitemdb.com")
	v.SetDefault("TIMEZONE", "America/Mexico_City")
	v.SetDefault("CURRENCY", "MXN")
	v.SetDefault("DEFAULT_WORKSPACE_NAME", "Mi Negocio")
	v.SetDefault("SEED_DEMO", false)

	// Optional .env file for local development; missing is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Env == "production" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	return cfg, nil
}

// DSN returns DATABASE_URL or builds one from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.Timezone,
	)
}

// Location resolves Timezone, falling back to a fixed UTC-6 zone when tzdata is missing.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

func (c *Config) BarcodeTimeout() time.Duration {
	return time.Duration(c.BarcodeTimeoutSeconds) * time.Second
}

func (c *Config) BarcodeCacheTTL() time.Duration {
	return time.Duration(c.BarcodeCacheTTLHours) * time.Hour
}

func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}
