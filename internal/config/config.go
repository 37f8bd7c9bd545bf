package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Storage
	DBPath     string `mapstructure:"DB_PATH"`
	BackupDir  string `mapstructure:"BACKUP_DIR"`
	ReceiptDir string `mapstructure:"RECEIPT_DIR"`

	// Optional: keep settings in Redis instead of the database.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Billing
	BillPrefix string `mapstructure:"BILL_PREFIX"`
	Timezone   string `mapstructure:"TIMEZONE"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Cloud sync
	SyncDebounceSeconds   int    `mapstructure:"SYNC_DEBOUNCE_SECONDS"`
	ConnectivityURL       string `mapstructure:"CONNECTIVITY_URL"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	GoogleTokenFile       string `mapstructure:"GOOGLE_TOKEN_FILE"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 8700)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_PATH", "kiranamitra.db")
	v.SetDefault("BACKUP_DIR", "backups")
	v.SetDefault("RECEIPT_DIR", "receipts")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("BILL_PREFIX", "KM")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 12)
	v.SetDefault("SYNC_DEBOUNCE_SECONDS", 30)
	v.SetDefault("CONNECTIVITY_URL", "https://www.googleapis.com/generate_204")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("GOOGLE_TOKEN_FILE", "google-token.json")

	// Optional .env file for local development; missing is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		// Random per process: sessions end when the server stops.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
	}
	return cfg, nil
}

// Location resolves TIMEZONE. Bill numbers and daily report buckets use it.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func (c *Config) SyncDebounce() time.Duration {
	return time.Duration(c.SyncDebounceSeconds) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}
