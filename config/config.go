package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/rwa-intake/models"
	"github.com/yourusername/rwa-intake/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port               string
	DatabaseURL        string
	JWTSecret          string
	ClerkWebhookSecret string
	ResendAPIKey       string
	EmailFrom          string
	CRMWebhookURL      string
	NotifyTimeout      time.Duration
	StellarNetwork     string
	StellarTreasury    string
	AllowedOrigin      string
	LogLevel           string
	LogDev             bool
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	timeout, err := time.ParseDuration(getEnvOrDefault("NOTIFY_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEOUT: %w", err)
	}

	logDev, _ := strconv.ParseBool(os.Getenv("LOG_DEV"))

	treasury, err := utils.NormalizeAddress(os.Getenv("STELLAR_TREASURY_ACCOUNT"))
	if err != nil {
		return nil, fmt.Errorf("invalid STELLAR_TREASURY_ACCOUNT: %w", err)
	}

	return &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		EmailFrom:          getEnvOrDefault("EMAIL_FROM", "Early Access <hello@example.com>"),
		CRMWebhookURL:      os.Getenv("N8N_WEBHOOK_URL"),
		NotifyTimeout:      timeout,
		StellarNetwork:     getEnvOrDefault("STELLAR_NETWORK", "testnet"),
		StellarTreasury:    treasury,
		AllowedOrigin:      getEnvOrDefault("CORS_ORIGIN", "*"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogDev:             logDev,
	}, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Submission{}, &models.User{}, &models.Wallet{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
