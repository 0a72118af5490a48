// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// MongoDB Configuration
	MongoURI         string        `mapstructure:"MONGO_URI"`
	MongoDatabase    string        `mapstructure:"MONGO_DATABASE"`
	MongoConnTimeout time.Duration `mapstructure:"MONGO_CONNECT_TIMEOUT_SECONDS"`
	MongoOpTimeout   time.Duration `mapstructure:"MONGO_OPERATION_TIMEOUT_SECONDS"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string        `mapstructure:"FIREBASE_PROJECT_ID"`
	TokenVerifyTimeout            time.Duration `mapstructure:"TOKEN_VERIFY_TIMEOUT_SECONDS"`

	// Stripe Configuration
	StripeSecretKey     string        `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string        `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	SiteDomain          string        `mapstructure:"SITE_DOMAIN"`
	CheckoutTimeout     time.Duration `mapstructure:"CHECKOUT_TIMEOUT_SECONDS"`

	// Cron Jobs
	ReportCleanupJobSchedule string `mapstructure:"REPORT_CLEANUP_JOB_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "digital_lesson_db")
	v.SetDefault("MONGO_CONNECT_TIMEOUT_SECONDS", 10)
	v.SetDefault("MONGO_OPERATION_TIMEOUT_SECONDS", 10)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	// Firebase
	v.SetDefault("FIREBASE_PROJECT_ID", "") // Optional
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("TOKEN_VERIFY_TIMEOUT_SECONDS", 10)

	// Stripe
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("SITE_DOMAIN", "http://localhost:5173")
	v.SetDefault("CHECKOUT_TIMEOUT_SECONDS", 15)

	v.SetDefault("REPORT_CLEANUP_JOB_SCHEDULE", "@daily")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.MongoConnTimeout = time.Duration(v.GetInt("MONGO_CONNECT_TIMEOUT_SECONDS")) * time.Second
	cfg.MongoOpTimeout = time.Duration(v.GetInt("MONGO_OPERATION_TIMEOUT_SECONDS")) * time.Second
	cfg.TokenVerifyTimeout = time.Duration(v.GetInt("TOKEN_VERIFY_TIMEOUT_SECONDS")) * time.Second
	cfg.CheckoutTimeout = time.Duration(v.GetInt("CHECKOUT_TIMEOUT_SECONDS")) * time.Second

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.FirebaseServiceAccountKeyPath) == "" {
		return nil, fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
	}
	if _, err := os.Stat(cfg.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", cfg.FirebaseServiceAccountKeyPath)
	}
	if strings.TrimSpace(cfg.StripeSecretKey) == "" {
		return nil, fmt.Errorf("FATAL: STRIPE_SECRET_KEY is not set. This is required for checkout session creation")
	}

	return &cfg, nil
}
