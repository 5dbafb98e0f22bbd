package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode    string
	Port       string
	Database   DatabaseConfig
	JWT        JWTConfig
	Classifier ClassifierConfig
	OCR        OCRConfig
	Mail       MailConfig
	AMQP       AMQPConfig
	RateLimit  RateLimitConfig
	Cleanup    CleanupConfig
	Seed       SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql, postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // sqlite only
}

// JWTConfig holds access token configuration
type JWTConfig struct {
	Secret  string
	TTLDays int
}

// ClassifierConfig points at the external anomaly scoring service
type ClassifierConfig struct {
	BaseURL string
	Timeout time.Duration
}

// OCRConfig points at the external receipt text extraction service
type OCRConfig struct {
	URL         string
	Timeout     time.Duration
	MaxUploadMB int
}

// MailConfig holds outbound email credentials for password reset
type MailConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	ResetURL string
}

// AMQPConfig configures the optional anomaly event publisher
type AMQPConfig struct {
	URL      string
	Exchange string
}

// RateLimitConfig holds per-minute request caps; 0 disables a limiter
type RateLimitConfig struct {
	General int
	Auth    int
	Strict  int
}

// CleanupConfig holds the cron spec for expired reset-token cleanup
type CleanupConfig struct {
	Schedule string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:    appMode,
		Port:       getEnv("PORT", "5050"),
		Database:   database,
		JWT:        loadJWTConfig(appMode),
		Classifier: loadClassifierConfig(),
		OCR:        loadOCRConfig(),
		Mail:       loadMailConfig(),
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "expense.events"),
		},
		RateLimit: RateLimitConfig{
			General: getEnvInt("RATE_LIMIT_GENERAL", 100),
			Auth:    getEnvInt("RATE_LIMIT_AUTH", 5),
			Strict:  getEnvInt("RATE_LIMIT_STRICT", 3),
		},
		Cleanup: CleanupConfig{
			Schedule: getEnv("CLEANUP_SCHEDULE", "@hourly"),
		},
		Seed: SeedConfig{
			Email:    getEnv("SEED_USER_EMAIL", ""),
			Password: getEnv("SEED_USER_PASSWORD", ""),
		},
	}

	if config.JWT.Secret == "" {
		log.Println("⚠️ JWT_SECRET is not set: login and protected routes will fail until it is configured")
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getModeEnv(prefix, "DB_DRIVER", "mysql"))
	defaultPort := "3306"
	switch driver {
	case "mysql", "sqlite":
	case "postgres":
		defaultPort = "5432"
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql', 'postgres' or 'sqlite')", driver)
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getModeEnv(prefix, "DB_HOST", "localhost"),
		Port:     getModeEnv(prefix, "DB_PORT", defaultPort),
		User:     getModeEnv(prefix, "DB_USER", "root"),
		Password: getModeEnv(prefix, "DB_PASS", ""),
		DBName:   getModeEnv(prefix, "DB_NAME", "expense_tracker"),
		Path:     getModeEnv(prefix, "DB_PATH", "expenses.db"),
	}, nil
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	ttlDays := getEnvInt("TOKEN_TTL_DAYS", 7)
	if ttlDays < 1 {
		ttlDays = 7
	}

	return JWTConfig{
		Secret:  getModeEnv(modePrefix(mode), "JWT_SECRET", ""),
		TTLDays: ttlDays,
	}
}

func loadClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		BaseURL: strings.TrimRight(getEnv("CLASSIFIER_URL", ""), "/"),
		Timeout: time.Duration(getEnvInt("CLASSIFIER_TIMEOUT_SECONDS", 3)) * time.Second,
	}
}

func loadOCRConfig() OCRConfig {
	return OCRConfig{
		URL:         getEnv("OCR_URL", ""),
		Timeout:     time.Duration(getEnvInt("OCR_TIMEOUT_SECONDS", 20)) * time.Second,
		MaxUploadMB: getEnvInt("OCR_MAX_UPLOAD_MB", 5),
	}
}

func loadMailConfig() MailConfig {
	user := getEnv("EMAIL_USER", "")
	return MailConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnv("SMTP_PORT", "587"),
		User:     user,
		Password: getEnv("EMAIL_PASS", ""),
		From:     getEnv("EMAIL_FROM", user),
		ResetURL: getEnv("RESET_URL", "http://localhost:5173/reset-password"),
	}
}

// TokenTTL returns the access token lifetime
func (j JWTConfig) TokenTTL() time.Duration {
	return time.Duration(j.TTLDays) * 24 * time.Hour
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getModeEnv prefers the mode-prefixed key and falls back to the plain one
func getModeEnv(prefix, key, defaultValue string) string {
	if value := os.Getenv(prefix + key); value != "" {
		return value
	}
	return getEnv(key, defaultValue)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:5173"
	}
	return origins
}
