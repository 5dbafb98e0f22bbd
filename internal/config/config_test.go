package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_MODE", "PORT", "DB_DRIVER", "DEV_DB_DRIVER", "PROD_DB_DRIVER", "DB_PORT", "DB_PATH",
		"JWT_SECRET", "DEV_JWT_SECRET", "PROD_JWT_SECRET", "TOKEN_TTL_DAYS",
		"CLASSIFIER_URL", "CLASSIFIER_TIMEOUT_SECONDS", "OCR_MAX_UPLOAD_MB",
		"EMAIL_USER", "EMAIL_FROM", "RATE_LIMIT_AUTH", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppMode)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "5050", cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TokenTTL())
	assert.Empty(t, cfg.JWT.Secret)
	assert.Equal(t, 3*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, 5, cfg.OCR.MaxUploadMB)
	assert.Equal(t, "expense.events", cfg.AMQP.Exchange)
	assert.Equal(t, "@hourly", cfg.Cleanup.Schedule)
	assert.Equal(t, 5, cfg.RateLimit.Auth)
}

func TestLoad_ModePrefixedValuesWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_MODE", "prod")
	t.Setenv("JWT_SECRET", "plain")
	t.Setenv("PROD_JWT_SECRET", "prefixed")
	t.Setenv("PROD_DB_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "prefixed", cfg.JWT.Secret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLASSIFIER_URL", "http://classifier:8000/")
	t.Setenv("CLASSIFIER_TIMEOUT_SECONDS", "1")
	t.Setenv("TOKEN_TTL_DAYS", "0")
	t.Setenv("RATE_LIMIT_AUTH", "0")
	t.Setenv("EMAIL_USER", "bot@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://classifier:8000", cfg.Classifier.BaseURL)
	assert.Equal(t, time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, 7, cfg.JWT.TTLDays, "non-positive TTL falls back to the default")
	assert.Zero(t, cfg.RateLimit.Auth)
	assert.Equal(t, "bot@example.com", cfg.Mail.From)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"app mode", "APP_MODE", "staging"},
		{"db driver", "DB_DRIVER", "oracle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetAllowedOrigins(t *testing.T) {
	clearEnv(t)

	assert.Equal(t, "*", (&Config{AppMode: "dev"}).GetAllowedOrigins())
	assert.Equal(t, "http://localhost:5173", (&Config{AppMode: "prod"}).GetAllowedOrigins())

	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")
	assert.Equal(t, "https://app.example.com", (&Config{AppMode: "prod"}).GetAllowedOrigins())
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "3306", DBName: "d"})
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true", dsn)
}

func TestOpenDatabase_SQLite(t *testing.T) {
	db, err := OpenDatabase(DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "health.db"),
	}, nil)
	require.NoError(t, err)

	assert.NoError(t, HealthCheck(db))
	require.NoError(t, CloseDatabase(db))
	assert.Error(t, HealthCheck(db))
}

func TestHealthCheck_NilDatabase(t *testing.T) {
	assert.Error(t, HealthCheck(nil))
	assert.NoError(t, CloseDatabase(nil))
}
