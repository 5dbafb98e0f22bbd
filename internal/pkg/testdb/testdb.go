// Package testdb opens throwaway migrated SQLite databases for tests.
package testdb

import (
	"path/filepath"
	"testing"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/config"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated database backed by a file in t.TempDir
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, nil)
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, models.AutoMigrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		_ = config.CloseDatabase(db)
	})
	return db
}

// CreateUser inserts an active user with a placeholder hash
func CreateUser(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		FullName: "Test User",
		Email:    email,
		Password: "$2a$12$placeholderplaceholderplaceholderplaceholderplacehold",
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
