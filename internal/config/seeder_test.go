package config

import (
	"path/filepath"
	"testing"
	"time"

	"expense-insight/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDatabase(DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "seed.db")}, nil)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = CloseDatabase(db) })
	return db
}

func TestSeeder_DemoData(t *testing.T) {
	db := openSeedDB(t)
	seeder := NewSeeder(db, SeedConfig{Email: "Demo@Example.com", Password: "demopassword"})
	seeder.now = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, seeder.Run())

	var user models.User
	require.NoError(t, db.Where("email = ?", "demo@example.com").First(&user).Error)
	assert.True(t, user.IsActive)

	var count int64
	require.NoError(t, db.Model(&models.Expense{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(9), count)

	var earliest models.Expense
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("date ASC").First(&earliest).Error)
	assert.Equal(t, "2024-01-01", earliest.Date.UTC().Format("2006-01-02"))

	// Second run is a no-op
	require.NoError(t, seeder.Run())
	require.NoError(t, db.Model(&models.Expense{}).Count(&count).Error)
	assert.Equal(t, int64(9), count)
}

func TestSeeder_Disabled(t *testing.T) {
	db := openSeedDB(t)

	require.NoError(t, NewSeeder(db, SeedConfig{}).Run())

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSeeder_RejectsShortPassword(t *testing.T) {
	db := openSeedDB(t)
	assert.Error(t, NewSeeder(db, SeedConfig{Email: "demo@example.com", Password: "short"}).Run())
}
