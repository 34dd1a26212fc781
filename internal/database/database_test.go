package database

import (
	"path/filepath"
	"testing"

	"loteamento/config"
	"loteamento/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestNewDB_UnknownDriver(t *testing.T) {
	_, err := NewDB(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSeedDefaults_OnlyFillsEmptyTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Lot{Title: "x", Code: "X-1", Price: "1", Size: "1", Images: []string{}}).Error)

	require.NoError(t, SeedDefaults(db))
	require.NoError(t, SeedDefaults(db))

	var lots, slides, configs int64
	db.Model(&models.Lot{}).Count(&lots)
	db.Model(&models.CarouselSlide{}).Count(&slides)
	db.Model(&models.ConfigEntry{}).Count(&configs)
	assert.Equal(t, int64(1), lots)
	assert.Equal(t, int64(len(DefaultSlides())), slides)
	assert.Equal(t, int64(len(DefaultConfigs())), configs)

	var first models.CarouselSlide
	require.NoError(t, db.Order("ordem ASC").First(&first).Error)
	assert.True(t, first.Active)
	assert.Equal(t, 1, first.Order)
}

func TestSeedAdmin(t *testing.T) {
	db := openTestDB(t)

	created, err := SeedAdmin(db, &config.AdminConfig{})
	require.NoError(t, err)
	assert.False(t, created)

	cfg := &config.AdminConfig{Username: "admin", Password: "secret123"}
	created, err = SeedAdmin(db, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedAdmin(db, cfg)
	require.NoError(t, err)
	assert.False(t, created)
}
