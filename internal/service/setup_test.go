package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"loteamento/config"
	"loteamento/internal/database"
	"loteamento/internal/models"
	"loteamento/internal/repository"
	"loteamento/internal/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	recorder *ActivityRecorder
	store    storage.Storage
	lots     *LotService
	slides   *CarouselService
	configs  *ConfigService
	backups  *BackupService
	auth     *AuthService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDB(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedDefaults(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	store, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "backups"))
	require.NoError(t, err)
	return newTestEnvWith(t, db, store, repository.NewActivityRepository(db))
}

func newTestEnvWith(t *testing.T, db *gorm.DB, store storage.Storage, w ActivityWriter) *testEnv {
	t.Helper()
	log := zap.NewNop()
	rec := NewActivityRecorder(w, log)
	cfg := config.Default()
	cfg.JWT.Secret = "test-secret"
	return &testEnv{
		db:       db,
		recorder: rec,
		store:    store,
		lots:     NewLotService(repository.NewLotRepository(db), rec),
		slides:   NewCarouselService(db, rec),
		configs:  NewConfigService(db, rec),
		backups:  NewBackupService(db, store, rec, 1000, log),
		auth:     NewAuthService(cfg, db, rec),
	}
}

var testActor = UserActor(1, "127.0.0.1", "go-test")

// storeState is every row an import or reset may touch.
type storeState struct {
	Lots       []models.Lot
	Slides     []models.CarouselSlide
	Configs    []models.ConfigEntry
	Activities int64
	Backups    int64
}

func dumpState(t *testing.T, db *gorm.DB) storeState {
	t.Helper()
	var s storeState
	require.NoError(t, db.Order("id").Find(&s.Lots).Error)
	require.NoError(t, db.Order("id").Find(&s.Slides).Error)
	require.NoError(t, db.Order("id").Find(&s.Configs).Error)
	require.NoError(t, db.Model(&models.ActivityRecord{}).Count(&s.Activities).Error)
	require.NoError(t, db.Model(&models.Backup{}).Count(&s.Backups).Error)
	return s
}

func countActions(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.ActivityRecord{}).Where("acao = ?", action).Count(&n).Error)
	return n
}

type failingWriter struct{ calls int }

func (f *failingWriter) Create(*models.ActivityRecord) error {
	f.calls++
	return errors.New("audit table unavailable")
}

// brokenStore fails every write.
type brokenStore struct{ *storage.LocalStorage }

func (brokenStore) Put(context.Context, string, []byte) error { return storage.ErrUploadFailed }
func (brokenStore) Open(context.Context, string) (io.ReadCloser, int64, error) {
	return nil, 0, storage.ErrObjectNotFound
}
