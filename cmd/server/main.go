package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loteamento/config"
	"loteamento/internal/cache"
	"loteamento/internal/database"
	"loteamento/internal/router"
	"loteamento/internal/service"
	"loteamento/internal/storage"
	"loteamento/pkg/cloudinary"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if err := database.SeedDefaults(db); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	if created, err := database.SeedAdmin(db, &cfg.Admin); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	} else if created {
		logger.Info("admin user created", zap.String("username", cfg.Admin.Username))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, &cfg.Backup)
	if err != nil {
		logger.Fatal("backup storage", zap.Error(err))
	}
	logger.Info("backup storage ready", zap.String("location", store.Location()))

	var siteCache cache.Cache = cache.NopCache{}
	if cfg.Redis.URL != "" {
		rc, err := cache.Connect(cfg.Redis.URL, "loteamento:")
		if err != nil {
			logger.Warn("redis unavailable, public data cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			siteCache = rc
		}
	}

	var cloud cloudinary.Client
	if c, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret); err == nil {
		cloud = c
	} else if !errors.Is(err, cloudinary.ErrNotConfigured) {
		logger.Fatal("cloudinary", zap.Error(err))
	} else {
		logger.Info("image uploads disabled: set CLOUDINARY_* to enable")
	}

	svcs := router.NewServices(cfg, db, store, siteCache, logger)
	engine := router.Setup(cfg, db, svcs, cloud, logger)

	scheduler := service.NewBackupScheduler(svcs.Backups, cfg.Backup.Interval, cfg.Backup.Keep, logger.Named("scheduler"))
	go scheduler.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		return zap.NewNop()
	}
	return logger
}

func openStorage(ctx context.Context, cfg *config.BackupConfig) (storage.Storage, error) {
	if cfg.Storage == "s3" {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
	}
	return storage.NewLocalStorage(cfg.Dir)
}
