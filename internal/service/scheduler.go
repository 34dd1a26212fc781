package service

import (
	"context"
	"errors"
	"time"

	"loteamento/internal/domain"

	"go.uber.org/zap"
)

// BackupScheduler exports a snapshot with history on a fixed interval and
// keeps only the newest scheduled backups.
type BackupScheduler struct {
	backups  *BackupService
	interval time.Duration
	keep     int
	log      *zap.Logger
}

func NewBackupScheduler(backups *BackupService, interval time.Duration, keep int, log *zap.Logger) *BackupScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupScheduler{backups: backups, interval: interval, keep: keep, log: log}
}

// Run blocks until ctx is cancelled. A non-positive interval returns at once.
func (s *BackupScheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	s.log.Info("backup scheduler started", zap.Duration("interval", s.interval), zap.Int("keep", s.keep))
	for {
		if err := sleep(ctx, s.interval); err != nil {
			s.log.Info("backup scheduler stopped")
			return
		}
		if err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("scheduled backup failed", zap.Error(err))
		}
	}
}

// RunOnce exports one scheduled backup and prunes old ones.
func (s *BackupScheduler) RunOnce(ctx context.Context) error {
	b, err := s.backups.Export(ctx, SystemActor, ExportOptions{
		Name:        "scheduled",
		IncludeLogs: true,
		Kind:        domain.BackupScheduled,
	})
	if err != nil {
		return err
	}
	removed, err := s.backups.Prune(ctx, domain.BackupScheduled, s.keep)
	if err != nil {
		return err
	}
	s.log.Info("scheduled backup created",
		zap.String("file", b.File), zap.Int64("size", b.Size), zap.Int("pruned", removed))
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
