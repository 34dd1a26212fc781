package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"loteamento/internal/database"
	"loteamento/internal/domain"
	"loteamento/internal/metrics"
	"loteamento/internal/models"
	"loteamento/internal/repository"
	"loteamento/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type ExportOptions struct {
	Name        string
	IncludeLogs bool
	Kind        string // manual when empty
}

type ImportSummary struct {
	Lots      int  `json:"lotes_importados"`
	Slides    int  `json:"slides_importados"`
	Configs   int  `json:"configuracoes_importadas"`
	Overwrite bool `json:"sobrescrever"`
}

type ResetSummary struct {
	Lots    int `json:"lotes_removidos"`
	Slides  int `json:"slides_removidos"`
	Configs int `json:"configuracoes_removidas"`
}

type BackupStats struct {
	Count     int64      `json:"total_backups"`
	TotalSize int64      `json:"tamanho_total"`
	Latest    *time.Time `json:"ultimo_backup"`
	UsedSpace int64      `json:"espaco_usado"`
	Location  string     `json:"diretorio_backup"`
}

// BackupService exports, imports and resets the site content.
type BackupService struct {
	db            *gorm.DB
	store         storage.Storage
	recorder      *ActivityRecorder
	maxActivities int
	log           *zap.Logger
	now           func() time.Time
}

func NewBackupService(db *gorm.DB, store storage.Storage, recorder *ActivityRecorder, maxActivities int, log *zap.Logger) *BackupService {
	if maxActivities <= 0 {
		maxActivities = 1000
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupService{
		db:            db,
		store:         store,
		recorder:      recorder,
		maxActivities: maxActivities,
		log:           log,
		now:           time.Now,
	}
}

func (s *BackupService) List() ([]models.Backup, error) {
	list, err := repository.NewBackupRepository(s.db).List("")
	return list, translate(err, ErrBackupNotFound)
}

func (s *BackupService) Get(id uint) (*models.Backup, error) {
	b, err := repository.NewBackupRepository(s.db).GetByID(id)
	return b, translate(err, ErrBackupNotFound)
}

// Capture reads the current content into a snapshot document.
func (s *BackupService) Capture(ctx context.Context, actor Actor, includeLogs bool) (*Snapshot, error) {
	var data SnapshotData
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		data, err = s.capture(tx, includeLogs)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	var createdBy any = "system"
	if actor.UserID != nil {
		createdBy = *actor.UserID
	}
	return &Snapshot{
		Metadata: SnapshotMetadata{
			Version:     domain.SnapshotVersion,
			CreatedAt:   s.now().UTC(),
			CreatedBy:   createdBy,
			IncludeLogs: includeLogs,
			Lots:        len(data.Lots),
			Slides:      len(data.Slides),
			Configs:     len(data.Configs),
			Activities:  len(data.Activities),
		},
		Data: data,
	}, nil
}

func (s *BackupService) capture(tx *gorm.DB, includeLogs bool) (SnapshotData, error) {
	var (
		d   SnapshotData
		err error
	)
	if d.Lots, err = repository.NewLotRepository(tx).All(); err != nil {
		return d, err
	}
	if d.Slides, err = repository.NewCarouselRepository(tx).All(); err != nil {
		return d, err
	}
	if d.Configs, err = repository.NewConfigRepository(tx).All(); err != nil {
		return d, err
	}
	if includeLogs {
		if d.Activities, err = repository.NewActivityRepository(tx).Recent(s.maxActivities); err != nil {
			return d, err
		}
	}
	if d.Activities == nil {
		d.Activities = []models.ActivityRecord{}
	}
	return d, nil
}

// Export writes a snapshot file and then its metadata row. A failed file
// write leaves no row behind.
func (s *BackupService) Export(ctx context.Context, actor Actor, opts ExportOptions) (b *models.Backup, err error) {
	defer func() { metrics.BackupOperations.WithLabelValues("export", metrics.Result(err)).Inc() }()

	snap, err := s.Capture(ctx, actor, opts.IncludeLogs)
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}

	ts := snap.Metadata.CreatedAt
	file := BackupFileName(opts.Name, ts)
	if err := s.store.Put(ctx, file, payload); err != nil {
		return nil, storageErr(err)
	}
	metrics.BackupBytes.Add(float64(len(payload)))

	kind := opts.Kind
	if kind == "" {
		kind = domain.BackupManual
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "Backup " + fileTimestamp(ts)
	}
	b = &models.Backup{Name: name, File: file, Size: int64(len(payload)), Kind: kind}
	if err := repository.NewBackupRepository(s.db).Create(b); err != nil {
		if derr := s.store.Delete(ctx, file); derr != nil {
			s.log.Warn("orphan backup file", zap.String("file", file), zap.Error(derr))
		}
		return nil, storageErr(err)
	}

	s.recorder.Record(actor, Activity{
		Action:   domain.ActionBackupCreate,
		Table:    domain.TableBackups,
		RecordID: uintPtr(b.ID),
		After:    map[string]any{"nome": file, "tamanho": b.Size, "tipo": kind},
	})
	return b, nil
}

// Open returns the snapshot file of a backup for download.
func (s *BackupService) Open(ctx context.Context, actor Actor, id uint) (io.ReadCloser, int64, *models.Backup, error) {
	b, err := s.Get(id)
	if err != nil {
		return nil, 0, nil, err
	}
	rc, size, err := s.store.Open(ctx, b.File)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, 0, nil, fmt.Errorf("%w: file %s is missing", ErrBackupNotFound, b.File)
		}
		return nil, 0, nil, storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action:   domain.ActionBackupDownload,
		Table:    domain.TableBackups,
		RecordID: uintPtr(b.ID),
		After:    map[string]string{"arquivo": b.File},
	})
	return rc, size, b, nil
}

// Delete removes the file, then the row.
func (s *BackupService) Delete(ctx context.Context, actor Actor, id uint) error {
	b, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, b.File); err != nil {
		s.log.Warn("backup file delete failed", zap.String("file", b.File), zap.Error(err))
	}
	if err := repository.NewBackupRepository(s.db).Delete(id); err != nil {
		return storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionBackupDelete, Table: domain.TableBackups, RecordID: uintPtr(id), Before: b,
	})
	return nil
}

// Import loads a snapshot document. With overwrite the content tables are
// replaced; otherwise only lots and config entries with unknown natural
// keys are added, and every slide is appended. The whole call is one
// transaction.
func (s *BackupService) Import(ctx context.Context, actor Actor, raw []byte, overwrite bool) (sum *ImportSummary, err error) {
	defer func() { metrics.BackupOperations.WithLabelValues("import", metrics.Result(err)).Inc() }()

	lots, slides, configs, err := ParseSnapshot(raw)
	if err != nil {
		return nil, err
	}

	sum = &ImportSummary{Overwrite: overwrite}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lotRepo := repository.NewLotRepository(tx)
		slideRepo := repository.NewCarouselRepository(tx)
		cfgRepo := repository.NewConfigRepository(tx)

		if overwrite {
			if _, err := lotRepo.DeleteAll(); err != nil {
				return err
			}
			if _, err := slideRepo.DeleteAll(); err != nil {
				return err
			}
			if _, err := cfgRepo.DeleteAll(); err != nil {
				return err
			}
		} else {
			var err error
			if lots, err = newLots(lotRepo, lots); err != nil {
				return err
			}
			if configs, err = newConfigs(cfgRepo, configs); err != nil {
				return err
			}
		}

		if err := lotRepo.CreateBatch(lots); err != nil {
			return err
		}
		if err := slideRepo.CreateBatch(slides); err != nil {
			return err
		}
		if err := cfgRepo.CreateBatch(configs); err != nil {
			return err
		}
		sum.Lots, sum.Slides, sum.Configs = len(lots), len(slides), len(configs)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Join(ErrConflict, err)
		}
		return nil, storageErr(err)
	}

	s.recorder.Record(actor, Activity{
		Action: domain.ActionBackupImport, Table: domain.TableBackups, After: sum,
	})
	return sum, nil
}

func newLots(repo *repository.LotRepository, lots []models.Lot) ([]models.Lot, error) {
	codes := make([]string, len(lots))
	for i, l := range lots {
		codes[i] = l.Code
	}
	existing, err := repo.ExistingCodes(codes)
	if err != nil {
		return nil, err
	}
	out := lots[:0:0]
	for _, l := range lots {
		if _, ok := existing[l.Code]; !ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func newConfigs(repo *repository.ConfigRepository, configs []models.ConfigEntry) ([]models.ConfigEntry, error) {
	keys := make([]string, len(configs))
	for i, c := range configs {
		keys[i] = c.Key
	}
	existing, err := repo.ExistingKeys(keys)
	if err != nil {
		return nil, err
	}
	out := configs[:0:0]
	for _, c := range configs {
		if _, ok := existing[c.Key]; !ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Reset wipes activities, backups rows and content, then reseeds the
// default content, all in one transaction. Users are kept; backup files
// stay in storage.
func (s *BackupService) Reset(ctx context.Context, actor Actor, confirmation string) (sum *ResetSummary, err error) {
	if confirmation != domain.ResetConfirmation {
		return nil, ErrInvalidConfirmation
	}
	defer func() { metrics.BackupOperations.WithLabelValues("reset", metrics.Result(err)).Inc() }()

	var before SnapshotData
	sum = &ResetSummary{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if before, err = s.capture(tx, false); err != nil {
			return err
		}
		if _, err := repository.NewActivityRepository(tx).DeleteAll(); err != nil {
			return err
		}
		n, err := repository.NewLotRepository(tx).DeleteAll()
		if err != nil {
			return err
		}
		sum.Lots = int(n)
		if n, err = repository.NewCarouselRepository(tx).DeleteAll(); err != nil {
			return err
		}
		sum.Slides = int(n)
		if n, err = repository.NewConfigRepository(tx).DeleteAll(); err != nil {
			return err
		}
		sum.Configs = int(n)
		if _, err := repository.NewBackupRepository(tx).DeleteAll(); err != nil {
			return err
		}
		return database.SeedDefaults(tx)
	})
	if err != nil {
		return nil, storageErr(err)
	}

	s.recorder.Record(actor, Activity{
		Action: domain.ActionSystemReset,
		Table:  domain.TableSystem,
		Before: map[string]any{
			"lotes":         before.Lots,
			"slides":        before.Slides,
			"configuracoes": before.Configs,
		},
		After: map[string]bool{"reset_completo": true},
	})
	return sum, nil
}

func (s *BackupService) Stats(ctx context.Context) (*BackupStats, error) {
	t, err := repository.NewBackupRepository(s.db).Totals()
	if err != nil {
		return nil, storageErr(err)
	}
	st := &BackupStats{
		Count:     t.Count,
		TotalSize: t.TotalSize,
		Latest:    t.Latest,
		Location:  s.store.Location(),
	}
	used, err := s.store.Usage(ctx)
	if err != nil {
		s.log.Warn("backup storage usage failed", zap.Error(err))
	} else {
		st.UsedSpace = used
	}
	return st, nil
}

// Prune deletes the oldest backups of kind beyond the newest keep.
func (s *BackupService) Prune(ctx context.Context, kind string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	list, err := repository.NewBackupRepository(s.db).List(kind)
	if err != nil {
		return 0, storageErr(err)
	}
	removed := 0
	for _, b := range list[min(keep, len(list)):] {
		if err := s.Delete(ctx, SystemActor, b.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// BackupFileName builds a storage name from a user supplied label. Only
// [a-zA-Z0-9_-] survive; a random suffix keeps names unique.
func BackupFileName(name string, ts time.Time) string {
	base := unsafeNameChars.ReplaceAllString(name, "")
	if base == "" {
		base = "backup"
	}
	if len(base) > 64 {
		base = base[:64]
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return base + "_" + fileTimestamp(ts) + "_" + suffix + ".json"
}

func fileTimestamp(ts time.Time) string {
	return strings.Replace(ts.UTC().Format("2006-01-02T15-04-05.000Z"), ".", "-", 1)
}
