package repository

import (
	"time"

	"loteamento/internal/models"

	"gorm.io/gorm"
)

type BackupRepository struct {
	db *gorm.DB
}

func NewBackupRepository(db *gorm.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

func (r *BackupRepository) Create(b *models.Backup) error {
	return r.db.Create(b).Error
}

func (r *BackupRepository) GetByID(id uint) (*models.Backup, error) {
	var b models.Backup
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns backups newest first, optionally only of one kind.
func (r *BackupRepository) List(kind string) ([]models.Backup, error) {
	q := r.db.Model(&models.Backup{})
	if kind != "" {
		q = q.Where("tipo = ?", kind)
	}
	var list []models.Backup
	err := q.Order("created_at DESC").Order("id DESC").Find(&list).Error
	return list, err
}

func (r *BackupRepository) Delete(id uint) error {
	return r.db.Delete(&models.Backup{}, id).Error
}

func (r *BackupRepository) DeleteAll() (int64, error) {
	res := unscoped(r.db).Delete(&models.Backup{})
	return res.RowsAffected, res.Error
}

type BackupTotals struct {
	Count     int64
	TotalSize int64
	Latest    *time.Time
}

func (r *BackupRepository) Totals() (*BackupTotals, error) {
	var t BackupTotals
	if err := r.db.Model(&models.Backup{}).Count(&t.Count).Error; err != nil {
		return nil, err
	}
	if t.Count == 0 {
		return &t, nil
	}
	if err := r.db.Model(&models.Backup{}).Select("COALESCE(SUM(tamanho), 0)").Scan(&t.TotalSize).Error; err != nil {
		return nil, err
	}
	var latest models.Backup
	if err := r.db.Order("created_at DESC").Order("id DESC").First(&latest).Error; err != nil {
		return nil, err
	}
	t.Latest = &latest.CreatedAt
	return &t, nil
}
