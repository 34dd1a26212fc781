package repository

import (
	"loteamento/internal/models"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(a *models.ActivityRecord) error {
	return r.db.Create(a).Error
}

type ActivityFilter struct {
	Action string
	Table  string
	UserID *uint
}

// List returns one page of records newest first.
func (r *ActivityRepository) List(f ActivityFilter, page, limit int) ([]models.ActivityRecord, int64, error) {
	q := r.db.Model(&models.ActivityRecord{})
	if f.Action != "" {
		q = q.Where("acao = ?", f.Action)
	}
	if f.Table != "" {
		q = q.Where("tabela = ?", f.Table)
	}
	if f.UserID != nil {
		q = q.Where("usuario_id = ?", *f.UserID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.ActivityRecord
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&list).Error
	return list, total, err
}

// Recent returns up to limit records newest first.
func (r *ActivityRepository) Recent(limit int) ([]models.ActivityRecord, error) {
	var list []models.ActivityRecord
	err := r.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *ActivityRepository) DeleteAll() (int64, error) {
	res := unscoped(r.db).Delete(&models.ActivityRecord{})
	return res.RowsAffected, res.Error
}
