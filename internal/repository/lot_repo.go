package repository

import (
	"loteamento/internal/models"

	"gorm.io/gorm"
)

type LotRepository struct {
	db *gorm.DB
}

func NewLotRepository(db *gorm.DB) *LotRepository {
	return &LotRepository{db: db}
}

func (r *LotRepository) Create(l *models.Lot) error {
	return r.db.Create(l).Error
}

// CreateBatch inserts the lots in one statement per batch.
func (r *LotRepository) CreateBatch(list []models.Lot) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&list, 100).Error
}

func (r *LotRepository) GetByID(id uint) (*models.Lot, error) {
	var l models.Lot
	if err := r.db.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LotRepository) GetByCode(code string) (*models.Lot, error) {
	var l models.Lot
	if err := r.db.Where("codigo = ?", code).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// CodeTaken reports whether another lot than excludeID already uses code.
func (r *LotRepository) CodeTaken(code string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&models.Lot{}).Where("codigo = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ExistingCodes returns the subset of codes already present.
func (r *LotRepository) ExistingCodes(codes []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if len(codes) == 0 {
		return out, nil
	}
	var found []string
	if err := r.db.Model(&models.Lot{}).Where("codigo IN ?", codes).Pluck("codigo", &found).Error; err != nil {
		return nil, err
	}
	for _, c := range found {
		out[c] = struct{}{}
	}
	return out, nil
}

// List returns lots newest first, optionally filtered by status. A limit of
// zero returns every match.
func (r *LotRepository) List(status string, limit, offset int) ([]models.Lot, int64, error) {
	q := r.db.Model(&models.Lot{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	var list []models.Lot
	err := q.Find(&list).Error
	return list, total, err
}

// All returns every lot in id order.
func (r *LotRepository) All() ([]models.Lot, error) {
	var list []models.Lot
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

func (r *LotRepository) Update(l *models.Lot) error {
	return r.db.Save(l).Error
}

func (r *LotRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Lot{}).Where("id = ?", id).Update("status", status).Error
}

func (r *LotRepository) Delete(id uint) error {
	return r.db.Delete(&models.Lot{}, id).Error
}

func (r *LotRepository) DeleteAll() (int64, error) {
	res := unscoped(r.db).Delete(&models.Lot{})
	return res.RowsAffected, res.Error
}

type StatusCount struct {
	Status string
	Count  int64
}

func (r *LotRepository) CountByStatus() ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.Model(&models.Lot{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

// PricesByStatus returns the display prices of every lot with the given status.
func (r *LotRepository) PricesByStatus(status string) ([]string, error) {
	var prices []string
	err := r.db.Model(&models.Lot{}).Where("status = ?", status).Pluck("valor", &prices).Error
	return prices, err
}
