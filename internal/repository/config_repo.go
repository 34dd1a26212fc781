package repository

import (
	"loteamento/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Get(key string) (*models.ConfigEntry, error) {
	var e models.ConfigEntry
	if err := r.db.Where("chave = ?", key).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ConfigRepository) GetAll() ([]models.ConfigEntry, error) {
	var list []models.ConfigEntry
	err := r.db.Order("chave ASC").Find(&list).Error
	return list, err
}

// All returns the entries in insertion order.
func (r *ConfigRepository) All() ([]models.ConfigEntry, error) {
	var list []models.ConfigEntry
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

func (r *ConfigRepository) GetByKeys(keys []string) ([]models.ConfigEntry, error) {
	var list []models.ConfigEntry
	err := r.db.Where("chave IN ?", keys).Order("chave ASC").Find(&list).Error
	return list, err
}

func (r *ConfigRepository) ExistingKeys(keys []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if len(keys) == 0 {
		return out, nil
	}
	var found []string
	if err := r.db.Model(&models.ConfigEntry{}).Where("chave IN ?", keys).Pluck("chave", &found).Error; err != nil {
		return nil, err
	}
	for _, k := range found {
		out[k] = struct{}{}
	}
	return out, nil
}

func (r *ConfigRepository) Create(e *models.ConfigEntry) error {
	return r.db.Create(e).Error
}

func (r *ConfigRepository) CreateBatch(list []models.ConfigEntry) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&list, 100).Error
}

func (r *ConfigRepository) Update(e *models.ConfigEntry) error {
	return r.db.Save(e).Error
}

// Set inserts the entry or replaces value, type and description of the
// existing row with the same key.
func (r *ConfigRepository) Set(e *models.ConfigEntry) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chave"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "tipo", "descricao", "updated_at"}),
	}).Create(e).Error
}

// Delete removes the entry and reports whether it existed.
func (r *ConfigRepository) Delete(key string) (bool, error) {
	res := r.db.Where("chave = ?", key).Delete(&models.ConfigEntry{})
	return res.RowsAffected > 0, res.Error
}

func (r *ConfigRepository) DeleteAll() (int64, error) {
	res := unscoped(r.db).Delete(&models.ConfigEntry{})
	return res.RowsAffected, res.Error
}
