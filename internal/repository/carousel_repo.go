package repository

import (
	"loteamento/internal/models"

	"gorm.io/gorm"
)

type CarouselRepository struct {
	db *gorm.DB
}

func NewCarouselRepository(db *gorm.DB) *CarouselRepository {
	return &CarouselRepository{db: db}
}

func (r *CarouselRepository) Create(s *models.CarouselSlide) error {
	return r.db.Create(s).Error
}

func (r *CarouselRepository) CreateBatch(list []models.CarouselSlide) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.CreateInBatches(&list, 100).Error
}

func (r *CarouselRepository) GetByID(id uint) (*models.CarouselSlide, error) {
	var s models.CarouselSlide
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns slides in display order. Ties keep creation order.
func (r *CarouselRepository) List(active *bool) ([]models.CarouselSlide, error) {
	q := r.db.Model(&models.CarouselSlide{})
	if active != nil {
		q = q.Where("ativo = ?", *active)
	}
	var list []models.CarouselSlide
	err := q.Order("ordem ASC").Order("created_at ASC").Order("id ASC").Find(&list).Error
	return list, err
}

func (r *CarouselRepository) All() ([]models.CarouselSlide, error) {
	var list []models.CarouselSlide
	err := r.db.Order("id ASC").Find(&list).Error
	return list, err
}

func (r *CarouselRepository) MaxOrder() (int, error) {
	var max *int
	if err := r.db.Model(&models.CarouselSlide{}).Select("MAX(ordem)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *CarouselRepository) Update(s *models.CarouselSlide) error {
	return r.db.Save(s).Error
}

// SetOrder updates the rank of one slide and reports whether it exists.
func (r *CarouselRepository) SetOrder(id uint, order int) (bool, error) {
	res := r.db.Model(&models.CarouselSlide{}).Where("id = ?", id).Update("ordem", order)
	return res.RowsAffected > 0, res.Error
}

func (r *CarouselRepository) Delete(id uint) error {
	return r.db.Delete(&models.CarouselSlide{}, id).Error
}

func (r *CarouselRepository) DeleteAll() (int64, error) {
	res := unscoped(r.db).Delete(&models.CarouselSlide{})
	return res.RowsAffected, res.Error
}
