package service

import (
	"strings"

	"loteamento/internal/domain"
	"loteamento/internal/models"
	"loteamento/internal/repository"

	"gorm.io/gorm"
)

type SlideFields struct {
	Image       *string `json:"imagem"`
	Title       *string `json:"titulo"`
	Description *string `json:"descricao"`
	Order       *int    `json:"ordem"`
	Active      *bool   `json:"ativo"`
}

type SlideOrder struct {
	ID    uint `json:"id" binding:"required"`
	Order int  `json:"ordem"`
}

type CarouselService struct {
	db       *gorm.DB
	repo     *repository.CarouselRepository
	recorder *ActivityRecorder
}

func NewCarouselService(db *gorm.DB, recorder *ActivityRecorder) *CarouselService {
	return &CarouselService{db: db, repo: repository.NewCarouselRepository(db), recorder: recorder}
}

func (s *CarouselService) List(active *bool) ([]models.CarouselSlide, error) {
	list, err := s.repo.List(active)
	return list, translate(err, ErrSlideNotFound)
}

func (s *CarouselService) Active() ([]models.CarouselSlide, error) {
	yes := true
	return s.List(&yes)
}

func (s *CarouselService) Get(id uint) (*models.CarouselSlide, error) {
	sl, err := s.repo.GetByID(id)
	return sl, translate(err, ErrSlideNotFound)
}

func (s *CarouselService) Create(actor Actor, f SlideFields) (*models.CarouselSlide, error) {
	sl := &models.CarouselSlide{Active: true}
	applySlideFields(sl, f)
	if sl.Image == "" || sl.Title == "" || sl.Description == "" {
		return nil, validationf("imagem, titulo and descricao are required")
	}
	if f.Order == nil {
		max, err := s.repo.MaxOrder()
		if err != nil {
			return nil, storageErr(err)
		}
		sl.Order = max + 1
	}
	if err := s.repo.Create(sl); err != nil {
		return nil, storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionCreate, Table: domain.TableSlides, RecordID: uintPtr(sl.ID), After: sl,
	})
	return sl, nil
}

func (s *CarouselService) Update(actor Actor, id uint, f SlideFields) (*models.CarouselSlide, error) {
	sl, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translate(err, ErrSlideNotFound)
	}
	before := *sl
	applySlideFields(sl, f)
	if sl.Image == "" || sl.Title == "" || sl.Description == "" {
		return nil, validationf("imagem, titulo and descricao cannot be empty")
	}
	if err := s.repo.Update(sl); err != nil {
		return nil, storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionUpdate, Table: domain.TableSlides, RecordID: uintPtr(id), Before: before, After: sl,
	})
	return sl, nil
}

func (s *CarouselService) Delete(actor Actor, id uint) error {
	sl, err := s.repo.GetByID(id)
	if err != nil {
		return translate(err, ErrSlideNotFound)
	}
	if err := s.repo.Delete(id); err != nil {
		return storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionDelete, Table: domain.TableSlides, RecordID: uintPtr(id), Before: sl,
	})
	return nil
}

// Toggle flips the active flag of a slide.
func (s *CarouselService) Toggle(actor Actor, id uint) (*models.CarouselSlide, error) {
	sl, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translate(err, ErrSlideNotFound)
	}
	previous := sl.Active
	sl.Active = !sl.Active
	if err := s.repo.Update(sl); err != nil {
		return nil, storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action:   domain.ActionToggleStatus,
		Table:    domain.TableSlides,
		RecordID: uintPtr(id),
		Before:   map[string]bool{"ativo": previous},
		After:    map[string]bool{"ativo": sl.Active},
	})
	return sl, nil
}

// Reorder applies every rank change or none of them.
func (s *CarouselService) Reorder(actor Actor, items []SlideOrder) error {
	if len(items) == 0 {
		return validationf("slides list is required")
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewCarouselRepository(tx)
		for _, it := range items {
			ok, err := repo.SetOrder(it.ID, it.Order)
			if err != nil {
				return storageErr(err)
			}
			if !ok {
				return ErrSlideNotFound
			}
		}
		return nil
	})
	if err != nil {
		return translate(err, ErrSlideNotFound)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionReorder, Table: domain.TableSlides, After: items,
	})
	return nil
}

func applySlideFields(sl *models.CarouselSlide, f SlideFields) {
	if f.Image != nil {
		sl.Image = strings.TrimSpace(*f.Image)
	}
	if f.Title != nil {
		sl.Title = strings.TrimSpace(*f.Title)
	}
	if f.Description != nil {
		sl.Description = *f.Description
	}
	if f.Order != nil {
		sl.Order = *f.Order
	}
	if f.Active != nil {
		sl.Active = *f.Active
	}
}
