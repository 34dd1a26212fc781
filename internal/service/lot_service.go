package service

import (
	"errors"
	"strconv"
	"strings"

	"loteamento/internal/domain"
	"loteamento/internal/models"
	"loteamento/internal/repository"

	"gorm.io/gorm"
)

// LotFields carries lot attributes from a request. Nil fields are left
// untouched on update.
type LotFields struct {
	Title       *string   `json:"titulo"`
	Code        *string   `json:"codigo"`
	Price       *string   `json:"valor"`
	Size        *string   `json:"tamanho"`
	Images      *[]string `json:"imagens"`
	Description *string   `json:"descricao"`
	Phone       *string   `json:"telefone"`
	Status      *string   `json:"status"`
}

type LotStats struct {
	Total          int64   `json:"total"`
	Available      int64   `json:"disponiveis"`
	Sold           int64   `json:"vendidos"`
	Reserved       int64   `json:"reservados"`
	AvailableValue float64 `json:"valor_total_disponivel"`
}

type LotService struct {
	repo     *repository.LotRepository
	recorder *ActivityRecorder
}

func NewLotService(repo *repository.LotRepository, recorder *ActivityRecorder) *LotService {
	return &LotService{repo: repo, recorder: recorder}
}

func (s *LotService) List(status string, limit, offset int) ([]models.Lot, int64, error) {
	if status != "" && !domain.ValidLotStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	list, total, err := s.repo.List(status, limit, offset)
	return list, total, translate(err, ErrLotNotFound)
}

// Available returns the lots shown on the public site.
func (s *LotService) Available() ([]models.Lot, error) {
	list, _, err := s.repo.List(domain.LotAvailable, 0, 0)
	return list, translate(err, ErrLotNotFound)
}

func (s *LotService) Get(id uint) (*models.Lot, error) {
	l, err := s.repo.GetByID(id)
	return l, translate(err, ErrLotNotFound)
}

func (s *LotService) Create(actor Actor, f LotFields) (*models.Lot, error) {
	l := &models.Lot{Status: domain.LotAvailable, Images: []string{}}
	applyLotFields(l, f)
	if l.Title == "" || l.Code == "" || l.Price == "" || l.Size == "" {
		return nil, validationf("titulo, codigo, valor and tamanho are required")
	}
	if !domain.ValidLotStatus(l.Status) {
		return nil, ErrInvalidStatus
	}
	taken, err := s.repo.CodeTaken(l.Code, 0)
	if err != nil {
		return nil, storageErr(err)
	}
	if taken {
		return nil, ErrLotCodeExists
	}
	if err := s.repo.Create(l); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLotCodeExists
		}
		return nil, storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionCreate, Table: domain.TableLots, RecordID: uintPtr(l.ID), After: l,
	})
	return l, nil
}

func (s *LotService) Update(actor Actor, id uint, f LotFields) (*models.Lot, error) {
	l, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translate(err, ErrLotNotFound)
	}
	before := *l
	applyLotFields(l, f)
	if l.Title == "" || l.Code == "" || l.Price == "" || l.Size == "" {
		return nil, validationf("titulo, codigo, valor and tamanho cannot be empty")
	}
	if !domain.ValidLotStatus(l.Status) {
		return nil, ErrInvalidStatus
	}
	if l.Code != before.Code {
		taken, err := s.repo.CodeTaken(l.Code, id)
		if err != nil {
			return nil, storageErr(err)
		}
		if taken {
			return nil, ErrLotCodeExists
		}
	}
	if err := s.repo.Update(l); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLotCodeExists
		}
		return nil, storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionUpdate, Table: domain.TableLots, RecordID: uintPtr(id), Before: before, After: l,
	})
	return l, nil
}

func (s *LotService) SetStatus(actor Actor, id uint, status string) (*models.Lot, error) {
	if !domain.ValidLotStatus(status) {
		return nil, ErrInvalidStatus
	}
	l, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translate(err, ErrLotNotFound)
	}
	previous := l.Status
	if err := s.repo.UpdateStatus(id, status); err != nil {
		return nil, storageErr(err)
	}
	l.Status = status
	s.recorder.Record(actor, Activity{
		Action:   domain.ActionStatusChange,
		Table:    domain.TableLots,
		RecordID: uintPtr(id),
		Before:   map[string]string{"status": previous},
		After:    map[string]string{"status": status},
	})
	return l, nil
}

func (s *LotService) Delete(actor Actor, id uint) error {
	l, err := s.repo.GetByID(id)
	if err != nil {
		return translate(err, ErrLotNotFound)
	}
	if err := s.repo.Delete(id); err != nil {
		return storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionDelete, Table: domain.TableLots, RecordID: uintPtr(id), Before: l,
	})
	return nil
}

func (s *LotService) Stats() (*LotStats, error) {
	counts, err := s.repo.CountByStatus()
	if err != nil {
		return nil, storageErr(err)
	}
	var st LotStats
	for _, c := range counts {
		st.Total += c.Count
		switch c.Status {
		case domain.LotAvailable:
			st.Available = c.Count
		case domain.LotSold:
			st.Sold = c.Count
		case domain.LotReserved:
			st.Reserved = c.Count
		}
	}
	prices, err := s.repo.PricesByStatus(domain.LotAvailable)
	if err != nil {
		return nil, storageErr(err)
	}
	for _, p := range prices {
		st.AvailableValue += ParsePrice(p)
	}
	return &st, nil
}

func applyLotFields(l *models.Lot, f LotFields) {
	if f.Title != nil {
		l.Title = strings.TrimSpace(*f.Title)
	}
	if f.Code != nil {
		l.Code = strings.TrimSpace(*f.Code)
	}
	if f.Price != nil {
		l.Price = strings.TrimSpace(*f.Price)
	}
	if f.Size != nil {
		l.Size = strings.TrimSpace(*f.Size)
	}
	if f.Images != nil {
		l.Images = append([]string{}, (*f.Images)...)
	}
	if f.Description != nil {
		l.Description = *f.Description
	}
	if f.Phone != nil {
		l.Phone = strings.TrimSpace(*f.Phone)
	}
	if f.Status != nil && *f.Status != "" {
		l.Status = *f.Status
	}
}

// ParsePrice reads a Brazilian display price such as "R$ 130.000,00".
// Unparseable values count as zero.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
