package service

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"loteamento/internal/domain"
	"loteamento/internal/models"
	"loteamento/internal/repository"

	"gorm.io/gorm"
)

// ConfigInput creates an entry. Value may be any JSON value; it is stored
// in its string encoding according to Type.
type ConfigInput struct {
	Key         string `json:"chave"`
	Value       any    `json:"valor"`
	Type        string `json:"tipo"`
	Description string `json:"descricao"`
}

type ConfigUpdate struct {
	Value       any     `json:"valor"`
	Type        *string `json:"tipo"`
	Description *string `json:"descricao"`
}

// ConfigView is an entry with its decoded value.
type ConfigView struct {
	models.ConfigEntry
	Decoded any `json:"valor_decodificado"`
}

type BulkResult struct {
	Updated int `json:"atualizadas"`
	Created int `json:"criadas"`
}

type ConfigService struct {
	db       *gorm.DB
	repo     *repository.ConfigRepository
	recorder *ActivityRecorder
}

func NewConfigService(db *gorm.DB, recorder *ActivityRecorder) *ConfigService {
	return &ConfigService{db: db, repo: repository.NewConfigRepository(db), recorder: recorder}
}

// All returns the decoded key/value map plus the raw rows.
func (s *ConfigService) All() (map[string]any, []models.ConfigEntry, error) {
	list, err := s.repo.GetAll()
	if err != nil {
		return nil, nil, storageErr(err)
	}
	return DecodeAll(list), list, nil
}

// Public returns the decoded values of the keys shown on the public site.
func (s *ConfigService) Public() (map[string]any, error) {
	list, err := s.repo.GetByKeys(domain.PublicConfigKeys)
	if err != nil {
		return nil, storageErr(err)
	}
	return DecodeAll(list), nil
}

func (s *ConfigService) Get(key string) (*ConfigView, error) {
	e, err := s.repo.Get(key)
	if err != nil {
		return nil, translate(err, ErrConfigNotFound)
	}
	return &ConfigView{ConfigEntry: *e, Decoded: DecodeValue(e.Value, e.Type)}, nil
}

func (s *ConfigService) Create(actor Actor, in ConfigInput) (*models.ConfigEntry, error) {
	in.Key = strings.TrimSpace(in.Key)
	if in.Key == "" || in.Value == nil {
		return nil, validationf("chave and valor are required")
	}
	if in.Type == "" {
		in.Type = domain.ConfigString
	}
	if !domain.ValidConfigType(in.Type) {
		return nil, ErrInvalidConfigType
	}
	e := &models.ConfigEntry{
		Key:         in.Key,
		Value:       EncodeValue(in.Value, in.Type),
		Type:        in.Type,
		Description: in.Description,
	}
	if err := s.repo.Create(e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConfigKeyExists
		}
		return nil, storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionCreate, Table: domain.TableConfigs, RecordID: uintPtr(e.ID), After: e,
	})
	return e, nil
}

func (s *ConfigService) Update(actor Actor, key string, in ConfigUpdate) (*models.ConfigEntry, error) {
	e, err := s.repo.Get(key)
	if err != nil {
		return nil, translate(err, ErrConfigNotFound)
	}
	before := *e
	if in.Type != nil {
		if !domain.ValidConfigType(*in.Type) {
			return nil, ErrInvalidConfigType
		}
		e.Type = *in.Type
	}
	if in.Value != nil {
		e.Value = EncodeValue(in.Value, e.Type)
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if err := s.repo.Update(e); err != nil {
		return nil, storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionUpdate, Table: domain.TableConfigs, RecordID: uintPtr(e.ID), Before: before, After: e,
	})
	return e, nil
}

func (s *ConfigService) Delete(actor Actor, key string) error {
	e, err := s.repo.Get(key)
	if err != nil {
		return translate(err, ErrConfigNotFound)
	}
	if _, err := s.repo.Delete(key); err != nil {
		return storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionDelete, Table: domain.TableConfigs, RecordID: uintPtr(e.ID), Before: e,
	})
	return nil
}

// Bulk updates existing keys keeping their type and creates unknown keys
// with a type inferred from the value, all in one transaction.
func (s *ConfigService) Bulk(actor Actor, values map[string]any) (*BulkResult, error) {
	if len(values) == 0 {
		return nil, validationf("at least one key is required")
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			return nil, validationf("empty chave")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var res BulkResult
	before := make(map[string]string)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewConfigRepository(tx)
		for _, k := range keys {
			e, err := repo.Get(k)
			switch {
			case err == nil:
				before[k] = e.Value
				e.Value = EncodeValue(values[k], e.Type)
				if err := repo.Update(e); err != nil {
					return err
				}
				res.Updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				typ := InferType(values[k])
				if err := repo.Set(&models.ConfigEntry{
					Key: k, Value: EncodeValue(values[k], typ), Type: typ,
				}); err != nil {
					return err
				}
				res.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, ErrConfigNotFound)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionBulkUpdate, Table: domain.TableConfigs, Before: before, After: values,
	})
	return &res, nil
}

func DecodeAll(list []models.ConfigEntry) map[string]any {
	out := make(map[string]any, len(list))
	for _, e := range list {
		out[e.Key] = DecodeValue(e.Value, e.Type)
	}
	return out
}

// DecodeValue turns a stored value into its typed form. Malformed number
// and json values fall back to the raw string.
func DecodeValue(raw, typ string) any {
	switch typ {
	case domain.ConfigNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return raw
		}
		return f
	case domain.ConfigBoolean:
		return raw == "true" || raw == "1"
	case domain.ConfigJSON:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return raw
		}
		return v
	default:
		return raw
	}
}

// EncodeValue renders v as the stored string for type typ.
func EncodeValue(v any, typ string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if typ == domain.ConfigBoolean {
			return strconv.FormatBool(x == "true" || x == "1")
		}
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case json.Number:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func InferType(v any) string {
	switch v.(type) {
	case bool:
		return domain.ConfigBoolean
	case float64, int, json.Number:
		return domain.ConfigNumber
	case map[string]any, []any:
		return domain.ConfigJSON
	default:
		return domain.ConfigString
	}
}
