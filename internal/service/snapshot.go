package service

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"loteamento/internal/domain"
	"loteamento/internal/models"
)

// Snapshot is the exported backup document.
type Snapshot struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Data     SnapshotData     `json:"data"`
}

type SnapshotMetadata struct {
	Version     string    `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   any       `json:"created_by"` // user id, or "system"
	IncludeLogs bool      `json:"include_logs"`
	Lots        int       `json:"total_lotes"`
	Slides      int       `json:"total_slides"`
	Configs     int       `json:"total_configuracoes"`
	Activities  int       `json:"total_atividades"`
}

type SnapshotData struct {
	Lots       []models.Lot            `json:"lotes"`
	Slides     []models.CarouselSlide  `json:"carrossel_slides"`
	Configs    []models.ConfigEntry    `json:"configuracoes"`
	Activities []models.ActivityRecord `json:"atividades"`
}

// importDoc is the lenient shape accepted on import. Documents written by
// older exports store lot images as a JSON string and flags as 0/1.
type importDoc struct {
	Metadata json.RawMessage `json:"metadata"`
	Data     json.RawMessage `json:"data"`
}

type importData struct {
	Lots    []importLot    `json:"lotes"`
	Slides  []importSlide  `json:"carrossel_slides"`
	Configs []importConfig `json:"configuracoes"`
}

type importLot struct {
	Title       flexString  `json:"titulo"`
	Code        flexString  `json:"codigo"`
	Price       flexString  `json:"valor"`
	Size        flexString  `json:"tamanho"`
	Images      flexStrings `json:"imagens"`
	Description *string     `json:"descricao"`
	Phone       flexString  `json:"telefone"`
	Status      *string     `json:"status"`
}

type importSlide struct {
	Image       string    `json:"imagem"`
	Title       string    `json:"titulo"`
	Description string    `json:"descricao"`
	Order       *int      `json:"ordem"`
	Active      *flexBool `json:"ativo"`
}

type importConfig struct {
	Key         string          `json:"chave"`
	Value       json.RawMessage `json:"valor"`
	Type        *string         `json:"tipo"`
	Description *string         `json:"descricao"`
}

// ParseSnapshot validates the document shape and converts its records to
// models with defaults applied. Nothing is written.
func ParseSnapshot(raw []byte) ([]models.Lot, []models.CarouselSlide, []models.ConfigEntry, error) {
	var doc importDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, nil, ErrInvalidSnapshot
	}
	if !isObject(doc.Metadata) || !isObject(doc.Data) {
		return nil, nil, nil, ErrInvalidSnapshot
	}
	var data importData
	if err := json.Unmarshal(doc.Data, &data); err != nil {
		return nil, nil, nil, validationf("invalid backup data block: %v", err)
	}

	lots := make([]models.Lot, 0, len(data.Lots))
	codes := make(map[string]struct{}, len(data.Lots))
	for i, l := range data.Lots {
		m := models.Lot{
			Title:  string(l.Title),
			Code:   string(l.Code),
			Price:  string(l.Price),
			Size:   string(l.Size),
			Images: []string(l.Images),
			Phone:  string(l.Phone),
			Status: domain.LotAvailable,
		}
		if m.Images == nil {
			m.Images = []string{}
		}
		if l.Description != nil {
			m.Description = *l.Description
		}
		if l.Status != nil && *l.Status != "" {
			m.Status = *l.Status
		}
		if m.Title == "" || m.Code == "" || m.Price == "" || m.Size == "" {
			return nil, nil, nil, validationf("lotes[%d]: titulo, codigo, valor and tamanho are required", i)
		}
		if !domain.ValidLotStatus(m.Status) {
			return nil, nil, nil, validationf("lotes[%d]: invalid status %q", i, m.Status)
		}
		if _, dup := codes[m.Code]; dup {
			return nil, nil, nil, validationf("lotes[%d]: duplicate codigo %q", i, m.Code)
		}
		codes[m.Code] = struct{}{}
		lots = append(lots, m)
	}

	slides := make([]models.CarouselSlide, 0, len(data.Slides))
	for i, s := range data.Slides {
		m := models.CarouselSlide{
			Image:       s.Image,
			Title:       s.Title,
			Description: s.Description,
			Active:      true,
		}
		if s.Order != nil {
			m.Order = *s.Order
		}
		if s.Active != nil {
			m.Active = bool(*s.Active)
		}
		if m.Image == "" || m.Title == "" || m.Description == "" {
			return nil, nil, nil, validationf("carrossel_slides[%d]: imagem, titulo and descricao are required", i)
		}
		slides = append(slides, m)
	}

	configs := make([]models.ConfigEntry, 0, len(data.Configs))
	keys := make(map[string]struct{}, len(data.Configs))
	for i, c := range data.Configs {
		m := models.ConfigEntry{Key: c.Key, Type: domain.ConfigString}
		if c.Type != nil && *c.Type != "" {
			m.Type = *c.Type
		}
		if c.Description != nil {
			m.Description = *c.Description
		}
		v, ok := rawValue(c.Value)
		if m.Key == "" || !ok {
			return nil, nil, nil, validationf("configuracoes[%d]: chave and valor are required", i)
		}
		m.Value = v
		if !domain.ValidConfigType(m.Type) {
			return nil, nil, nil, validationf("configuracoes[%d]: invalid tipo %q", i, m.Type)
		}
		if _, dup := keys[m.Key]; dup {
			return nil, nil, nil, validationf("configuracoes[%d]: duplicate chave %q", i, m.Key)
		}
		keys[m.Key] = struct{}{}
		configs = append(configs, m)
	}
	return lots, slides, configs, nil
}

// SnapshotPayload accepts the backup document either inline or as a JSON
// string holding the document.
func SnapshotPayload(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, validationf("backup_data is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, ErrInvalidSnapshot
		}
		return []byte(s), nil
	}
	return raw, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// rawValue returns a config value in stored form: strings unquoted, other
// JSON values as their compact text.
func rawValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", false
	}
	return buf.String(), true
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexStrings accepts an array of strings or a string holding one.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*f = nil
			return nil
		}
		b = []byte(s)
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*f = list
	return nil
}

// flexBool accepts true/false, 0/1 and their string forms.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	switch s {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		*f = flexBool(v)
	}
	return nil
}
