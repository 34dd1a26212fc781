package models

import "time"

// ConfigEntry stores a site setting as a string plus a type tag that
// tells readers how to decode it.
type ConfigEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"column:chave;uniqueIndex;size:100;not null" json:"chave"`
	Value       string    `gorm:"column:valor;type:text;not null" json:"valor"`
	Type        string    `gorm:"column:tipo;size:16;default:string" json:"tipo"`
	Description string    `gorm:"column:descricao;size:255" json:"descricao"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ConfigEntry) TableName() string { return "configuracoes" }
