package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lot is a parcel listed on the public site. Code is the natural key.
type Lot struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"column:titulo;size:255;not null" json:"titulo"`
	Code        string                      `gorm:"column:codigo;uniqueIndex;size:64;not null" json:"codigo"`
	Price       string                      `gorm:"column:valor;size:64;not null" json:"valor"`
	Size        string                      `gorm:"column:tamanho;size:64;not null" json:"tamanho"`
	Images      datatypes.JSONSlice[string] `gorm:"column:imagens;not null" json:"imagens"`
	Description string                      `gorm:"column:descricao;type:text" json:"descricao"`
	Phone       string                      `gorm:"column:telefone;size:32" json:"telefone"`
	Status      string                      `gorm:"column:status;size:20;default:disponivel;index" json:"status"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (Lot) TableName() string { return "lotes" }
