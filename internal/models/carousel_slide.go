package models

import "time"

type CarouselSlide struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Image       string    `gorm:"column:imagem;size:512;not null" json:"imagem"`
	Title       string    `gorm:"column:titulo;size:255;not null" json:"titulo"`
	Description string    `gorm:"column:descricao;type:text;not null" json:"descricao"`
	Order       int       `gorm:"column:ordem;default:0;index" json:"ordem"`
	Active      bool      `gorm:"column:ativo;not null" json:"ativo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (CarouselSlide) TableName() string { return "carrossel_slides" }
