package models

import "time"

// Backup is the metadata row kept for each snapshot file. File is the
// generated object name; it never comes from user input.
type Backup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:nome;size:255;not null" json:"nome"`
	File      string    `gorm:"column:arquivo;size:255;not null;uniqueIndex" json:"arquivo"`
	Size      int64     `gorm:"column:tamanho" json:"tamanho"`
	Kind      string    `gorm:"column:tipo;size:16;default:manual;index" json:"tipo"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Backup) TableName() string { return "backups" }
