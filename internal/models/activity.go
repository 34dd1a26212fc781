package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityRecord is one append-only audit entry. UserID is informational;
// the user may no longer exist.
type ActivityRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"column:usuario_id;index" json:"usuario_id"`
	Action    string         `gorm:"column:acao;size:50;not null;index" json:"acao"`
	Table     string         `gorm:"column:tabela;size:50;not null;index" json:"tabela"`
	RecordID  *uint          `gorm:"column:registro_id" json:"registro_id"`
	Before    datatypes.JSON `gorm:"column:dados_anteriores" json:"dados_anteriores"`
	After     datatypes.JSON `gorm:"column:dados_novos" json:"dados_novos"`
	IP        string         `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent string         `gorm:"column:user_agent;size:512" json:"user_agent"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (ActivityRecord) TableName() string { return "atividades" }
