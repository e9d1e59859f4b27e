package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Níveis aceitos em ErrorLog.Level.
const (
	LogLevelError = "error"
	LogLevelWarn  = "warn"
	LogLevelInfo  = "info"
)

// ErrorLog registra uma falha inesperada da API para consulta operacional.
type ErrorLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Level     string    `gorm:"size:10;not null" json:"level"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Stack     string    `gorm:"type:text" json:"stack,omitempty"`
	Method    string    `gorm:"size:10" json:"method"`
	Path      string    `gorm:"size:2048" json:"path"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (e *ErrorLog) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
