package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document is one per-user JSON document, addressed by (user, collection).
type Document struct {
	UserID     uuid.UUID      `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	Collection string         `gorm:"size:64;primaryKey" json:"collection"`
	Data       datatypes.JSON `gorm:"not null" json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}
