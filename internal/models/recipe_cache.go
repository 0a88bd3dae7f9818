package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// CachedRecipe is a provider recipe kept locally so similar meals can be
// suggested without another provider call. Macros holds
// (calories, protein, carbs, fat).
type CachedRecipe struct {
	ID        int             `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title     string          `gorm:"size:255;not null" json:"title"`
	Category  string          `gorm:"size:64;index" json:"category"`
	Recipe    datatypes.JSON  `gorm:"not null" json:"recipe"`
	Macros    pgvector.Vector `gorm:"type:vector(4)" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CachedRecipe) TableName() string {
	return "cached_recipes"
}
