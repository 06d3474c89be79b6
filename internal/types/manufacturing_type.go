package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ManufacturingType is one configurable product line (a window series,
// a door series, a furniture range). Each type owns its own attribute
// tree and supplies the base values a configuration starts from.
type ManufacturingType struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string          `gorm:"column:name;not null" json:"name"`
	Slug       string          `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	BasePrice  decimal.Decimal `gorm:"column:base_price;type:decimal(12,4);not null;default:0" json:"base_price"`
	BaseWeight decimal.Decimal `gorm:"column:base_weight;type:decimal(12,4);not null;default:0" json:"base_weight"`
	Metadata   datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (ManufacturingType) TableName() string { return "manufacturing_type" }
