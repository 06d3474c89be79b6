package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Snapshot kinds.
const (
	SnapshotKindQuote  = "quote"
	SnapshotKindOrder  = "order"
	SnapshotKindManual = "manual"
)

// ConfigurationSnapshot is an immutable capture of one calculation:
// base values, per-selection breakdown and totals, frozen at request
// time (quote generation, order placement). It is assembled from the
// calculator's output and never re-derived, so it matches exactly what
// the caller saw. There is no update path and no soft delete.
type ConfigurationSnapshot struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConfigurationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"configuration_id"`
	Configuration   *Configuration `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConfigurationID;references:ID" json:"configuration,omitempty"`

	Kind string `gorm:"column:kind;not null;default:'quote'" json:"kind"`

	BasePrice     decimal.Decimal `gorm:"column:base_price;type:decimal(12,4);not null;default:0" json:"base_price"`
	BaseWeight    decimal.Decimal `gorm:"column:base_weight;type:decimal(12,4);not null;default:0" json:"base_weight"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:decimal(12,4);not null;default:0" json:"total_price"`
	TotalWeight   decimal.Decimal `gorm:"column:total_weight;type:decimal(12,4);not null;default:0" json:"total_weight"`
	TechnicalData datatypes.JSON  `gorm:"column:technical_data;type:jsonb" json:"technical_data,omitempty"`
	Breakdown     datatypes.JSON  `gorm:"column:breakdown;type:jsonb" json:"breakdown"`

	ValidUntil *time.Time `gorm:"column:valid_until" json:"valid_until,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
}

func (ConfigurationSnapshot) TableName() string { return "configuration_snapshot" }
