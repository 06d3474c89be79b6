package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Configuration lifecycle states.
const (
	ConfigurationStatusDraft     = "draft"
	ConfigurationStatusFinalized = "finalized"
)

// Configuration is one customer's in-progress or finalized design for
// a manufacturing type. Totals and technical data are derived values,
// recomputed by the calculation service; base values are copied from
// the manufacturing type at creation so later catalog edits do not
// silently reprice existing designs.
type Configuration struct {
	ID                  uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	ManufacturingTypeID uuid.UUID          `gorm:"type:uuid;not null;index" json:"manufacturing_type_id"`
	ManufacturingType   *ManufacturingType `gorm:"constraint:OnDelete:CASCADE;foreignKey:ManufacturingTypeID;references:ID" json:"manufacturing_type,omitempty"`

	Name   string `gorm:"column:name;not null" json:"name"`
	Status string `gorm:"column:status;not null;default:'draft'" json:"status"`

	BasePrice  decimal.Decimal `gorm:"column:base_price;type:decimal(12,4);not null;default:0" json:"base_price"`
	BaseWeight decimal.Decimal `gorm:"column:base_weight;type:decimal(12,4);not null;default:0" json:"base_weight"`

	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:decimal(12,4);not null;default:0" json:"total_price"`
	TotalWeight   decimal.Decimal `gorm:"column:total_weight;type:decimal(12,4);not null;default:0" json:"total_weight"`
	TechnicalData datatypes.JSON  `gorm:"column:technical_data;type:jsonb" json:"technical_data,omitempty"`
	CalculatedAt  *time.Time      `gorm:"column:calculated_at" json:"calculated_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Configuration) TableName() string { return "configuration" }
