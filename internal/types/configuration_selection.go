package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConfigurationSelection is one (configuration, attribute node) pair
// with the value the customer picked. At most one selection exists per
// pair; the node must belong to the configuration's manufacturing type.
//
// PriceDelta/WeightDelta/TechnicalDelta cache the impact computed by
// the last calculation pass so a breakdown can be rendered without
// recomputation.
type ConfigurationSelection struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConfigurationID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_selection_config_node" json:"configuration_id"`
	Configuration   *Configuration `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConfigurationID;references:ID" json:"configuration,omitempty"`
	AttributeNodeID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_selection_config_node" json:"attribute_node_id"`
	AttributeNode   *AttributeNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:AttributeNodeID;references:ID" json:"attribute_node,omitempty"`

	ValueText   string              `gorm:"column:value_text" json:"value_text,omitempty"`
	ValueNumber decimal.NullDecimal `gorm:"column:value_number;type:decimal(12,4)" json:"value_number,omitempty"`
	ValueBool   *bool               `gorm:"column:value_bool" json:"value_bool,omitempty"`
	ValueJSON   datatypes.JSON      `gorm:"column:value_json;type:jsonb" json:"value_json,omitempty"`

	PriceDelta     decimal.Decimal `gorm:"column:price_delta;type:decimal(12,4);not null;default:0" json:"price_delta"`
	WeightDelta    decimal.Decimal `gorm:"column:weight_delta;type:decimal(12,4);not null;default:0" json:"weight_delta"`
	TechnicalDelta datatypes.JSON  `gorm:"column:technical_delta;type:jsonb" json:"technical_delta,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConfigurationSelection) TableName() string { return "configuration_selection" }
