package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Node classification.
const (
	NodeTypeCategory      = "category"
	NodeTypeAttribute     = "attribute"
	NodeTypeOption        = "option"
	NodeTypeComponent     = "component"
	NodeTypeTechnicalSpec = "technical_spec"
)

// Value typing for selections against a node.
const (
	DataTypeString    = "string"
	DataTypeNumber    = "number"
	DataTypeBoolean   = "boolean"
	DataTypeFormula   = "formula"
	DataTypeDimension = "dimension"
	DataTypeSelection = "selection"
)

// How a node contributes to price/weight totals.
const (
	ImpactTypeFixed      = "fixed"
	ImpactTypePercentage = "percentage"
	ImpactTypeFormula    = "formula"
)

// AttributeNode is one node of a manufacturing type's attribute tree.
//
// Path is the materialized path: the slash-joined segments from root
// to this node inclusive. Depth is always the number of separators in
// Path. Both are maintained by the hierarchy service on every
// structural mutation; nothing else writes them.
type AttributeNode struct {
	ID                  uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	ManufacturingTypeID uuid.UUID          `gorm:"type:uuid;not null;index" json:"manufacturing_type_id"`
	ManufacturingType   *ManufacturingType `gorm:"constraint:OnDelete:CASCADE;foreignKey:ManufacturingTypeID;references:ID" json:"manufacturing_type,omitempty"`
	ParentID            *uuid.UUID         `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	Name      string `gorm:"column:name;not null" json:"name"`
	Segment   string `gorm:"column:segment;not null" json:"segment"`
	Path      string `gorm:"column:path;not null;index" json:"path"`
	Depth     int    `gorm:"column:depth;not null;default:0" json:"depth"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0" json:"sort_order"`

	NodeType string `gorm:"column:node_type;not null;default:'attribute'" json:"node_type"`
	DataType string `gorm:"column:data_type;not null;default:'string'" json:"data_type"`

	PriceImpactType  string          `gorm:"column:price_impact_type;not null;default:'fixed'" json:"price_impact_type"`
	PriceImpactValue decimal.Decimal `gorm:"column:price_impact_value;type:decimal(12,4);not null;default:0" json:"price_impact_value"`
	PriceFormula     string          `gorm:"column:price_formula" json:"price_formula,omitempty"`

	WeightImpactType  string          `gorm:"column:weight_impact_type;not null;default:'fixed'" json:"weight_impact_type"`
	WeightImpactValue decimal.Decimal `gorm:"column:weight_impact_value;type:decimal(12,4);not null;default:0" json:"weight_impact_value"`
	WeightFormula     string          `gorm:"column:weight_formula" json:"weight_formula,omitempty"`

	TechnicalPropertyType string `gorm:"column:technical_property_type" json:"technical_property_type,omitempty"`
	TechnicalFormula      string `gorm:"column:technical_formula" json:"technical_formula,omitempty"`

	// FormulaAlias overrides the variable name this node's numeric
	// selection is bound to in sibling formulas; Segment is used when
	// empty.
	FormulaAlias string `gorm:"column:formula_alias" json:"formula_alias,omitempty"`

	// Opaque display/validation metadata consumed by the frontends,
	// never evaluated here.
	DisplayMeta     datatypes.JSON `gorm:"column:display_meta;type:jsonb" json:"display_meta,omitempty"`
	ValidationRules datatypes.JSON `gorm:"column:validation_rules;type:jsonb" json:"validation_rules,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AttributeNode) TableName() string { return "attribute_node" }

// ContextKey is the variable name this node's numeric value is bound
// to when building a formula evaluation context.
func (n *AttributeNode) ContextKey() string {
	if n.FormulaAlias != "" {
		return n.FormulaAlias
	}
	return n.Segment
}

// IsRoot reports whether the node has no parent.
func (n *AttributeNode) IsRoot() bool { return n.ParentID == nil }
