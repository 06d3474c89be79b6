package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/repos"
	"github.com/fabriqa/configurator-backend/internal/types"
)

// SelectionValueInput is the typed value of one selection. Exactly the
// field matching the node's data type is honored.
type SelectionValueInput struct {
	Text   string           `json:"text,omitempty"`
	Number *decimal.Decimal `json:"number,omitempty"`
	Bool   *bool            `json:"bool,omitempty"`
	JSON   json.RawMessage  `json:"json,omitempty"`
}

// ConfigurationService manages customer designs and their selections.
type ConfigurationService interface {
	CreateConfiguration(ctx context.Context, typeID uuid.UUID, name string) (*types.Configuration, error)
	GetConfiguration(ctx context.Context, id uuid.UUID) (*types.Configuration, error)
	ListSelections(ctx context.Context, configurationID uuid.UUID) ([]*types.ConfigurationSelection, error)
	SetSelection(ctx context.Context, configurationID, nodeID uuid.UUID, value SelectionValueInput) (*types.ConfigurationSelection, error)
	RemoveSelection(ctx context.Context, configurationID, nodeID uuid.UUID) error
}

type configurationService struct {
	db            *gorm.DB
	log           *logger.Logger
	typeRepo      repos.ManufacturingTypeRepo
	configRepo    repos.ConfigurationRepo
	selectionRepo repos.ConfigurationSelectionRepo
	nodeRepo      repos.AttributeNodeRepo
}

func NewConfigurationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	typeRepo repos.ManufacturingTypeRepo,
	configRepo repos.ConfigurationRepo,
	selectionRepo repos.ConfigurationSelectionRepo,
	nodeRepo repos.AttributeNodeRepo,
) ConfigurationService {
	return &configurationService{
		db:            db,
		log:           baseLog.With("service", "ConfigurationService"),
		typeRepo:      typeRepo,
		configRepo:    configRepo,
		selectionRepo: selectionRepo,
		nodeRepo:      nodeRepo,
	}
}

// CreateConfiguration copies the manufacturing type's base values onto
// the new configuration, so later catalog edits do not silently
// reprice an existing design.
func (s *configurationService) CreateConfiguration(ctx context.Context, typeID uuid.UUID, name string) (*types.Configuration, error) {
	mt, err := s.typeRepo.GetByID(ctx, nil, typeID)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, &NotFoundError{Entity: "manufacturing type", ID: typeID}
	}

	cfg := &types.Configuration{
		ID:                  uuid.New(),
		ManufacturingTypeID: mt.ID,
		Name:                name,
		Status:              types.ConfigurationStatusDraft,
		BasePrice:           mt.BasePrice,
		BaseWeight:          mt.BaseWeight,
		TotalPrice:          mt.BasePrice,
		TotalWeight:         mt.BaseWeight,
	}
	created, err := s.configRepo.Create(ctx, nil, cfg)
	if err != nil {
		return nil, err
	}
	s.log.Info("configuration created", "configuration_id", created.ID, "manufacturing_type_id", typeID)
	return created, nil
}

func (s *configurationService) GetConfiguration(ctx context.Context, id uuid.UUID) (*types.Configuration, error) {
	cfg, err := s.configRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &NotFoundError{Entity: "configuration", ID: id}
	}
	return cfg, nil
}

func (s *configurationService) ListSelections(ctx context.Context, configurationID uuid.UUID) ([]*types.ConfigurationSelection, error) {
	if _, err := s.GetConfiguration(ctx, configurationID); err != nil {
		return nil, err
	}
	return s.selectionRepo.GetByConfiguration(ctx, nil, configurationID)
}

// SetSelection creates or replaces the selection for one node. The
// node must belong to the configuration's manufacturing type and the
// value must match the node's data type.
func (s *configurationService) SetSelection(ctx context.Context, configurationID, nodeID uuid.UUID, value SelectionValueInput) (*types.ConfigurationSelection, error) {
	cfg, err := s.GetConfiguration(ctx, configurationID)
	if err != nil {
		return nil, err
	}
	node, err := s.nodeRepo.GetByID(ctx, nil, nodeID)
	if err != nil {
		return nil, err
	}
	if node == nil || node.ManufacturingTypeID != cfg.ManufacturingTypeID {
		return nil, &NotFoundError{Entity: "node", ID: nodeID}
	}

	sel := &types.ConfigurationSelection{
		ID:              uuid.New(),
		ConfigurationID: cfg.ID,
		AttributeNodeID: node.ID,
	}
	if err := applySelectionValue(sel, node, value); err != nil {
		return nil, err
	}

	saved, err := s.selectionRepo.Upsert(ctx, nil, sel)
	if err != nil {
		return nil, err
	}
	s.log.Debug("selection set", "configuration_id", cfg.ID, "node_id", node.ID)
	return saved, nil
}

func (s *configurationService) RemoveSelection(ctx context.Context, configurationID, nodeID uuid.UUID) error {
	if _, err := s.GetConfiguration(ctx, configurationID); err != nil {
		return err
	}
	return s.selectionRepo.Delete(ctx, nil, configurationID, nodeID)
}

func applySelectionValue(sel *types.ConfigurationSelection, node *types.AttributeNode, value SelectionValueInput) error {
	switch node.DataType {
	case types.DataTypeNumber:
		if value.Number == nil {
			return &ValidationError{Field: "value", Msg: "node expects a numeric value"}
		}
		sel.ValueNumber = decimal.NewNullDecimal(*value.Number)
	case types.DataTypeBoolean:
		if value.Bool == nil {
			return &ValidationError{Field: "value", Msg: "node expects a boolean value"}
		}
		sel.ValueBool = value.Bool
	case types.DataTypeDimension:
		if len(value.JSON) == 0 {
			return &ValidationError{Field: "value", Msg: "node expects a dimension object"}
		}
		var dims map[string]json.Number
		if err := json.Unmarshal(value.JSON, &dims); err != nil || len(dims) == 0 {
			return &ValidationError{Field: "value", Msg: "dimension value must be an object of numbers"}
		}
		sel.ValueJSON = datatypes.JSON(value.JSON)
	default:
		// string, formula, selection: stored as text, optionally with
		// a structured payload alongside.
		sel.ValueText = value.Text
		if len(value.JSON) > 0 {
			sel.ValueJSON = datatypes.JSON(value.JSON)
		}
		if value.Number != nil {
			sel.ValueNumber = decimal.NewNullDecimal(*value.Number)
		}
	}
	return nil
}
