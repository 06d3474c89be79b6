package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/formula"
	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/repos"
	"github.com/fabriqa/configurator-backend/internal/types"
)

// hundred is the divisor for percentage impacts.
var hundred = decimal.NewFromInt(100)

// SelectionImpact is one line of a calculation breakdown.
type SelectionImpact struct {
	SelectionID uuid.UUID                  `json:"selection_id"`
	NodeID      uuid.UUID                  `json:"node_id"`
	PriceDelta  decimal.Decimal            `json:"price_delta"`
	WeightDelta decimal.Decimal            `json:"weight_delta"`
	Technical   map[string]decimal.Decimal `json:"technical,omitempty"`
}

// CalculationResult is the full output of one calculation pass.
// Totals carry full precision; rounding happens only at the
// presentation boundary.
type CalculationResult struct {
	TotalPrice    decimal.Decimal            `json:"total_price"`
	TotalWeight   decimal.Decimal            `json:"total_weight"`
	TechnicalData map[string]decimal.Decimal `json:"technical_data"`
	Breakdown     []SelectionImpact          `json:"breakdown"`
}

// CalculationService derives a configuration's totals from its
// selections and the impact definitions on the selected nodes.
type CalculationService interface {
	// Calculate recomputes totals for one configuration and persists
	// the derived values (per-selection deltas and configuration
	// totals) in a single transaction.
	Calculate(ctx context.Context, configurationID uuid.UUID) (*CalculationResult, error)
	// Preview computes the same result without writing anything back.
	Preview(ctx context.Context, configurationID uuid.UUID) (*CalculationResult, error)
	// RecalculateForType recomputes every configuration of a
	// manufacturing type, e.g. after catalog pricing edits.
	RecalculateForType(ctx context.Context, typeID uuid.UUID) error
}

type calculationService struct {
	db            *gorm.DB
	log           *logger.Logger
	configRepo    repos.ConfigurationRepo
	selectionRepo repos.ConfigurationSelectionRepo
	nodeRepo      repos.AttributeNodeRepo
	concurrency   int
}

func NewCalculationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	configRepo repos.ConfigurationRepo,
	selectionRepo repos.ConfigurationSelectionRepo,
	nodeRepo repos.AttributeNodeRepo,
	concurrency int,
) CalculationService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &calculationService{
		db:            db,
		log:           baseLog.With("service", "CalculationService"),
		configRepo:    configRepo,
		selectionRepo: selectionRepo,
		nodeRepo:      nodeRepo,
		concurrency:   concurrency,
	}
}

func (s *calculationService) Calculate(ctx context.Context, configurationID uuid.UUID) (*CalculationResult, error) {
	cfg, selections, nodesByID, err := s.loadCalculationInputs(ctx, configurationID)
	if err != nil {
		return nil, err
	}

	result, err := computeImpacts(cfg, selections, nodesByID)
	if err != nil {
		return nil, err
	}

	technicalJSON, err := marshalTechnical(result.TechnicalData)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.selectionRepo.SaveImpacts(ctx, tx, selections); err != nil {
			return err
		}
		return s.configRepo.UpdateTotals(ctx, tx, cfg.ID, result.TotalPrice, result.TotalWeight, technicalJSON, now)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("configuration calculated",
		"configuration_id", cfg.ID,
		"total_price", result.TotalPrice,
		"total_weight", result.TotalWeight,
		"selections", len(selections))
	return result, nil
}

func (s *calculationService) Preview(ctx context.Context, configurationID uuid.UUID) (*CalculationResult, error) {
	cfg, selections, nodesByID, err := s.loadCalculationInputs(ctx, configurationID)
	if err != nil {
		return nil, err
	}
	return computeImpacts(cfg, selections, nodesByID)
}

func (s *calculationService) RecalculateForType(ctx context.Context, typeID uuid.UUID) error {
	configs, err := s.configRepo.GetByManufacturingType(ctx, nil, typeID)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, cfg := range configs {
		cfg := cfg
		g.Go(func() error {
			_, err := s.Calculate(gctx, cfg.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("manufacturing type recalculated", "manufacturing_type_id", typeID, "configurations", len(configs))
	return nil
}

func (s *calculationService) loadCalculationInputs(ctx context.Context, configurationID uuid.UUID) (*types.Configuration, []*types.ConfigurationSelection, map[uuid.UUID]*types.AttributeNode, error) {
	cfg, err := s.configRepo.GetByID(ctx, nil, configurationID)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg == nil {
		return nil, nil, nil, &NotFoundError{Entity: "configuration", ID: configurationID}
	}

	selections, err := s.selectionRepo.GetByConfiguration(ctx, nil, configurationID)
	if err != nil {
		return nil, nil, nil, err
	}

	nodeIDs := make([]uuid.UUID, 0, len(selections))
	for _, sel := range selections {
		nodeIDs = append(nodeIDs, sel.AttributeNodeID)
	}
	nodes, err := s.nodeRepo.GetByIDs(ctx, nil, nodeIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	nodesByID := make(map[uuid.UUID]*types.AttributeNode, len(nodes))
	for _, n := range nodes {
		nodesByID[n.ID] = n
	}
	return cfg, selections, nodesByID, nil
}

// computeImpacts is the pure calculation core. Selections are applied
// in the order given (insertion order), which matters: percentage
// impacts compound against the running total at the moment they are
// applied, not against the original base. The per-selection delta
// fields on selections are filled in as a side output for persistence.
func computeImpacts(cfg *types.Configuration, selections []*types.ConfigurationSelection, nodesByID map[uuid.UUID]*types.AttributeNode) (*CalculationResult, error) {
	price := cfg.BasePrice
	weight := cfg.BaseWeight
	technical := make(map[string]decimal.Decimal)
	breakdown := make([]SelectionImpact, 0, len(selections))

	vars := buildVariableContext(cfg, selections, nodesByID)

	for _, sel := range selections {
		node, ok := nodesByID[sel.AttributeNodeID]
		if !ok {
			return nil, &NotFoundError{Entity: "node", ID: sel.AttributeNodeID}
		}

		impact := SelectionImpact{SelectionID: sel.ID, NodeID: node.ID}

		if nodeCarriesImpacts(node) {
			priceDelta, err := applyImpact(price, node.PriceImpactType, node.PriceImpactValue, node.PriceFormula, vars)
			if err != nil {
				return nil, &CalculationError{
					ConfigurationID: cfg.ID,
					SelectionID:     sel.ID,
					NodeID:          node.ID,
					Formula:         node.PriceFormula,
					Err:             err,
				}
			}
			weightDelta, err := applyImpact(weight, node.WeightImpactType, node.WeightImpactValue, node.WeightFormula, vars)
			if err != nil {
				return nil, &CalculationError{
					ConfigurationID: cfg.ID,
					SelectionID:     sel.ID,
					NodeID:          node.ID,
					Formula:         node.WeightFormula,
					Err:             err,
				}
			}
			price = price.Add(priceDelta)
			weight = weight.Add(weightDelta)
			impact.PriceDelta = priceDelta
			impact.WeightDelta = weightDelta
		}

		if node.TechnicalPropertyType != "" && node.TechnicalFormula != "" {
			value, err := formula.Evaluate(node.TechnicalFormula, vars)
			if err != nil {
				return nil, &CalculationError{
					ConfigurationID: cfg.ID,
					SelectionID:     sel.ID,
					NodeID:          node.ID,
					Formula:         node.TechnicalFormula,
					Err:             err,
				}
			}
			// Last write wins when multiple selections target the same
			// technical property key.
			technical[node.TechnicalPropertyType] = value
			impact.Technical = map[string]decimal.Decimal{node.TechnicalPropertyType: value}
		}

		sel.PriceDelta = impact.PriceDelta
		sel.WeightDelta = impact.WeightDelta
		if impact.Technical != nil {
			if raw, err := json.Marshal(impact.Technical); err == nil {
				sel.TechnicalDelta = datatypes.JSON(raw)
			}
		} else {
			sel.TechnicalDelta = nil
		}

		breakdown = append(breakdown, impact)
	}

	return &CalculationResult{
		TotalPrice:    price,
		TotalWeight:   weight,
		TechnicalData: technical,
		Breakdown:     breakdown,
	}, nil
}

// buildVariableContext collects every numeric selection value into the
// formula evaluation context, keyed by the owning node's alias (or
// segment). Dimension selections contribute each numeric component of
// their JSON value as <alias>_<component>. base_price and base_weight
// are always available as globals.
func buildVariableContext(cfg *types.Configuration, selections []*types.ConfigurationSelection, nodesByID map[uuid.UUID]*types.AttributeNode) map[string]decimal.Decimal {
	vars := map[string]decimal.Decimal{
		"base_price":  cfg.BasePrice,
		"base_weight": cfg.BaseWeight,
	}
	for _, sel := range selections {
		node, ok := nodesByID[sel.AttributeNodeID]
		if !ok {
			continue
		}
		if sel.ValueNumber.Valid {
			vars[node.ContextKey()] = sel.ValueNumber.Decimal
			continue
		}
		if node.DataType == types.DataTypeDimension && len(sel.ValueJSON) > 0 {
			var dims map[string]json.Number
			if err := json.Unmarshal(sel.ValueJSON, &dims); err != nil {
				continue
			}
			for component, raw := range dims {
				if v, err := decimal.NewFromString(raw.String()); err == nil {
					vars[node.ContextKey()+"_"+component] = v
				}
			}
		}
	}
	return vars
}

// nodeCarriesImpacts reports whether a selected node contributes to
// price/weight totals. Categories and plain attributes group or hold
// values; options and components price.
func nodeCarriesImpacts(node *types.AttributeNode) bool {
	return node.NodeType == types.NodeTypeOption || node.NodeType == types.NodeTypeComponent
}

func applyImpact(running decimal.Decimal, impactType string, value decimal.Decimal, formulaText string, vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	switch impactType {
	case types.ImpactTypePercentage:
		return running.Mul(value).Div(hundred), nil
	case types.ImpactTypeFormula:
		if formulaText == "" {
			return decimal.Zero, nil
		}
		return formula.Evaluate(formulaText, vars)
	default: // fixed
		return value, nil
	}
}

func marshalTechnical(technical map[string]decimal.Decimal) (datatypes.JSON, error) {
	raw, err := json.Marshal(technical)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
