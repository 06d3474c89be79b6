package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/types"
)

type ConfigurationSelectionRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ConfigurationSelection, error)
	// GetByConfiguration returns selections in processing order:
	// insertion order first, id as tie breaker. Percentage impacts
	// compound in this order, so it must stay stable.
	GetByConfiguration(ctx context.Context, tx *gorm.DB, configurationID uuid.UUID) ([]*types.ConfigurationSelection, error)
	Upsert(ctx context.Context, tx *gorm.DB, sel *types.ConfigurationSelection) (*types.ConfigurationSelection, error)
	Delete(ctx context.Context, tx *gorm.DB, configurationID, attributeNodeID uuid.UUID) error
	SaveImpacts(ctx context.Context, tx *gorm.DB, selections []*types.ConfigurationSelection) error
}

type configurationSelectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConfigurationSelectionRepo(db *gorm.DB, baseLog *logger.Logger) ConfigurationSelectionRepo {
	return &configurationSelectionRepo{db: db, log: baseLog.With("repo", "ConfigurationSelectionRepo")}
}

func (r *configurationSelectionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ConfigurationSelection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var sel types.ConfigurationSelection
	if err := transaction.WithContext(ctx).First(&sel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sel, nil
}

func (r *configurationSelectionRepo) GetByConfiguration(ctx context.Context, tx *gorm.DB, configurationID uuid.UUID) ([]*types.ConfigurationSelection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ConfigurationSelection
	if err := transaction.WithContext(ctx).
		Where("configuration_id = ?", configurationID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Upsert keeps the invariant of at most one selection per
// (configuration, node) pair: a second selection of the same node
// replaces the stored value instead of duplicating the row. On the
// conflict path the stored row keeps its original id, so the row is
// re-read instead of returning the caller's struct.
func (r *configurationSelectionRepo) Upsert(ctx context.Context, tx *gorm.DB, sel *types.ConfigurationSelection) (*types.ConfigurationSelection, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "configuration_id"}, {Name: "attribute_node_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"value_text", "value_number", "value_bool", "value_json", "updated_at",
			}),
		}).
		Create(sel).Error; err != nil {
		return nil, err
	}
	var stored types.ConfigurationSelection
	if err := transaction.WithContext(ctx).
		First(&stored, "configuration_id = ? AND attribute_node_id = ?", sel.ConfigurationID, sel.AttributeNodeID).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *configurationSelectionRepo) Delete(ctx context.Context, tx *gorm.DB, configurationID, attributeNodeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("configuration_id = ? AND attribute_node_id = ?", configurationID, attributeNodeID).
		Delete(&types.ConfigurationSelection{}).Error
}

// SaveImpacts writes back the cached per-selection deltas of one
// calculation pass.
func (r *configurationSelectionRepo) SaveImpacts(ctx context.Context, tx *gorm.DB, selections []*types.ConfigurationSelection) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	for _, sel := range selections {
		if err := transaction.WithContext(ctx).
			Model(&types.ConfigurationSelection{}).
			Where("id = ?", sel.ID).
			Updates(map[string]interface{}{
				"price_delta":     sel.PriceDelta,
				"weight_delta":    sel.WeightDelta,
				"technical_delta": sel.TechnicalDelta,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}
