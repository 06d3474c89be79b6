package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/types"
)

type ConfigurationRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Configuration, error)
	GetByManufacturingType(ctx context.Context, tx *gorm.DB, typeID uuid.UUID) ([]*types.Configuration, error)
	Create(ctx context.Context, tx *gorm.DB, cfg *types.Configuration) (*types.Configuration, error)
	Save(ctx context.Context, tx *gorm.DB, cfg *types.Configuration) (*types.Configuration, error)
	UpdateTotals(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalPrice, totalWeight decimal.Decimal, technicalData datatypes.JSON, calculatedAt time.Time) error
}

type configurationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConfigurationRepo(db *gorm.DB, baseLog *logger.Logger) ConfigurationRepo {
	return &configurationRepo{db: db, log: baseLog.With("repo", "ConfigurationRepo")}
}

func (r *configurationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Configuration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var cfg types.Configuration
	if err := transaction.WithContext(ctx).First(&cfg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *configurationRepo) GetByManufacturingType(ctx context.Context, tx *gorm.DB, typeID uuid.UUID) ([]*types.Configuration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Configuration
	if err := transaction.WithContext(ctx).
		Where("manufacturing_type_id = ?", typeID).
		Order("created_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *configurationRepo) Create(ctx context.Context, tx *gorm.DB, cfg *types.Configuration) (*types.Configuration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *configurationRepo) Save(ctx context.Context, tx *gorm.DB, cfg *types.Configuration) (*types.Configuration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Save(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateTotals writes back the derived values of one calculation pass.
// Concurrent recalculations of the same configuration are last write
// wins; callers needing strict ordering serialize per configuration.
func (r *configurationRepo) UpdateTotals(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalPrice, totalWeight decimal.Decimal, technicalData datatypes.JSON, calculatedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Configuration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_price":    totalPrice,
			"total_weight":   totalWeight,
			"technical_data": technicalData,
			"calculated_at":  calculatedAt,
		}).Error
}
