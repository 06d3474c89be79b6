package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/types"
)

// ConfigurationSnapshotRepo is create/read only. Snapshots are
// immutable by contract; there is deliberately no update method.
type ConfigurationSnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snap *types.ConfigurationSnapshot) (*types.ConfigurationSnapshot, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ConfigurationSnapshot, error)
	GetByConfiguration(ctx context.Context, tx *gorm.DB, configurationID uuid.UUID) ([]*types.ConfigurationSnapshot, error)
}

type configurationSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConfigurationSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) ConfigurationSnapshotRepo {
	return &configurationSnapshotRepo{db: db, log: baseLog.With("repo", "ConfigurationSnapshotRepo")}
}

func (r *configurationSnapshotRepo) Create(ctx context.Context, tx *gorm.DB, snap *types.ConfigurationSnapshot) (*types.ConfigurationSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(snap).Error; err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *configurationSnapshotRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ConfigurationSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var snap types.ConfigurationSnapshot
	if err := transaction.WithContext(ctx).First(&snap, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

func (r *configurationSnapshotRepo) GetByConfiguration(ctx context.Context, tx *gorm.DB, configurationID uuid.UUID) ([]*types.ConfigurationSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ConfigurationSnapshot
	if err := transaction.WithContext(ctx).
		Where("configuration_id = ?", configurationID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
