package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/types"
)

type ManufacturingTypeRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ManufacturingType, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.ManufacturingType, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.ManufacturingType, error)
	Create(ctx context.Context, tx *gorm.DB, mt *types.ManufacturingType) (*types.ManufacturingType, error)
	Save(ctx context.Context, tx *gorm.DB, mt *types.ManufacturingType) (*types.ManufacturingType, error)
}

type manufacturingTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManufacturingTypeRepo(db *gorm.DB, baseLog *logger.Logger) ManufacturingTypeRepo {
	return &manufacturingTypeRepo{db: db, log: baseLog.With("repo", "ManufacturingTypeRepo")}
}

func (r *manufacturingTypeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ManufacturingType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var mt types.ManufacturingType
	if err := transaction.WithContext(ctx).First(&mt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mt, nil
}

func (r *manufacturingTypeRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.ManufacturingType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var mt types.ManufacturingType
	if err := transaction.WithContext(ctx).First(&mt, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mt, nil
}

func (r *manufacturingTypeRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ManufacturingType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ManufacturingType
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *manufacturingTypeRepo) Create(ctx context.Context, tx *gorm.DB, mt *types.ManufacturingType) (*types.ManufacturingType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(mt).Error; err != nil {
		return nil, err
	}
	return mt, nil
}

func (r *manufacturingTypeRepo) Save(ctx context.Context, tx *gorm.DB, mt *types.ManufacturingType) (*types.ManufacturingType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Save(mt).Error; err != nil {
		return nil, err
	}
	return mt, nil
}
