package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/pathcodec"
	"github.com/fabriqa/configurator-backend/internal/repos"
	"github.com/fabriqa/configurator-backend/internal/types"
)

// ManufacturingTypeService manages the product lines whose attribute
// trees the hierarchy service maintains.
type ManufacturingTypeService interface {
	Create(ctx context.Context, name string, basePrice, baseWeight decimal.Decimal) (*types.ManufacturingType, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ManufacturingType, error)
	List(ctx context.Context) ([]*types.ManufacturingType, error)
}

type manufacturingTypeService struct {
	db       *gorm.DB
	log      *logger.Logger
	typeRepo repos.ManufacturingTypeRepo
}

func NewManufacturingTypeService(db *gorm.DB, baseLog *logger.Logger, typeRepo repos.ManufacturingTypeRepo) ManufacturingTypeService {
	return &manufacturingTypeService{
		db:       db,
		log:      baseLog.With("service", "ManufacturingTypeService"),
		typeRepo: typeRepo,
	}
}

func (s *manufacturingTypeService) Create(ctx context.Context, name string, basePrice, baseWeight decimal.Decimal) (*types.ManufacturingType, error) {
	slug, err := pathcodec.Encode(name)
	if err != nil {
		return nil, err
	}
	existing, err := s.typeRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateNameError{Segment: slug}
	}

	mt := &types.ManufacturingType{
		ID:         uuid.New(),
		Name:       name,
		Slug:       slug,
		BasePrice:  basePrice,
		BaseWeight: baseWeight,
	}
	created, err := s.typeRepo.Create(ctx, nil, mt)
	if err != nil {
		return nil, err
	}
	s.log.Info("manufacturing type created", "manufacturing_type_id", created.ID, "slug", slug)
	return created, nil
}

func (s *manufacturingTypeService) Get(ctx context.Context, id uuid.UUID) (*types.ManufacturingType, error) {
	mt, err := s.typeRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, &NotFoundError{Entity: "manufacturing type", ID: id}
	}
	return mt, nil
}

func (s *manufacturingTypeService) List(ctx context.Context) ([]*types.ManufacturingType, error) {
	return s.typeRepo.List(ctx, nil)
}
