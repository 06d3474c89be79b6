package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/repos"
	"github.com/fabriqa/configurator-backend/internal/types"
)

// SnapshotService freezes calculation results for quoting/auditing.
type SnapshotService interface {
	// CreateSnapshot runs a fresh calculation and captures its result.
	CreateSnapshot(ctx context.Context, configurationID uuid.UUID, kind string, validUntil *time.Time) (*types.ConfigurationSnapshot, error)
	GetSnapshot(ctx context.Context, id uuid.UUID) (*types.ConfigurationSnapshot, error)
	ListSnapshots(ctx context.Context, configurationID uuid.UUID) ([]*types.ConfigurationSnapshot, error)
}

type snapshotService struct {
	db           *gorm.DB
	log          *logger.Logger
	configRepo   repos.ConfigurationRepo
	snapshotRepo repos.ConfigurationSnapshotRepo
	calculation  CalculationService
}

func NewSnapshotService(
	db *gorm.DB,
	baseLog *logger.Logger,
	configRepo repos.ConfigurationRepo,
	snapshotRepo repos.ConfigurationSnapshotRepo,
	calculation CalculationService,
) SnapshotService {
	return &snapshotService{
		db:           db,
		log:          baseLog.With("service", "SnapshotService"),
		configRepo:   configRepo,
		snapshotRepo: snapshotRepo,
		calculation:  calculation,
	}
}

// BuildSnapshot assembles a snapshot record from a calculation result.
// It copies values as they are and never re-derives anything, so the
// snapshot is guaranteed to match what the caller was shown. Pure
// function; persistence is the caller's concern.
func BuildSnapshot(cfg *types.Configuration, result *CalculationResult, kind string, validUntil *time.Time) (*types.ConfigurationSnapshot, error) {
	breakdownJSON, err := json.Marshal(result.Breakdown)
	if err != nil {
		return nil, err
	}
	technicalJSON, err := json.Marshal(result.TechnicalData)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		kind = types.SnapshotKindQuote
	}
	return &types.ConfigurationSnapshot{
		ID:              uuid.New(),
		ConfigurationID: cfg.ID,
		Kind:            kind,
		BasePrice:       cfg.BasePrice,
		BaseWeight:      cfg.BaseWeight,
		TotalPrice:      result.TotalPrice,
		TotalWeight:     result.TotalWeight,
		TechnicalData:   datatypes.JSON(technicalJSON),
		Breakdown:       datatypes.JSON(breakdownJSON),
		ValidUntil:      validUntil,
	}, nil
}

func (s *snapshotService) CreateSnapshot(ctx context.Context, configurationID uuid.UUID, kind string, validUntil *time.Time) (*types.ConfigurationSnapshot, error) {
	cfg, err := s.configRepo.GetByID(ctx, nil, configurationID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &NotFoundError{Entity: "configuration", ID: configurationID}
	}

	result, err := s.calculation.Calculate(ctx, configurationID)
	if err != nil {
		return nil, err
	}

	snap, err := BuildSnapshot(cfg, result, kind, validUntil)
	if err != nil {
		return nil, err
	}
	created, err := s.snapshotRepo.Create(ctx, nil, snap)
	if err != nil {
		return nil, err
	}
	s.log.Info("snapshot created", "snapshot_id", created.ID, "configuration_id", configurationID, "kind", created.Kind)
	return created, nil
}

func (s *snapshotService) GetSnapshot(ctx context.Context, id uuid.UUID) (*types.ConfigurationSnapshot, error) {
	snap, err := s.snapshotRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, &NotFoundError{Entity: "snapshot", ID: id}
	}
	return snap, nil
}

func (s *snapshotService) ListSnapshots(ctx context.Context, configurationID uuid.UUID) ([]*types.ConfigurationSnapshot, error) {
	return s.snapshotRepo.GetByConfiguration(ctx, nil, configurationID)
}
