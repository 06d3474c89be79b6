package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/repos"
	"github.com/fabriqa/configurator-backend/internal/types"
)

// testEnv wires the real repos against an in-memory sqlite database so
// service behavior is exercised end to end without Postgres.
type testEnv struct {
	db            *gorm.DB
	nodeRepo      repos.AttributeNodeRepo
	typeRepo      repos.ManufacturingTypeRepo
	configRepo    repos.ConfigurationRepo
	selectionRepo repos.ConfigurationSelectionRepo
	snapshotRepo  repos.ConfigurationSnapshotRepo

	hierarchy     HierarchyService
	configuration ConfigurationService
	calculation   CalculationService
	snapshot      SnapshotService
	types         ManufacturingTypeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.ManufacturingType{},
		&types.AttributeNode{},
		&types.Configuration{},
		&types.ConfigurationSelection{},
		&types.ConfigurationSnapshot{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log := logger.NewNop()
	env := &testEnv{
		db:            db,
		nodeRepo:      repos.NewAttributeNodeRepo(db, log),
		typeRepo:      repos.NewManufacturingTypeRepo(db, log),
		configRepo:    repos.NewConfigurationRepo(db, log),
		selectionRepo: repos.NewConfigurationSelectionRepo(db, log),
		snapshotRepo:  repos.NewConfigurationSnapshotRepo(db, log),
	}
	env.hierarchy = NewHierarchyService(db, log, env.nodeRepo, env.typeRepo, nil)
	env.configuration = NewConfigurationService(db, log, env.typeRepo, env.configRepo, env.selectionRepo, env.nodeRepo)
	// sqlite allows one writer at a time, so bulk recalculation runs
	// with a single worker here.
	env.calculation = NewCalculationService(db, log, env.configRepo, env.selectionRepo, env.nodeRepo, 1)
	env.snapshot = NewSnapshotService(db, log, env.configRepo, env.snapshotRepo, env.calculation)
	env.types = NewManufacturingTypeService(db, log, env.typeRepo)
	return env
}

func (e *testEnv) createType(t *testing.T, name string, basePrice, baseWeight string) *types.ManufacturingType {
	t.Helper()
	mt, err := e.types.Create(context.Background(), name, mustDec(t, basePrice), mustDec(t, baseWeight))
	if err != nil {
		t.Fatalf("create manufacturing type: %v", err)
	}
	return mt
}

func (e *testEnv) createNode(t *testing.T, input CreateNodeInput) *types.AttributeNode {
	t.Helper()
	node, err := e.hierarchy.CreateNode(context.Background(), input)
	if err != nil {
		t.Fatalf("create node %q: %v", input.Name, err)
	}
	return node
}

// insertSelection writes a selection row directly with a controlled
// creation time, since processing order follows insertion order.
func (e *testEnv) insertSelection(t *testing.T, sel *types.ConfigurationSelection, createdAt time.Time) *types.ConfigurationSelection {
	t.Helper()
	if sel.ID == uuid.Nil {
		sel.ID = uuid.New()
	}
	sel.CreatedAt = createdAt
	sel.UpdatedAt = createdAt
	if err := e.db.Create(sel).Error; err != nil {
		t.Fatalf("insert selection: %v", err)
	}
	return sel
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func ptr[T any](v T) *T { return &v }
