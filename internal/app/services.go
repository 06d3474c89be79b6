package app

import (
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/services"
)

type Services struct {
	ManufacturingType services.ManufacturingTypeService
	Hierarchy         services.HierarchyService
	Configuration     services.ConfigurationService
	Calculation       services.CalculationService
	Snapshot          services.SnapshotService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, treeCache services.TreeCache) Services {
	log.Info("Wiring services...")

	calculation := services.NewCalculationService(
		db, log,
		reposet.Configuration,
		reposet.ConfigurationSelection,
		reposet.AttributeNode,
		cfg.RecalcConcurrency,
	)

	return Services{
		ManufacturingType: services.NewManufacturingTypeService(db, log, reposet.ManufacturingType),
		Hierarchy: services.NewHierarchyService(
			db, log,
			reposet.AttributeNode,
			reposet.ManufacturingType,
			treeCache,
		),
		Configuration: services.NewConfigurationService(
			db, log,
			reposet.ManufacturingType,
			reposet.Configuration,
			reposet.ConfigurationSelection,
			reposet.AttributeNode,
		),
		Calculation: calculation,
		Snapshot: services.NewSnapshotService(
			db, log,
			reposet.Configuration,
			reposet.ConfigurationSnapshot,
			calculation,
		),
	}
}
