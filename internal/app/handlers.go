package app

import (
	"github.com/fabriqa/configurator-backend/internal/handlers"
	"github.com/fabriqa/configurator-backend/internal/logger"
)

type Handlers struct {
	ManufacturingType *handlers.ManufacturingTypeHandler
	Node              *handlers.NodeHandler
	Configuration     *handlers.ConfigurationHandler
	Snapshot          *handlers.SnapshotHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		ManufacturingType: handlers.NewManufacturingTypeHandler(log, serviceset.ManufacturingType, serviceset.Calculation),
		Node:              handlers.NewNodeHandler(log, serviceset.Hierarchy),
		Configuration:     handlers.NewConfigurationHandler(log, serviceset.Configuration, serviceset.Calculation),
		Snapshot:          handlers.NewSnapshotHandler(log, serviceset.Snapshot),
	}
}
