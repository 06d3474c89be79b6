package app

import (
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/repos"
)

type Repos struct {
	ManufacturingType      repos.ManufacturingTypeRepo
	AttributeNode          repos.AttributeNodeRepo
	Configuration          repos.ConfigurationRepo
	ConfigurationSelection repos.ConfigurationSelectionRepo
	ConfigurationSnapshot  repos.ConfigurationSnapshotRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		ManufacturingType:      repos.NewManufacturingTypeRepo(db, log),
		AttributeNode:          repos.NewAttributeNodeRepo(db, log),
		Configuration:          repos.NewConfigurationRepo(db, log),
		ConfigurationSelection: repos.NewConfigurationSelectionRepo(db, log),
		ConfigurationSnapshot:  repos.NewConfigurationSnapshotRepo(db, log),
	}
}
