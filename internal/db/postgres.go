package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/types"
	"github.com/fabriqa/configurator-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "configurator", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.ManufacturingType{},
		&types.AttributeNode{},
		&types.Configuration{},
		&types.ConfigurationSelection{},
		&types.ConfigurationSnapshot{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}
