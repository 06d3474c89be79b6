package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/db"
	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/middleware"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clientset, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clientset.treeCacheOrNil())
	handlerset := wireHandlers(log, serviceset)
	requestLog := middleware.NewRequestLogMiddleware(log)
	router := wireRouter(cfg, handlerset, requestLog)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Clients:  clientset,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting HTTP server", "addr", a.Cfg.HTTPAddr)
	return a.Router.Run(a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Clients.TreeCache != nil {
		_ = a.Clients.TreeCache.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
