package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fabriqa/configurator-backend/internal/handlers"
	"github.com/fabriqa/configurator-backend/internal/middleware"
)

type RouterConfig struct {
	AllowOrigins []string

	RequestLog *middleware.RequestLogMiddleware

	ManufacturingTypeHandler *handlers.ManufacturingTypeHandler
	NodeHandler              *handlers.NodeHandler
	ConfigurationHandler     *handlers.ConfigurationHandler
	SnapshotHandler          *handlers.SnapshotHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLog != nil {
		router.Use(cfg.RequestLog.Handler())
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Catalog
		api.POST("/manufacturing-types", cfg.ManufacturingTypeHandler.Create)
		api.GET("/manufacturing-types", cfg.ManufacturingTypeHandler.List)
		api.GET("/manufacturing-types/:id", cfg.ManufacturingTypeHandler.Get)
		api.POST("/manufacturing-types/:id/recalculate", cfg.ManufacturingTypeHandler.Recalculate)

		// Attribute tree
		api.POST("/manufacturing-types/:id/nodes", cfg.NodeHandler.Create)
		api.GET("/manufacturing-types/:id/tree", cfg.NodeHandler.Tree)
		api.GET("/nodes/:id", cfg.NodeHandler.Get)
		api.PATCH("/nodes/:id/rename", cfg.NodeHandler.Rename)
		api.PATCH("/nodes/:id/move", cfg.NodeHandler.Move)
		api.DELETE("/nodes/:id", cfg.NodeHandler.Delete)
		api.GET("/nodes/:id/descendants", cfg.NodeHandler.Descendants)
		api.GET("/nodes/:id/ancestors", cfg.NodeHandler.Ancestors)

		// Configurations
		api.POST("/configurations", cfg.ConfigurationHandler.Create)
		api.GET("/configurations/:id", cfg.ConfigurationHandler.Get)
		api.GET("/configurations/:id/selections", cfg.ConfigurationHandler.ListSelections)
		api.PUT("/configurations/:id/selections/:nodeID", cfg.ConfigurationHandler.SetSelection)
		api.DELETE("/configurations/:id/selections/:nodeID", cfg.ConfigurationHandler.RemoveSelection)
		api.POST("/configurations/:id/calculate", cfg.ConfigurationHandler.Calculate)
		api.GET("/configurations/:id/preview", cfg.ConfigurationHandler.Preview)

		// Snapshots
		api.POST("/configurations/:id/snapshots", cfg.SnapshotHandler.Create)
		api.GET("/configurations/:id/snapshots", cfg.SnapshotHandler.ListForConfiguration)
		api.GET("/snapshots/:id", cfg.SnapshotHandler.Get)
	}

	return router
}
