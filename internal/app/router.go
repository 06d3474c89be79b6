package app

import (
	"github.com/gin-gonic/gin"

	"github.com/fabriqa/configurator-backend/internal/middleware"
	"github.com/fabriqa/configurator-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, requestLog *middleware.RequestLogMiddleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowOrigins:             cfg.AllowOrigins,
		RequestLog:               requestLog,
		ManufacturingTypeHandler: handlerset.ManufacturingType,
		NodeHandler:              handlerset.Node,
		ConfigurationHandler:     handlerset.Configuration,
		SnapshotHandler:          handlerset.Snapshot,
	})
}
