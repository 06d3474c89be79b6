package app

import (
	"strings"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/utils"
)

// Config is built once at startup and injected into the services that
// need it. No global settings state.
type Config struct {
	HTTPAddr     string
	AllowOrigins []string

	// RecalcConcurrency bounds how many configurations are recomputed
	// in parallel during a bulk recalculation.
	RecalcConcurrency int
}

func LoadConfig(log *logger.Logger) Config {
	addr := utils.GetEnv("HTTP_ADDR", ":8080", log)
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	concurrency := utils.GetEnvAsInt("RECALC_CONCURRENCY", 4, log)

	return Config{
		HTTPAddr:          addr,
		AllowOrigins:      strings.Split(origins, ","),
		RecalcConcurrency: concurrency,
	}
}
