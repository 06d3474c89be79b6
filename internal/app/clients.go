package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/fabriqa/configurator-backend/internal/clients/redis"
	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/services"
)

type Clients struct {
	TreeCache *redis.TreeCache
}

// wireClients builds optional external clients. Without REDIS_ADDR the
// tree cache stays nil and the hierarchy service reads straight from
// the database.
func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	var cache *redis.TreeCache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		c, err := redis.NewTreeCache(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis tree cache: %w", err)
		}
		cache = c
	}

	return Clients{TreeCache: cache}, nil
}

// treeCacheOrNil avoids handing the services a non-nil interface
// wrapping a nil pointer.
func (c Clients) treeCacheOrNil() services.TreeCache {
	if c.TreeCache == nil {
		return nil
	}
	return c.TreeCache
}
