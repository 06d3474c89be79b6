package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/fabriqa/configurator-backend/internal/logger"
)

// TreeCache caches rendered attribute trees per manufacturing type.
// Entries are invalidated on every structural mutation, so a short TTL
// is only a safety net against missed invalidations.
type TreeCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewTreeCache(log *logger.Logger) (*TreeCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &TreeCache{
		log: log.With("client", "TreeCache"),
		rdb: rdb,
		ttl: 10 * time.Minute,
	}, nil
}

func treeKey(typeID uuid.UUID) string {
	return "configurator:tree:" + typeID.String()
}

func (c *TreeCache) GetTree(ctx context.Context, typeID uuid.UUID) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, treeKey(typeID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("tree cache read failed", "error", err, "manufacturing_type_id", typeID)
		}
		return nil, false
	}
	return payload, true
}

func (c *TreeCache) SetTree(ctx context.Context, typeID uuid.UUID, payload []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, treeKey(typeID), payload, c.ttl).Err(); err != nil {
		c.log.Warn("tree cache write failed", "error", err, "manufacturing_type_id", typeID)
	}
}

func (c *TreeCache) Invalidate(ctx context.Context, typeID uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, treeKey(typeID)).Err(); err != nil {
		c.log.Warn("tree cache invalidation failed", "error", err, "manufacturing_type_id", typeID)
	}
}

func (c *TreeCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
