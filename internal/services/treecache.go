package services

import (
	"context"

	"github.com/google/uuid"
)

// TreeCache is an optional read cache for rendered trees, keyed by
// manufacturing type. A nil TreeCache disables caching; the hierarchy
// service must behave identically either way. Implementations live in
// internal/clients.
type TreeCache interface {
	GetTree(ctx context.Context, typeID uuid.UUID) ([]byte, bool)
	SetTree(ctx context.Context, typeID uuid.UUID, payload []byte)
	Invalidate(ctx context.Context, typeID uuid.UUID)
}
