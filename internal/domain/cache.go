package domain

import (
	"context"

	"github.com/google/uuid"
)

// ListCache holds a user's rendered list overview for a short TTL.
// Implementations must treat a miss as (nil, false, nil).
type ListCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]List, bool, error)
	Set(ctx context.Context, userID uuid.UUID, lists []List) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}
