package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/tasklists/internal/domain"
)

// Service is the application layer. It is the only component that references
// multiple domain components and it orchestrates all use cases.
type Service struct {
	users    domain.UserRepository
	lists    domain.ListRepository
	tasks    domain.TaskRepository
	hasher   domain.PasswordHasher
	tokens   domain.TokenIssuer
	denylist domain.TokenDenylist
	cache    domain.ListCache
	clock    clockwork.Clock

	overviewGroup singleflight.Group
	// overviewGen counts invalidations per user so a fill that raced a
	// mutation does not leave its result in the cache.
	overviewGen sync.Map // uuid.UUID -> *atomic.Uint64
}

type Option func(*Service)

// WithDenylist enables server-side logout. Without it Logout only clears
// the client's cookie.
func WithDenylist(d domain.TokenDenylist) Option {
	return func(s *Service) { s.denylist = d }
}

// WithListCache caches each user's list overview.
func WithListCache(c domain.ListCache) Option {
	return func(s *Service) { s.cache = c }
}

func NewService(
	users domain.UserRepository,
	lists domain.ListRepository,
	tasks domain.TaskRepository,
	hasher domain.PasswordHasher,
	tokens domain.TokenIssuer,
	clock clockwork.Clock,
	opts ...Option,
) *Service {
	s := &Service{
		users:  users,
		lists:  lists,
		tasks:  tasks,
		hasher: hasher,
		tokens: tokens,
		clock:  clock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// invalidateOverview drops the cached overview. Failures are logged only:
// the entry expires on its own.
func (s *Service) invalidateOverview(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.generation(userID).Add(1)
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		slog.WarnContext(ctx, "List cache invalidation failed", "user_id", userID.String(), "error", err)
	}
}

func (s *Service) generation(userID uuid.UUID) *atomic.Uint64 {
	v, _ := s.overviewGen.LoadOrStore(userID, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

// storeOverview caches lists read at generation gen. An invalidation that
// lands before or during the write drops the entry again.
func (s *Service) storeOverview(ctx context.Context, userID uuid.UUID, gen uint64, lists []domain.List) {
	counter := s.generation(userID)
	if counter.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, userID, lists); err != nil {
		slog.WarnContext(ctx, "List cache write failed", "user_id", userID.String(), "error", err)
		return
	}
	if counter.Load() != gen {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			slog.WarnContext(ctx, "List cache invalidation failed", "user_id", userID.String(), "error", err)
		}
	}
}
