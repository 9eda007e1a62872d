package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryStore owns the in-memory category labels. Same fetch
// lifecycle as ProductStore; no uniqueness is enforced, upstream
// duplicates pass through.
type CategoryStore struct {
	mu         sync.RWMutex
	categories []string
	status     Status

	upstream *UpstreamClient
	log      *zap.Logger
}

func NewCategoryStore(upstream *UpstreamClient, log *zap.Logger) *CategoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryStore{
		upstream: upstream,
		log:      log,
	}
}

func (s *CategoryStore) Refresh(ctx context.Context) {
	fetchID := uuid.NewString()

	s.mu.Lock()
	s.status = Status{State: StateLoading}
	s.mu.Unlock()
	s.log.Info("category refresh started", zap.String("fetch_id", fetchID))

	categories, err := s.upstream.Categories(ctx)
	if err != nil {
		s.mu.Lock()
		s.status = Status{State: StateFailed, Message: err.Error()}
		s.mu.Unlock()
		s.log.Warn("category refresh failed",
			zap.String("fetch_id", fetchID),
			zap.Error(err),
		)
		return
	}

	s.ReplaceAll(categories)
	s.log.Info("category refresh finished",
		zap.String("fetch_id", fetchID),
		zap.Int("count", len(categories)),
	)
}

// ReplaceAll swaps in a new label list and marks the store loaded.
func (s *CategoryStore) ReplaceAll(categories []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
	s.status = Status{State: StateLoaded}
}

func (s *CategoryStore) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *CategoryStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
