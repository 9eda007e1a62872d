package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductStore owns the canonical in-memory product list. All
// mutations are serialized behind one lock; nothing else holds
// product state.
type ProductStore struct {
	mu       sync.RWMutex
	products []Product
	status   Status

	upstream *UpstreamClient
	log      *zap.Logger
}

func NewProductStore(upstream *UpstreamClient, log *zap.Logger) *ProductStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductStore{
		upstream: upstream,
		log:      log,
	}
}

// Refresh replaces the whole list from upstream. On failure the
// previous list stays intact and the status records the message.
// Safe to call again while a prior call is in flight: whichever
// completion applies last determines the final state.
func (s *ProductStore) Refresh(ctx context.Context) {
	fetchID := uuid.NewString()

	s.setLoading()
	s.log.Info("product refresh started", zap.String("fetch_id", fetchID))

	products, err := s.upstream.Products(ctx)
	if err != nil {
		s.setFailed(err.Error())
		s.log.Warn("product refresh failed",
			zap.String("fetch_id", fetchID),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	s.products = products
	s.status = Status{State: StateLoaded}
	s.mu.Unlock()

	s.log.Info("product refresh finished",
		zap.String("fetch_id", fetchID),
		zap.Int("count", len(products)),
	)
}

// All returns a copy of the product list.
func (s *ProductStore) All() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *ProductStore) Get(id int64) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Add appends. The caller supplies a unique id.
func (s *ProductStore) Add(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
}

// Update replaces the product whose id matches. A missing id is a
// silent no-op, not an error.
func (s *ProductStore) Update(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
}

// Remove deletes by id; a missing id is a no-op.
func (s *ProductStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	s.products = out
}

// SetAll replaces the whole list and marks the store loaded.
func (s *ProductStore) SetAll(products []Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.status = Status{State: StateLoaded}
}

func (s *ProductStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *ProductStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *ProductStore) setLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{State: StateLoading}
}

func (s *ProductStore) setFailed(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{State: StateFailed, Message: msg}
}
