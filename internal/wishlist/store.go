package wishlist

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const saveTimeout = 3 * time.Second

// Store holds the set of liked product ids. The in-memory set is the
// source of truth; the mirror is a one-way copy loaded once at
// construction and rewritten wholesale after every mutation. Mirror
// failures are logged and never block the in-memory operation.
type Store struct {
	mu      sync.Mutex
	ids     map[int64]struct{}
	version uint64

	mirror Mirror
	log    *zap.Logger

	saveMu       sync.Mutex
	savedVersion uint64
}

// New builds a store backed by the given mirror. A load failure is
// best effort: the store starts empty and the error is logged.
func New(ctx context.Context, mirror Mirror, log *zap.Logger) *Store {
	if mirror == nil {
		mirror = NopMirror{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		ids:    make(map[int64]struct{}),
		mirror: mirror,
		log:    log,
	}

	loaded, err := mirror.Load(ctx)
	if err != nil {
		log.Warn("wishlist load failed, starting empty", zap.Error(err))
		return s
	}
	for _, id := range loaded {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *Store) Contains(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Add marks an id as liked. Adding a present id is a no-op and does
// not touch the mirror.
func (s *Store) Add(id int64) {
	s.mu.Lock()
	if _, ok := s.ids[id]; ok {
		s.mu.Unlock()
		return
	}
	s.ids[id] = struct{}{}
	version, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	go s.persist(version, snapshot)
}

// Remove unmarks an id. Removing an absent id is a no-op.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	if _, ok := s.ids[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.ids, id)
	version, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	go s.persist(version, snapshot)
}

// Toggle flips membership and reports the state after the flip.
func (s *Store) Toggle(id int64) bool {
	s.mu.Lock()
	_, present := s.ids[id]
	if present {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	version, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	go s.persist(version, snapshot)
	return !present
}

// IDs returns the membership as a sorted snapshot.
func (s *Store) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedIDs(s.ids)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// snapshotLocked bumps the version and captures the current ids.
// Callers must hold mu.
func (s *Store) snapshotLocked() (uint64, []int64) {
	s.version++
	return s.version, sortedIDs(s.ids)
}

// persist writes a snapshot to the mirror. Snapshots from superseded
// mutations are dropped so the mirror always ends on the last write.
func (s *Store) persist(version uint64, ids []int64) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if version <= s.savedVersion {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.mirror.Save(ctx, ids); err != nil {
		s.log.Warn("wishlist save failed",
			zap.Error(err),
			zap.Int("count", len(ids)),
		)
		return
	}
	s.savedVersion = version
}

func sortedIDs(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
