package catalog

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical catalog entry. ID is zero only before the
// editor assigns one; once assigned it is unique within the store.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// State is the lifecycle of an asynchronous load.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Status pairs the load state with the failure message, if any.
// Exactly one state holds at a time.
type Status struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
}

// idGenerator hands out time-based product ids. Ids are unix
// milliseconds, bumped when two creations land in the same
// millisecond so they stay strictly increasing.
type idGenerator struct {
	mu   sync.Mutex
	last int64
}

func (g *idGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
