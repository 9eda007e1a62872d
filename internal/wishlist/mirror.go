package wishlist

import "context"

// Mirror is the durable copy of the wishlist: a single key holding a
// JSON array of product ids, read once at startup and overwritten
// wholesale on every change.
type Mirror interface {
	Load(ctx context.Context) ([]int64, error)
	Save(ctx context.Context, ids []int64) error
}

// NopMirror keeps the wishlist volatile: membership is scoped to the
// process lifetime. Fallback for deployments without storage.
type NopMirror struct{}

func (NopMirror) Load(context.Context) ([]int64, error) { return nil, nil }
func (NopMirror) Save(context.Context, []int64) error   { return nil }
