package wishlist

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// RedisMirror keeps the wishlist under a single redis key as a JSON
// array of ids.
type RedisMirror struct {
	client *redis.Client
	key    string
}

func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client, key: wishlistKey}
}

func (m *RedisMirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

func (m *RedisMirror) Load(ctx context.Context) ([]int64, error) {
	raw, err := m.client.Get(ctx, m.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, errors.Wrap(err, "decode wishlist")
	}
	return ids, nil
}

func (m *RedisMirror) Save(ctx context.Context, ids []int64) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, m.key, raw, 0).Err()
}
