package wishlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	wishlistKey = "wishlist"
)

// PostgresMirror keeps the wishlist in a one-row key/value table.
type PostgresMirror struct {
	db *sql.DB
}

// NewPostgresMirror ensures the table exists and returns the mirror.
func NewPostgresMirror(ctx context.Context, db *sql.DB) (*PostgresMirror, error) {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS kv (
				key  TEXT PRIMARY KEY,
				data JSONB NOT NULL
			)
		`)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "ensure kv table")
	}
	return &PostgresMirror{db: db}, nil
}

func (m *PostgresMirror) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return m.db.PingContext(ctx)
	})
}

func (m *PostgresMirror) Load(ctx context.Context) ([]int64, error) {
	var raw []byte

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return m.db.QueryRowContext(ctx, `
			SELECT data
			FROM kv
			WHERE key = $1
		`, wishlistKey).Scan(&raw)
	})

	if err == sql.ErrNoRows {
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

func (m *PostgresMirror) Save(ctx context.Context, ids []int64) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := m.db.ExecContext(ctx, `
			INSERT INTO kv (key, data)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data
		`, wishlistKey, raw)
		return err
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
