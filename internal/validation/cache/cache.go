// Package cache is V's read-through mirror of three cache-key shapes
// Access-Catalog and User-Entitlement own (conflicts:matrix,
// access:{id}:groups, user:{id}:active_groups); group:{id}:accesses is not
// mirrored. V never invalidates these keys
// itself; it tolerates up to one TTL window of staleness because AC and UE
// invalidate on their own writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("validation: cache mirror miss")

// Mirror is a thin GET/SET wrapper around *redis.Client; it never deletes.
type Mirror struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Mirror {
	return &Mirror{rdb: rdb}
}

func (m *Mirror) get(ctx context.Context, key string) ([]byte, error) {
	v, err := m.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return v, err
}

func (m *Mirror) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.rdb.Set(ctx, key, value, ttl).Err()
}

// ReadThrough tries the mirrored key first; on miss or decode error it
// falls back to load, then best-effort populates the mirror with ttl. A
// failure to populate the mirror is not surfaced: the next call just
// misses again and reloads from upstream.
func ReadThrough[T any](ctx context.Context, m *Mirror, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if raw, err := m.get(ctx, key); err == nil {
		var v T
		if decodeErr := json.Unmarshal(raw, &v); decodeErr == nil {
			return v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if encoded, encErr := json.Marshal(v); encErr == nil {
		_ = m.set(ctx, key, encoded, ttl)
	}
	return v, nil
}

func KeyConflictsMatrix() string { return "conflicts:matrix" }

func KeyAccessGroups(accessID int64) string {
	return "access:" + strconv.FormatInt(accessID, 10) + ":groups"
}

func KeyActiveGroups(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10) + ":active_groups"
}
