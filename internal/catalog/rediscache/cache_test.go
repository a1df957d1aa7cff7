//go:build unit

package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accessentitlement/platform/internal/catalog"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb)
}

func TestSetThenGetRoundTrips(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "conflicts:matrix", []byte(`[{"group_id_a":1,"group_id_b":2}]`), time.Minute))

	got, err := c.Get(ctx, "conflicts:matrix")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"group_id_a":1,"group_id_b":2}]`, string(got))
}

func TestGetMissReturnsCacheMiss(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Get(context.Background(), "group:1:accesses")
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
}

func TestDeleteRemovesMultipleKeys(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "group:1:accesses", []byte("[]"), time.Minute))
	require.NoError(t, c.Set(ctx, "access:2:groups", []byte("[]"), time.Minute))

	require.NoError(t, c.Delete(ctx, "group:1:accesses", "access:2:groups"))

	_, err := c.Get(ctx, "group:1:accesses")
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
	_, err = c.Get(ctx, "access:2:groups")
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
}

func TestDeleteNoKeysIsNoop(t *testing.T) {
	c := newTestCache(t)
	assert.NoError(t, c.Delete(context.Background()))
}
