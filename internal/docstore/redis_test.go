package docstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/ledger/internal/errs"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client)
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)

	_, err := r.Get(ctx, "ns/accounts/a1")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, r.Set(ctx, "ns/accounts/a1", mustDoc(t, map[string]any{"name": "Cash", "balance_minor": 0})))
	raw, err := r.Get(ctx, "ns/accounts/a1")
	require.NoError(t, err)
	assert.True(t, fieldEquals(raw, "name", "Cash"))

	require.NoError(t, r.Delete(ctx, "ns/accounts/a1"))
	_, err = r.Get(ctx, "ns/accounts/a1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRedisApplyBatch(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)
	require.NoError(t, r.Set(ctx, "ns/accounts/a", mustDoc(t, map[string]any{"balance_minor": 100, "version": int64(1)})))
	require.NoError(t, r.Set(ctx, "ns/accounts/b", mustDoc(t, map[string]any{"balance_minor": 50, "version": int64(1)})))

	err := r.Apply(ctx, []Write{
		{Path: "ns/accounts/a", Fields: map[string]any{"balance_minor": 150, "version": int64(2)}, Guard: &Guard{Field: "version", Equals: int64(1)}},
		{Path: "ns/accounts/b", Fields: map[string]any{"balance_minor": 0, "version": int64(2)}, Guard: &Guard{Field: "version", Equals: int64(1)}},
	})
	require.NoError(t, err)

	raw, err := r.Get(ctx, "ns/accounts/a")
	require.NoError(t, err)
	assert.True(t, fieldEquals(raw, "balance_minor", 150))

	// stale guard: neither write applies
	err = r.Apply(ctx, []Write{
		{Path: "ns/accounts/a", Fields: map[string]any{"balance_minor": 999}, Guard: &Guard{Field: "version", Equals: int64(1)}},
		{Path: "ns/accounts/b", Fields: map[string]any{"balance_minor": 999}},
	})
	assert.ErrorIs(t, err, errs.ErrConflict)
	raw, err = r.Get(ctx, "ns/accounts/b")
	require.NoError(t, err)
	assert.True(t, fieldEquals(raw, "balance_minor", 0))
}

func TestRedisListAndQuery(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)
	require.NoError(t, r.Set(ctx, "ns/bills/1", mustDoc(t, map[string]any{"status": "open"})))
	require.NoError(t, r.Set(ctx, "ns/bills/2", mustDoc(t, map[string]any{"status": "paid"})))
	require.NoError(t, r.Set(ctx, "ns2/bills/3", mustDoc(t, map[string]any{"status": "open"})))

	all, err := r.List(ctx, "ns/bills/")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := r.Query(ctx, "ns/bills/", "status", "open")
	require.NoError(t, err)
	require.Len(t, open, 1)
	_, ok := open["ns/bills/1"]
	assert.True(t, ok)
}
