package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReadThrough(t *testing.T) {
	var loads atomic.Int64
	c := NewCache(func(ctx context.Context, ns string) ([]string, error) {
		loads.Add(1)
		return []string{ns + "/doc"}, nil
	})

	got, err := c.Get(context.Background(), "acme/main")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/main/doc"}, got)

	// second read served from cache
	_, err = c.Get(context.Background(), "acme/main")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loads.Load())

	// invalidation forces a reload
	c.Invalidate("acme/main")
	_, err = c.Get(context.Background(), "acme/main")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loads.Load())
}

func TestCacheErrorNotCached(t *testing.T) {
	fail := true
	c := NewCache(func(ctx context.Context, ns string) ([]int, error) {
		if fail {
			return nil, errors.New("store down")
		}
		return []int{1}, nil
	})

	_, err := c.Get(context.Background(), "ns")
	require.Error(t, err)

	fail = false
	got, err := c.Get(context.Background(), "ns")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}

func TestCacheCollapsesConcurrentMisses(t *testing.T) {
	var loads atomic.Int64
	release := make(chan struct{})
	c := NewCache(func(ctx context.Context, ns string) ([]int, error) {
		loads.Add(1)
		<-release
		return []int{42}, nil
	})

	const readers = 8
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Get(context.Background(), "ns")
			assert.NoError(t, err)
			assert.Equal(t, []int{42}, got)
		}()
	}
	close(release)
	wg.Wait()
	assert.Equal(t, int64(1), loads.Load())
}

func TestFirstNonEmpty(t *testing.T) {
	c := NewCache(func(ctx context.Context, ns string) ([]string, error) {
		switch ns {
		case "tenant/branch":
			return nil, nil
		case "tenant/root":
			return []string{"a", "b"}, nil
		}
		return nil, nil
	})

	got, ns, err := c.FirstNonEmpty(context.Background(), []string{"tenant/branch", "tenant/root", "tenant/legacy"})
	require.NoError(t, err)
	assert.Equal(t, "tenant/root", ns)
	assert.Equal(t, []string{"a", "b"}, got)

	got, ns, err = c.FirstNonEmpty(context.Background(), []string{"tenant/branch", "tenant/legacy"})
	require.NoError(t, err)
	assert.Equal(t, "tenant/legacy", ns)
	assert.Empty(t, got)
}
