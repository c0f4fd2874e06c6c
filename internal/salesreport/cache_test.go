package salesreport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr, client
}

func TestCacheFetchReportStoresAndReuses(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "salesreport", "report", "k")
	require.NoError(t, err)
	assert.Equal(t, "salesreport:report:k:1", key)

	var calls atomic.Int32
	loader := func(context.Context) (Report, error) {
		calls.Add(1)
		return sampleReport(), nil
	}

	first, err := cache.FetchReport(ctx, key, loader)
	require.NoError(t, err)
	second, err := cache.FetchReport(ctx, key, loader)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first.FoodSalesByCategoryAndOrderType.Names(), second.FoodSalesByCategoryAndOrderType.Names())
	assert.Equal(t, first.RevenueByOrderType, second.RevenueByOrderType)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestCacheBumpChangesKeyAndPublishes(t *testing.T) {
	cache, _, client := newTestCache(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, bumpChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	before, err := cache.BuildKey(ctx, "x")
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, "x")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", msg.Payload)
}

func TestCacheListenForInvalidationAppliesAnnouncedVersion(t *testing.T) {
	cache, _, client := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bumps := make(chan int64, 4)
	require.NoError(t, cache.ListenForInvalidation(ctx, func(v int64) { bumps <- v }))

	next := func() int64 {
		select {
		case v := <-bumps:
			return v
		case <-time.After(2 * time.Second):
			t.Fatal("no bump received")
			return 0
		}
	}

	require.NoError(t, client.Publish(ctx, bumpChannel, "7").Err())
	assert.Equal(t, int64(7), next())
	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ver)

	require.NoError(t, client.Publish(ctx, bumpChannel, "3").Err())
	assert.Equal(t, int64(7), next(), "stale announcements never lower the version")

	require.NoError(t, client.Publish(ctx, bumpChannel, "garbage").Err())
	assert.Equal(t, int64(8), next())

	require.NoError(t, cache.Bump(ctx))
	assert.Equal(t, int64(9), next())
}

func TestNilCacheListenIsNoop(t *testing.T) {
	var cache *Cache
	assert.NoError(t, cache.ListenForInvalidation(context.Background(), nil))
	assert.NoError(t, NewCache(nil, time.Minute).ListenForInvalidation(context.Background(), nil))
}

func TestCacheLoaderErrorIsNotStored(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	boom := errors.New("pos down")
	_, err := cache.FetchReport(context.Background(), "k", func(context.Context) (Report, error) {
		return Report{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestCacheCoalescesConcurrentMisses(t *testing.T) {
	cache, _, _ := newTestCache(t)
	release := make(chan struct{})
	var calls atomic.Int32
	loader := func(context.Context) (Report, error) {
		calls.Add(1)
		<-release
		return sampleReport(), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.FetchReport(context.Background(), "shared", loader)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestNilCachePassesThrough(t *testing.T) {
	var cache *Cache
	got, err := cache.FetchReport(context.Background(), "k", func(context.Context) (Report, error) {
		return sampleReport(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got.FoodSalesByCategoryAndOrderType.Len())
	assert.NoError(t, cache.Bump(context.Background()))

	key, err := NewCache(nil, time.Minute).BuildKey(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)
}
