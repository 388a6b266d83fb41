package junat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFetcher(calls *atomic.Int32, delay time.Duration) TrainFetcher {
	return func(ctx context.Context, date string, trainNumber int) (Train, error) {
		calls.Add(1)
		time.Sleep(delay)
		return Train{TrainNumber: trainNumber, DepartureDate: date, CommuterLineID: "R"}, nil
	}
}

func TestTrainCache(t *testing.T) {
	ctx := context.Background()

	t.Run("second lookup is served from cache", func(t *testing.T) {
		var calls atomic.Int32
		cache := NewTrainCache(10, time.Hour, countingFetcher(&calls, 0))

		first, err := cache.Get(ctx, "2026-02-20", 8543)
		require.NoError(t, err)
		second, err := cache.Get(ctx, "2026-02-20", 8543)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "R", second.CommuterLineID)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("same train number on another date is a separate entry", func(t *testing.T) {
		var calls atomic.Int32
		cache := NewTrainCache(10, time.Hour, countingFetcher(&calls, 0))

		_, err := cache.Get(ctx, "2026-02-20", 8543)
		require.NoError(t, err)
		train, err := cache.Get(ctx, "2026-02-21", 8543)
		require.NoError(t, err)

		assert.Equal(t, "2026-02-21", train.DepartureDate)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("concurrent misses for one key fetch once", func(t *testing.T) {
		var calls atomic.Int32
		cache := NewTrainCache(10, time.Hour, countingFetcher(&calls, 50*time.Millisecond))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := cache.Get(ctx, "2026-02-20", 8543)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("failed fetch is not cached", func(t *testing.T) {
		var calls atomic.Int32
		fail := true
		cache := NewTrainCache(10, time.Hour, func(ctx context.Context, date string, n int) (Train, error) {
			calls.Add(1)
			if fail {
				return Train{}, errors.New("boom")
			}
			return Train{TrainNumber: n}, nil
		})

		_, err := cache.Get(ctx, "2026-02-20", 1)
		require.Error(t, err)

		fail = false
		_, err = cache.Get(ctx, "2026-02-20", 1)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("least recently used entry is evicted at capacity", func(t *testing.T) {
		var calls atomic.Int32
		cache := NewTrainCache(2, time.Hour, countingFetcher(&calls, 0))

		for _, n := range []int{1, 2, 3} {
			_, err := cache.Get(ctx, "2026-02-20", n)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, cache.Len())

		_, err := cache.Get(ctx, "2026-02-20", 1)
		require.NoError(t, err)
		assert.Equal(t, int32(4), calls.Load())
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		var calls atomic.Int32
		cache := NewTrainCache(10, 20*time.Millisecond, countingFetcher(&calls, 0))

		_, err := cache.Get(ctx, "2026-02-20", 1)
		require.NoError(t, err)
		time.Sleep(40 * time.Millisecond)
		_, err = cache.Get(ctx, "2026-02-20", 1)
		require.NoError(t, err)

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("zero size and ttl select the defaults", func(t *testing.T) {
		var calls atomic.Int32
		cache := NewTrainCache(0, 0, countingFetcher(&calls, 0))

		_, err := cache.Get(ctx, "2026-02-20", 1)
		require.NoError(t, err)
		_, err = cache.Get(ctx, "2026-02-20", 1)
		require.NoError(t, err)

		assert.Equal(t, 1, cache.Len())
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("cancelled caller does not fail others sharing the fetch", func(t *testing.T) {
		var calls atomic.Int32
		cache := NewTrainCache(10, time.Hour, func(ctx context.Context, date string, trainNumber int) (Train, error) {
			calls.Add(1)
			select {
			case <-ctx.Done():
				return Train{}, ctx.Err()
			case <-time.After(100 * time.Millisecond):
				return Train{TrainNumber: trainNumber, DepartureDate: date, CommuterLineID: "R"}, nil
			}
		})

		ctxA, cancelA := context.WithCancel(ctx)
		errA := make(chan error, 1)
		go func() {
			_, err := cache.Get(ctxA, "2026-02-20", 1)
			errA <- err
		}()

		type result struct {
			train Train
			err   error
		}
		resB := make(chan result, 1)
		time.Sleep(10 * time.Millisecond)
		go func() {
			train, err := cache.Get(context.Background(), "2026-02-20", 1)
			resB <- result{train, err}
		}()

		time.Sleep(20 * time.Millisecond)
		cancelA()

		select {
		case err := <-errA:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(50 * time.Millisecond):
			t.Fatal("cancelled caller did not return promptly")
		}

		b := <-resB
		require.NoError(t, b.err)
		assert.Equal(t, "R", b.train.CommuterLineID)
		assert.Equal(t, int32(1), calls.Load())

		// the detached fetch still filled the cache
		assert.Equal(t, 1, cache.Len())
	})
}

func TestTrainCacheStats(t *testing.T) {
	var calls atomic.Int32
	cache := NewTrainCache(10, time.Hour, countingFetcher(&calls, 0))

	assert.Equal(t, CacheStats{}, cache.Stats())

	_, err := cache.Get(context.Background(), "2026-02-20", 8543)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "2026-02-20", 8543)
	require.NoError(t, err)

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.GreaterOrEqual(t, stats.Misses, uint64(1))
	assert.Greater(t, stats.HitRate, 0.0)
}
