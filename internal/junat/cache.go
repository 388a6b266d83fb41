package junat

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// TrainFetcher loads a train's details from upstream.
type TrainFetcher func(ctx context.Context, date string, trainNumber int) (Train, error)

// TrainCache memoizes train details keyed by departure date and train number.
// Entries are evicted least-recently-used once size is reached and expire after
// ttl. Concurrent misses for the same key share a single upstream fetch, and
// failed fetches are never cached.
type TrainCache struct {
	entries gcache.Cache
	group   singleflight.Group
	fetch   TrainFetcher
}

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 24 * time.Hour

	// upper bound for a fetch no single caller can cancel
	sharedFetchTimeout = 30 * time.Second
)

// NewTrainCache creates a cache holding at most size trains for ttl each.
// Non-positive values select the defaults.
func NewTrainCache(size int, ttl time.Duration, fetch TrainFetcher) *TrainCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &TrainCache{
		entries: gcache.New(size).LRU().Expiration(ttl).Build(),
		fetch:   fetch,
	}
}

// Get returns the train for (date, trainNumber), fetching it on a miss. The
// shared fetch is detached from the caller's cancellation, so a caller that
// gives up returns ctx.Err() without failing others waiting on the same key.
func (c *TrainCache) Get(ctx context.Context, date string, trainNumber int) (Train, error) {
	key := cacheKey(date, trainNumber)

	if v, err := c.entries.Get(key); err == nil {
		return v.(Train), nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// a caller that just finished the same fetch may have filled the entry
		if v, err := c.entries.Get(key); err == nil {
			return v, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		train, err := c.fetch(fetchCtx, date, trainNumber)
		if err != nil {
			return nil, err
		}

		if err := c.entries.Set(key, train); err != nil {
			return nil, fmt.Errorf("caching train %s: %w", key, err)
		}
		return train, nil
	})

	select {
	case <-ctx.Done():
		return Train{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Train{}, res.Err
		}
		return res.Val.(Train), nil
	}
}

// CacheStats is a snapshot of cache usage.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// Stats reports entry count and lookup counters since creation.
func (c *TrainCache) Stats() CacheStats {
	return CacheStats{
		Entries: c.Len(),
		Hits:    c.entries.HitCount(),
		Misses:  c.entries.MissCount(),
		HitRate: c.entries.HitRate(),
	}
}

// Len returns the number of live entries.
func (c *TrainCache) Len() int {
	return c.entries.Len(true)
}

func cacheKey(date string, trainNumber int) string {
	return fmt.Sprintf("%s/%d", date, trainNumber)
}
