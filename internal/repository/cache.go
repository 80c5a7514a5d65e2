package repository

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"bi-service/internal/model"
)

type InspectionSource interface {
	Find(ctx context.Context, filter model.InspectionFilter) ([]model.InspectionRecord, error)
	Recent(ctx context.Context, limit int) ([]model.InspectionRecord, error)
	Summary(ctx context.Context) (model.GeneralMetrics, error)
}

// CachedStore memoizes Find results by filter key. Entries live until Clear;
// there is no expiry, so results can go stale while the process runs.
type CachedStore struct {
	source  InspectionSource
	log     zerolog.Logger
	mu      sync.RWMutex
	entries map[string][]model.InspectionRecord
	group   singleflight.Group
}

func NewCachedStore(source InspectionSource, log zerolog.Logger) *CachedStore {
	return &CachedStore{
		source:  source,
		log:     log,
		entries: make(map[string][]model.InspectionRecord),
	}
}

func (c *CachedStore) Lookup(key string) ([]model.InspectionRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	records, ok := c.entries[key]
	return records, ok
}

func (c *CachedStore) Store(key string, records []model.InspectionRecord) {
	c.mu.Lock()
	c.entries[key] = records
	c.mu.Unlock()
}

func (c *CachedStore) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string][]model.InspectionRecord)
	c.mu.Unlock()
	c.log.Info().Int("entries", n).Msg("inspection cache cleared")
}

func (c *CachedStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CachedStore) Find(ctx context.Context, filter model.InspectionFilter) ([]model.InspectionRecord, error) {
	key := filter.CacheKey()
	if records, ok := c.Lookup(key); ok {
		c.log.Debug().Str("key", key).Msg("inspection cache hit")
		return records, nil
	}

	// The shared load ignores caller cancellation. Each caller stops waiting
	// on its own ctx.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		records, err := c.source.Find(loadCtx, filter)
		if err != nil {
			return nil, err
		}
		c.Store(key, records)
		return records, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	records := res.Val.([]model.InspectionRecord)
	c.log.Debug().Str("key", key).Int("records", len(records)).Msg("inspection cache filled")
	return records, nil
}

// Recent bypasses the cache: it is an ordered, limited read of the newest rows.
func (c *CachedStore) Recent(ctx context.Context, limit int) ([]model.InspectionRecord, error) {
	return c.source.Recent(ctx, limit)
}

func (c *CachedStore) Summary(ctx context.Context) (model.GeneralMetrics, error) {
	return c.source.Summary(ctx)
}
