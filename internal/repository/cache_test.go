package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bi-service/internal/model"
)

type countingSource struct {
	calls   atomic.Int32
	delay   time.Duration
	err     error
	records []model.InspectionRecord
}

func (s *countingSource) Find(_ context.Context, _ model.InspectionFilter) ([]model.InspectionRecord, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *countingSource) Recent(_ context.Context, _ int) ([]model.InspectionRecord, error) {
	return s.records, nil
}

func (s *countingSource) Summary(_ context.Context) (model.GeneralMetrics, error) {
	return model.GeneralMetrics{}, nil
}

func TestCacheStoreLookupClear(t *testing.T) {
	c := NewCachedStore(&countingSource{}, zerolog.Nop())
	records := []model.InspectionRecord{{ID: "a"}, {ID: "b"}}

	c.Store("k", records)
	got, ok := c.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, records, got)

	c.Clear()
	_, ok = c.Lookup("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCacheFindMemoizesByFilter(t *testing.T) {
	src := &countingSource{records: []model.InspectionRecord{{ID: "x"}}}
	c := NewCachedStore(src, zerolog.Nop())
	ctx := context.Background()

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	filter := model.InspectionFilter{}.WithRange(from, to)

	_, err := c.Find(ctx, filter)
	require.NoError(t, err)
	_, err = c.Find(ctx, model.InspectionFilter{}.WithRange(from, to))
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.calls.Load())

	_, err = c.Find(ctx, model.InspectionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.calls.Load())

	c.Clear()
	_, err = c.Find(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 3, src.calls.Load())
}

func TestCacheFindDoesNotStoreErrors(t *testing.T) {
	src := &countingSource{err: errors.New("connection refused")}
	c := NewCachedStore(src, zerolog.Nop())

	_, err := c.Find(context.Background(), model.InspectionFilter{})
	assert.Error(t, err)
	assert.Zero(t, c.Len())
}

func TestCacheFindCollapsesConcurrentMisses(t *testing.T) {
	src := &countingSource{delay: 50 * time.Millisecond, records: []model.InspectionRecord{{ID: "x"}}}
	c := NewCachedStore(src, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Find(context.Background(), model.InspectionFilter{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, src.calls.Load())
}

// gatedSource blocks every Find until released, honoring the context it is
// given the way a database driver does.
type gatedSource struct {
	countingSource
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *gatedSource) Find(ctx context.Context, _ model.InspectionFilter) ([]model.InspectionRecord, error) {
	s.calls.Add(1)
	s.once.Do(func() { close(s.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.release:
		return s.records, nil
	}
}

func TestCacheFindSurvivesFirstCallerCancel(t *testing.T) {
	src := &gatedSource{
		countingSource: countingSource{records: []model.InspectionRecord{{ID: "x"}}},
		started:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	c := NewCachedStore(src, zerolog.Nop())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Find(ctxA, model.InspectionFilter{})
		errA <- err
	}()
	<-src.started
	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	type result struct {
		records []model.InspectionRecord
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		records, err := c.Find(context.Background(), model.InspectionFilter{})
		resB <- result{records, err}
	}()
	close(src.release)

	got := <-resB
	require.NoError(t, got.err)
	assert.Equal(t, src.records, got.records)
	assert.Equal(t, 1, c.Len())
}

func TestCacheKeyCanonical(t *testing.T) {
	plan := "Veículos Leves"
	yes := true
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	a := model.InspectionFilter{PlanName: &plan, Compliant: &yes}.WithRange(from, from.AddDate(0, 1, 0))
	b := model.InspectionFilter{Compliant: &yes, PlanName: &plan}.WithRange(from.UTC(), from.AddDate(0, 1, 0).UTC())
	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), model.InspectionFilter{}.CacheKey())
}
