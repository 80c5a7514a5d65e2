package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bi-service/internal/aggregate"
	"bi-service/internal/insight"
	"bi-service/internal/model"
)

var ErrPermissionDenied = errors.New("permission denied")

const (
	dashboardTrendMonths = 6
	dashboardRecentLimit = 10
	maxRecentLimit       = 100
)

type DashboardStore interface {
	Find(ctx context.Context, filter model.InspectionFilter) ([]model.InspectionRecord, error)
	Recent(ctx context.Context, limit int) ([]model.InspectionRecord, error)
	Summary(ctx context.Context) (model.GeneralMetrics, error)
}

type CacheClearer interface {
	Clear()
}

type DashboardService struct {
	store DashboardStore
	cache CacheClearer
	log   zerolog.Logger
	now   func() time.Time
}

func NewDashboardService(store DashboardStore, cache CacheClearer, log zerolog.Logger) *DashboardService {
	return &DashboardService{store: store, cache: cache, log: log, now: time.Now}
}

func (s *DashboardService) Overview(ctx context.Context) (*model.DashboardOverview, error) {
	now := s.now().UTC()
	overview := &model.DashboardOverview{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		metrics, err := s.store.Summary(gctx)
		if err != nil {
			return err
		}
		overview.Metrics = metrics
		return nil
	})

	g.Go(func() error {
		records, err := s.store.Find(gctx, model.InspectionFilter{})
		if err != nil {
			return err
		}
		rows := aggregate.Group(records, aggregate.ByVehicleType)
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ComplianceRate > rows[j].ComplianceRate
		})
		overview.ByVehicleType = rows
		return nil
	})

	g.Go(func() error {
		from := aggregate.MonthStart(now).AddDate(0, -(dashboardTrendMonths - 1), 0)
		records, err := s.store.Find(gctx, model.InspectionFilter{}.WithRange(from, endOfDay(now)))
		if err != nil {
			return err
		}
		trend, err := buildTrend(records, model.MetricComplianceRate)
		if err != nil {
			return err
		}
		overview.Trend = trend
		return nil
	})

	g.Go(func() error {
		recent, err := s.store.Recent(gctx, dashboardRecentLimit)
		if err != nil {
			return err
		}
		overview.Recent = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rate := overview.Metrics.ComplianceRate
	summary := &model.AggregateResult{Rows: overview.ByVehicleType, Trend: overview.Trend}
	if overview.Metrics.TotalInspections > 0 {
		summary.OverallRate = &rate
	}
	overview.Insights = insight.Generate(summary)

	return overview, nil
}

func (s *DashboardService) RecentInspections(ctx context.Context, limit int) ([]model.InspectionRecord, error) {
	if limit <= 0 {
		limit = dashboardRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.store.Recent(ctx, limit)
}

func (s *DashboardService) ClearCache(principal model.Principal) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	s.cache.Clear()
	s.log.Info().Str("user", principal.UserID.String()).Msg("cache cleared")
	return nil
}
