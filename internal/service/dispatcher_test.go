package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bi-service/internal/model"
)

type fakeStore struct {
	mu      sync.Mutex
	records []model.InspectionRecord
	err     error
	filters []model.InspectionFilter
}

func (f *fakeStore) Find(_ context.Context, filter model.InspectionFilter) ([]model.InspectionRecord, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.InspectionRecord, 0, len(f.records))
	for _, rec := range f.records {
		if filter.StartDate != nil && rec.Timestamp.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && rec.Timestamp.After(*filter.EndDate) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]model.InspectionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}

func (f *fakeStore) Summary(_ context.Context) (model.GeneralMetrics, error) {
	if f.err != nil {
		return model.GeneralMetrics{}, f.err
	}
	compliant := 0
	for _, rec := range f.records {
		if rec.Compliant {
			compliant++
		}
	}
	total := len(f.records)
	rate := 0.0
	if total > 0 {
		rate = float64(compliant) / float64(total) * 100
	}
	return model.GeneralMetrics{
		TotalInspections:     total,
		CompliantInspections: compliant,
		NonCompliantCount:    total - compliant,
		ComplianceRate:       rate,
	}, nil
}

type fakeGarages map[string]string

func (g fakeGarages) GarageByPlate(context.Context) (map[string]string, error) {
	return g, nil
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func inspection(day time.Time, plan, driver, plate string, compliant bool) model.InspectionRecord {
	return model.InspectionRecord{Timestamp: day, PlanName: plan, DriverName: driver, VehiclePlate: plate, Compliant: compliant}
}

func fixtureRecords() []model.InspectionRecord {
	june := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	may := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC)
	return []model.InspectionRecord{
		inspection(april, "Veículos Leves", "João Silva", "AAA", false),
		inspection(april, "Veículos Pesados", "Pedro Santos", "BBB", false),
		inspection(may, "Veículos Leves", "João Silva", "AAA", true),
		inspection(may, "Veículos Pesados", "Pedro Santos", "BBB", false),
		inspection(may, "Veículos Médios", "Maria Oliveira", "CCC", true),
		inspection(june, "Veículos Leves", "Ana Costa", "DDD", true),
		inspection(june, "Veículos Pesados", "Pedro Santos", "BBB", true),
		inspection(june, "Veículos Médios", "Maria Oliveira", "CCC", true),
	}
}

func newTestDispatcher(store *fakeStore) *Dispatcher {
	d := NewDispatcher(store, fakeGarages{"AAA": "São Paulo", "BBB": "Brasília", "CCC": "São Paulo"}, zerolog.Nop())
	d.now = func() time.Time { return fixedNow }
	return d
}

func TestDispatchVisualizeByVehicleType(t *testing.T) {
	d := newTestDispatcher(&fakeStore{records: fixtureRecords()})

	result, err := d.Dispatch(context.Background(), model.QueryIntent{
		Intention: model.IntentionVisualize,
		Metric:    model.MetricComplianceRate,
		GroupBy:   model.GroupByVehicleType,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Chart)
	assert.Equal(t, model.ChartBar, result.Chart.Type)
	assert.Equal(t, []string{"Veículos Médios", "Veículos Leves", "Veículos Pesados"}, result.Chart.Labels)
	require.Len(t, result.Chart.Datasets, 1)
	assert.InDelta(t, 100.0, result.Chart.Datasets[0].Data[0], 1e-9)
	assert.InDelta(t, 100.0*2/3, result.Chart.Datasets[0].Data[1], 1e-9)
	assert.Equal(t, "Taxa de Conformidade por Tipo de Veículo", result.Title)
	require.NotNil(t, result.OverallRate)
	assert.InDelta(t, 62.5, *result.OverallRate, 1e-9)
}

func TestDispatchVisualizeLastMonthBounds(t *testing.T) {
	store := &fakeStore{records: fixtureRecords()}
	d := newTestDispatcher(store)

	result, err := d.Dispatch(context.Background(), model.QueryIntent{
		Intention: model.IntentionVisualize,
		Metric:    model.MetricTotalInspections,
		TimeRange: &model.TimeRange{Period: "last_month"},
	})
	require.NoError(t, err)
	require.Len(t, store.filters, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *store.filters[0].StartDate)
	assert.Equal(t, 31, store.filters[0].EndDate.Day())
	assert.Equal(t, time.May, store.filters[0].EndDate.Month())
	assert.Contains(t, result.Title, "(Mês Passado)")

	total := 0.0
	for _, v := range result.Chart.Datasets[0].Data {
		total += v
	}
	assert.Equal(t, 3.0, total)
}

func TestDispatchVisualizeMonthName(t *testing.T) {
	store := &fakeStore{records: fixtureRecords()}
	d := newTestDispatcher(store)

	_, err := d.Dispatch(context.Background(), model.QueryIntent{
		Intention: model.IntentionVisualize,
		Metric:    model.MetricTotalInspections,
		Period:    "april",
	})
	require.NoError(t, err)
	assert.Equal(t, time.April, store.filters[0].StartDate.Month())
	assert.Equal(t, 2024, store.filters[0].StartDate.Year())
}

func TestDispatchVisualizeTable(t *testing.T) {
	d := newTestDispatcher(&fakeStore{records: fixtureRecords()})

	result, err := d.Dispatch(context.Background(), model.QueryIntent{
		Intention:     model.IntentionVisualize,
		Metric:        model.MetricNonCompliance,
		Visualization: model.VisualizationTable,
	})
	require.NoError(t, err)
	assert.Nil(t, result.Chart)
	require.NotNil(t, result.Table)
	assert.Equal(t, []string{"Veículos Pesados", "2"}, result.Table.Rows[0])
}

func TestDispatchTrend(t *testing.T) {
	d := newTestDispatcher(&fakeStore{records: fixtureRecords()})

	result, err := d.Dispatch(context.Background(), model.QueryIntent{
		Intention: model.IntentionVisualizeTrend,
		Metric:    model.MetricNonComplianceRate,
		TimeRange: &model.TimeRange{Period: "last_3_months"},
	})
	require.NoError(t, err)
	require.Len(t, result.Trend, 3)
	assert.Equal(t, []string{"abr", "mai", "jun"}, result.Chart.Labels)
	assert.Equal(t, model.ChartLine, result.Chart.Type)
	for _, p := range result.Trend {
		assert.Equal(t, 100-p.ComplianceRate, p.Value)
	}
	assert.Equal(t, 100.0, result.Trend[0].Value)
	assert.Equal(t, 0.0, result.Trend[2].Value)
	assert.Contains(t, result.Title, "3 meses")
}

func TestDispatchCompareGarages(t *testing.T) {
	d := newTestDispatcher(&fakeStore{records: fixtureRecords()})

	result, err := d.Dispatch(context.Background(), model.QueryIntent{
		Intention: model.IntentionCompare,
		Metric:    model.MetricComplianceRate,
		GroupBy:   model.GroupByGarage,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sem garagem", "São Paulo", "Brasília"}, result.Chart.Labels)
	require.NotNil(t, result.Chart.YAxis.Max)
	assert.Equal(t, 100.0, *result.Chart.YAxis.Max)
}

func TestDispatchListDrivers(t *testing.T) {
	d := newTestDispatcher(&fakeStore{records: fixtureRecords()})

	result, err := d.Dispatch(context.Background(), model.QueryIntent{
		Intention: model.IntentionList,
		Metric:    model.MetricNonCompliance,
		GroupBy:   model.GroupByDriver,
		Limit:     2,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Table)
	assert.Equal(t, "Motorista", result.Table.Columns[0].Label)
	require.Len(t, result.Table.Rows, 2)
	assert.Equal(t, []string{"Pedro Santos", "3", "2", "33.3%"}, result.Table.Rows[0])
	assert.Equal(t, []string{"João Silva", "2", "1", "50.0%"}, result.Table.Rows[1])
}

func TestDispatchUnsupportedCombinations(t *testing.T) {
	d := newTestDispatcher(&fakeStore{records: fixtureRecords()})
	ctx := context.Background()

	tests := []struct {
		name   string
		intent model.QueryIntent
		want   error
	}{
		{"compare vehicle type", model.QueryIntent{Intention: model.IntentionCompare, GroupBy: model.GroupByVehicleType}, ErrUnsupportedOperation},
		{"list compliance rate", model.QueryIntent{Intention: model.IntentionList, Metric: model.MetricComplianceRate, GroupBy: model.GroupByDriver}, ErrUnsupportedOperation},
		{"unknown intention", model.QueryIntent{Intention: model.IntentionUnknown}, ErrUnsupportedQuery},
		{"bad dates", model.QueryIntent{Intention: model.IntentionVisualize, TimeRange: &model.TimeRange{StartDate: "ontem"}}, ErrInvalidTimeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Dispatch(ctx, tt.intent)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDispatchPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("database unavailable")
	d := newTestDispatcher(&fakeStore{err: boom})

	_, err := d.Dispatch(context.Background(), model.QueryIntent{Intention: model.IntentionVisualize})
	assert.ErrorIs(t, err, boom)
}

func TestDispatchEmptyDataHasNoOverallRate(t *testing.T) {
	d := newTestDispatcher(&fakeStore{})

	result, err := d.Dispatch(context.Background(), model.QueryIntent{Intention: model.IntentionVisualize})
	require.NoError(t, err)
	assert.Nil(t, result.OverallRate)
	assert.Empty(t, result.Rows)
}
