package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"bi-service/internal/aggregate"
	"bi-service/internal/model"
)

var (
	ErrUnsupportedQuery     = errors.New("unsupported query type")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

const defaultListLimit = 5

type InspectionStore interface {
	Find(ctx context.Context, filter model.InspectionFilter) ([]model.InspectionRecord, error)
}

type GarageDirectory interface {
	GarageByPlate(ctx context.Context) (map[string]string, error)
}

// Dispatcher routes an intent to the handler for its intention and returns
// the aggregated result with its chart or table description.
type Dispatcher struct {
	store   InspectionStore
	garages GarageDirectory
	log     zerolog.Logger
	now     func() time.Time
}

func NewDispatcher(store InspectionStore, garages GarageDirectory, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{store: store, garages: garages, log: log, now: time.Now}
}

func (d *Dispatcher) Dispatch(ctx context.Context, intent model.QueryIntent) (*model.AggregateResult, error) {
	switch intent.Intention {
	case model.IntentionVisualize:
		return d.visualize(ctx, intent)
	case model.IntentionVisualizeTrend:
		return d.trend(ctx, intent)
	case model.IntentionCompare:
		return d.compare(ctx, intent)
	case model.IntentionList:
		return d.list(ctx, intent)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedQuery, intent.Intention)
	}
}

func (d *Dispatcher) visualize(ctx context.Context, intent model.QueryIntent) (*model.AggregateResult, error) {
	metric := metricOrDefault(intent.Metric)
	groupBy := intent.GroupBy
	if groupBy == "" {
		groupBy = model.GroupByVehicleType
	}

	rng, err := resolveRange(intent, d.now().UTC())
	if err != nil {
		return nil, err
	}
	records, err := d.fetch(ctx, rng)
	if err != nil {
		return nil, err
	}

	var garages map[string]string
	if groupBy == model.GroupByGarage {
		if garages, err = d.garages.GarageByPlate(ctx); err != nil {
			return nil, err
		}
	}
	key, err := aggregate.KeyFor(groupBy, garages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedOperation, err)
	}

	rows := aggregate.Group(records, key)
	if err := aggregate.EvaluateRows(metric, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedOperation, err)
	}
	sortByValue(rows, model.OrderDesc)

	result := newResult(intent.Intention, metric, groupBy, records)
	result.Title = aggregate.Title(metric, groupBy, intent.ResolvedPeriod())
	result.Range = rng
	result.Rows = rows

	if intent.Visualization == model.VisualizationTable {
		result.Table = valueTable(result.Title, metric, rows)
	} else {
		result.Chart = rowsChart(chartTypeFor(intent.Visualization), result.Title, metric, rows)
	}
	return result, nil
}

func (d *Dispatcher) trend(ctx context.Context, intent model.QueryIntent) (*model.AggregateResult, error) {
	metric := metricOrDefault(intent.Metric)
	months := trendMonths(intent.ResolvedPeriod())

	now := d.now().UTC()
	rng := &model.DateRange{
		From: aggregate.MonthStart(now).AddDate(0, -(months - 1), 0),
		To:   endOfDay(now),
	}
	records, err := d.fetch(ctx, rng)
	if err != nil {
		return nil, err
	}

	points, err := buildTrend(records, metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedOperation, err)
	}

	result := newResult(intent.Intention, metric, model.GroupByMonth, records)
	result.Title = fmt.Sprintf("Tendência de %s nos últimos %d meses", aggregate.MetricLabel(metric), months)
	result.Range = rng
	result.Trend = points

	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Label
		values[i] = p.Value
	}
	result.Chart = &model.ChartSpec{
		Type:     model.ChartLine,
		Title:    result.Title,
		Labels:   labels,
		Datasets: []model.ChartDataset{{Label: aggregate.MetricLabel(metric), Data: values}},
		YAxis:    model.ChartAxis{BeginAtZero: true, Percent: metric.IsRate()},
	}
	return result, nil
}

func (d *Dispatcher) compare(ctx context.Context, intent model.QueryIntent) (*model.AggregateResult, error) {
	if intent.GroupBy != model.GroupByGarage {
		return nil, fmt.Errorf("%w: compare by %q", ErrUnsupportedOperation, intent.GroupBy)
	}

	rng, err := resolveRange(intent, d.now().UTC())
	if err != nil {
		return nil, err
	}
	records, err := d.fetch(ctx, rng)
	if err != nil {
		return nil, err
	}
	garages, err := d.garages.GarageByPlate(ctx)
	if err != nil {
		return nil, err
	}

	rows := aggregate.Group(records, aggregate.ByGarage(garages))
	if err := aggregate.EvaluateRows(model.MetricComplianceRate, rows); err != nil {
		return nil, err
	}
	sortByValue(rows, model.OrderDesc)

	result := newResult(intent.Intention, model.MetricComplianceRate, model.GroupByGarage, records)
	result.Title = "Comparação de Taxa de Conformidade por Garagem"
	result.Range = rng
	result.Rows = rows

	chart := rowsChart(model.ChartBar, result.Title, model.MetricComplianceRate, rows)
	ceiling := 100.0
	chart.YAxis.Max = &ceiling
	result.Chart = chart
	return result, nil
}

func (d *Dispatcher) list(ctx context.Context, intent model.QueryIntent) (*model.AggregateResult, error) {
	if intent.GroupBy != model.GroupByDriver || intent.Metric != model.MetricNonCompliance {
		return nil, fmt.Errorf("%w: list %q by %q", ErrUnsupportedOperation, intent.Metric, intent.GroupBy)
	}

	rng, err := resolveRange(intent, d.now().UTC())
	if err != nil {
		return nil, err
	}
	records, err := d.fetch(ctx, rng)
	if err != nil {
		return nil, err
	}

	rows := aggregate.Group(records, aggregate.ByDriver)
	if err := aggregate.EvaluateRows(model.MetricNonCompliance, rows); err != nil {
		return nil, err
	}
	order := intent.Order
	if order == "" {
		order = model.OrderDesc
	}
	sortByValue(rows, order)

	limit := intent.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	title := "Motoristas com Mais Não Conformidades"
	if order == model.OrderAsc {
		title = "Motoristas com Menos Não Conformidades"
	}

	result := newResult(intent.Intention, model.MetricNonCompliance, model.GroupByDriver, records)
	result.Title = title
	result.Range = rng
	result.Rows = rows
	result.Table = driverTable(title, rows)
	return result, nil
}

func (d *Dispatcher) fetch(ctx context.Context, rng *model.DateRange) ([]model.InspectionRecord, error) {
	filter := model.InspectionFilter{}
	if rng != nil {
		filter = rng.Filter()
	}
	records, err := d.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch inspections: %w", err)
	}
	d.log.Debug().Int("records", len(records)).Msg("inspections fetched")
	return records, nil
}

func newResult(intention model.Intention, metric model.Metric, groupBy model.GroupBy, records []model.InspectionRecord) *model.AggregateResult {
	result := &model.AggregateResult{Intention: intention, Metric: metric, GroupBy: groupBy}
	if total, _, rate := aggregate.Overall(records); total > 0 {
		result.OverallRate = &rate
	}
	return result
}

func metricOrDefault(metric model.Metric) model.Metric {
	if metric == "" {
		return model.MetricComplianceRate
	}
	return metric
}

// buildTrend produces one point per month that has data, oldest first.
func buildTrend(records []model.InspectionRecord, metric model.Metric) ([]model.TrendPoint, error) {
	rows := aggregate.Group(records, aggregate.ByMonth)
	points := make([]model.TrendPoint, 0, len(rows))
	for _, row := range rows {
		month, err := time.Parse("2006-01", row.Key)
		if err != nil {
			return nil, err
		}
		value, err := aggregate.Evaluate(metric, row)
		if err != nil {
			return nil, err
		}
		points = append(points, model.TrendPoint{
			Month:          month,
			Label:          row.Label,
			Total:          row.Total,
			Compliant:      row.Compliant,
			ComplianceRate: row.ComplianceRate,
			Value:          value,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points, nil
}

func sortByValue(rows []model.AggregateRow, order model.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			if order == model.OrderAsc {
				return rows[i].Value < rows[j].Value
			}
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Label < rows[j].Label
	})
}

func chartTypeFor(v model.Visualization) model.ChartType {
	switch v {
	case model.VisualizationPie:
		return model.ChartPie
	case model.VisualizationLine:
		return model.ChartLine
	default:
		return model.ChartBar
	}
}

func rowsChart(chartType model.ChartType, title string, metric model.Metric, rows []model.AggregateRow) *model.ChartSpec {
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, row := range rows {
		labels[i] = row.Label
		values[i] = row.Value
	}
	return &model.ChartSpec{
		Type:     chartType,
		Title:    title,
		Labels:   labels,
		Datasets: []model.ChartDataset{{Label: aggregate.MetricLabel(metric), Data: values}},
		YAxis:    model.ChartAxis{BeginAtZero: true, Percent: metric.IsRate()},
	}
}

func formatValue(metric model.Metric, value float64) string {
	if metric.IsRate() {
		return fmt.Sprintf("%.1f%%", value)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func valueTable(title string, metric model.Metric, rows []model.AggregateRow) *model.TableSpec {
	table := &model.TableSpec{
		Title: title,
		Columns: []model.TableColumn{
			{Field: "name", Label: "Categoria"},
			{Field: "value", Label: aggregate.MetricLabel(metric)},
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{row.Label, formatValue(metric, row.Value)})
	}
	return table
}

func driverTable(title string, rows []model.AggregateRow) *model.TableSpec {
	table := &model.TableSpec{
		Title: title,
		Columns: []model.TableColumn{
			{Field: "name", Label: "Motorista"},
			{Field: "total", Label: "Total de Inspeções"},
			{Field: "nonCompliant", Label: "Não Conformidades"},
			{Field: "complianceRate", Label: "Taxa de Conformidade"},
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.Label,
			strconv.Itoa(row.Total),
			strconv.Itoa(row.NonCompliant()),
			fmt.Sprintf("%.1f%%", row.ComplianceRate),
		})
	}
	return table
}
