package aggregate

import (
	"errors"
	"fmt"
	"math"
	"time"

	"bi-service/internal/model"
)

var ErrUnknownMetric = errors.New("unknown metric")

const (
	UnspecifiedType  = "Não especificado"
	UnknownDriver    = "Motorista não informado"
	UnassignedGarage = "Sem garagem"
)

// KeyFunc extracts the grouping key and its display label from a record.
type KeyFunc func(rec model.InspectionRecord) (key, label string)

func ByVehicleType(rec model.InspectionRecord) (string, string) {
	if rec.PlanName == "" {
		return UnspecifiedType, UnspecifiedType
	}
	return rec.PlanName, rec.PlanName
}

func ByDriver(rec model.InspectionRecord) (string, string) {
	if rec.DriverName == "" {
		return UnknownDriver, UnknownDriver
	}
	return rec.DriverName, rec.DriverName
}

func ByMonth(rec model.InspectionRecord) (string, string) {
	month := MonthStart(rec.Timestamp)
	return month.Format("2006-01"), MonthLabel(month)
}

// ByGarage resolves the garage through a plate directory because the
// inspection record does not carry it.
func ByGarage(directory map[string]string) KeyFunc {
	return func(rec model.InspectionRecord) (string, string) {
		garage, ok := directory[rec.VehiclePlate]
		if !ok || garage == "" {
			return UnassignedGarage, UnassignedGarage
		}
		return garage, garage
	}
}

func KeyFor(groupBy model.GroupBy, garages map[string]string) (KeyFunc, error) {
	switch groupBy {
	case model.GroupByVehicleType, "":
		return ByVehicleType, nil
	case model.GroupByDriver:
		return ByDriver, nil
	case model.GroupByMonth:
		return ByMonth, nil
	case model.GroupByGarage:
		return ByGarage(garages), nil
	default:
		return nil, fmt.Errorf("unsupported group %q", groupBy)
	}
}

// Group reduces records into one row per distinct key. Row order follows
// first appearance; callers sort.
func Group(records []model.InspectionRecord, key KeyFunc) []model.AggregateRow {
	index := make(map[string]int)
	rows := make([]model.AggregateRow, 0)
	for _, rec := range records {
		k, label := key(rec)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, model.AggregateRow{Key: k, Label: label})
		}
		rows[i].Total++
		if rec.Compliant {
			rows[i].Compliant++
		}
	}
	for i := range rows {
		rows[i].ComplianceRate = Rate(rows[i].Compliant, rows[i].Total)
	}
	return rows
}

// Rate returns compliant/total as a percentage, or 0 for an empty group.
func Rate(compliant, total int) float64 {
	if total <= 0 {
		return 0
	}
	return clamp(float64(compliant) / float64(total) * 100)
}

func Overall(records []model.InspectionRecord) (total, compliant int, rate float64) {
	for _, rec := range records {
		total++
		if rec.Compliant {
			compliant++
		}
	}
	return total, compliant, Rate(compliant, total)
}

func Evaluate(metric model.Metric, row model.AggregateRow) (float64, error) {
	switch metric {
	case model.MetricComplianceRate:
		return Rate(row.Compliant, row.Total), nil
	case model.MetricNonComplianceRate:
		if row.Total <= 0 {
			return 0, nil
		}
		return clamp(100 - Rate(row.Compliant, row.Total)), nil
	case model.MetricTotalInspections:
		return float64(row.Total), nil
	case model.MetricCompliantInspections:
		return float64(row.Compliant), nil
	case model.MetricNonCompliantInspections, model.MetricNonCompliance:
		return float64(row.NonCompliant()), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
}

// EvaluateRows fills Value on every row for the given metric.
func EvaluateRows(metric model.Metric, rows []model.AggregateRow) error {
	for i := range rows {
		v, err := Evaluate(metric, rows[i])
		if err != nil {
			return err
		}
		rows[i].Value = v
	}
	return nil
}

func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func clamp(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
