package aggregate

import (
	"math"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bi-service/internal/model"
)

func rec(plan, driver, plate string, compliant bool, ts time.Time) model.InspectionRecord {
	return model.InspectionRecord{
		PlanName:     plan,
		DriverName:   driver,
		VehiclePlate: plate,
		Compliant:    compliant,
		Timestamp:    ts,
	}
}

func TestRateZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, Rate(0, 0))
	assert.Equal(t, 0.0, Rate(3, 0))
	assert.InDelta(t, 75.0, Rate(3, 4), 1e-9)
}

func TestEvaluateEmptyGroupIsFinite(t *testing.T) {
	row := model.AggregateRow{Key: "empty"}
	metrics := []model.Metric{
		model.MetricComplianceRate,
		model.MetricNonComplianceRate,
		model.MetricTotalInspections,
		model.MetricCompliantInspections,
		model.MetricNonCompliantInspections,
		model.MetricNonCompliance,
	}
	for _, m := range metrics {
		v, err := Evaluate(m, row)
		require.NoError(t, err, m)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), m)
		assert.Equal(t, 0.0, v, m)
	}
}

func TestEvaluateUnknownMetric(t *testing.T) {
	_, err := Evaluate(model.Metric("speed"), model.AggregateRow{Total: 1})
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestNonComplianceRateComplementsComplianceRate(t *testing.T) {
	rows := []model.AggregateRow{
		{Total: 7, Compliant: 3},
		{Total: 3, Compliant: 3},
		{Total: 9, Compliant: 0},
	}
	for _, row := range rows {
		rate, err := Evaluate(model.MetricComplianceRate, row)
		require.NoError(t, err)
		inverse, err := Evaluate(model.MetricNonComplianceRate, row)
		require.NoError(t, err)
		assert.Equal(t, 100-rate, inverse)
	}
}

func TestGroupCountsAddUp(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	records := []model.InspectionRecord{
		rec("Veículos Leves", "João", "AAA", true, now),
		rec("Veículos Leves", "João", "AAA", false, now),
		rec("Veículos Pesados", "Ana", "BBB", false, now),
		rec("", "Ana", "CCC", true, now),
	}

	rows := Group(records, ByVehicleType)
	require.Len(t, rows, 3)

	total := 0
	for _, row := range rows {
		nonCompliant, err := Evaluate(model.MetricNonCompliantInspections, row)
		require.NoError(t, err)
		assert.Equal(t, row.Total, row.Compliant+int(nonCompliant))
		total += row.Total
	}
	assert.Equal(t, len(records), total)

	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	want := []model.AggregateRow{
		{Key: UnspecifiedType, Label: UnspecifiedType, Total: 1, Compliant: 1, ComplianceRate: 100},
		{Key: "Veículos Leves", Label: "Veículos Leves", Total: 2, Compliant: 1, ComplianceRate: 50},
		{Key: "Veículos Pesados", Label: "Veículos Pesados", Total: 1, Compliant: 0, ComplianceRate: 0},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupByMonthUsesFirstDay(t *testing.T) {
	records := []model.InspectionRecord{
		rec("A", "x", "p", true, time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)),
		rec("A", "x", "p", false, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		rec("A", "x", "p", true, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)),
	}
	rows := Group(records, ByMonth)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03", rows[0].Key)
	assert.Equal(t, "mar", rows[0].Label)
	assert.Equal(t, 2, rows[0].Total)
	assert.Equal(t, "2024-04", rows[1].Key)
}

func TestGroupByGarageUnmappedPlates(t *testing.T) {
	directory := map[string]string{"AAA": "São Paulo"}
	records := []model.InspectionRecord{
		rec("A", "x", "AAA", true, time.Time{}),
		rec("A", "x", "ZZZ", false, time.Time{}),
	}
	rows := Group(records, ByGarage(directory))
	require.Len(t, rows, 2)
	assert.Equal(t, "São Paulo", rows[0].Key)
	assert.Equal(t, UnassignedGarage, rows[1].Key)
}

func TestKeyForRejectsUnknownGroup(t *testing.T) {
	_, err := KeyFor(model.GroupBy("region"), nil)
	assert.Error(t, err)

	key, err := KeyFor("", nil)
	require.NoError(t, err)
	k, _ := key(rec("Veículos Leves", "", "", true, time.Time{}))
	assert.Equal(t, "Veículos Leves", k)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Taxa de Conformidade por Tipo de Veículo (Mês Atual)",
		Title(model.MetricComplianceRate, model.GroupByVehicleType, "this_month"))
	assert.Equal(t, "Total de Inspeções por Garagem",
		Title(model.MetricTotalInspections, model.GroupByGarage, ""))
}
