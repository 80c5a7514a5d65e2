package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bi-service/internal/model"
)

func TestMatchRules(t *testing.T) {
	tests := []struct {
		query     string
		rule      string
		intention model.Intention
		metric    model.Metric
		groupBy   model.GroupBy
	}{
		{"Total de inspeções por tipo de veículo", "total-by-vehicle-type", model.IntentionVisualize, model.MetricTotalInspections, model.GroupByVehicleType},
		{"total de inspeções por mês", "total-monthly", model.IntentionVisualizeTrend, model.MetricTotalInspections, ""},
		{"Quais motoristas têm mais não conformidade?", "drivers-non-compliance", model.IntentionList, model.MetricNonCompliance, model.GroupByDriver},
		{"Compare a conformidade entre garagens", "compliance-by-garage", model.IntentionCompare, model.MetricComplianceRate, model.GroupByGarage},
		{"Evolução da conformidade nos últimos meses", "compliance-trend", model.IntentionVisualizeTrend, model.MetricComplianceRate, ""},
		{"Quantas inspeções em abril?", "count-last-month", model.IntentionVisualize, model.MetricTotalInspections, ""},
		{"Quantas inspeções de cada tipo", "count-by-vehicle-type", model.IntentionVisualize, model.MetricTotalInspections, model.GroupByVehicleType},
		{"quantidade de inspeções", "count-monthly", model.IntentionVisualizeTrend, model.MetricTotalInspections, ""},
		{"falhas por tipo", "problems-by-vehicle-type", model.IntentionVisualize, model.MetricNonCompliance, model.GroupByVehicleType},
		{"falhas do condutor", "problems-by-driver", model.IntentionList, model.MetricNonCompliance, model.GroupByDriver},
		{"houve algum erro?", "problems-trend", model.IntentionVisualizeTrend, model.MetricNonCompliance, ""},
		{"comparar local", "compare-garages", model.IntentionCompare, model.MetricComplianceRate, model.GroupByGarage},
		{"diferença por tipo", "compare-vehicle-types", model.IntentionCompare, model.MetricComplianceRate, model.GroupByVehicleType},
		{"comparar cada motorista", "compare-drivers", model.IntentionList, model.MetricComplianceRate, model.GroupByDriver},
		{"evolução das inspeções", "trend-inspections", model.IntentionVisualizeTrend, model.MetricTotalInspections, ""},
		{"evolução geral", "trend", model.IntentionVisualizeTrend, model.MetricComplianceRate, ""},
		{"pior motorista", "worst-drivers", model.IntentionList, model.MetricNonCompliance, model.GroupByDriver},
		{"melhor veículo", "ranking-vehicle-types", model.IntentionVisualize, model.MetricComplianceRate, model.GroupByVehicleType},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			rule, intent := MatchRules(Rules, tt.query)
			assert.Equal(t, tt.rule, rule)
			assert.Equal(t, tt.intention, intent.Intention)
			assert.Equal(t, tt.metric, intent.Metric)
			assert.Equal(t, tt.groupBy, intent.GroupBy)
		})
	}
}

func TestMatchRulesPrecedence(t *testing.T) {
	// "conformidade" + "garagem" wins over the comparison words further down.
	rule, _ := MatchRules(Rules, "comparar conformidade por garagem")
	assert.Equal(t, "compliance-by-garage", rule)

	// The driver/non-compliance rule sits above every problem rule.
	rule, intent := MatchRules(Rules, "motorista com não conformidade por tipo de veículo")
	assert.Equal(t, "drivers-non-compliance", rule)
	assert.Equal(t, 5, intent.Limit)
}

func TestMatchRulesBestDriversNeedsPositiveWording(t *testing.T) {
	rule, intent := MatchRules(Rules, "melhor motorista em conformidade")
	assert.Equal(t, "best-drivers", rule)
	assert.Equal(t, model.OrderDesc, intent.Order)
}

func TestMatchRulesUnknown(t *testing.T) {
	rule, intent := MatchRules(Rules, "qual a previsão do tempo amanhã?")
	assert.Empty(t, rule)
	assert.Equal(t, model.IntentionUnknown, intent.Intention)
	assert.Equal(t, unknownQueryMessage, intent.Message)
}

func TestRulesReturnCopies(t *testing.T) {
	_, first := MatchRules(Rules, "pior motorista")
	first.Limit = 99
	_, second := MatchRules(Rules, "pior motorista")
	assert.Equal(t, 5, second.Limit)
}
