package insight

import (
	"fmt"

	"bi-service/internal/model"
)

const (
	lowComplianceThreshold  = 70.0
	highComplianceThreshold = 90.0
	trendDeltaThreshold     = 5.0
)

// Generate derives at most three insights from an aggregate result, in the
// order overall rate, worst category, trend. Conditions that do not fire
// produce nothing.
func Generate(result *model.AggregateResult) []model.Insight {
	if result == nil {
		return nil
	}

	insights := make([]model.Insight, 0, 3)

	if ins, ok := overallInsight(result.OverallRate); ok {
		insights = append(insights, ins)
	}
	if ins, ok := worstCategoryInsight(result.Rows); ok {
		insights = append(insights, ins)
	}
	if ins, ok := trendInsight(result.Trend); ok {
		insights = append(insights, ins)
	}

	return insights
}

func overallInsight(rate *float64) (model.Insight, bool) {
	if rate == nil {
		return model.Insight{}, false
	}
	switch {
	case *rate < lowComplianceThreshold:
		return model.Insight{
			Type:        model.InsightWarning,
			Title:       "Baixa conformidade geral",
			Description: fmt.Sprintf("A taxa de conformidade geral está em %.1f%%, abaixo da meta de %.0f%%. Recomenda-se revisar os procedimentos de inspeção.", *rate, lowComplianceThreshold),
			Value:       *rate,
		}, true
	case *rate > highComplianceThreshold:
		return model.Insight{
			Type:        model.InsightSuccess,
			Title:       "Alta conformidade geral",
			Description: fmt.Sprintf("A taxa de conformidade geral está em %.1f%%, indicando bom desempenho.", *rate),
			Value:       *rate,
		}, true
	default:
		return model.Insight{}, false
	}
}

func worstCategoryInsight(rows []model.AggregateRow) (model.Insight, bool) {
	if len(rows) == 0 {
		return model.Insight{}, false
	}
	worst := rows[0]
	for _, row := range rows[1:] {
		if row.ComplianceRate < worst.ComplianceRate {
			worst = row
		}
	}
	return model.Insight{
		Type:        model.InsightInfo,
		Title:       fmt.Sprintf("Menor conformidade: %s", worst.Label),
		Description: fmt.Sprintf("%s tem a menor taxa de conformidade (%.1f%%) entre as categorias analisadas.", worst.Label, worst.ComplianceRate),
		Value:       worst.ComplianceRate,
	}, true
}

func trendInsight(trend []model.TrendPoint) (model.Insight, bool) {
	if len(trend) < 2 {
		return model.Insight{}, false
	}
	first := trend[0].ComplianceRate
	last := trend[len(trend)-1].ComplianceRate
	delta := last - first

	switch {
	case delta > trendDeltaThreshold:
		return model.Insight{
			Type:        model.InsightSuccess,
			Title:       "Tendência positiva de conformidade",
			Description: fmt.Sprintf("A taxa de conformidade aumentou de %.1f%% para %.1f%% no período, indicando melhoria contínua.", first, last),
			Value:       delta,
		}, true
	case delta < -trendDeltaThreshold:
		return model.Insight{
			Type:        model.InsightWarning,
			Title:       "Tendência negativa de conformidade",
			Description: fmt.Sprintf("A taxa de conformidade caiu de %.1f%% para %.1f%% no período.", first, last),
			Value:       delta,
		}, true
	default:
		return model.Insight{}, false
	}
}
