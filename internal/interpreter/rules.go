package interpreter

import (
	"strings"

	"bi-service/internal/model"
)

const unknownQueryMessage = "Não foi possível entender sua consulta. Por favor, tente novamente com uma pergunta mais específica."

// Rule maps a keyword predicate over the lower-cased query to an intent.
type Rule struct {
	Name   string
	Match  func(q string) bool
	Intent model.QueryIntent
}

func anyOf(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

func allOf(preds ...func(string) bool) func(string) bool {
	return func(q string) bool {
		for _, p := range preds {
			if !p(q) {
				return false
			}
		}
		return true
	}
}

func negate(pred func(string) bool) func(string) bool {
	return func(q string) bool { return !pred(q) }
}

var (
	hasTotal       = anyOf("total")
	hasInspections = anyOf("inspeções")
	hasInspection  = anyOf("inspeção", "inspeções")
	hasVehicleType = anyOf("tipo", "veículo")
	hasMonthly     = anyOf("mês", "mensal")
	hasDriver      = anyOf("motorista", "condutor")
	hasNonCompl    = anyOf("não conformidade", "problema")
	hasCompliance  = anyOf("conformidade", "conforme")
	hasLocation    = anyOf("garagem", "local", "entre")
	hasTrend       = anyOf("tendência", "evolução", "últimos meses", "ao longo do tempo")
	hasQuantity    = anyOf("quantas", "quantos", "quantidade", "número")
	hasLastMonth   = anyOf("abril", "mês passado")
	hasProblem     = anyOf("problema", "não conformidade", "falha", "erro")
	hasComparison  = anyOf("compare", "comparar", "diferença", "entre")
	hasGarage      = anyOf("garagem", "local")
	hasRanking     = anyOf("melhor", "pior", "mais", "menos")
	hasConformity  = anyOf("conformidade")
	hasNegation    = anyOf("não")
)

func listDriversNonCompliance() model.QueryIntent {
	return model.QueryIntent{
		Intention: model.IntentionList,
		Metric:    model.MetricNonCompliance,
		GroupBy:   model.GroupByDriver,
		Limit:     5,
		Message:   "Listando motoristas com mais não conformidades",
	}
}

func compareGarages() model.QueryIntent {
	return model.QueryIntent{
		Intention: model.IntentionCompare,
		Metric:    model.MetricComplianceRate,
		GroupBy:   model.GroupByGarage,
		Message:   "Comparando taxa de conformidade entre garagens",
	}
}

func complianceTrend(message string) model.QueryIntent {
	return model.QueryIntent{
		Intention: model.IntentionVisualizeTrend,
		Metric:    model.MetricComplianceRate,
		Period:    "monthly",
		Message:   message,
	}
}

func totalByVehicleType() model.QueryIntent {
	return model.QueryIntent{
		Intention:     model.IntentionVisualize,
		Metric:        model.MetricTotalInspections,
		GroupBy:       model.GroupByVehicleType,
		Visualization: model.VisualizationBar,
		Message:       "Visualizando total de inspeções por tipo de veículo",
	}
}

// Rules is evaluated top to bottom and the first match wins, so the order is
// the precedence between overlapping keyword sets.
var Rules = []Rule{
	{
		Name:   "total-by-vehicle-type",
		Match:  allOf(hasTotal, hasInspections, hasVehicleType),
		Intent: totalByVehicleType(),
	},
	{
		Name:  "total-monthly",
		Match: allOf(hasTotal, hasInspections, hasMonthly),
		Intent: model.QueryIntent{
			Intention:     model.IntentionVisualizeTrend,
			Metric:        model.MetricTotalInspections,
			Period:        "monthly",
			Visualization: model.VisualizationLine,
			Message:       "Visualizando total de inspeções por mês",
		},
	},
	{
		Name:   "drivers-non-compliance",
		Match:  allOf(hasDriver, hasNonCompl),
		Intent: listDriversNonCompliance(),
	},
	{
		Name:   "compliance-by-garage",
		Match:  allOf(hasCompliance, hasLocation),
		Intent: compareGarages(),
	},
	{
		Name:   "compliance-trend",
		Match:  allOf(hasCompliance, hasTrend),
		Intent: complianceTrend("Visualizando tendência de conformidade ao longo do tempo"),
	},
	{
		Name:  "count-last-month",
		Match: allOf(hasQuantity, hasInspection, hasLastMonth),
		Intent: model.QueryIntent{
			Intention:     model.IntentionVisualize,
			Metric:        model.MetricTotalInspections,
			Period:        "april",
			Visualization: model.VisualizationBar,
			Message:       "Visualizando total de inspeções em abril",
		},
	},
	{
		Name:   "count-by-vehicle-type",
		Match:  allOf(hasQuantity, hasInspection, hasVehicleType),
		Intent: totalByVehicleType(),
	},
	{
		Name:  "count-monthly",
		Match: allOf(hasQuantity, hasInspection),
		Intent: model.QueryIntent{
			Intention: model.IntentionVisualizeTrend,
			Metric:    model.MetricTotalInspections,
			Period:    "monthly",
			Message:   "Visualizando total de inspeções por mês",
		},
	},
	{
		Name:  "problems-by-vehicle-type",
		Match: allOf(hasProblem, hasVehicleType),
		Intent: model.QueryIntent{
			Intention:     model.IntentionVisualize,
			Metric:        model.MetricNonCompliance,
			GroupBy:       model.GroupByVehicleType,
			Visualization: model.VisualizationBar,
			Message:       "Visualizando não conformidades por tipo de veículo",
		},
	},
	{
		Name:   "problems-by-driver",
		Match:  allOf(hasProblem, hasDriver),
		Intent: listDriversNonCompliance(),
	},
	{
		Name:  "problems-trend",
		Match: hasProblem,
		Intent: model.QueryIntent{
			Intention: model.IntentionVisualizeTrend,
			Metric:    model.MetricNonCompliance,
			Period:    "monthly",
			Message:   "Visualizando tendência de não conformidades ao longo do tempo",
		},
	},
	{
		Name:   "compare-garages",
		Match:  allOf(hasComparison, hasGarage),
		Intent: compareGarages(),
	},
	{
		Name:  "compare-vehicle-types",
		Match: allOf(hasComparison, hasVehicleType),
		Intent: model.QueryIntent{
			Intention: model.IntentionCompare,
			Metric:    model.MetricComplianceRate,
			GroupBy:   model.GroupByVehicleType,
			Message:   "Comparando taxa de conformidade entre tipos de veículos",
		},
	},
	{
		Name:  "compare-drivers",
		Match: allOf(hasComparison, hasDriver),
		Intent: model.QueryIntent{
			Intention: model.IntentionList,
			Metric:    model.MetricComplianceRate,
			GroupBy:   model.GroupByDriver,
			Limit:     5,
			Message:   "Comparando taxa de conformidade entre motoristas",
		},
	},
	{
		Name:   "trend-compliance",
		Match:  allOf(hasTrend, hasConformity),
		Intent: complianceTrend("Visualizando tendência de conformidade ao longo do tempo"),
	},
	{
		Name:  "trend-inspections",
		Match: allOf(hasTrend, hasInspection),
		Intent: model.QueryIntent{
			Intention: model.IntentionVisualizeTrend,
			Metric:    model.MetricTotalInspections,
			Period:    "monthly",
			Message:   "Visualizando tendência de inspeções ao longo do tempo",
		},
	},
	{
		Name:   "trend",
		Match:  hasTrend,
		Intent: complianceTrend("Visualizando tendência ao longo do tempo"),
	},
	{
		Name:  "best-drivers",
		Match: allOf(hasRanking, hasDriver, hasConformity, negate(hasNegation)),
		Intent: model.QueryIntent{
			Intention: model.IntentionList,
			Metric:    model.MetricComplianceRate,
			GroupBy:   model.GroupByDriver,
			Limit:     5,
			Order:     model.OrderDesc,
			Message:   "Listando motoristas com melhores taxas de conformidade",
		},
	},
	{
		Name:   "worst-drivers",
		Match:  allOf(hasRanking, hasDriver),
		Intent: listDriversNonCompliance(),
	},
	{
		Name:  "ranking-vehicle-types",
		Match: allOf(hasRanking, hasVehicleType),
		Intent: model.QueryIntent{
			Intention:     model.IntentionVisualize,
			Metric:        model.MetricComplianceRate,
			GroupBy:       model.GroupByVehicleType,
			Visualization: model.VisualizationBar,
			Message:       "Visualizando taxa de conformidade por tipo de veículo",
		},
	},
}

// MatchRules classifies a query with the keyword table. It returns the
// matched rule name, or an empty name with an UNKNOWN intent.
func MatchRules(rules []Rule, query string) (string, model.QueryIntent) {
	q := strings.ToLower(query)
	for _, rule := range rules {
		if rule.Match(q) {
			return rule.Name, rule.Intent
		}
	}
	return "", model.QueryIntent{
		Intention: model.IntentionUnknown,
		Message:   unknownQueryMessage,
	}
}
