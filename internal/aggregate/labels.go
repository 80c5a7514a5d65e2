package aggregate

import (
	"time"

	"bi-service/internal/model"
)

var monthAbbrev = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// MonthLabel renders the short pt-BR month name used on trend axes.
func MonthLabel(t time.Time) string {
	return monthAbbrev[t.Month()-1]
}

func MetricLabel(metric model.Metric) string {
	switch metric {
	case model.MetricComplianceRate:
		return "Taxa de Conformidade (%)"
	case model.MetricNonComplianceRate:
		return "Taxa de Não Conformidade (%)"
	case model.MetricTotalInspections:
		return "Total de Inspeções"
	case model.MetricCompliantInspections:
		return "Inspeções Conformes"
	case model.MetricNonCompliantInspections:
		return "Inspeções Não Conformes"
	case model.MetricNonCompliance:
		return "Não Conformidades"
	default:
		return string(metric)
	}
}

func metricTitle(metric model.Metric) string {
	switch metric {
	case model.MetricComplianceRate:
		return "Taxa de Conformidade"
	case model.MetricNonComplianceRate:
		return "Taxa de Não Conformidade"
	case model.MetricTotalInspections:
		return "Total de Inspeções"
	case model.MetricCompliantInspections:
		return "Inspeções Conformes"
	case model.MetricNonCompliantInspections:
		return "Inspeções Não Conformes"
	case model.MetricNonCompliance:
		return "Não Conformidades"
	default:
		return string(metric)
	}
}

// Title composes a chart title from metric, grouping and period shorthand.
func Title(metric model.Metric, groupBy model.GroupBy, period string) string {
	title := metricTitle(metric)

	switch groupBy {
	case model.GroupByVehicleType:
		title += " por Tipo de Veículo"
	case model.GroupByDriver:
		title += " por Motorista"
	case model.GroupByGarage:
		title += " por Garagem"
	}

	switch period {
	case "this_month":
		title += " (Mês Atual)"
	case "last_month":
		title += " (Mês Passado)"
	case "this_year":
		title += " (Ano Atual)"
	}

	return title
}
