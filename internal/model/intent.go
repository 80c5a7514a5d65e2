package model

import "strings"

type Intention string

const (
	IntentionVisualize      Intention = "VISUALIZE"
	IntentionVisualizeTrend Intention = "VISUALIZE_TREND"
	IntentionCompare        Intention = "COMPARE"
	IntentionList           Intention = "LIST"
	IntentionUnknown        Intention = "UNKNOWN"
)

func (i Intention) Valid() bool {
	switch i {
	case IntentionVisualize, IntentionVisualizeTrend, IntentionCompare, IntentionList, IntentionUnknown:
		return true
	default:
		return false
	}
}

type Metric string

const (
	MetricComplianceRate          Metric = "compliance_rate"
	MetricNonComplianceRate       Metric = "non_compliance_rate"
	MetricTotalInspections        Metric = "total_inspections"
	MetricCompliantInspections    Metric = "compliant_inspections"
	MetricNonCompliantInspections Metric = "non_compliant_inspections"
	MetricNonCompliance           Metric = "non_compliance"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricComplianceRate, MetricNonComplianceRate, MetricTotalInspections,
		MetricCompliantInspections, MetricNonCompliantInspections, MetricNonCompliance:
		return true
	default:
		return false
	}
}

// IsRate reports whether the metric is a percentage in [0, 100].
func (m Metric) IsRate() bool {
	return m == MetricComplianceRate || m == MetricNonComplianceRate
}

type GroupBy string

const (
	GroupByVehicleType GroupBy = "vehicle_type"
	GroupByDriver      GroupBy = "driver"
	GroupByGarage      GroupBy = "garage"
	GroupByMonth       GroupBy = "month"
)

func (g GroupBy) Valid() bool {
	switch g {
	case GroupByVehicleType, GroupByDriver, GroupByGarage, GroupByMonth:
		return true
	default:
		return false
	}
}

type Visualization string

const (
	VisualizationBar   Visualization = "BAR_CHART"
	VisualizationLine  Visualization = "LINE_CHART"
	VisualizationPie   Visualization = "PIE_CHART"
	VisualizationTable Visualization = "TABLE"
)

func (v Visualization) Valid() bool {
	switch v {
	case VisualizationBar, VisualizationLine, VisualizationPie, VisualizationTable:
		return true
	default:
		return false
	}
}

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

type TimeRange struct {
	Period    string `json:"period,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

func (t *TimeRange) Empty() bool {
	return t == nil || (t.Period == "" && t.StartDate == "" && t.EndDate == "")
}

type QueryIntent struct {
	Intention     Intention     `json:"intention"`
	Metric        Metric        `json:"metric,omitempty"`
	GroupBy       GroupBy       `json:"groupBy,omitempty"`
	Period        string        `json:"period,omitempty"`
	TimeRange     *TimeRange    `json:"timeRange,omitempty"`
	Visualization Visualization `json:"visualization,omitempty"`
	Limit         int           `json:"limit,omitempty"`
	Order         Order         `json:"order,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// Normalize canonicalizes enum casing and drops values outside the known
// vocabularies. It reports false when the intention itself is not recognized.
func (q QueryIntent) Normalize() (QueryIntent, bool) {
	q.Intention = Intention(strings.ToUpper(strings.TrimSpace(string(q.Intention))))
	q.Metric = Metric(strings.ToLower(strings.TrimSpace(string(q.Metric))))
	q.GroupBy = GroupBy(strings.ToLower(strings.TrimSpace(string(q.GroupBy))))
	q.Visualization = Visualization(strings.ToUpper(strings.TrimSpace(string(q.Visualization))))
	q.Order = Order(strings.ToLower(strings.TrimSpace(string(q.Order))))
	q.Period = strings.ToLower(strings.TrimSpace(q.Period))

	if q.Metric != "" && !q.Metric.Valid() {
		q.Metric = ""
	}
	if q.GroupBy != "" && !q.GroupBy.Valid() {
		q.GroupBy = ""
	}
	if q.Visualization != "" && !q.Visualization.Valid() {
		q.Visualization = ""
	}
	if q.Order != OrderAsc && q.Order != OrderDesc {
		q.Order = ""
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.TimeRange != nil {
		tr := *q.TimeRange
		tr.Period = strings.ToLower(strings.TrimSpace(tr.Period))
		q.TimeRange = &tr
	}

	return q, q.Intention.Valid()
}

// ResolvedPeriod prefers the time range period over the top-level one.
func (q QueryIntent) ResolvedPeriod() string {
	if q.TimeRange != nil && q.TimeRange.Period != "" {
		return q.TimeRange.Period
	}
	return q.Period
}

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
