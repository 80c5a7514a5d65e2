package model

import (
	"time"

	"github.com/google/uuid"
)

type AggregateRow struct {
	Key            string  `json:"key"`
	Label          string  `json:"label"`
	Total          int     `json:"total"`
	Compliant      int     `json:"compliant"`
	ComplianceRate float64 `json:"complianceRate"`
	Value          float64 `json:"value"`
}

func (r AggregateRow) NonCompliant() int {
	return r.Total - r.Compliant
}

type TrendPoint struct {
	Month          time.Time `json:"month"`
	Label          string    `json:"label"`
	Total          int       `json:"total"`
	Compliant      int       `json:"compliant"`
	ComplianceRate float64   `json:"complianceRate"`
	Value          float64   `json:"value"`
}

type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

type ChartAxis struct {
	BeginAtZero bool     `json:"beginAtZero"`
	Max         *float64 `json:"max,omitempty"`
	Percent     bool     `json:"percent"`
}

// ChartSpec describes a chart for the front end to render. It carries data
// and axis hints only, not renderer options.
type ChartSpec struct {
	Type     ChartType      `json:"type"`
	Title    string         `json:"title"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
	YAxis    ChartAxis      `json:"yAxis"`
}

type TableColumn struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

type TableSpec struct {
	Title   string        `json:"title"`
	Columns []TableColumn `json:"columns"`
	Rows    [][]string    `json:"rows"`
}

type AggregateResult struct {
	Intention   Intention      `json:"intention"`
	Metric      Metric         `json:"metric"`
	GroupBy     GroupBy        `json:"groupBy,omitempty"`
	Title       string         `json:"title"`
	Range       *DateRange     `json:"range,omitempty"`
	Rows        []AggregateRow `json:"rows,omitempty"`
	Trend       []TrendPoint   `json:"trend,omitempty"`
	OverallRate *float64       `json:"overallRate,omitempty"`
	Chart       *ChartSpec     `json:"chart,omitempty"`
	Table       *TableSpec     `json:"table,omitempty"`
}

type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Value       float64     `json:"value"`
}

type GeneralMetrics struct {
	TotalInspections     int     `json:"totalInspections"`
	CompliantInspections int     `json:"compliantInspections"`
	NonCompliantCount    int     `json:"nonCompliantCount"`
	ComplianceRate       float64 `json:"complianceRate"`
}

type DashboardOverview struct {
	GeneratedAt   time.Time          `json:"generatedAt"`
	Metrics       GeneralMetrics     `json:"metrics"`
	ByVehicleType []AggregateRow     `json:"byVehicleType"`
	Trend         []TrendPoint       `json:"trend"`
	Recent        []InspectionRecord `json:"recent"`
	Insights      []Insight          `json:"insights"`
}

type QueryResponse struct {
	ID       uuid.UUID        `json:"id"`
	Query    string           `json:"query"`
	Intent   QueryIntent      `json:"intent"`
	Result   *AggregateResult `json:"result"`
	Insights []Insight        `json:"insights"`
}
