package model

import (
	"strconv"
	"strings"
	"time"
)

// InspectionFilter narrows a fetch from the inspection store. The enterprise
// scope is not part of the filter: the store applies it on every query.
type InspectionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	PlanName  *string
	Compliant *bool
}

func (f InspectionFilter) WithRange(from, to time.Time) InspectionFilter {
	f.StartDate = &from
	f.EndDate = &to
	return f
}

// CacheKey serializes the filter with a fixed field order so that equal
// filters always map to the same cache entry.
func (f InspectionFilter) CacheKey() string {
	var b strings.Builder
	b.WriteString("inspections")
	if f.StartDate != nil {
		b.WriteString("|start=")
		b.WriteString(f.StartDate.UTC().Format(time.RFC3339Nano))
	}
	if f.EndDate != nil {
		b.WriteString("|end=")
		b.WriteString(f.EndDate.UTC().Format(time.RFC3339Nano))
	}
	if f.PlanName != nil {
		b.WriteString("|plan=")
		b.WriteString(strconv.Quote(*f.PlanName))
	}
	if f.Compliant != nil {
		b.WriteString("|compliant=")
		b.WriteString(strconv.FormatBool(*f.Compliant))
	}
	return b.String()
}

type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r DateRange) Filter() InspectionFilter {
	return InspectionFilter{}.WithRange(r.From, r.To)
}
