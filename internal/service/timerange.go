package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bi-service/internal/aggregate"
	"bi-service/internal/model"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

var monthNames = map[string]time.Month{
	"january": time.January, "janeiro": time.January,
	"february": time.February, "fevereiro": time.February,
	"march": time.March, "março": time.March, "marco": time.March,
	"april": time.April, "abril": time.April,
	"may": time.May, "maio": time.May,
	"june": time.June, "junho": time.June,
	"july": time.July, "julho": time.July,
	"august": time.August, "agosto": time.August,
	"september": time.September, "setembro": time.September,
	"october": time.October, "outubro": time.October,
	"november": time.November, "novembro": time.November,
	"december": time.December, "dezembro": time.December,
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func monthRange(start time.Time) model.DateRange {
	return model.DateRange{From: start, To: endOfDay(start.AddDate(0, 1, -1))}
}

// resolveRange turns the period shorthand or explicit dates of an intent into
// concrete bounds. A nil range means the fetch is unbounded.
func resolveRange(intent model.QueryIntent, now time.Time) (*model.DateRange, error) {
	current := aggregate.MonthStart(now)

	switch period := intent.ResolvedPeriod(); period {
	case "this_month":
		r := monthRange(current)
		return &r, nil
	case "last_month":
		r := monthRange(current.AddDate(0, -1, 0))
		return &r, nil
	case "this_year":
		start := time.Date(current.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		r := model.DateRange{From: start, To: endOfDay(time.Date(current.Year(), time.December, 31, 0, 0, 0, 0, time.UTC))}
		return &r, nil
	default:
		if month, ok := monthNames[period]; ok {
			year := current.Year()
			if month > current.Month() {
				year--
			}
			r := monthRange(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
			return &r, nil
		}
	}

	if intent.TimeRange == nil || (intent.TimeRange.StartDate == "" && intent.TimeRange.EndDate == "") {
		return nil, nil
	}

	r := model.DateRange{}
	if s := intent.TimeRange.StartDate; s != "" {
		start, _, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		r.From = start
	}
	if s := intent.TimeRange.EndDate; s != "" {
		end, dateOnly, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		if dateOnly {
			end = endOfDay(end)
		}
		r.To = end
	} else {
		r.To = endOfDay(now)
	}
	if !r.To.IsZero() && r.To.Before(r.From) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidTimeRange)
	}
	return &r, nil
}

func parseDate(value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidTimeRange, value)
}

func trendMonths(period string) int {
	switch period {
	case "last_3_months":
		return 3
	case "last_12_months":
		return 12
	default:
		return 6
	}
}
