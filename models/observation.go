package models

import "time"

// DateLayout is the calendar-date format used for the date column.
const DateLayout = "2006-01-02"

// Category distinguishes the two housing types tracked by the weekly reports.
type Category string

const (
	Freehold Category = "freehold"
	Condo    Category = "condo"
)

// Observation is a single weekly row of one metric table. Metrics missing
// from the source post are nil.
type Observation struct {
	Date      time.Time
	Value     *float64
	Secondary *float64
}

// Point is a (date, value) pair in an ascending time series.
type Point struct {
	Date  time.Time
	Value *float64
}

// ChartPoint is one merged row of a two-category chart.
type ChartPoint struct {
	Date              string   `json:"date"`
	Freehold          *float64 `json:"freehold"`
	Condo             *float64 `json:"condo"`
	FreeholdSecondary *float64 `json:"freeholdSecondary,omitempty"`
	CondoSecondary    *float64 `json:"condoSecondary,omitempty"`
	FreeholdMoM       *float64 `json:"freeholdMoM"`
	CondoMoM          *float64 `json:"condoMoM"`

	day time.Time
}

// NewChartPoint creates a merged row for the given day with no values set.
func NewChartPoint(day time.Time) *ChartPoint {
	day = day.UTC().Truncate(24 * time.Hour)
	return &ChartPoint{Date: day.Format(DateLayout), day: day}
}

// Day returns the row date at UTC midnight.
func (p *ChartPoint) Day() time.Time {
	if p.day.IsZero() {
		if t, err := time.Parse(DateLayout, p.Date); err == nil {
			p.day = t
		}
	}
	return p.day
}

// GraphSummary carries the headline numbers shown above a chart.
type GraphSummary struct {
	LatestFreehold *float64 `json:"latestFreehold"`
	LatestCondo    *float64 `json:"latestCondo"`
	FreeholdMoM    *float64 `json:"freeholdMoM"`
	CondoMoM       *float64 `json:"condoMoM"`
	FreeholdYoY    *float64 `json:"freeholdYoY"`
}

// Graph is a fully computed chart: merged series plus summary. When the
// backing reads fail, Error holds the static message shown in place of it.
type Graph struct {
	Metric  string        `json:"metric"`
	Title   string        `json:"title"`
	Points  []*ChartPoint `json:"points"`
	Summary *GraphSummary `json:"summary"`
	Error   string        `json:"error,omitempty"`
}

// Failed reports whether the graph could not be loaded.
func (g *Graph) Failed() bool { return g.Error != "" }

// Float returns a pointer to v. Handy for literals in tests and parsers.
func Float(v float64) *float64 { return &v }
