package services

import (
	"math"
	"time"

	"ottawa-housing/models"
)

// Window describes the acceptable day offsets for a prior observation and
// the offset it should ideally sit at.
type Window struct {
	Target float64
	Min    float64
	Max    float64
}

var (
	// MonthWindow accepts a prior point 20-45 days back, closest to 30.
	MonthWindow = Window{Target: 30, Min: 20, Max: 45}
	// YearWindow accepts a prior point 330-395 days back, closest to 365.
	YearWindow = Window{Target: 365, Min: 330, Max: 395}
)

// daysBetween returns the fractional number of days from earlier to later.
func daysBetween(earlier, later time.Time) float64 {
	return later.Sub(earlier).Hours() / 24
}

// FindPrior returns the index of the point before i whose offset falls inside
// w and is closest to w.Target, or -1 when nothing qualifies. Points must be
// ascending by date. On ties the earliest candidate wins.
func FindPrior(dates []time.Time, i int, w Window) int {
	if i <= 0 || i >= len(dates) {
		return -1
	}

	best := -1
	bestDiff := math.Inf(1)
	current := dates[i]

	for j := 0; j < i; j++ {
		d := daysBetween(dates[j], current)
		if d < w.Min || d > w.Max {
			continue
		}
		if diff := math.Abs(d - w.Target); diff < bestDiff {
			bestDiff = diff
			best = j
		}
	}
	return best
}

// PercentChange returns (current - prior) / prior * 100. It returns nil when
// either side is missing or zero.
func PercentChange(prior, current *float64) *float64 {
	if prior == nil || current == nil || *prior == 0 || *current == 0 {
		return nil
	}
	pct := (*current - *prior) / *prior * 100
	return &pct
}

// ChangeAt computes the change for point i of an ascending series against the
// prior point selected by w.
func ChangeAt(points []models.Point, i int, w Window) *float64 {
	dates := make([]time.Time, len(points))
	for k, p := range points {
		dates[k] = p.Date
	}
	j := FindPrior(dates, i, w)
	if j < 0 {
		return nil
	}
	return PercentChange(points[j].Value, points[i].Value)
}

func chartDates(rows []*models.ChartPoint) []time.Time {
	dates := make([]time.Time, len(rows))
	for k, r := range rows {
		dates[k] = r.Day()
	}
	return dates
}

// ApplyMoM fills FreeholdMoM and CondoMoM for every row of a merged, ascending
// chart. Both categories are compared against the same prior row.
func ApplyMoM(rows []*models.ChartPoint) {
	dates := chartDates(rows)
	for i, row := range rows {
		row.FreeholdMoM = nil
		row.CondoMoM = nil

		j := FindPrior(dates, i, MonthWindow)
		if j < 0 {
			continue
		}
		prev := rows[j]
		row.FreeholdMoM = PercentChange(prev.Freehold, row.Freehold)
		row.CondoMoM = PercentChange(prev.Condo, row.Condo)
	}
}

// LatestYoY computes the year-over-year change of the last row for the value
// chosen by pick.
func LatestYoY(rows []*models.ChartPoint, pick func(*models.ChartPoint) *float64) *float64 {
	if len(rows) == 0 {
		return nil
	}
	last := len(rows) - 1
	j := FindPrior(chartDates(rows), last, YearWindow)
	if j < 0 {
		return nil
	}
	return PercentChange(pick(rows[j]), pick(rows[last]))
}

// Summarise builds the headline numbers from an already MoM-annotated chart.
// It returns nil for an empty chart.
func Summarise(rows []*models.ChartPoint) *models.GraphSummary {
	if len(rows) == 0 {
		return nil
	}
	latest := rows[len(rows)-1]
	return &models.GraphSummary{
		LatestFreehold: latest.Freehold,
		LatestCondo:    latest.Condo,
		FreeholdMoM:    latest.FreeholdMoM,
		CondoMoM:       latest.CondoMoM,
		FreeholdYoY: LatestYoY(rows, func(p *models.ChartPoint) *float64 {
			return p.Freehold
		}),
	}
}
