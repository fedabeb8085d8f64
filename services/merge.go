package services

import (
	"sort"

	"ottawa-housing/models"
)

// Merge outer-joins the freehold and condo series on date. Dates present in
// only one category get nil for the other. The result is ascending by date.
func Merge(freehold, condo []models.Observation) []*models.ChartPoint {
	byDate := make(map[string]*models.ChartPoint, len(freehold)+len(condo))
	rows := make([]*models.ChartPoint, 0, len(freehold)+len(condo))

	get := func(o models.Observation) *models.ChartPoint {
		p := models.NewChartPoint(o.Date)
		if existing, ok := byDate[p.Date]; ok {
			return existing
		}
		byDate[p.Date] = p
		rows = append(rows, p)
		return p
	}

	for _, o := range freehold {
		p := get(o)
		p.Freehold = o.Value
		p.FreeholdSecondary = o.Secondary
	}
	for _, o := range condo {
		p := get(o)
		p.Condo = o.Value
		p.CondoSecondary = o.Secondary
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Day().Before(rows[j].Day())
	})
	return rows
}
