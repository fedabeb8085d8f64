package web

import (
	"ottawa-housing/models"
	"ottawa-housing/services"
)

var secondaryLabels = map[string]string{
	models.ColMedianDOM:        "Median days on market",
	models.ColRentedProperties: "Rented properties",
}

type pageView struct {
	Title    string
	Nav      []navLink
	Sections []sectionView
}

type navLink struct {
	Href   string
	Label  string
	Active bool
}

type sectionView struct {
	Metric         string
	Title          string
	Sentences      []string
	Error          string
	Empty          string
	SecondaryLabel string
	Rows           []rowView
}

type rowView struct {
	Date              string
	Freehold          string
	Condo             string
	FreeholdSecondary string
	CondoSecondary    string
}

// newPageView flattens a built page into display strings. Rows are listed
// newest first; each value carries its MoM tooltip suffix.
func newPageView(page *services.Page) pageView {
	view := pageView{
		Title: page.Title,
		Nav: []navLink{
			{Href: "/", Label: "Sales", Active: page.Name == services.PageSales},
			{Href: "/rentals", Label: "Rentals", Active: page.Name == services.PageRentals},
		},
	}

	for i, sec := range page.Sections {
		sv := sectionView{
			Metric:    sec.Metric,
			Sentences: sec.Sentences,
			Error:     sec.Error,
			Empty:     sec.Empty,
		}
		m, err := services.LookupMetric(sec.Metric)
		if err != nil || i >= len(page.Graphs) || page.Graphs[i] == nil {
			view.Sections = append(view.Sections, sv)
			continue
		}
		graph := page.Graphs[i]
		sv.Title = graph.Title
		sv.SecondaryLabel = secondaryLabels[m.Secondary]

		if !graph.Failed() {
			for j := len(graph.Points) - 1; j >= 0; j-- {
				p := graph.Points[j]
				row := rowView{
					Date:     p.Date,
					Freehold: m.Format(p.Freehold) + services.FormatMoMSuffix(p.FreeholdMoM),
					Condo:    m.Format(p.Condo) + services.FormatMoMSuffix(p.CondoMoM),
				}
				if m.Secondary != "" {
					row.FreeholdSecondary = services.FormatCount(p.FreeholdSecondary)
					row.CondoSecondary = services.FormatCount(p.CondoSecondary)
				}
				sv.Rows = append(sv.Rows, row)
			}
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
nav a { margin-right: 1rem; }
nav a.active { font-weight: bold; }
table { border-collapse: collapse; margin-bottom: 2rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: right; }
.error { color: #b00020; }
.empty { color: #666; }
</style>
</head>
<body>
<nav>{{range .Nav}}<a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>{{end}}</nav>
<main>
<h1>{{.Title}}</h1>
{{range .Sections}}
<section id="{{.Metric}}">
{{if .Title}}<h2>{{.Title}}</h2>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>
{{else if .Empty}}<p class="empty">{{.Empty}}</p>
{{else}}
{{range .Sentences}}<p>{{.}}</p>{{end}}
<table>
<thead><tr><th>Date</th><th>Freehold</th><th>Condo</th>{{if .SecondaryLabel}}<th>Freehold {{.SecondaryLabel}}</th><th>Condo {{.SecondaryLabel}}</th>{{end}}</tr></thead>
<tbody>
{{$secondary := .SecondaryLabel}}{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Freehold}}</td><td>{{.Condo}}</td>{{if $secondary}}<td>{{.FreeholdSecondary}}</td><td>{{.CondoSecondary}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}
</section>
{{end}}
</main>
</body>
</html>
`
