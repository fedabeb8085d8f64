package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ottawa-housing/models"
	"ottawa-housing/utils"
)

// SeriesReader reads one metric column (plus an optional secondary column)
// from an observation table, ascending by date.
type SeriesReader interface {
	FetchSeries(ctx context.Context, table, column, secondary string) ([]models.Observation, error)
}

// Page is a group of graphs rendered together with their summary lines.
type Page struct {
	Name     string          `json:"name"`
	Title    string          `json:"title"`
	Graphs   []*models.Graph `json:"graphs"`
	Sections []PageSection   `json:"sections"`
}

// PageSection pairs a graph with its rendered summary sentences.
type PageSection struct {
	Metric    string   `json:"metric"`
	Sentences []string `json:"sentences,omitempty"`
	Error     string   `json:"error,omitempty"`
	Empty     string   `json:"empty,omitempty"`
}

// ErrUnknownPage is returned for a page name that has no definition.
var ErrUnknownPage = errors.New("unknown page")

// Page names.
const (
	PageSales   = "sales"
	PageRentals = "rentals"
)

var pages = map[string]struct {
	title   string
	metrics []string
}{
	PageSales:   {"Ottawa Housing Market Dashboard", []string{MetricSales, MetricSalesListings}},
	PageRentals: {"Ottawa Housing Market Dashboard - Rentals", []string{MetricRent, MetricRentalListings}},
}

// DashboardService turns stored observations into charts and summaries.
type DashboardService struct {
	reader SeriesReader
	logger *utils.Logger
}

// NewDashboardService creates a DashboardService reading from reader.
func NewDashboardService(reader SeriesReader, logger *utils.Logger) *DashboardService {
	return &DashboardService{reader: reader, logger: logger}
}

// BuildGraph loads both categories of a metric concurrently, merges them and
// computes the MoM/YoY changes. A failed read downgrades the graph to its
// static error message; it is not returned as an error. Only an unknown
// metric key yields an error.
func (s *DashboardService) BuildGraph(ctx context.Context, key string) (*models.Graph, error) {
	m, err := LookupMetric(key)
	if err != nil {
		return nil, err
	}

	graph := &models.Graph{Metric: m.Key, Title: m.Title, Points: []*models.ChartPoint{}}

	var freehold, condo []models.Observation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		freehold, err = s.reader.FetchSeries(gctx, m.FreeholdTable, m.Column, m.Secondary)
		if err != nil {
			return fmt.Errorf("fetch %s.%s: %w", m.FreeholdTable, m.Column, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		condo, err = s.reader.FetchSeries(gctx, m.CondoTable, m.Column, m.Secondary)
		if err != nil {
			return fmt.Errorf("fetch %s.%s: %w", m.CondoTable, m.Column, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("[dashboard] Error fetching %s data: %v", m.Key, err)
		graph.Error = m.ErrorMessage
		return graph, nil
	}

	rows := Merge(freehold, condo)
	ApplyMoM(rows)
	graph.Points = rows
	graph.Summary = Summarise(rows)

	s.logger.Debug("[dashboard] Built %s graph: %d points", m.Key, len(rows))
	return graph, nil
}

// BuildPage builds every graph of the named page concurrently. Graph failures
// are reported per section and never fail the page.
func (s *DashboardService) BuildPage(ctx context.Context, name string) (*Page, error) {
	def, ok := pages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, name)
	}

	page := &Page{
		Name:     name,
		Title:    def.title,
		Graphs:   make([]*models.Graph, len(def.metrics)),
		Sections: make([]PageSection, len(def.metrics)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range def.metrics {
		g.Go(func() error {
			graph, err := s.BuildGraph(gctx, key)
			if err != nil {
				return err
			}
			page.Graphs[i] = graph
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, graph := range page.Graphs {
		page.Sections[i] = s.section(graph)
	}
	return page, nil
}

// SalesPage builds the sold-price and sales-listings graphs.
func (s *DashboardService) SalesPage(ctx context.Context) (*Page, error) {
	return s.BuildPage(ctx, PageSales)
}

// RentalsPage builds the rent and rental-listings graphs.
func (s *DashboardService) RentalsPage(ctx context.Context) (*Page, error) {
	return s.BuildPage(ctx, PageRentals)
}

func (s *DashboardService) section(graph *models.Graph) PageSection {
	sec := PageSection{Metric: graph.Metric}
	m, err := LookupMetric(graph.Metric)
	if err != nil {
		sec.Error = err.Error()
		return sec
	}
	switch {
	case graph.Failed():
		sec.Error = graph.Error
	case graph.Summary == nil:
		sec.Empty = m.EmptyMessage
	default:
		sec.Sentences = []string{
			m.FreeholdSentence(graph.Summary),
			m.CondoSentence(graph.Summary),
		}
	}
	return sec
}
