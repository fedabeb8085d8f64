package services

import (
	"errors"
	"fmt"

	"ottawa-housing/models"
)

// ErrUnknownMetric is returned for a metric key that has no definition.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric keys served by the dashboard.
const (
	MetricSales          = "sales"
	MetricSalesListings  = "sales-listings"
	MetricRent           = "rent"
	MetricRentalListings = "rental-listings"
)

// Metric describes how one chart is read and summarised.
type Metric struct {
	Key           string
	Title         string
	FreeholdTable string
	CondoTable    string
	Column        string
	Secondary     string
	ErrorMessage  string
	EmptyMessage  string

	format       func(*float64) string
	freeholdLead string
	condoLead    string
}

var metrics = map[string]*Metric{
	MetricSales: {
		Key:           MetricSales,
		Title:         "Median Sold Price",
		FreeholdTable: models.TableFreeholdSales,
		CondoTable:    models.TableCondoSales,
		Column:        models.ColMedianSoldPrice,
		ErrorMessage:  "Failed to load sales data",
		EmptyMessage:  "No sales data available",
		format:        FormatCurrency,
		freeholdLead:  "The median sold price for freehold homes in Ottawa last week was %s",
		condoLead:     "The median sold price for condos in Ottawa last week was %s",
	},
	MetricSalesListings: {
		Key:           MetricSalesListings,
		Title:         "Active Listings",
		FreeholdTable: models.TableFreeholdSales,
		CondoTable:    models.TableCondoSales,
		Column:        models.ColActiveListings,
		Secondary:     models.ColMedianDOM,
		ErrorMessage:  "Failed to load sales listings data",
		EmptyMessage:  "No sales listings data available",
		format:        FormatCount,
		freeholdLead:  "There were %s freehold homes listed for sale in Ottawa last week",
		condoLead:     "There were %s condos listed for sale in Ottawa last week",
	},
	MetricRent: {
		Key:           MetricRent,
		Title:         "Median Rental Price",
		FreeholdTable: models.TableFreeholdRentals,
		CondoTable:    models.TableCondoRentals,
		Column:        models.ColMedianRentedPrice,
		ErrorMessage:  "Failed to load rental data",
		EmptyMessage:  "No rental data available",
		format:        FormatCurrency,
		freeholdLead:  "The median rental price for freehold homes in Ottawa last week was %s",
		condoLead:     "The median rental price for condos in Ottawa last week was %s",
	},
	MetricRentalListings: {
		Key:           MetricRentalListings,
		Title:         "Rental Listings",
		FreeholdTable: models.TableFreeholdRentals,
		CondoTable:    models.TableCondoRentals,
		Column:        models.ColActiveListings,
		Secondary:     models.ColRentedProperties,
		ErrorMessage:  "Failed to load rental listings data",
		EmptyMessage:  "No rental listings data available",
		format:        FormatCount,
		freeholdLead:  "There were %s freehold homes available for rent in Ottawa last week",
		condoLead:     "There were %s condos available for rent in Ottawa last week",
	},
}

// LookupMetric returns the definition for key.
func LookupMetric(key string) (*Metric, error) {
	m, ok := metrics[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, key)
	}
	return m, nil
}

// Format renders a value in the metric's unit.
func (m *Metric) Format(v *float64) string { return m.format(v) }

// FreeholdSentence renders the freehold summary line, with YoY when known.
func (m *Metric) FreeholdSentence(s *models.GraphSummary) string {
	return sentence(fmt.Sprintf(m.freeholdLead, m.format(s.LatestFreehold)), s.FreeholdMoM, s.FreeholdYoY)
}

// CondoSentence renders the condo summary line. It never carries YoY.
func (m *Metric) CondoSentence(s *models.GraphSummary) string {
	return sentence(fmt.Sprintf(m.condoLead, m.format(s.LatestCondo)), s.CondoMoM, nil)
}
