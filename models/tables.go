package models

// Observation tables, one per category and market.
const (
	TableFreeholdSales   = "freehold_sales"
	TableCondoSales      = "condo_sales"
	TableFreeholdRentals = "freehold_rentals"
	TableCondoRentals    = "condo_rentals"
)

// Metric columns.
const (
	ColActiveListings    = "active_listings"
	ColConditionalSales  = "conditional_sales"
	ColSoldProperties    = "sold_properties"
	ColRentedProperties  = "rented_properties"
	ColMedianListPrice   = "median_list_price"
	ColMedianSoldPrice   = "median_sold_price"
	ColMedianRentedPrice = "median_rented_price"
	ColMedianDOM         = "median_dom"
)

// SalesColumns are the metric columns of both sales tables, in storage order.
var SalesColumns = []string{
	ColActiveListings, ColConditionalSales, ColSoldProperties,
	ColMedianListPrice, ColMedianSoldPrice, ColMedianDOM,
}

// RentalColumns are the metric columns of both rental tables, in storage order.
var RentalColumns = []string{
	ColActiveListings, ColRentedProperties, ColMedianListPrice,
	ColMedianRentedPrice, ColMedianDOM,
}

// Columns returns the metric columns of table, or nil for an unknown table.
func Columns(table string) []string {
	switch table {
	case TableFreeholdSales, TableCondoSales:
		return SalesColumns
	case TableFreeholdRentals, TableCondoRentals:
		return RentalColumns
	}
	return nil
}

// Values flattens a sales section in SalesColumns order.
func (s *SalesSection) Values() []*float64 {
	return []*float64{
		s.ActiveListings, s.ConditionalSales, s.SoldProperties,
		s.MedianListPrice, s.MedianSoldPrice, s.MedianDOM,
	}
}

// Values flattens a rental section in RentalColumns order.
func (s *RentalSection) Values() []*float64 {
	return []*float64{
		s.ActiveListings, s.RentedProperties, s.MedianListPrice,
		s.MedianRentedPrice, s.MedianDOM,
	}
}
