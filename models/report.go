package models

import "time"

// RawPost holds an unprocessed submission straight from the Reddit feed.
// It is written to CSV before any parsing.
type RawPost struct {
	ID         string
	Title      string
	Subreddit  string
	SelfText   string
	CreatedUTC time.Time
	ScrapedAt  time.Time
}

// PostDate is the calendar date the post is filed under.
func (p *RawPost) PostDate() string {
	return p.CreatedUTC.UTC().Format(DateLayout)
}

// SalesSection holds the freehold or condo sales figures of one week.
type SalesSection struct {
	ActiveListings   *float64
	ConditionalSales *float64
	SoldProperties   *float64
	MedianListPrice  *float64
	MedianSoldPrice  *float64
	MedianDOM        *float64
}

// RentalSection holds the freehold or condo rental figures of one week.
type RentalSection struct {
	ActiveListings    *float64
	RentedProperties  *float64
	MedianListPrice   *float64
	MedianRentedPrice *float64
	MedianDOM         *float64
}

// WeeklyReport is a parsed "Week In Review" post. Sections absent from the
// post are nil.
type WeeklyReport struct {
	Date            string
	PostID          string
	FreeholdSales   *SalesSection
	CondoSales      *SalesSection
	FreeholdRentals *RentalSection
	CondoRentals    *RentalSection
}

// Empty reports whether no section could be parsed.
func (r *WeeklyReport) Empty() bool {
	return r.FreeholdSales == nil && r.CondoSales == nil &&
		r.FreeholdRentals == nil && r.CondoRentals == nil
}

// IngestResult summarises one ingestion run.
type IngestResult struct {
	Fetched   int
	Matched   int
	Processed int
	Skipped   int
	Failed    int
}
