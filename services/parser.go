package services

import (
	"regexp"
	"strconv"
	"strings"

	"ottawa-housing/models"
	"ottawa-housing/utils"
)

var (
	freeholdSalesSection   = regexp.MustCompile(`(?s)\*\*\*Freehold\*\*\*(.*?)\*\*\*Condos\*\*\*`)
	condoSalesSection      = regexp.MustCompile(`(?s)\*\*\*Condos\*\*\*(.*?)\*\*\*Freehold Rentals\*\*\*`)
	freeholdRentalsSection = regexp.MustCompile(`(?s)\*\*\*Freehold Rentals\*\*\*(.*?)\*\*\*Condo Rentals\*\*\*`)
	condoRentalsSection    = regexp.MustCompile(`(?s)\*\*\*Condo Rentals\*\*\*(.*)$`)

	activeListingsRe   = field(`Number of active listings:\s*(\d[\d,]*)`)
	conditionalSalesRe = field(`Number of conditional sales:\s*(\d[\d,]*)`)
	soldPropertiesRe   = field(`Number of sold properties:\s*(\d[\d,]*)`)
	rentedPropertiesRe = field(`Number of rented properties:\s*(\d[\d,]*)`)
	medianListPriceRe  = field(`Median list price:\s*\$?([\d,]+)`)
	medianListedRe     = field(`Median (?:list(?:ed)?) price:\s*\$?([\d,]+)`)
	medianSoldPriceRe  = field(`Median sold price:\s*\$?([\d,]+)`)
	condoSoldPriceRe   = field(`Sold price:\s*\$?([\d,]+)`)
	medianRentedRe     = field(`Median rented price:\s*\$?([\d,]+)`)
	medianDOMRe        = field(`Median DOM:\s*(\d+)`)
)

func field(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + pattern)
}

// Parser turns the selftext of a weekly review post into a WeeklyReport.
type Parser struct {
	logger *utils.Logger
}

// NewParser creates a Parser with the given logger.
func NewParser(logger *utils.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse extracts all four market sections from post. Sections that are not
// present are left nil; so are individual fields that cannot be found.
func (p *Parser) Parse(post *models.RawPost) *models.WeeklyReport {
	text := post.SelfText
	report := &models.WeeklyReport{Date: post.PostDate(), PostID: post.ID}

	if sec, ok := section(freeholdSalesSection, text); ok {
		report.FreeholdSales = &models.SalesSection{
			ActiveListings:   extractNumber(sec, activeListingsRe),
			ConditionalSales: extractNumber(sec, conditionalSalesRe),
			SoldProperties:   extractNumber(sec, soldPropertiesRe),
			MedianListPrice:  extractNumber(sec, medianListPriceRe),
			MedianSoldPrice:  extractNumber(sec, medianSoldPriceRe),
			MedianDOM:        extractNumber(sec, medianDOMRe),
		}
	}

	if sec, ok := section(condoSalesSection, text); ok {
		report.CondoSales = &models.SalesSection{
			ActiveListings:   extractNumber(sec, activeListingsRe),
			ConditionalSales: extractNumber(sec, conditionalSalesRe),
			SoldProperties:   extractNumber(sec, soldPropertiesRe),
			MedianListPrice:  extractNumber(sec, medianListPriceRe),
			MedianSoldPrice:  extractNumber(sec, condoSoldPriceRe),
			MedianDOM:        extractNumber(sec, medianDOMRe),
		}
	}

	if sec, ok := section(freeholdRentalsSection, text); ok {
		report.FreeholdRentals = &models.RentalSection{
			ActiveListings:    extractNumber(sec, activeListingsRe),
			RentedProperties:  extractNumber(sec, rentedPropertiesRe),
			MedianListPrice:   extractNumber(sec, medianListedRe),
			MedianRentedPrice: extractNumber(sec, medianRentedRe),
			MedianDOM:         extractNumber(sec, medianDOMRe),
		}
	}

	if sec, ok := section(condoRentalsSection, text); ok {
		report.CondoRentals = &models.RentalSection{
			ActiveListings:    extractNumber(sec, activeListingsRe),
			RentedProperties:  extractNumber(sec, rentedPropertiesRe),
			MedianListPrice:   extractNumber(sec, medianListPriceRe),
			MedianRentedPrice: extractNumber(sec, medianRentedRe),
			MedianDOM:         extractNumber(sec, medianDOMRe),
		}
	}

	if report.Empty() {
		p.logger.Warn("[parser] Post %s (%s) has no recognisable sections", post.ID, report.Date)
	}
	return report
}

func section(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// extractNumber returns the first capture of re in text with thousands
// separators removed, or nil when absent.
func extractNumber(text string, re *regexp.Regexp) *float64 {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
