package services

import (
	"math"
	"testing"

	"ottawa-housing/models"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{models.Float(550000), "$550,000"},
		{models.Float(2799.6), "$2,800"},
		{models.Float(999), "$999"},
		{models.Float(-1250), "-$1,250"},
		{nil, "N/A"},
	}

	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(models.Float(1523)); got != "1,523" {
		t.Errorf("FormatCount(1523) = %q", got)
	}
	if got := FormatCount(nil); got != "N/A" {
		t.Errorf("FormatCount(nil) = %q", got)
	}
}

func TestFormatPercentage(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{models.Float(10), "+10.0%"},
		{models.Float(-3.24), "-3.2%"},
		{models.Float(0), "+0.0%"},
		{models.Float(0.02), "+0.0%"},
		{models.Float(0.049), "+0.0%"},
		{models.Float(-0.02), "-0.0%"},
		{models.Float(0.06), "+0.1%"},
		{nil, "N/A"},
	}

	for _, tt := range tests {
		if got := FormatPercentage(tt.in); got != tt.want {
			t.Errorf("FormatPercentage(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoMSuffix(t *testing.T) {
	if got := FormatMoMSuffix(models.Float(1.23)); got != " (+1.2% MoM)" {
		t.Errorf("got %q", got)
	}
	if got := FormatMoMSuffix(models.Float(-4.56)); got != " (-4.6% MoM)" {
		t.Errorf("got %q", got)
	}
	if got := FormatMoMSuffix(nil); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestSummarySentences(t *testing.T) {
	m, err := LookupMetric(MetricSales)
	if err != nil {
		t.Fatal(err)
	}

	s := &models.GraphSummary{
		LatestFreehold: models.Float(550000),
		LatestCondo:    models.Float(380000),
		FreeholdMoM:    models.Float(10),
		CondoMoM:       models.Float(-5),
		FreeholdYoY:    models.Float(2.5),
	}

	want := "The median sold price for freehold homes in Ottawa last week was $550,000, " +
		"this represents a month over month change of +10.0%, and a year over year change of +2.5%."
	if got := m.FreeholdSentence(s); got != want {
		t.Errorf("FreeholdSentence:\n got %q\nwant %q", got, want)
	}

	want = "The median sold price for condos in Ottawa last week was $380,000, " +
		"this represents a month over month change of -5.0%."
	if got := m.CondoSentence(s); got != want {
		t.Errorf("CondoSentence:\n got %q\nwant %q", got, want)
	}

	s.FreeholdYoY = nil
	s.FreeholdMoM = nil
	want = "The median sold price for freehold homes in Ottawa last week was $550,000, " +
		"this represents a month over month change of N/A."
	if got := m.FreeholdSentence(s); got != want {
		t.Errorf("FreeholdSentence without YoY:\n got %q\nwant %q", got, want)
	}
}

func TestTinyChangeAgreesWithTooltip(t *testing.T) {
	m, err := LookupMetric(MetricSales)
	if err != nil {
		t.Fatal(err)
	}
	s := &models.GraphSummary{LatestFreehold: models.Float(550000), FreeholdMoM: models.Float(0.02)}

	want := "The median sold price for freehold homes in Ottawa last week was $550,000, " +
		"this represents a month over month change of +0.0%."
	if got := m.FreeholdSentence(s); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
	if got := FormatMoMSuffix(s.FreeholdMoM); got != " (+0.0% MoM)" {
		t.Errorf("suffix got %q", got)
	}
	if got := FormatPercentage(models.Float(math.Copysign(0, -1))); got != "+0.0%" {
		t.Errorf("negative zero got %q", got)
	}
}

func TestRentalListingsSentence(t *testing.T) {
	m, err := LookupMetric(MetricRentalListings)
	if err != nil {
		t.Fatal(err)
	}
	s := &models.GraphSummary{LatestFreehold: models.Float(1234), FreeholdMoM: models.Float(3)}

	want := "There were 1,234 freehold homes available for rent in Ottawa last week, " +
		"this represents a month over month change of +3.0%."
	if got := m.FreeholdSentence(s); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}
