package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

const notAvailable = "N/A"

// FormatCurrency renders a whole-dollar CAD amount, e.g. "$550,000".
func FormatCurrency(v *float64) string {
	if v == nil {
		return notAvailable
	}
	n := int64(math.Round(*v))
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}

// FormatCount renders a count with thousands separators.
func FormatCount(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return humanize.Comma(int64(math.Round(*v)))
}

// FormatPercentage renders a signed one-decimal percentage. Changes too small
// to show at one decimal keep their sign: -0.02 is "-0.0%".
func FormatPercentage(v *float64) string {
	if v == nil {
		return notAvailable
	}
	value := *v
	sign := ""
	if value >= 0 {
		sign = "+"
	}
	if value == 0 {
		value = 0 // drop a negative zero
	}
	return fmt.Sprintf("%s%.1f%%", sign, value)
}

// FormatMoMSuffix renders the tooltip suffix, e.g. " (+1.2% MoM)". It is
// empty when there is no change to show.
func FormatMoMSuffix(v *float64) string {
	if v == nil {
		return ""
	}
	return " (" + FormatPercentage(v) + " MoM)"
}

// sentence assembles one summary line. The YoY clause is only added when
// yoy is non-nil.
func sentence(lead string, mom, yoy *float64) string {
	var b strings.Builder
	b.WriteString(lead)
	b.WriteString(", this represents a month over month change of ")
	b.WriteString(FormatPercentage(mom))
	if yoy != nil {
		b.WriteString(", and a year over year change of ")
		b.WriteString(FormatPercentage(yoy))
	}
	b.WriteString(".")
	return b.String()
}
