package stats

import "fmt"

// NotApplicable is the text shown for a rate with no denominator.
const NotApplicable = "N/A"

// Ratio returns num/den, or 0 when den is not positive.
func Ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Percent returns 100*num/den, or 0 when den is not positive.
func Percent(num, den int) float64 {
	return 100 * Ratio(num, den)
}

// Mean returns sum/n, or 0 when n is not positive.
func Mean(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return sum / float64(n)
}

// RateText formats num/den as a percentage with one decimal, or
// NotApplicable when den is not positive.
func RateText(num, den int) string {
	if den <= 0 {
		return NotApplicable
	}
	return fmt.Sprintf("%.1f%%", Percent(num, den))
}
