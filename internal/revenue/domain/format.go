package revenue

import (
	"fmt"
	"time"
)

const dateLabelLayout = "Jan 2, 2006"

// FormatCents renders integer cents as a whole-dollar display string,
// rounding half-up on the magnitude. Negative amounts render as "-$N".
func FormatCents(cents int64) string {
	negative := cents < 0
	magnitude := cents
	if negative {
		magnitude = -magnitude
	}
	dollars := (magnitude + 50) / 100
	if negative && dollars > 0 {
		return fmt.Sprintf("-$%d", dollars)
	}
	return fmt.Sprintf("$%d", dollars)
}

// Dollars converts cents to a decimal dollar amount for the report
// envelope's top-level totals.
func Dollars(cents int64) float64 {
	return float64(cents) / 100
}

// FormatDate renders a civil date as a fixed "Mon D, YYYY" label,
// independent of locale.
func FormatDate(d CivilDate) string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLabelLayout)
}
