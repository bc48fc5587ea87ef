package revenue

// PairedDay is one primary-range day zipped with its comparison-range
// counterpart one calendar month earlier.
type PairedDay struct {
	Date         CivilDate
	Rents        int
	NetCents     int64
	PrevRents    int
	PrevNetCents int64
}

// AlignMonthBack pairs each primary day with the comparison day on the
// same day-of-month one month back (clamped for short months). A missing
// comparison day yields zero previous metrics rather than failing.
func AlignMonthBack(primary, comparison Aggregate) []PairedDay {
	days := primary.Days()
	paired := make([]PairedDay, 0, len(days))
	for _, day := range days {
		entry := PairedDay{
			Date:     day.Date,
			Rents:    day.Rents,
			NetCents: day.NetCents,
		}
		if prev, ok := comparison.Day(day.Date.MonthBack()); ok {
			entry.PrevRents = prev.Rents
			entry.PrevNetCents = prev.NetCents
		}
		paired = append(paired, entry)
	}
	return paired
}

// PairDays wraps a single aggregate's days as pairs with zero previous
// metrics, for modes that compute no comparison window.
func PairDays(agg Aggregate) []PairedDay {
	days := agg.Days()
	paired := make([]PairedDay, 0, len(days))
	for _, day := range days {
		paired = append(paired, PairedDay{
			Date:     day.Date,
			Rents:    day.Rents,
			NetCents: day.NetCents,
		})
	}
	return paired
}
