package revenue

import (
	"fmt"
	"time"
)

const civilDateLayout = "2006-01-02"

// CivilDate is a calendar date in the network's reference timezone,
// independent of clock time.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCivilDate parses a YYYY-MM-DD date string.
func ParseCivilDate(value string) (CivilDate, error) {
	parsed, err := time.Parse(civilDateLayout, value)
	if err != nil {
		return CivilDate{}, fmt.Errorf("%w: %q", ErrInvalidRange, value)
	}
	return CivilDate{Year: parsed.Year(), Month: parsed.Month(), Day: parsed.Day()}, nil
}

// CivilDateOf converts an instant to its civil date in loc.
func CivilDateOf(instant time.Time, loc *time.Location) CivilDate {
	local := instant.In(loc)
	return CivilDate{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// String returns the YYYY-MM-DD key form.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is unset.
func (d CivilDate) IsZero() bool { return d.Year == 0 }

// After reports whether d is after other.
func (d CivilDate) After(other CivilDate) bool {
	return d.dayNumber() > other.dayNumber()
}

// AddDays returns the date n days later (or earlier for negative n).
func (d CivilDate) AddDays(n int) CivilDate {
	shifted := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return CivilDate{Year: shifted.Year(), Month: shifted.Month(), Day: shifted.Day()}
}

// StartOfMonth returns the first day of the date's month.
func (d CivilDate) StartOfMonth() CivilDate {
	return CivilDate{Year: d.Year, Month: d.Month, Day: 1}
}

// MonthBack returns the date one calendar month earlier. A day-of-month
// past the end of the target month clamps to that month's last day;
// time.AddDate would normalize forward instead, which shifts revenue
// into the wrong month.
func (d CivilDate) MonthBack() CivilDate {
	year, month := d.Year, d.Month-1
	if month < time.January {
		year, month = year-1, time.December
	}
	day := d.Day
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return CivilDate{Year: year, Month: month, Day: day}
}

// StartOfDay returns the instant the civil day begins in loc.
func (d CivilDate) StartOfDay(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d CivilDate) dayNumber() int {
	return int(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Window is an inclusive civil-date range.
type Window struct {
	Start CivilDate
	End   CivilDate
}

// NewWindow builds a window, rejecting an inverted range.
func NewWindow(start, end CivilDate) (Window, error) {
	if start.After(end) {
		return Window{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	return Window{Start: start, End: end}, nil
}

// Days enumerates every civil date from Start through End.
func (w Window) Days() []CivilDate {
	count := w.End.dayNumber() - w.Start.dayNumber() + 1
	days := make([]CivilDate, 0, count)
	for d := w.Start; !d.After(w.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// MonthBack returns the comparison window exactly one calendar month
// earlier, day-of-month clamped per CivilDate.MonthBack.
func (w Window) MonthBack() Window {
	return Window{Start: w.Start.MonthBack(), End: w.End.MonthBack()}
}

// UnixBounds returns the inclusive unix-second bounds covering the
// window's civil days in loc.
func (w Window) UnixBounds(loc *time.Location) (gte, lte int64) {
	gte = w.Start.StartOfDay(loc).Unix()
	lte = w.End.AddDays(1).StartOfDay(loc).Unix() - 1
	return gte, lte
}

// Label renders the window as "<from label> – <to label>".
func (w Window) Label() string {
	return FormatDate(w.Start) + " – " + FormatDate(w.End)
}

// Clock provides time for window resolution.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Resolver turns named report modes into a primary window plus its
// one-month-back comparison window.
type Resolver struct {
	loc   *time.Location
	clock Clock
}

// NewResolver constructs a Resolver for the reference timezone.
func NewResolver(loc *time.Location, clock Clock) (*Resolver, error) {
	if loc == nil {
		return nil, fmt.Errorf("revenue: nil location")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Resolver{loc: loc, clock: clock}, nil
}

// Location returns the reference timezone.
func (r *Resolver) Location() *time.Location { return r.loc }

// Today returns the current civil date in the reference timezone.
func (r *Resolver) Today() CivilDate {
	return CivilDateOf(r.clock.Now(), r.loc)
}

// MonthToDate resolves the window from the first of the current civil
// month through today.
func (r *Resolver) MonthToDate() (Window, Window) {
	today := r.Today()
	primary := Window{Start: today.StartOfMonth(), End: today}
	return primary, primary.MonthBack()
}

// Range resolves an explicit from/to window.
func (r *Resolver) Range(from, to string) (Window, Window, error) {
	start, err := ParseCivilDate(from)
	if err != nil {
		return Window{}, Window{}, err
	}
	end, err := ParseCivilDate(to)
	if err != nil {
		return Window{}, Window{}, err
	}
	primary, err := NewWindow(start, end)
	if err != nil {
		return Window{}, Window{}, err
	}
	return primary, primary.MonthBack(), nil
}

// From resolves a window from an explicit start date through today.
func (r *Resolver) From(from string) (Window, Window, error) {
	start, err := ParseCivilDate(from)
	if err != nil {
		return Window{}, Window{}, err
	}
	primary, err := NewWindow(start, r.Today())
	if err != nil {
		return Window{}, Window{}, err
	}
	return primary, primary.MonthBack(), nil
}
