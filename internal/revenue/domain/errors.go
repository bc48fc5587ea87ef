package revenue

import "errors"

var (
	// ErrInvalidRange reports a window where from is after to, or a
	// required date parameter that is missing or malformed.
	ErrInvalidRange = errors.New("revenue: invalid date range")

	// ErrConfigurationMissing reports an absent payments-source credential.
	ErrConfigurationMissing = errors.New("revenue: payments source not configured")

	// ErrStationNotFound reports a station with no directory record.
	ErrStationNotFound = errors.New("revenue: station not found")

	// ErrInvalidStation reports a station record without an upstream
	// customer id.
	ErrInvalidStation = errors.New("revenue: station has no customer id")
)
