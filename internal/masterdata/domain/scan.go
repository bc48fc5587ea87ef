package masterdata

import (
	"context"
	"errors"
	"time"
)

// Scan records a rider scanning a station's QR code.
type Scan struct {
	ID        string
	UserID    string
	StationID string
	ScannedAt time.Time
}

// Validate checks scan invariants.
func (s Scan) Validate() error {
	if s.UserID == "" {
		return errors.New("scan: empty user id")
	}
	if s.StationID == "" {
		return errors.New("scan: empty station id")
	}
	return nil
}

// ScanRepository manages scan persistence. Record assigns the scan id
// when one is not provided.
type ScanRepository interface {
	Record(ctx context.Context, scan *Scan) error
	ListByStation(ctx context.Context, stationID string, limit int) ([]Scan, error)
	ListSince(ctx context.Context, since time.Time) ([]Scan, error)
}
