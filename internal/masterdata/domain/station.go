package masterdata

import (
	"context"
	"errors"
	"time"
)

// Station represents a swap station in masterdata. StripeCustomerID
// links the station to its ledger account at the payments provider.
type Station struct {
	ID               string
	Title            string
	Latitude         float64
	Longitude        float64
	StripeCustomerID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks station invariants.
func (s Station) Validate() error {
	if s.ID == "" {
		return errors.New("station: empty id")
	}
	if s.Title == "" {
		return errors.New("station: empty title")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return errors.New("station: latitude out of range")
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return errors.New("station: longitude out of range")
	}
	return nil
}

// StationRepository manages station persistence.
type StationRepository interface {
	Get(ctx context.Context, id string) (*Station, error)
	List(ctx context.Context) ([]Station, error)
	Save(ctx context.Context, station *Station) error
	Delete(ctx context.Context, id string) error
}
