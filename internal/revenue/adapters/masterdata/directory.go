// Package masterdatadir resolves station ids to ledger customer ids
// through the masterdata station repository.
package masterdatadir

import (
	"context"
	"errors"

	masterdata "swapstation-cloud/internal/masterdata/domain"
	revenue "swapstation-cloud/internal/revenue/domain"
)

// Directory implements the revenue station lookup over masterdata.
type Directory struct {
	stations masterdata.StationRepository
}

// NewDirectory constructs a directory.
func NewDirectory(stations masterdata.StationRepository) (*Directory, error) {
	if stations == nil {
		return nil, errors.New("station directory: nil repository")
	}
	return &Directory{stations: stations}, nil
}

// StripeCustomerID resolves a station to its payments-provider customer
// id. Unknown stations and stations without a customer binding are
// reported with the revenue error vocabulary so handlers map them to
// the right status.
func (d *Directory) StripeCustomerID(ctx context.Context, stationID string) (string, error) {
	station, err := d.stations.Get(ctx, stationID)
	if err != nil {
		return "", err
	}
	if station == nil {
		return "", revenue.ErrStationNotFound
	}
	if station.StripeCustomerID == "" {
		return "", revenue.ErrInvalidStation
	}
	return station.StripeCustomerID, nil
}
