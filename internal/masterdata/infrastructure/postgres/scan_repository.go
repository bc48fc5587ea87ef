package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	masterdata "swapstation-cloud/internal/masterdata/domain"
)

const defaultScansTable = "scans"

// ScanRepository is a Postgres implementation for scan records.
type ScanRepository struct {
	db    DBTX
	table string
}

// NewScanRepository constructs a repository.
func NewScanRepository(db DBTX, opts ...ScanOption) *ScanRepository {
	repo := &ScanRepository{db: db, table: defaultScansTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ScanOption configures the repository.
type ScanOption func(*ScanRepository)

// WithScansTable overrides the default table name.
func WithScansTable(table string) ScanOption {
	return func(repo *ScanRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Record inserts a scan. The id and timestamp come from the database
// when the caller leaves them empty.
func (r *ScanRepository) Record(ctx context.Context, scan *masterdata.Scan) error {
	if r == nil || r.db == nil {
		return errors.New("scan repo: nil db")
	}
	if scan == nil {
		return errors.New("scan repo: nil scan")
	}
	if err := scan.Validate(); err != nil {
		return err
	}
	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (user_id, station_id, scanned_at)
VALUES ($1, $2, $3)
RETURNING id`, r.table)

	return r.db.QueryRowContext(ctx, query, scan.UserID, scan.StationID, scan.ScannedAt).Scan(&scan.ID)
}

// ListByStation loads the newest scans for a station.
func (r *ScanRepository) ListByStation(ctx context.Context, stationID string, limit int) ([]masterdata.Scan, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("scan repo: nil db")
	}
	if stationID == "" {
		return nil, errors.New("scan repo: empty station id")
	}
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
SELECT id, user_id, station_id, scanned_at
FROM %s
WHERE station_id = $1
ORDER BY scanned_at DESC
LIMIT $2`, r.table)

	return r.queryScans(ctx, query, stationID, limit)
}

// ListSince loads scans recorded at or after a moment, oldest first.
func (r *ScanRepository) ListSince(ctx context.Context, since time.Time) ([]masterdata.Scan, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("scan repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, user_id, station_id, scanned_at
FROM %s
WHERE scanned_at >= $1
ORDER BY scanned_at`, r.table)

	return r.queryScans(ctx, query, since)
}

func (r *ScanRepository) queryScans(ctx context.Context, query string, args ...any) ([]masterdata.Scan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []masterdata.Scan
	for rows.Next() {
		var scan masterdata.Scan
		if err := rows.Scan(&scan.ID, &scan.UserID, &scan.StationID, &scan.ScannedAt); err != nil {
			return nil, err
		}
		scan.ScannedAt = scan.ScannedAt.UTC()
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}
