package application

import (
	"context"
	"errors"
	"sync"

	revenue "swapstation-cloud/internal/revenue/domain"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// LedgerSource fetches ledger entries from the payments provider.
type LedgerSource interface {
	ListTransactions(ctx context.Context, createdGte, createdLte int64) ([]revenue.Transaction, error)
	RecentTransactions(ctx context.Context, limit int) ([]revenue.Transaction, error)
	ListCharges(ctx context.Context, createdGte, createdLte int64, customer string) ([]revenue.Charge, error)
}

// StationDirectory resolves a station id to its upstream customer id.
type StationDirectory interface {
	StripeCustomerID(ctx context.Context, stationID string) (string, error)
}

// DayReport is one formatted per-day row of a report.
type DayReport struct {
	Date      string `json:"date"`
	Rents     int    `json:"rents"`
	Money     string `json:"money"`
	PrevRents int    `json:"prevRents"`
	PrevMoney string `json:"prevMoney"`
}

// Report is the assembled aggregate report. PPositive/PNegative are set
// only for modes that compute a comparison window.
type Report struct {
	Positive  float64
	Negative  float64
	PPositive *float64
	PNegative *float64
	Days      []DayReport
	Label     string
}

// ReportService computes revenue reports from the ledger source.
type ReportService struct {
	source    LedgerSource
	directory StationDirectory
	resolver  *revenue.Resolver
}

// NewReportService constructs a ReportService.
func NewReportService(source LedgerSource, directory StationDirectory, resolver *revenue.Resolver) (*ReportService, error) {
	if source == nil {
		return nil, errors.New("revenue: nil ledger source")
	}
	if resolver == nil {
		return nil, errors.New("revenue: nil window resolver")
	}
	return &ReportService{source: source, directory: directory, resolver: resolver}, nil
}

// MonthToDate reports the current civil month through today against the
// same span one month back.
func (s *ReportService) MonthToDate(ctx context.Context) (Report, error) {
	primary, comparison := s.resolver.MonthToDate()
	return s.transactionReport(ctx, primary, comparison)
}

// Range reports an explicit from/to window against the same window one
// month back.
func (s *ReportService) Range(ctx context.Context, from, to string) (Report, error) {
	primary, comparison, err := s.resolver.Range(from, to)
	if err != nil {
		return Report{}, err
	}
	return s.transactionReport(ctx, primary, comparison)
}

// FromDate reports from an explicit start date through today.
func (s *ReportService) FromDate(ctx context.Context, from string) (Report, error) {
	primary, comparison, err := s.resolver.From(from)
	if err != nil {
		return Report{}, err
	}
	return s.transactionReport(ctx, primary, comparison)
}

// Recent reports the newest ledger entries bounded by count. No window,
// no zero-fill, no comparison metrics.
func (s *ReportService) Recent(ctx context.Context, limit int) (Report, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	entries, err := s.source.RecentTransactions(ctx, limit)
	if err != nil {
		return Report{}, err
	}
	agg := revenue.AggregateTransactions(entries, nil, s.resolver.Location())
	return Report{
		Positive: revenue.Dollars(agg.PositiveCents),
		Negative: revenue.Dollars(agg.NegativeCents),
		Days:     formatDays(revenue.PairDays(agg)),
	}, nil
}

// StationMonthToDate reports month-to-date charge revenue for one or
// more stations, aggregated across their upstream customers.
func (s *ReportService) StationMonthToDate(ctx context.Context, stationIDs []string) (Report, error) {
	if s.directory == nil {
		return Report{}, revenue.ErrStationNotFound
	}
	customers := make([]string, 0, len(stationIDs))
	for _, stationID := range stationIDs {
		customer, err := s.directory.StripeCustomerID(ctx, stationID)
		if err != nil {
			return Report{}, err
		}
		customers = append(customers, customer)
	}

	primary, comparison := s.resolver.MonthToDate()

	var (
		wg                  sync.WaitGroup
		primaryAgg          revenue.Aggregate
		comparisonAgg       revenue.Aggregate
		primaryErr, compErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		primaryAgg, primaryErr = s.chargeAggregate(ctx, primary, customers)
	}()
	go func() {
		defer wg.Done()
		comparisonAgg, compErr = s.chargeAggregate(ctx, comparison, customers)
	}()
	wg.Wait()
	if primaryErr != nil {
		return Report{}, primaryErr
	}
	if compErr != nil {
		return Report{}, compErr
	}

	return assembleReport(primary, primaryAgg, comparisonAgg), nil
}

func (s *ReportService) chargeAggregate(ctx context.Context, window revenue.Window, customers []string) (revenue.Aggregate, error) {
	loc := s.resolver.Location()
	gte, lte := window.UnixBounds(loc)
	agg := revenue.AggregateCharges(nil, window.Days(), loc)
	for _, customer := range customers {
		entries, err := s.source.ListCharges(ctx, gte, lte, customer)
		if err != nil {
			return revenue.Aggregate{}, err
		}
		agg.Merge(revenue.AggregateCharges(entries, window.Days(), loc))
	}
	return agg, nil
}

// transactionReport runs the primary and comparison fetches
// concurrently, joining both before any aggregation starts.
func (s *ReportService) transactionReport(ctx context.Context, primary, comparison revenue.Window) (Report, error) {
	loc := s.resolver.Location()
	primaryGte, primaryLte := primary.UnixBounds(loc)
	compGte, compLte := comparison.UnixBounds(loc)

	var (
		wg                              sync.WaitGroup
		primaryEntries, comparisonEntry []revenue.Transaction
		primaryErr, compErr             error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		primaryEntries, primaryErr = s.source.ListTransactions(ctx, primaryGte, primaryLte)
	}()
	go func() {
		defer wg.Done()
		comparisonEntry, compErr = s.source.ListTransactions(ctx, compGte, compLte)
	}()
	wg.Wait()
	if primaryErr != nil {
		return Report{}, primaryErr
	}
	if compErr != nil {
		return Report{}, compErr
	}

	primaryAgg := revenue.AggregateTransactions(primaryEntries, primary.Days(), loc)
	comparisonAgg := revenue.AggregateTransactions(comparisonEntry, comparison.Days(), loc)
	return assembleReport(primary, primaryAgg, comparisonAgg), nil
}

func assembleReport(primary revenue.Window, primaryAgg, comparisonAgg revenue.Aggregate) Report {
	ppositive := revenue.Dollars(comparisonAgg.PositiveCents)
	pnegative := revenue.Dollars(comparisonAgg.NegativeCents)
	return Report{
		Positive:  revenue.Dollars(primaryAgg.PositiveCents),
		Negative:  revenue.Dollars(primaryAgg.NegativeCents),
		PPositive: &ppositive,
		PNegative: &pnegative,
		Days:      formatDays(revenue.AlignMonthBack(primaryAgg, comparisonAgg)),
		Label:     primary.Label(),
	}
}

func formatDays(paired []revenue.PairedDay) []DayReport {
	days := make([]DayReport, 0, len(paired))
	for _, day := range paired {
		days = append(days, DayReport{
			Date:      revenue.FormatDate(day.Date),
			Rents:     day.Rents,
			Money:     revenue.FormatCents(day.NetCents),
			PrevRents: day.PrevRents,
			PrevMoney: revenue.FormatCents(day.PrevNetCents),
		})
	}
	return days
}
