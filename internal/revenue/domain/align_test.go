package revenue

import (
	"testing"
	"time"
)

func TestAlignMonthBackPairsDays(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	day := dateAt(t, "2026-08-14")
	prevDay := dateAt(t, "2026-07-14")

	primary := AggregateTransactions([]Transaction{
		{ID: "txn_1", Created: unixAt("2026-08-14", 9), Type: TypeCharge, NetCents: 500},
	}, []CivilDate{day}, loc)
	comparison := AggregateTransactions([]Transaction{
		{ID: "txn_0", Created: unixAt("2026-07-14", 9), Type: TypeCharge, NetCents: 300},
	}, []CivilDate{prevDay}, loc)

	paired := AlignMonthBack(primary, comparison)
	if len(paired) != 1 {
		t.Fatalf("paired = %d, want 1", len(paired))
	}
	got := paired[0]
	if got.Rents != 1 || got.NetCents != 500 {
		t.Fatalf("current = %+v", got)
	}
	if got.PrevRents != 1 || got.PrevNetCents != 300 {
		t.Fatalf("previous = %+v", got)
	}
}

func TestAlignMonthBackZeroFillsMissingComparison(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	// March 29-31 all map back to Feb 28 in a non-leap year; the
	// comparison aggregate deliberately holds no such day.
	day := dateAt(t, "2026-03-31")
	primary := AggregateTransactions([]Transaction{
		{ID: "txn_1", Created: unixAt("2026-03-31", 9), Type: TypeCharge, NetCents: 400},
	}, []CivilDate{day}, loc)
	comparison := AggregateTransactions(nil, nil, loc)

	paired := AlignMonthBack(primary, comparison)
	if len(paired) != 1 {
		t.Fatalf("paired = %d, want 1", len(paired))
	}
	if paired[0].PrevRents != 0 || paired[0].PrevNetCents != 0 {
		t.Fatalf("previous = %+v, want zeroes", paired[0])
	}
}

func TestPairDaysKeepsOrderWithoutComparison(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	agg := AggregateTransactions([]Transaction{
		{ID: "txn_1", Created: unixAt("2026-08-03", 9), Type: TypeCharge, NetCents: 100},
		{ID: "txn_2", Created: unixAt("2026-08-01", 9), Type: TypeCharge, NetCents: 200},
	}, nil, loc)

	paired := PairDays(agg)
	if len(paired) != 2 {
		t.Fatalf("paired = %d, want 2", len(paired))
	}
	if paired[0].Date.String() != "2026-08-01" {
		t.Fatalf("first = %s, want 2026-08-01", paired[0].Date)
	}
	if paired[1].PrevRents != 0 || paired[1].PrevNetCents != 0 {
		t.Fatalf("previous metrics must stay zero: %+v", paired[1])
	}
}
