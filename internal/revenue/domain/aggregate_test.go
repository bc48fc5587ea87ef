package revenue

import (
	"reflect"
	"testing"
	"time"
)

var testZone = time.FixedZone("CST", -6*3600)

func dateAt(t *testing.T, value string) CivilDate {
	t.Helper()
	date, err := ParseCivilDate(value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return date
}

func unixAt(value string, hour int) int64 {
	parsed, _ := time.Parse("2006-01-02", value)
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), hour, 0, 0, 0, testZone).Unix()
}

func TestAggregateTransactionsScenario(t *testing.T) {
	day1 := dateAt(t, "2026-08-01")
	day2 := dateAt(t, "2026-08-02")
	entries := []Transaction{
		{ID: "txn_1", Created: unixAt("2026-08-01", 10), Type: TypeCharge, NetCents: 300},
		{ID: "txn_2", Created: unixAt("2026-08-01", 10), Type: TypeStripeFee, NetCents: -9},
		{ID: "txn_3", Created: unixAt("2026-08-02", 11), Type: TypeCharge, NetCents: 500},
	}

	agg := AggregateTransactions(entries, []CivilDate{day1, day2}, testZone)
	if agg.PositiveCents != 800 {
		t.Fatalf("positive = %d, want 800", agg.PositiveCents)
	}
	if agg.NegativeCents != -9 {
		t.Fatalf("negative = %d, want -9", agg.NegativeCents)
	}

	days := agg.Days()
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}
	if days[0].Rents != 1 || days[0].NetCents != 291 {
		t.Fatalf("day1 = %+v, want rents=1 net=291", days[0])
	}
	if days[1].Rents != 1 || days[1].NetCents != 500 {
		t.Fatalf("day2 = %+v, want rents=1 net=500", days[1])
	}
}

func TestAggregateTransactionsFiltersUnrecognizedTypes(t *testing.T) {
	day := dateAt(t, "2026-08-01")
	entries := []Transaction{
		{ID: "txn_1", Created: unixAt("2026-08-01", 9), Type: "adjustment", NetCents: 9999},
		{ID: "txn_2", Created: unixAt("2026-08-01", 9), Type: TypePayment, NetCents: 100},
	}

	agg := AggregateTransactions(entries, []CivilDate{day}, testZone)
	if agg.PositiveCents != 100 {
		t.Fatalf("positive = %d, want 100", agg.PositiveCents)
	}
	bucket, ok := agg.Day(day)
	if !ok || bucket.NetCents != 100 {
		t.Fatalf("bucket = %+v ok=%v, want net=100", bucket, ok)
	}
	// payment is not a charge, so it never counts as a rent.
	if bucket.Rents != 0 {
		t.Fatalf("rents = %d, want 0", bucket.Rents)
	}
}

func TestAggregatePreseedsEveryDayKey(t *testing.T) {
	keys := []CivilDate{
		dateAt(t, "2026-08-01"),
		dateAt(t, "2026-08-02"),
		dateAt(t, "2026-08-03"),
	}
	agg := AggregateTransactions(nil, keys, testZone)
	days := agg.Days()
	if len(days) != 3 {
		t.Fatalf("days = %d, want 3 even with no entries", len(days))
	}
	for _, day := range days {
		if day.Rents != 0 || day.NetCents != 0 {
			t.Fatalf("day %s not zeroed: %+v", day.Date, day)
		}
	}
}

func TestAggregateLazyBucketsForRecentMode(t *testing.T) {
	entries := []Transaction{
		{ID: "txn_1", Created: unixAt("2026-08-03", 9), Type: TypeCharge, NetCents: 400},
		{ID: "txn_2", Created: unixAt("2026-08-01", 9), Type: TypeCharge, NetCents: 200},
	}
	agg := AggregateTransactions(entries, nil, testZone)
	days := agg.Days()
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2 (no zero-fill)", len(days))
	}
	if days[0].Date.String() != "2026-08-01" || days[1].Date.String() != "2026-08-03" {
		t.Fatalf("days out of order: %s, %s", days[0].Date, days[1].Date)
	}
}

func TestTimezoneCorrectDayBucketing(t *testing.T) {
	// 05:59 UTC is 23:59 the previous civil day at UTC-6.
	created := time.Date(2026, 8, 2, 5, 59, 0, 0, time.UTC).Unix()
	day1 := dateAt(t, "2026-08-01")
	day2 := dateAt(t, "2026-08-02")
	entries := []Transaction{{ID: "txn_1", Created: created, Type: TypeCharge, NetCents: 100}}

	agg := AggregateTransactions(entries, []CivilDate{day1, day2}, testZone)
	if bucket, _ := agg.Day(day1); bucket.NetCents != 100 {
		t.Fatalf("day1 net = %d, want 100", bucket.NetCents)
	}
	if bucket, _ := agg.Day(day2); bucket.NetCents != 0 {
		t.Fatalf("day2 net = %d, want 0", bucket.NetCents)
	}
}

func TestAggregateChargesNetIdentity(t *testing.T) {
	day := dateAt(t, "2026-08-01")
	entries := []Charge{
		{ID: "ch_1", Created: unixAt("2026-08-01", 8), CapturedCents: 1000, RefundedCents: 250},
		{ID: "ch_2", Created: unixAt("2026-08-01", 9), CapturedCents: 300},
	}

	agg := AggregateCharges(entries, []CivilDate{day}, testZone)
	if agg.PositiveCents != 1300 {
		t.Fatalf("positive = %d, want 1300", agg.PositiveCents)
	}
	if agg.NegativeCents != -250 {
		t.Fatalf("negative = %d, want -250", agg.NegativeCents)
	}

	var dayNet int64
	for _, bucket := range agg.Days() {
		dayNet += bucket.NetCents
	}
	if dayNet != agg.PositiveCents+agg.NegativeCents {
		t.Fatalf("sum(perDay.net) = %d, want positive+negative = %d", dayNet, agg.PositiveCents+agg.NegativeCents)
	}
}

func TestAggregateChargesExcludesZeroCapture(t *testing.T) {
	day := dateAt(t, "2026-08-01")
	entries := []Charge{
		// $0 captured, $300 refunded: the anomaly must not count at all.
		{ID: "ch_1", Created: unixAt("2026-08-01", 8), CapturedCents: 0, RefundedCents: 30000},
		{ID: "ch_2", Created: unixAt("2026-08-01", 9), CapturedCents: 500},
	}

	agg := AggregateCharges(entries, []CivilDate{day}, testZone)
	if agg.PositiveCents != 500 || agg.NegativeCents != 0 {
		t.Fatalf("totals = %d/%d, want 500/0", agg.PositiveCents, agg.NegativeCents)
	}
	bucket, _ := agg.Day(day)
	if bucket.Rents != 1 || bucket.NetCents != 500 {
		t.Fatalf("bucket = %+v, want rents=1 net=500", bucket)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	day := dateAt(t, "2026-08-01")
	entries := []Transaction{
		{ID: "txn_1", Created: unixAt("2026-08-01", 8), Type: TypeCharge, NetCents: 300},
		{ID: "txn_2", Created: unixAt("2026-08-01", 9), Type: TypeRefund, NetCents: -100},
	}

	first := AggregateTransactions(entries, []CivilDate{day}, testZone)
	second := AggregateTransactions(entries, []CivilDate{day}, testZone)
	if first.PositiveCents != second.PositiveCents || first.NegativeCents != second.NegativeCents {
		t.Fatalf("totals differ across runs")
	}
	if !reflect.DeepEqual(first.Days(), second.Days()) {
		t.Fatalf("day buckets differ across runs")
	}
}

func TestMergeMatchesConcatenation(t *testing.T) {
	day := dateAt(t, "2026-08-01")
	stationA := []Charge{{ID: "ch_1", Created: unixAt("2026-08-01", 8), CapturedCents: 700, RefundedCents: 100}}
	stationB := []Charge{{ID: "ch_2", Created: unixAt("2026-08-01", 9), CapturedCents: 300}}

	merged := AggregateCharges(stationA, []CivilDate{day}, testZone)
	merged.Merge(AggregateCharges(stationB, []CivilDate{day}, testZone))

	concat := AggregateCharges(append(append([]Charge{}, stationA...), stationB...), []CivilDate{day}, testZone)
	if merged.PositiveCents != concat.PositiveCents || merged.NegativeCents != concat.NegativeCents {
		t.Fatalf("totals: merged %d/%d, concat %d/%d",
			merged.PositiveCents, merged.NegativeCents, concat.PositiveCents, concat.NegativeCents)
	}
	if !reflect.DeepEqual(merged.Days(), concat.Days()) {
		t.Fatalf("day buckets: merged %+v, concat %+v", merged.Days(), concat.Days())
	}
}
