package revenue

import (
	"sort"
	"time"
)

// DayBucket is the per-civil-date aggregation unit.
type DayBucket struct {
	Date     CivilDate
	Rents    int
	NetCents int64
}

// Aggregate is the result of reducing one window's ledger entries.
// NegativeCents is always signed (<= 0) in both policies.
type Aggregate struct {
	PositiveCents int64
	NegativeCents int64

	days map[string]*DayBucket
}

// Days returns the day buckets ordered by ascending date.
func (a Aggregate) Days() []DayBucket {
	buckets := make([]DayBucket, 0, len(a.days))
	for _, bucket := range a.days {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[j].Date.After(buckets[i].Date)
	})
	return buckets
}

// Day returns the bucket for a date key, if present.
func (a Aggregate) Day(date CivilDate) (DayBucket, bool) {
	bucket, ok := a.days[date.String()]
	if !ok {
		return DayBucket{}, false
	}
	return *bucket, true
}

// AggregateTransactions reduces settlement-level entries. Entries whose
// type is outside the revenue filter are skipped entirely. Signed net
// splits into the positive/negative totals; a day's net accumulates the
// signed net regardless of sign. Rents count charge entries with a
// positive net.
func AggregateTransactions(entries []Transaction, dayKeys []CivilDate, loc *time.Location) Aggregate {
	agg := newAggregate(dayKeys)
	for _, entry := range entries {
		if !entry.Type.Recognized() {
			continue
		}
		switch {
		case entry.NetCents > 0:
			agg.PositiveCents += entry.NetCents
		case entry.NetCents < 0:
			agg.NegativeCents += entry.NetCents
		}
		bucket := agg.bucket(CivilDateOf(time.Unix(entry.Created, 0), loc), dayKeys != nil)
		if bucket == nil {
			continue
		}
		bucket.NetCents += entry.NetCents
		if entry.Type == TypeCharge && entry.NetCents > 0 {
			bucket.Rents++
		}
	}
	return agg
}

// AggregateCharges reduces charge-level entries for per-station reports.
// A charge with nothing captured is excluded outright, so a refund can
// never count against a capture that never happened.
func AggregateCharges(entries []Charge, dayKeys []CivilDate, loc *time.Location) Aggregate {
	agg := newAggregate(dayKeys)
	for _, entry := range entries {
		if entry.CapturedCents <= 0 {
			continue
		}
		agg.PositiveCents += entry.CapturedCents
		agg.NegativeCents -= entry.RefundedCents
		bucket := agg.bucket(CivilDateOf(time.Unix(entry.Created, 0), loc), dayKeys != nil)
		if bucket == nil {
			continue
		}
		net := entry.CapturedCents - entry.RefundedCents
		bucket.NetCents += net
		if net > 0 {
			bucket.Rents++
		}
	}
	return agg
}

// Merge folds another aggregate into this one. Buckets sharing a date
// are summed; aggregation is associative, so merging per-station
// aggregates equals aggregating the concatenated entry lists.
func (a *Aggregate) Merge(other Aggregate) {
	a.PositiveCents += other.PositiveCents
	a.NegativeCents += other.NegativeCents
	if a.days == nil {
		a.days = make(map[string]*DayBucket)
	}
	for key, bucket := range other.days {
		existing, ok := a.days[key]
		if !ok {
			copied := *bucket
			a.days[key] = &copied
			continue
		}
		existing.Rents += bucket.Rents
		existing.NetCents += bucket.NetCents
	}
}

func newAggregate(dayKeys []CivilDate) Aggregate {
	agg := Aggregate{days: make(map[string]*DayBucket, len(dayKeys))}
	for _, day := range dayKeys {
		agg.days[day.String()] = &DayBucket{Date: day}
	}
	return agg
}

// bucket returns the bucket for a date. With pre-seeded keys a date
// outside the window is dropped; without keys buckets are created on
// demand (recent mode).
func (a *Aggregate) bucket(date CivilDate, seeded bool) *DayBucket {
	key := date.String()
	if existing, ok := a.days[key]; ok {
		return existing
	}
	if seeded {
		return nil
	}
	created := &DayBucket{Date: date}
	a.days[key] = created
	return created
}
