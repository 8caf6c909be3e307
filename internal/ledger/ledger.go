// Package ledger derives read models from a raw transaction stream:
// category breakdowns, daily net-flow buckets, financial summaries, and
// paginated views. Every function is pure; callers own fetching, ordering
// and caching.
package ledger

import (
	"sort"
	"time"

	"tally/internal/core"
)

// Breakdown maps category names to their aggregated absolute spend.
type Breakdown struct {
	ByCategory   map[string]core.Money
	TotalExpense core.Money
}

// DayBucket is the signed net flow for one calendar day.
type DayBucket struct {
	Date  time.Time
	Label string
	Net   core.Money
}

const dayLabelFormat = "2006-01-02"

// SpendByCategory aggregates absolute expense amounts per category.
// Transactions whose effective kind is not expense are skipped, as are
// ambiguous records (zero amount, no usable kind tag). A missing category
// lands in core.CategoryOther. An empty input yields an empty breakdown.
func SpendByCategory(txns []core.Transaction) Breakdown {
	b := Breakdown{ByCategory: make(map[string]core.Money)}
	for _, t := range txns {
		kind, err := t.EffectiveKind()
		if err != nil || kind != core.KindExpense {
			continue
		}
		amount := t.Amount.Abs()
		name := t.CategoryName()
		b.ByCategory[name] = b.ByCategory[name].Add(amount)
		b.TotalExpense = b.TotalExpense.Add(amount)
	}
	return b
}

// SpendFor sums the absolute expense amounts recorded against one category.
func SpendFor(txns []core.Transaction, category string) core.Money {
	var total core.Money
	for _, t := range txns {
		kind, err := t.EffectiveKind()
		if err != nil || kind != core.KindExpense {
			continue
		}
		if t.CategoryName() != category {
			continue
		}
		total = total.Add(t.Amount.Abs())
	}
	return total
}

// BucketByDay groups transactions into per-day signed net flows, ordered by
// date ascending. One bucket per distinct calendar day present in the input.
// Transactions without a usable date are left out; they still count in
// category totals elsewhere.
func BucketByDay(txns []core.Transaction) []DayBucket {
	byDay := make(map[string]core.Money)
	for _, t := range txns {
		if !t.HasDate() {
			continue
		}
		label := t.OccurredAt.Format(dayLabelFormat)
		byDay[label] = byDay[label].Add(t.Amount)
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for label, net := range byDay {
		date, err := time.Parse(dayLabelFormat, label)
		if err != nil {
			continue
		}
		buckets = append(buckets, DayBucket{Date: date, Label: label, Net: net})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})
	return buckets
}
