package ledger

import (
	"fmt"
	"testing"

	"tally/internal/core"
)

func TestSummarize(t *testing.T) {
	txns := []core.Transaction{
		expense(50000, "Food", date(2025, 3, 1)),
		expense(30000, "Food", date(2025, 3, 2)),
		income(200000, "Salary", date(2025, 3, 3)),
	}

	s := Summarize(txns)

	if s.TotalIncome.Cents != 200000 {
		t.Errorf("TotalIncome: expected 200000, got %d", s.TotalIncome.Cents)
	}
	if s.TotalExpense.Cents != -80000 {
		t.Errorf("TotalExpense: expected -80000, got %d", s.TotalExpense.Cents)
	}
	if s.TotalBalance.Cents != 120000 {
		t.Errorf("TotalBalance: expected 120000, got %d", s.TotalBalance.Cents)
	}
	if s.TransactionCount != 3 {
		t.Errorf("TransactionCount: expected 3, got %d", s.TransactionCount)
	}
}

func TestSummarizeBalanceIdentity(t *testing.T) {
	// Balance must equal income + expense exactly, across awkward cent values.
	var txns []core.Transaction
	for i := int64(1); i <= 100; i++ {
		txns = append(txns,
			income(i*7+1, "Pay", date(2025, 1, 1)),
			expense(i*3+2, "Misc", date(2025, 1, 2)),
		)
	}
	s := Summarize(txns)
	if s.TotalBalance.Cents != s.TotalIncome.Cents+s.TotalExpense.Cents {
		t.Fatalf("balance %d != income %d + expense %d",
			s.TotalBalance.Cents, s.TotalIncome.Cents, s.TotalExpense.Cents)
	}
}

func TestSummarizeSkipsAmbiguousAmounts(t *testing.T) {
	txns := []core.Transaction{
		{Description: "zero, untagged"},
		income(1000, "Pay", date(2025, 1, 1)),
	}
	s := Summarize(txns)
	if s.TotalIncome.Cents != 1000 || s.TotalExpense.Cents != 0 {
		t.Errorf("ambiguous record leaked into totals: %+v", s)
	}
	if s.TransactionCount != 2 {
		t.Errorf("ambiguous record must still be counted, got %d", s.TransactionCount)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome.Cents != 0 || s.TotalExpense.Cents != 0 || s.TotalBalance.Cents != 0 || s.TransactionCount != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestPaginate(t *testing.T) {
	txns := make([]core.Transaction, 25)
	for i := range txns {
		txns[i] = income(int64(i+1), "Pay", date(2025, 1, 1))
	}

	cases := []struct {
		page, size                       int
		wantItems, wantCount, wantPage   int
		firstCents                       int64
	}{
		{1, 10, 10, 3, 1, 1},
		{3, 10, 5, 3, 3, 21},
		{4, 10, 0, 3, 4, 0},  // past the end
		{0, 10, 10, 3, 1, 1}, // invalid page falls back
		{-2, 0, 10, 3, 1, 1}, // invalid both fall back
		{1, 25, 25, 1, 1, 1},
		{2, 7, 7, 4, 2, 8},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("page=%d size=%d", tc.page, tc.size), func(t *testing.T) {
			p := Paginate(txns, tc.page, tc.size)
			if len(p.Items) != tc.wantItems {
				t.Fatalf("expected %d items, got %d", tc.wantItems, len(p.Items))
			}
			if p.Total != 25 {
				t.Errorf("expected total 25, got %d", p.Total)
			}
			if p.PageCount != tc.wantCount {
				t.Errorf("expected pageCount %d, got %d", tc.wantCount, p.PageCount)
			}
			if p.CurrentPage != tc.wantPage {
				t.Errorf("expected currentPage %d, got %d", tc.wantPage, p.CurrentPage)
			}
			if tc.wantItems > 0 && p.Items[0].Amount.Cents != tc.firstCents {
				t.Errorf("expected first item %d cents, got %d", tc.firstCents, p.Items[0].Amount.Cents)
			}
		})
	}
}

// Concatenating all pages must reconstruct the input exactly.
func TestPaginatePartitionCompleteness(t *testing.T) {
	txns := make([]core.Transaction, 23)
	for i := range txns {
		txns[i] = expense(int64(i+1), "Misc", date(2025, 2, 1).AddDate(0, 0, i))
	}

	size := 5
	first := Paginate(txns, 1, size)
	var rebuilt []core.Transaction
	for page := 1; page <= first.PageCount; page++ {
		rebuilt = append(rebuilt, Paginate(txns, page, size).Items...)
	}

	if len(rebuilt) != len(txns) {
		t.Fatalf("expected %d items across pages, got %d", len(txns), len(rebuilt))
	}
	for i := range txns {
		if rebuilt[i].Amount.Cents != txns[i].Amount.Cents {
			t.Fatalf("page concatenation reordered input at %d", i)
		}
	}

	wantPages := (len(txns) + size - 1) / size
	if first.PageCount != wantPages {
		t.Errorf("expected %d pages, got %d", wantPages, first.PageCount)
	}
}

func TestPaginateEmptyInput(t *testing.T) {
	p := Paginate(nil, 1, 10)
	if len(p.Items) != 0 || p.Total != 0 || p.PageCount != 0 || p.CurrentPage != 1 {
		t.Errorf("unexpected page for empty input: %+v", p)
	}
}
