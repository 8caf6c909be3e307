package ledger

import "tally/internal/core"

// Summary is the global income/expense/balance view over a transaction set.
// TotalExpense stays signed (zero or negative) so that
// TotalBalance = TotalIncome + TotalExpense holds exactly in cents.
type Summary struct {
	TotalIncome      core.Money
	TotalExpense     core.Money
	TotalBalance     core.Money
	TransactionCount int
}

// Page is one slice of a paginated transaction view.
type Page struct {
	Items       []core.Transaction
	Total       int
	PageCount   int
	CurrentPage int
}

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// Summarize computes the income/expense/balance totals. Positive amounts
// count as income, negative as expense; ambiguous zero-amount records
// contribute to neither total but are still counted.
func Summarize(txns []core.Transaction) Summary {
	s := Summary{TransactionCount: len(txns)}
	for _, t := range txns {
		switch {
		case t.Amount.Cents > 0:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case t.Amount.Cents < 0:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.TotalBalance = s.TotalIncome.Add(s.TotalExpense)
	return s
}

// Paginate slices an already-sorted transaction list. Sort order is the
// caller's contract; this never re-sorts. Non-positive or missing page and
// size values fall back to 1 and 10, they never fail. A page past the end
// returns an empty item slice.
func Paginate(txns []core.Transaction, page, size int) Page {
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultPageSize
	}

	total := len(txns)
	pageCount := (total + size - 1) / size

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:       txns[start:end],
		Total:       total,
		PageCount:   pageCount,
		CurrentPage: page,
	}
}
