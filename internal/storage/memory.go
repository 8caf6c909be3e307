package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tally/internal/core"
)

// defaultCategories mirrors the seed set in the SQLite migrations so the two
// backends start from the same state.
var defaultCategories = []string{
	"Bills", "Transport", "Health", "Housing",
	"Food", "Entertainment", "Savings", "Investments",
	core.CategoryOther,
}

// MemoryRepository is an in-memory Store for tests and for running without a
// database file. Safe for concurrent use.
type MemoryRepository struct {
	mu         sync.Mutex
	txns       []core.Transaction
	categories map[string]core.Category
}

func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{categories: make(map[string]core.Category)}
	for _, name := range defaultCategories {
		r.categories[name] = core.Category{ID: uuid.NewString(), Name: name}
	}
	return r
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = uuid.NewString()
	t.Category = t.CategoryName()
	if _, ok := r.categories[t.Category]; !ok {
		r.categories[t.Category] = core.Category{ID: uuid.NewString(), Name: t.Category}
	}

	r.txns = append(r.txns, t)
	return t, nil
}

// ListTransactions returns stored transactions newest first, matching the
// SQLite backend's ordering. Insertion order breaks date ties.
func (r *MemoryRepository) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]core.Transaction(nil), r.txns...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}

func (r *MemoryRepository) ListCategories(_ context.Context) ([]core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]core.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) UpsertCategoryLimit(_ context.Context, name string, limit core.Money) error {
	if limit.IsNegative() {
		return core.ErrInvalidAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[name]
	if !ok {
		c = core.Category{ID: uuid.NewString(), Name: name}
	}
	c.MonthlyLimit = limit
	r.categories[name] = c
	return nil
}
