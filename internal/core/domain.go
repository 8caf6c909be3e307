package core

import (
	"errors"
	"strings"
	"time"
)

// Kind tags a transaction as money in or money out. The tag coming from a
// data source is advisory: the amount sign is the authoritative signal and
// the tag only breaks ties for zero amounts.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindUnknown Kind = ""
)

// CategoryOther is the bucket for transactions recorded without a category.
const CategoryOther = "Other"

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidIncome      = errors.New("invalid income")
	ErrInvalidSavingsRate = errors.New("invalid savings rate")
	ErrAmbiguousKind      = errors.New("ambiguous transaction kind")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long")
)

type (
	// Transaction is a single recorded movement of money. Amount is signed:
	// positive for income, negative for expenses. Records are immutable once
	// stored; the engine only ever reads them.
	Transaction struct {
		ID          string
		Description string
		Amount      Money
		Category    string
		OccurredAt  time.Time
		Kind        Kind
	}

	// Category is a named spending bucket with an optional monthly limit.
	// A zero limit means the category is untracked by the budget engine.
	Category struct {
		ID           string
		Name         string
		MonthlyLimit Money
	}
)

// EffectiveKind derives the transaction's kind. The amount sign wins; the
// Kind tag is consulted only for zero amounts, where the sign says nothing.
// A zero amount with no usable tag is ambiguous and excluded from both
// income and expense totals by callers.
func (t Transaction) EffectiveKind() (Kind, error) {
	switch {
	case t.Amount.Cents > 0:
		return KindIncome, nil
	case t.Amount.Cents < 0:
		return KindExpense, nil
	case t.Kind == KindIncome || t.Kind == KindExpense:
		return t.Kind, nil
	default:
		return KindUnknown, ErrAmbiguousKind
	}
}

// CategoryName returns the category the transaction counts against,
// defaulting to CategoryOther when none was recorded.
func (t Transaction) CategoryName() string {
	name := strings.TrimSpace(t.Category)
	if name == "" {
		return CategoryOther
	}
	return name
}

// HasDate reports whether the transaction carries a usable occurrence date.
// Dateless transactions stay in category totals but are skipped by
// day-bucketing.
func (t Transaction) HasDate() bool {
	return !t.OccurredAt.IsZero()
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if _, err := t.EffectiveKind(); err != nil {
		return err
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty category name")
	}
	if c.MonthlyLimit.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
