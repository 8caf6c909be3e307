package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/ledger"
)

// TransactionService orchestrates transaction recording and the read models
// derived from the stored ledger.
type TransactionService struct {
	store     Store
	publisher Publisher
}

func NewTransactionService(store Store, publisher Publisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// Record validates and persists a transaction, then publishes a recorded
// event. Publish failures are logged, not returned: the local write is the
// source of truth and must not be rolled back by queue trouble.
func (s *TransactionService) Record(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	stored, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishRecorded(ctx, stored); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction recorded message",
			"id", stored.ID, "error", err)
	}

	return stored, nil
}

// ListPage returns one page of the ledger, newest first.
func (s *TransactionService) ListPage(ctx context.Context, page, pageSize int) (ledger.Page, error) {
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return ledger.Page{}, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.Paginate(txns, page, pageSize), nil
}

// Summary returns the ledger-wide income/expense/balance totals.
func (s *TransactionService) Summary(ctx context.Context) (ledger.Summary, error) {
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return ledger.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.Summarize(txns), nil
}

// Breakdown returns per-category absolute spend.
func (s *TransactionService) Breakdown(ctx context.Context) (ledger.Breakdown, error) {
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return ledger.Breakdown{}, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.SpendByCategory(txns), nil
}

// Trend returns per-day signed net flows, oldest day first.
func (s *TransactionService) Trend(ctx context.Context) ([]ledger.DayBucket, error) {
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.BucketByDay(txns), nil
}

func (s *TransactionService) publishRecorded(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping recorded message")
		return nil
	}
	return s.publisher.PublishTransactionRecorded(ctx, amqp.TransactionRecordedMessage{
		ID:          t.ID,
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
	})
}
