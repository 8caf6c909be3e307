package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"tally/internal/amqp"
	"tally/internal/ledger"
	"tally/internal/services"
)

// Exporter receives derived report snapshots.
type Exporter interface {
	AppendSummaryRow(ctx context.Context, summary ledger.Summary, breakdown ledger.Breakdown) error
}

// ReportWorker turns queue events into exported report snapshots. Events only
// mark the ledger dirty; the periodic loop recomputes from storage and
// exports, so a burst of transactions collapses into one snapshot.
type ReportWorker struct {
	store    services.Store
	exporter Exporter
	interval time.Duration
	dirty    atomic.Bool
}

func NewReportWorker(store services.Store, exporter Exporter, interval time.Duration) *ReportWorker {
	return &ReportWorker{
		store:    store,
		exporter: exporter,
		interval: interval,
	}
}

// HandleTransactionRecorded marks the ledger dirty. The snapshot is always
// recomputed from storage, so the message body is informational only.
func (w *ReportWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	slog.InfoContext(ctx, "Ledger changed by transaction",
		"id", msg.ID,
		"category", msg.Category)
	w.dirty.Store(true)
	return nil
}

// HandlePlanApplied marks the ledger dirty after an allocation run.
func (w *ReportWorker) HandlePlanApplied(ctx context.Context, msg *amqp.PlanAppliedMessage) error {
	slog.InfoContext(ctx, "Limits changed by allocation run",
		"income_cents", msg.IncomeCents,
		"category_count", msg.CategoryCount)
	w.dirty.Store(true)
	return nil
}

// Run exports a snapshot whenever the ledger was marked dirty, at most once
// per interval, until ctx is cancelled.
func (w *ReportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Report worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Report worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if !w.dirty.Swap(false) {
				continue
			}
			if err := w.ExportSnapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Failed to export snapshot", "error", err)
				// Try again next tick.
				w.dirty.Store(true)
			}
		}
	}
}

// StartupCheck exports one snapshot immediately so a restarted worker
// recovers from events missed while it was down.
func (w *ReportWorker) StartupCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Exporting startup snapshot")
	if err := w.ExportSnapshot(ctx); err != nil {
		return fmt.Errorf("startup snapshot: %w", err)
	}
	return nil
}

// ExportSnapshot recomputes the summary and breakdown from storage and hands
// them to the exporter.
func (w *ReportWorker) ExportSnapshot(ctx context.Context) error {
	txns, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	summary := ledger.Summarize(txns)
	breakdown := ledger.SpendByCategory(txns)

	if err := w.exporter.AppendSummaryRow(ctx, summary, breakdown); err != nil {
		return fmt.Errorf("append summary row: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot exported",
		"transaction_count", summary.TransactionCount,
		"balance_cents", summary.TotalBalance.Cents)
	return nil
}
