package services

import (
	"context"

	"tally/internal/amqp"
	"tally/internal/core"
)

// Ports for outbound adapters.
type (
	// Store is the persistence boundary for transactions and categories.
	Store interface {
		InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		UpsertCategoryLimit(ctx context.Context, name string, limit core.Money) error
	}

	// Publisher announces domain events to the message queue. A nil Publisher
	// is valid; services treat it as "queue disabled".
	Publisher interface {
		PublishTransactionRecorded(ctx context.Context, msg amqp.TransactionRecordedMessage) error
		PublishPlanApplied(ctx context.Context, msg amqp.PlanAppliedMessage) error
	}
)
