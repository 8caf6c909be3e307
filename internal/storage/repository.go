package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists transactions and categories in a local SQLite
// database. It is the production Store implementation.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTransaction stores a validated transaction, creating its category
// with a zero limit if it does not exist yet. The record's ID is assigned
// here and returned on the stored copy.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t.ID = uuid.NewString()
	t.Category = t.CategoryName()

	if _, err := r.ensureCategory(ctx, t.Category); err != nil {
		return core.Transaction{}, fmt.Errorf("ensure category: %w", err)
	}

	var occurredAt sql.NullString
	if t.HasDate() {
		occurredAt = sql.NullString{String: t.OccurredAt.UTC().Format(time.RFC3339), Valid: true}
	}

	err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:          t.ID,
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Kind:        string(t.Kind),
		OccurredAt:  occurredAt,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	return t, nil
}

// ListTransactions returns every stored transaction, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		t := core.Transaction{
			ID:          row.ID,
			Description: row.Description,
			Amount:      core.Money{Cents: row.AmountCents},
			Category:    row.Category,
			Kind:        core.Kind(row.Kind),
		}
		if row.OccurredAt.Valid {
			when, err := time.Parse(time.RFC3339, row.OccurredAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse occurred_at for %s: %w", row.ID, err)
			}
			t.OccurredAt = when
		}
		out[i] = t
	}
	return out, nil
}

// ListCategories returns all categories with their current limits.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = core.Category{
			ID:           row.ID,
			Name:         row.Name,
			MonthlyLimit: core.Money{Cents: row.MonthlyLimitCents},
		}
	}
	return out, nil
}

// UpsertCategoryLimit sets the monthly limit for a category, creating the
// category when it does not exist yet.
func (r *SQLiteRepository) UpsertCategoryLimit(ctx context.Context, name string, limit core.Money) error {
	if limit.IsNegative() {
		return core.ErrInvalidAmount
	}

	affected, err := r.queries.UpdateCategoryLimit(ctx, name, limit.Cents)
	if err != nil {
		return fmt.Errorf("update category limit: %w", err)
	}
	if affected > 0 {
		return nil
	}

	err = r.queries.CreateCategory(ctx, CreateCategoryParams{
		ID:                uuid.NewString(),
		Name:              name,
		MonthlyLimitCents: limit.Cents,
	})
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created with limit",
		"name", name,
		"limit_cents", limit.Cents)
	return nil
}

func (r *SQLiteRepository) ensureCategory(ctx context.Context, name string) (core.Category, error) {
	row, err := r.queries.GetCategoryByName(ctx, name)
	if err == nil {
		return core.Category{
			ID:           row.ID,
			Name:         row.Name,
			MonthlyLimit: core.Money{Cents: row.MonthlyLimitCents},
		}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, err
	}

	c := core.Category{ID: uuid.NewString(), Name: name}
	err = r.queries.CreateCategory(ctx, CreateCategoryParams{
		ID:   c.ID,
		Name: c.Name,
	})
	if err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category auto-created", "name", name)
	return c, nil
}
