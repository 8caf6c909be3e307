package storage

import (
	"context"
	"database/sql"
)

// Queries wraps the raw SQL statements used by the repository. All methods
// take a context and return database rows, not domain types; the repository
// does the mapping.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// Transaction is a row of the transactions table. OccurredAt is the RFC 3339
// date string, empty when the record carries no date.
type Transaction struct {
	ID          string
	Description string
	AmountCents int64
	Category    string
	Kind        string
	OccurredAt  sql.NullString
}

// Category is a row of the categories table.
type Category struct {
	ID                string
	Name              string
	MonthlyLimitCents int64
}

type CreateTransactionParams struct {
	ID          string
	Description string
	AmountCents int64
	Category    string
	Kind        string
	OccurredAt  sql.NullString
}

const createTransaction = `
INSERT INTO transactions (id, description, amount_cents, category, kind, occurred_at)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.Description, arg.AmountCents, arg.Category, arg.Kind, arg.OccurredAt)
	return err
}

const listTransactions = `
SELECT id, description, amount_cents, category, kind, occurred_at
FROM transactions
ORDER BY occurred_at DESC, created_at DESC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Description, &t.AmountCents, &t.Category, &t.Kind, &t.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const listCategories = `
SELECT id, name, monthly_limit_cents
FROM categories
ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.MonthlyLimitCents); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const getCategoryByName = `
SELECT id, name, monthly_limit_cents
FROM categories
WHERE name = ?
`

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (Category, error) {
	var c Category
	err := q.db.QueryRowContext(ctx, getCategoryByName, name).
		Scan(&c.ID, &c.Name, &c.MonthlyLimitCents)
	return c, err
}

type CreateCategoryParams struct {
	ID                string
	Name              string
	MonthlyLimitCents int64
}

const createCategory = `
INSERT INTO categories (id, name, monthly_limit_cents)
VALUES (?, ?, ?)
`

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) error {
	_, err := q.db.ExecContext(ctx, createCategory, arg.ID, arg.Name, arg.MonthlyLimitCents)
	return err
}

const updateCategoryLimit = `
UPDATE categories SET monthly_limit_cents = ? WHERE name = ?
`

func (q *Queries) UpdateCategoryLimit(ctx context.Context, name string, limitCents int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCategoryLimit, limitCents, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
