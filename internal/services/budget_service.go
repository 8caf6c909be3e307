package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/budget"
	"tally/internal/core"
	"tally/internal/ledger"
)

// limitUpsertConcurrency bounds how many category limit writes run at once
// during an allocation run.
const limitUpsertConcurrency = 4

// CategoryStatus pairs a category with its live spend and alert state.
type CategoryStatus struct {
	Name       string
	Limit      core.Money
	Spent      core.Money
	Percentage float64
	Level      budget.Level
}

// BudgetService runs allocation plans against the category table and reports
// live spend versus the persisted limits.
type BudgetService struct {
	store     Store
	publisher Publisher
}

func NewBudgetService(store Store, publisher Publisher) *BudgetService {
	return &BudgetService{
		store:     store,
		publisher: publisher,
	}
}

// AutoAllocate builds an allocation plan for the given income and savings
// rate and persists the resulting limits. Limit writes run concurrently; if
// any write fails the error is returned, but writes already committed stay
// committed. The plan is returned for display.
func (s *BudgetService) AutoAllocate(ctx context.Context, income core.Money, savingsRatePercent int) (budget.Plan, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return budget.Plan{}, fmt.Errorf("list categories: %w", err)
	}

	plan, err := budget.BuildPlan(income, savingsRatePercent, categories)
	if err != nil {
		return budget.Plan{}, err
	}

	nameByID := make(map[string]string, len(categories))
	for _, c := range categories {
		nameByID[c.ID] = c.Name
	}

	var g errgroup.Group
	g.SetLimit(limitUpsertConcurrency)
	for id, limit := range plan.PerCategory {
		name, ok := nameByID[id]
		if !ok {
			continue
		}
		name, limit := name, limit
		g.Go(func() error {
			if err := s.store.UpsertCategoryLimit(ctx, name, limit); err != nil {
				return fmt.Errorf("upsert limit for %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return budget.Plan{}, err
	}

	slog.InfoContext(ctx, "Allocation plan applied",
		"income_cents", income.Cents,
		"savings_rate_percent", savingsRatePercent,
		"categories", len(plan.PerCategory),
		"assigned_cents", plan.TotalAssigned().Cents)

	if err := s.publishApplied(ctx, income, savingsRatePercent, plan); err != nil {
		slog.ErrorContext(ctx, "Failed to publish plan applied message", "error", err)
	}

	return plan, nil
}

// Status evaluates live spend against every tracked category's limit.
// Categories with a zero limit are reported as untracked, level ok.
func (s *BudgetService) Status(ctx context.Context) ([]CategoryStatus, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]CategoryStatus, 0, len(categories))
	for _, c := range categories {
		spent := ledger.SpendFor(txns, c.Name)
		status := budget.Evaluate(c.MonthlyLimit, spent)
		out = append(out, CategoryStatus{
			Name:       c.Name,
			Limit:      c.MonthlyLimit,
			Spent:      spent,
			Percentage: status.Percentage,
			Level:      status.Level,
		})
	}
	return out, nil
}

func (s *BudgetService) publishApplied(ctx context.Context, income core.Money, rate int, plan budget.Plan) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping plan applied message")
		return nil
	}
	return s.publisher.PublishPlanApplied(ctx, amqp.PlanAppliedMessage{
		IncomeCents:        income.Cents,
		SavingsRatePercent: rate,
		AssignedCents:      plan.TotalAssigned().Cents,
		CategoryCount:      len(plan.PerCategory),
	})
}
