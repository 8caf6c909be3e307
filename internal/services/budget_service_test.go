package services

import (
	"context"
	"testing"

	"tally/internal/budget"
	"tally/internal/core"
	"tally/internal/storage"
)

func TestAutoAllocatePersistsLimits(t *testing.T) {
	store := storage.NewMemoryRepository()
	pub := &fakePublisher{}
	svc := NewBudgetService(store, pub)
	ctx := context.Background()

	// The default category set has 4 needs, 2 savings and 3 wants buckets.
	plan, err := svc.AutoAllocate(ctx, core.Money{Cents: 5000000}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Savings.Cents != 1000000 || plan.Needs.Cents != 2400000 || plan.Wants.Cents != 1600000 {
		t.Errorf("unexpected class amounts: %+v", plan)
	}

	categories, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	limits := map[string]int64{}
	for _, c := range categories {
		limits[c.Name] = c.MonthlyLimit.Cents
	}

	// needs 2400000 over Bills/Transport/Health/Housing
	for _, name := range []string{"Bills", "Transport", "Health", "Housing"} {
		if limits[name] != 600000 {
			t.Errorf("%s: expected 600000, got %d", name, limits[name])
		}
	}
	// savings 1000000 over Savings/Investments
	for _, name := range []string{"Savings", "Investments"} {
		if limits[name] != 500000 {
			t.Errorf("%s: expected 500000, got %d", name, limits[name])
		}
	}
	// wants 1600000 over Food/Entertainment/Other, floored
	for _, name := range []string{"Food", "Entertainment", "Other"} {
		if limits[name] != 533333 {
			t.Errorf("%s: expected 533333, got %d", name, limits[name])
		}
	}

	if len(pub.applied) != 1 {
		t.Fatalf("expected 1 plan applied message, got %d", len(pub.applied))
	}
	if pub.applied[0].IncomeCents != 5000000 || pub.applied[0].SavingsRatePercent != 20 {
		t.Errorf("published message mismatch: %+v", pub.applied[0])
	}
	if pub.applied[0].CategoryCount != 9 {
		t.Errorf("expected 9 categories in message, got %d", pub.applied[0].CategoryCount)
	}
}

func TestAutoAllocateRejectsInvalidInputs(t *testing.T) {
	svc := NewBudgetService(storage.NewMemoryRepository(), nil)
	ctx := context.Background()

	if _, err := svc.AutoAllocate(ctx, core.Money{Cents: -1}, 20); err == nil {
		t.Error("expected error for negative income")
	}
	if _, err := svc.AutoAllocate(ctx, core.Money{Cents: 1000}, 200); err == nil {
		t.Error("expected error for out-of-range savings rate")
	}
}

func TestStatusEvaluatesTrackedCategories(t *testing.T) {
	store := storage.NewMemoryRepository()
	svc := NewBudgetService(store, nil)
	txnSvc := NewTransactionService(store, nil)
	ctx := context.Background()

	if err := store.UpsertCategoryLimit(ctx, "Food", core.Money{Cents: 100000}); err != nil {
		t.Fatalf("seed limit: %v", err)
	}
	seed := []core.Transaction{
		{Description: "market", Amount: core.Money{Cents: -50000}, Category: "Food", OccurredAt: day(3)},
		{Description: "dinner", Amount: core.Money{Cents: -25000}, Category: "Food", OccurredAt: day(4)},
		{Description: "bus", Amount: core.Money{Cents: -3000}, Category: "Transport", OccurredAt: day(4)},
	}
	for _, tx := range seed {
		if _, err := txnSvc.Record(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	statuses, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byName := map[string]CategoryStatus{}
	for _, s := range statuses {
		byName[s.Name] = s
	}

	food := byName["Food"]
	if food.Spent.Cents != 75000 {
		t.Errorf("Food spent: expected 75000, got %d", food.Spent.Cents)
	}
	if food.Percentage != 75 || food.Level != budget.LevelWarning {
		t.Errorf("Food status: expected 75%%/warning, got %v/%s", food.Percentage, food.Level)
	}

	// Transport has spend but no limit: untracked.
	transport := byName["Transport"]
	if transport.Percentage != 0 || transport.Level != budget.LevelOK {
		t.Errorf("untracked Transport: expected 0%%/ok, got %v/%s", transport.Percentage, transport.Level)
	}
}
