package budget

import (
	"errors"
	"reflect"
	"testing"

	"tally/internal/core"
)

func cat(id, name string) core.Category {
	return core.Category{ID: id, Name: name}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want Class
	}{
		{"Bills", ClassNeeds},
		{"Transport", ClassNeeds},
		{"Health", ClassNeeds},
		{"Housing", ClassNeeds},
		{"Savings", ClassSavings},
		{"Investments", ClassSavings},
		{"Food", ClassWants},
		{"Entertainment", ClassWants},
		{"Anything Custom", ClassWants},
		{"bills", ClassWants}, // membership is exact, not case-folded
	}
	for _, tc := range cases {
		if got := Classify(tc.name); got != tc.want {
			t.Errorf("Classify(%q): expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

// income=50000, rate=20% -> savings=10000, remainder=40000, needs=24000,
// wants=16000; four needs categories get floor(24000/4)=6000 each; with no
// savings category the 10000 stays computed but unassigned.
func TestBuildPlanReferenceScenario(t *testing.T) {
	categories := []core.Category{
		cat("c1", "Bills"),
		cat("c2", "Transport"),
		cat("c3", "Health"),
		cat("c4", "Housing"),
	}

	plan, err := BuildPlan(core.Money{Cents: 5000000}, 20, categories)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if plan.Savings.Cents != 1000000 {
		t.Errorf("savings: expected 1000000, got %d", plan.Savings.Cents)
	}
	if plan.Needs.Cents != 2400000 {
		t.Errorf("needs: expected 2400000, got %d", plan.Needs.Cents)
	}
	if plan.Wants.Cents != 1600000 {
		t.Errorf("wants: expected 1600000, got %d", plan.Wants.Cents)
	}

	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		if got := plan.PerCategory[id].Cents; got != 600000 {
			t.Errorf("%s: expected 600000, got %d", id, got)
		}
	}
	if len(plan.PerCategory) != 4 {
		t.Errorf("expected 4 assignments, got %d", len(plan.PerCategory))
	}
	// The savings amount has no category to land in.
	if got := plan.TotalAssigned().Cents; got != 2400000 {
		t.Errorf("expected 2400000 assigned, got %d", got)
	}
}

func TestBuildPlanMixedClasses(t *testing.T) {
	categories := []core.Category{
		cat("n1", "Bills"),
		cat("n2", "Housing"),
		cat("w1", "Food"),
		cat("w2", "Entertainment"),
		cat("w3", "Hobbies"),
		cat("s1", "Savings"),
	}

	plan, err := BuildPlan(core.Money{Cents: 1000000}, 10, categories)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// savings 100000, remainder 900000, needs 540000, wants 360000
	if got := plan.PerCategory["n1"].Cents; got != 270000 {
		t.Errorf("n1: expected 270000, got %d", got)
	}
	if got := plan.PerCategory["w1"].Cents; got != 120000 {
		t.Errorf("w1: expected 120000, got %d", got)
	}
	if got := plan.PerCategory["s1"].Cents; got != 100000 {
		t.Errorf("s1: expected 100000, got %d", got)
	}
}

func TestBuildPlanFlooringNeverExceedsIncome(t *testing.T) {
	categories := []core.Category{
		cat("n1", "Bills"),
		cat("n2", "Transport"),
		cat("n3", "Health"),
		cat("w1", "Food"),
		cat("w2", "Fun"),
		cat("w3", "Clothes"),
		cat("w4", "Travel"),
		cat("s1", "Savings"),
		cat("s2", "Investments"),
	}

	// Awkward amounts and rates to force floor remainders everywhere.
	for _, tc := range []struct {
		incomeCents int64
		rate        int
	}{
		{333333, 17},
		{1, 50},
		{999999, 99},
		{1234567, 33},
		{0, 0},
		{5000000, 100},
	} {
		plan, err := BuildPlan(core.Money{Cents: tc.incomeCents}, tc.rate, categories)
		if err != nil {
			t.Fatalf("income=%d rate=%d: unexpected error %v", tc.incomeCents, tc.rate, err)
		}
		if assigned := plan.TotalAssigned().Cents; assigned > tc.incomeCents {
			t.Errorf("income=%d rate=%d: assigned %d exceeds income", tc.incomeCents, tc.rate, assigned)
		}
	}
}

func TestBuildPlanDeterministic(t *testing.T) {
	categories := []core.Category{
		cat("n1", "Bills"),
		cat("w1", "Food"),
		cat("s1", "Savings"),
	}
	first, err := BuildPlan(core.Money{Cents: 777777}, 23, categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := BuildPlan(core.Money{Cents: 777777}, 23, categories)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("plan differs between identical runs: %+v vs %+v", first, again)
		}
	}
}

func TestBuildPlanEmptyCategorySet(t *testing.T) {
	plan, err := BuildPlan(core.Money{Cents: 100000}, 20, nil)
	if err != nil {
		t.Fatalf("expected no error for empty category set, got %v", err)
	}
	if len(plan.PerCategory) != 0 {
		t.Errorf("expected no assignments, got %d", len(plan.PerCategory))
	}
	// Class amounts are still computed.
	if plan.Savings.Cents != 20000 || plan.Needs.Cents != 48000 || plan.Wants.Cents != 32000 {
		t.Errorf("class amounts wrong: %+v", plan)
	}
}

func TestBuildPlanZeroIncome(t *testing.T) {
	plan, err := BuildPlan(core.Money{}, 50, []core.Category{cat("w1", "Food")})
	if err != nil {
		t.Fatalf("zero income must be valid, got %v", err)
	}
	if got := plan.PerCategory["w1"].Cents; got != 0 {
		t.Errorf("expected zero limit, got %d", got)
	}
}

func TestBuildPlanInvalidInputs(t *testing.T) {
	if _, err := BuildPlan(core.Money{Cents: -1}, 20, nil); !errors.Is(err, core.ErrInvalidIncome) {
		t.Errorf("expected ErrInvalidIncome, got %v", err)
	}
	if _, err := BuildPlan(core.Money{Cents: 100}, -1, nil); !errors.Is(err, core.ErrInvalidSavingsRate) {
		t.Errorf("expected ErrInvalidSavingsRate for -1, got %v", err)
	}
	if _, err := BuildPlan(core.Money{Cents: 100}, 101, nil); !errors.Is(err, core.ErrInvalidSavingsRate) {
		t.Errorf("expected ErrInvalidSavingsRate for 101, got %v", err)
	}
}
