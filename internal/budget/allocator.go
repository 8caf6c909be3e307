// Package budget computes automatic budget allocation plans and evaluates
// live spending against persisted category limits. Both halves are pure
// functions; persisting a plan's limits is the caller's job.
package budget

import (
	"tally/internal/core"
)

// Class is the allocation bucket a category falls into.
type Class string

const (
	ClassNeeds   Class = "needs"
	ClassWants   Class = "wants"
	ClassSavings Class = "savings"
)

// Share of the non-savings remainder routed to needs vs wants. Policy
// constants, not derived from the data.
const (
	needsSharePercent = 60
	wantsSharePercent = 40
)

// Fixed name sets for classification. Anything not listed is a want,
// including custom category names.
var (
	needsCategories = map[string]struct{}{
		"Bills":     {},
		"Transport": {},
		"Health":    {},
		"Housing":   {},
	}
	savingsCategories = map[string]struct{}{
		"Savings":     {},
		"Investments": {},
	}
)

// Classify maps a category name to its allocation class.
func Classify(name string) Class {
	if _, ok := needsCategories[name]; ok {
		return ClassNeeds
	}
	if _, ok := savingsCategories[name]; ok {
		return ClassSavings
	}
	return ClassWants
}

// Plan is the outcome of one allocation run. PerCategory maps category IDs
// to their assigned monthly limit. The class amounts are always computed;
// an amount whose class has no categories stays undistributed.
type Plan struct {
	Savings     core.Money
	Needs       core.Money
	Wants       core.Money
	PerCategory map[string]core.Money
}

// BuildPlan derives per-category limits from a monthly income and a savings
// rate.
//
//	savings = income * rate / 100
//	needs   = 60% of the remainder
//	wants   = 40% of the remainder
//
// Each class amount is split evenly across the categories of that class,
// flooring every share to a whole cent. The floor remainder is never
// redistributed, and a class with zero categories keeps its amount
// unassigned, so the sum of all limits never exceeds the income.
//
// The same income, rate and category set always produce the same plan.
func BuildPlan(income core.Money, savingsRatePercent int, categories []core.Category) (Plan, error) {
	if income.IsNegative() {
		return Plan{}, core.ErrInvalidIncome
	}
	if savingsRatePercent < 0 || savingsRatePercent > 100 {
		return Plan{}, core.ErrInvalidSavingsRate
	}

	savings := core.Money{Cents: income.Cents * int64(savingsRatePercent) / 100}
	remainder := income.Add(savings.Neg())

	plan := Plan{
		Savings:     savings,
		Needs:       core.Money{Cents: remainder.Cents * needsSharePercent / 100},
		Wants:       core.Money{Cents: remainder.Cents * wantsSharePercent / 100},
		PerCategory: make(map[string]core.Money),
	}

	byClass := make(map[Class][]core.Category)
	for _, c := range categories {
		class := Classify(c.Name)
		byClass[class] = append(byClass[class], c)
	}

	assign := func(class Class, amount core.Money) {
		members := byClass[class]
		if len(members) == 0 {
			// Amount computed but undistributed: nobody to assign it to.
			return
		}
		share := amount.DivideFloor(len(members))
		for _, c := range members {
			plan.PerCategory[c.ID] = share
		}
	}

	assign(ClassNeeds, plan.Needs)
	assign(ClassWants, plan.Wants)
	assign(ClassSavings, plan.Savings)

	return plan, nil
}

// TotalAssigned sums the limits the plan actually hands out.
func (p Plan) TotalAssigned() core.Money {
	var total core.Money
	for _, limit := range p.PerCategory {
		total = total.Add(limit)
	}
	return total
}
