package services

import (
	"math"

	dm "tripwise/internal/models/domain_models"
)

var budgetCategories = []dm.BudgetCategory{
	dm.BudgetAccommodation,
	dm.BudgetFood,
	dm.BudgetTransportation,
	dm.BudgetActivities,
	dm.BudgetMiscellaneous,
}

// Percentages follow budgetCategories order and sum to 100 per goal type.
var budgetSplits = map[dm.GoalType][5]int{
	dm.GoalTypeBudget:     {30, 25, 20, 15, 10},
	dm.GoalTypeBalanced:   {35, 25, 15, 20, 5},
	dm.GoalTypeLuxury:     {45, 20, 15, 15, 5},
	dm.GoalTypeBackpacker: {25, 25, 25, 15, 10},
}

// AllocateBudget splits total across the fixed categories of the goal type.
// Miscellaneous absorbs rounding so the amounts sum to total.
func AllocateBudget(goalType dm.GoalType, total float64) dm.BudgetBreakdown {
	split, ok := budgetSplits[goalType]
	if !ok {
		goalType = dm.GoalTypeBalanced
		split = budgetSplits[goalType]
	}

	out := dm.BudgetBreakdown{GoalType: goalType, Total: total, Lines: make([]dm.BudgetLine, 0, len(split))}
	assigned := 0.0
	for i, cat := range budgetCategories {
		amount := math.Round(total * float64(split[i]) / 100)
		if cat == dm.BudgetMiscellaneous {
			amount = total - assigned
		}
		assigned += amount
		out.Lines = append(out.Lines, dm.BudgetLine{Category: cat, Percent: split[i], Amount: amount})
	}
	return out
}
