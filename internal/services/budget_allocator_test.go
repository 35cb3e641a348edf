package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dm "tripwise/internal/models/domain_models"
)

func TestAllocateBudget_SumsToTotal(t *testing.T) {
	for _, gt := range []dm.GoalType{dm.GoalTypeBudget, dm.GoalTypeBalanced, dm.GoalTypeLuxury, dm.GoalTypeBackpacker} {
		for _, total := range []float64{0, 1, 1_234_567, 5_000_000} {
			b := AllocateBudget(gt, total)
			require.Len(t, b.Lines, 5)

			percent := 0
			amount := 0.0
			for _, l := range b.Lines {
				percent += l.Percent
				amount += l.Amount
			}
			assert.Equal(t, 100, percent, "goal %s", gt)
			assert.InDelta(t, total, amount, 1e-6, "goal %s total %v", gt, total)
		}
	}
}

func TestAllocateBudget_LuxuryFavorsAccommodation(t *testing.T) {
	b := AllocateBudget(dm.GoalTypeLuxury, 10_000_000)
	assert.Equal(t, dm.BudgetAccommodation, b.Lines[0].Category)
	assert.Equal(t, 45, b.Lines[0].Percent)
	assert.Equal(t, 4_500_000.0, b.Lines[0].Amount)
	assert.Equal(t, dm.BudgetMiscellaneous, b.Lines[4].Category)
}

func TestAllocateBudget_MiscAbsorbsRounding(t *testing.T) {
	b := AllocateBudget(dm.GoalTypeBudget, 101)
	// 30, 25, 20, 15 rounded then misc takes the rest
	assert.Equal(t, 30.0, b.Lines[0].Amount)
	assert.Equal(t, 25.0, b.Lines[1].Amount)
	assert.Equal(t, 20.0, b.Lines[2].Amount)
	assert.Equal(t, 15.0, b.Lines[3].Amount)
	assert.Equal(t, 11.0, b.Lines[4].Amount)
}

func TestAllocateBudget_UnknownTypeFallsBack(t *testing.T) {
	b := AllocateBudget("", 1000)
	assert.Equal(t, dm.GoalTypeBalanced, b.GoalType)
}
