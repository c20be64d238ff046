package services

import (
	"fmt"
	"sync"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
)

// Weight bounds callers should clamp user input to before calling
// RescaleIngredient.
const (
	MinIngredientGrams = 10.0
	MaxIngredientGrams = 1000.0
)

// ClampWeight pulls a requested gram value into the accepted range.
func ClampWeight(grams float64) float64 {
	if grams < MinIngredientGrams {
		return MinIngredientGrams
	}
	if grams > MaxIngredientGrams {
		return MaxIngredientGrams
	}
	return grams
}

// Ledger holds one in-memory NutritionInfo while the user edits it,
// plus the original analysis-provided ingredient values. Every rescale
// multiplies the baseline, never a previously-scaled value, so repeated
// adjustments don't accumulate rounding drift. Totals are recomputed
// inside the same critical section as the mutation.
type Ledger struct {
	mu       sync.Mutex
	info     models.NutritionInfo
	baseline []models.Ingredient
}

// NewLedger snapshots the analysis result as the rescale baseline.
func NewLedger(info models.NutritionInfo) *Ledger {
	l := &Ledger{info: info}
	l.baseline = make([]models.Ingredient, len(info.Ingredients))
	copy(l.baseline, info.Ingredients)
	l.recomputeTotals()
	return l
}

// Info returns a copy of the current aggregate.
func (l *Ledger) Info() models.NutritionInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.info
	out.Ingredients = make([]models.Ingredient, len(l.info.Ingredients))
	copy(out.Ingredients, l.info.Ingredients)
	return out
}

// RescaleIngredient sets ingredient i to the given weight and scales
// every nutrient field from its baseline by weight/baselineWeight.
// Zero or negative weights are rejected; callers clamp to
// [MinIngredientGrams, MaxIngredientGrams] first.
func (l *Ledger) RescaleIngredient(i int, grams float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.info.Ingredients) {
		return fmt.Errorf("ingredient index %d out of range", i)
	}
	if grams <= 0 {
		return fmt.Errorf("weight must be positive, got %g", grams)
	}
	base := l.baseline[i]
	if base.WeightGrams <= 0 {
		return fmt.Errorf("ingredient %q has no baseline weight", base.Name)
	}

	mult := grams / base.WeightGrams
	ing := &l.info.Ingredients[i]
	ing.WeightGrams = grams
	ing.Calories = base.Calories * mult
	ing.Protein = base.Protein * mult
	ing.Carbs = base.Carbs * mult
	ing.Fat = base.Fat * mult
	ing.Sodium = base.Sodium * mult
	ing.Sugar = base.Sugar * mult
	ing.Fiber = base.Fiber * mult

	l.recomputeTotals()
	return nil
}

// RemoveIngredient drops ingredient i (and its baseline) and recomputes
// totals.
func (l *Ledger) RemoveIngredient(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.info.Ingredients) {
		return fmt.Errorf("ingredient index %d out of range", i)
	}
	l.info.Ingredients = append(l.info.Ingredients[:i], l.info.Ingredients[i+1:]...)
	l.baseline = append(l.baseline[:i], l.baseline[i+1:]...)
	l.recomputeTotals()
	return nil
}

// SetMealName renames the meal without touching nutrition values.
func (l *Ledger) SetMealName(name string) {
	l.mu.Lock()
	l.info.MealName = name
	l.mu.Unlock()
}

// caller must hold l.mu
func (l *Ledger) recomputeTotals() {
	var cals, prot, carbs, fat float64
	for _, in := range l.info.Ingredients {
		cals += in.Calories
		prot += in.Protein
		carbs += in.Carbs
		fat += in.Fat
	}
	l.info.TotalCalories = cals
	l.info.TotalProtein = prot
	l.info.TotalCarbs = carbs
	l.info.TotalFat = fat
}
