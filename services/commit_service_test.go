package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
)

// fakeStore is an in-memory Store with per-operation failure injection.
type fakeStore struct {
	nextID uint

	logs   []models.MealLogEntry
	saved  []models.SavedMeal
	plans  []models.MealPlan
	lists  []models.GroceryList
	health []models.HealthMetrics

	failCreateLog      bool
	failCreateSaved    bool
	failCreatePlanItem bool
	failCreateGrocery  bool
}

var (
	errInjected = errors.New("injected store failure")
	errNotOwned = errors.New("record not found for user")
)

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateLogEntry(entry *models.MealLogEntry) error {
	if f.failCreateLog {
		return errInjected
	}
	entry.ID = f.id()
	entry.CreatedAt = time.Now()
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeStore) ListLogEntries(userID uint) ([]models.MealLogEntry, error) {
	var out []models.MealLogEntry
	for _, e := range f.logs {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListLogEntriesByDateRange(userID uint, from, to time.Time) ([]models.MealLogEntry, error) {
	return f.ListLogEntries(userID)
}

func (f *fakeStore) CreateSavedMeal(meal *models.SavedMeal) error {
	if f.failCreateSaved {
		return errInjected
	}
	meal.ID = f.id()
	meal.CreatedAt = time.Now()
	f.saved = append(f.saved, *meal)
	return nil
}

func (f *fakeStore) ListSavedMeals(userID uint) ([]models.SavedMeal, error) {
	var out []models.SavedMeal
	for _, m := range f.saved {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteSavedMeal(userID, mealID uint) error {
	for i, m := range f.saved {
		if m.ID == mealID {
			f.saved = append(f.saved[:i], f.saved[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) CreatePlan(plan *models.MealPlan) error {
	plan.ID = f.id()
	f.plans = append(f.plans, *plan)
	return nil
}

func (f *fakeStore) ListPlans(userID uint) ([]models.MealPlan, error) {
	var out []models.MealPlan
	for _, p := range f.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePlanItem(userID uint, item *models.MealPlanItem) error {
	if f.failCreatePlanItem {
		return errInjected
	}
	owned := false
	for _, m := range f.saved {
		if m.ID == item.SavedMealID && m.UserID == userID {
			owned = true
		}
	}
	if !owned {
		return errNotOwned
	}
	for i := range f.plans {
		if f.plans[i].ID == item.MealPlanID && f.plans[i].UserID == userID {
			item.ID = f.id()
			f.plans[i].Items = append(f.plans[i].Items, *item)
			return nil
		}
	}
	return errNotOwned
}

func (f *fakeStore) DeletePlanItem(userID, itemID uint) error {
	for i := range f.plans {
		for j, it := range f.plans[i].Items {
			if it.ID == itemID {
				f.plans[i].Items = append(f.plans[i].Items[:j], f.plans[i].Items[j+1:]...)
				return nil
			}
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) CreateGroceryList(list *models.GroceryList) error {
	list.ID = f.id()
	f.lists = append(f.lists, *list)
	return nil
}

func (f *fakeStore) ListGroceryLists(userID uint) ([]models.GroceryList, error) {
	var out []models.GroceryList
	for _, l := range f.lists {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) SetActiveGroceryList(userID, listID uint) error {
	for i := range f.lists {
		f.lists[i].IsActive = f.lists[i].ID == listID
	}
	return nil
}

func (f *fakeStore) CreateGroceryItems(userID, listID uint, items []models.GroceryItem) error {
	if f.failCreateGrocery {
		return errInjected
	}
	for i := range f.lists {
		if f.lists[i].ID == listID && f.lists[i].UserID == userID {
			for _, it := range items {
				it.ID = f.id()
				it.GroceryListID = listID
				f.lists[i].Items = append(f.lists[i].Items, it)
			}
			return nil
		}
	}
	return errNotOwned
}

func (f *fakeStore) SetGroceryItemChecked(userID, itemID uint, checked bool) error {
	for i := range f.lists {
		for j := range f.lists[i].Items {
			if f.lists[i].Items[j].ID == itemID {
				f.lists[i].Items[j].Checked = checked
				return nil
			}
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) UpsertHealthMetrics(userID uint, day time.Time, patch *models.HealthMetricsPatch) error {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	for i := range f.health {
		if f.health[i].UserID == userID && f.health[i].Date.Equal(start) {
			patch.Apply(&f.health[i])
			return nil
		}
	}
	rec := models.HealthMetrics{UserID: userID, Date: start}
	rec.ID = f.id()
	patch.Apply(&rec)
	f.health = append(f.health, rec)
	return nil
}

func (f *fakeStore) ListHealthMetrics(userID uint) ([]models.HealthMetrics, error) {
	var out []models.HealthMetrics
	for _, h := range f.health {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func TestCommit_LogToHistoryAssignsIdentity(t *testing.T) {
	store := &fakeStore{}
	c := NewCommitCoordinator(store, nil)

	entry, err := c.LogToHistory(1, testInfo())
	require.NoError(t, err)
	assert.NotZero(t, entry.ID, "id comes from the store")
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Len(t, store.logs, 1)
}

func TestCommit_HistoryFailureIsTyped(t *testing.T) {
	store := &fakeStore{failCreateLog: true}
	c := NewCommitCoordinator(store, nil)

	_, err := c.LogToHistory(1, testInfo())
	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, DestHistory, commitErr.Destination)
	assert.ErrorIs(t, err, errInjected)
}

func TestCommit_SaveToLibraryAllowsDuplicates(t *testing.T) {
	store := &fakeStore{}
	c := NewCommitCoordinator(store, nil)

	first, err := c.SaveToLibrary(1, testInfo())
	require.NoError(t, err)
	second, err := c.SaveToLibrary(1, testInfo())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.saved, 2)
}

func TestCommit_AddToPlanSavesFirstWhenNoId(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, store.CreatePlan(&models.MealPlan{UserID: 1, Name: "Cut week"}))
	c := NewCommitCoordinator(store, nil)

	info := testInfo()
	item, err := c.AddToPlan(1, store.plans[0].ID, 0, &info, "monday", "lunch")
	require.NoError(t, err)

	require.Len(t, store.saved, 1, "two-step commit saves to library first")
	assert.Equal(t, store.saved[0].ID, item.SavedMealID)
	assert.Equal(t, "monday", item.Day)
	assert.Equal(t, "lunch", item.Slot)
}

func TestCommit_PlanFailureDoesNotRollBackSave(t *testing.T) {
	store := &fakeStore{failCreatePlanItem: true}
	require.NoError(t, store.CreatePlan(&models.MealPlan{UserID: 1, Name: "Cut week"}))
	c := NewCommitCoordinator(store, nil)

	info := testInfo()
	_, err := c.AddToPlan(1, store.plans[0].ID, 0, &info, "monday", "lunch")

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, DestPlan, commitErr.Destination)

	// commit isolation: the library save stays durable and shows up on
	// reconciliation despite the plan-add failure
	snap, rerr := c.Reconcile(1, CollectionLibrary)
	require.NoError(t, rerr)
	require.Len(t, snap.Library, 1)
	assert.Equal(t, "Grilled Chicken Salad", snap.Library[0].MealName)
}

func TestCommit_AddToPlanWithoutRecordOrId(t *testing.T) {
	store := &fakeStore{}
	c := NewCommitCoordinator(store, nil)

	_, err := c.AddToPlan(1, 1, 0, nil, "monday", "lunch")
	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, DestPlan, commitErr.Destination)
}

func TestCommit_RemoveFromPlanKeepsSavedMeal(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, store.CreatePlan(&models.MealPlan{UserID: 1, Name: "Bulk"}))
	c := NewCommitCoordinator(store, nil)

	info := testInfo()
	item, err := c.AddToPlan(1, store.plans[0].ID, 0, &info, "friday", "dinner")
	require.NoError(t, err)

	require.NoError(t, c.RemoveFromPlan(1, item.ID))
	assert.Empty(t, store.plans[0].Items)
	assert.Len(t, store.saved, 1, "removing a plan item never mutates the saved meal")
}

func importFixture(t *testing.T, store *fakeStore) (listID uint, planIDs []uint) {
	t.Helper()
	c := NewCommitCoordinator(store, nil)

	require.NoError(t, store.CreateGroceryList(&models.GroceryList{UserID: 1, Name: "Weekly"}))
	listID = store.lists[0].ID

	require.NoError(t, store.CreatePlan(&models.MealPlan{UserID: 1, Name: "A"}))
	require.NoError(t, store.CreatePlan(&models.MealPlan{UserID: 1, Name: "B"}))

	salad := testInfo()
	_, err := c.AddToPlan(1, store.plans[0].ID, 0, &salad, "monday", "lunch")
	require.NoError(t, err)

	curry := models.NutritionInfo{
		MealName: "Chickpea Curry",
		Ingredients: []models.Ingredient{
			{Name: "Chickpeas", WeightGrams: 200, Calories: 328},
			{Name: "olive oil", WeightGrams: 10, Calories: 90}, // duplicate of salad's, different case
		},
	}
	_, err = c.AddToPlan(1, store.plans[1].ID, 0, &curry, "tuesday", "dinner")
	require.NoError(t, err)

	// ListPlans in the fake doesn't join saved meals, so attach them the
	// way the gorm preload would
	for i := range store.plans {
		for j := range store.plans[i].Items {
			for _, sm := range store.saved {
				if sm.ID == store.plans[i].Items[j].SavedMealID {
					store.plans[i].Items[j].SavedMeal = sm
				}
			}
		}
	}
	return listID, []uint{store.plans[0].ID, store.plans[1].ID}
}

func TestCommit_ImportFromPlansAggregatesAndDedupes(t *testing.T) {
	store := &fakeStore{}
	listID, planIDs := importFixture(t, store)
	c := NewCommitCoordinator(store, nil)

	items, err := c.ImportFromPlans(1, listID, planIDs)
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	// salad: chicken breast, mixed greens, olive oil; curry adds
	// chickpeas and a case-variant olive oil that dedupes away
	assert.ElementsMatch(t, []string{"Chicken Breast", "Mixed Greens", "Olive Oil", "Chickpeas"}, names)

	// re-import appends nothing new
	again, err := c.ImportFromPlans(1, listID, planIDs)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestCommit_ImportScopedToRequestedPlans(t *testing.T) {
	store := &fakeStore{}
	listID, planIDs := importFixture(t, store)
	c := NewCommitCoordinator(store, nil)

	items, err := c.ImportFromPlans(1, listID, planIDs[1:])
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"Chickpeas", "olive oil"}, names)
}

func TestCommit_AddToPlanRejectsForeignPlan(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, store.CreatePlan(&models.MealPlan{UserID: 1, Name: "Theirs"}))
	c := NewCommitCoordinator(store, nil)

	info := testInfo()
	_, err := c.AddToPlan(2, store.plans[0].ID, 0, &info, "monday", "lunch")

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, DestPlan, commitErr.Destination)
	assert.Empty(t, store.plans[0].Items, "nothing lands on another user's plan")

	// the two-step library save still belongs to the caller and survives
	snap, rerr := c.Reconcile(2, CollectionLibrary)
	require.NoError(t, rerr)
	assert.Len(t, snap.Library, 1)
}

func TestCommit_AddToPlanRejectsForeignSavedMeal(t *testing.T) {
	store := &fakeStore{}
	c := NewCommitCoordinator(store, nil)

	theirs, err := c.SaveToLibrary(1, testInfo())
	require.NoError(t, err)
	require.NoError(t, store.CreatePlan(&models.MealPlan{UserID: 2, Name: "Mine"}))

	_, err = c.AddToPlan(2, store.plans[0].ID, theirs.ID, nil, "monday", "lunch")

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, DestPlan, commitErr.Destination)
	assert.Empty(t, store.plans[0].Items)
}

func TestCommit_ImportRejectsForeignList(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, store.CreateGroceryList(&models.GroceryList{UserID: 1, Name: "Theirs"}))
	require.NoError(t, store.CreatePlan(&models.MealPlan{UserID: 2, Name: "Mine"}))
	c := NewCommitCoordinator(store, nil)

	info := testInfo()
	_, err := c.AddToPlan(2, store.plans[0].ID, 0, &info, "monday", "lunch")
	require.NoError(t, err)
	for i := range store.plans {
		for j := range store.plans[i].Items {
			for _, sm := range store.saved {
				if sm.ID == store.plans[i].Items[j].SavedMealID {
					store.plans[i].Items[j].SavedMeal = sm
				}
			}
		}
	}

	_, err = c.ImportFromPlans(2, store.lists[0].ID, []uint{store.plans[0].ID})

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, DestGrocery, commitErr.Destination)
	assert.Empty(t, store.lists[0].Items, "nothing lands on another user's list")
}

func TestCommit_LogVitalsMergesPartial(t *testing.T) {
	store := &fakeStore{}
	c := NewCommitCoordinator(store, nil)

	w := 82.5
	require.NoError(t, c.LogVitals(1, &models.HealthMetricsPatch{WeightKg: &w}))

	hr := 61.0
	require.NoError(t, c.LogVitals(1, &models.HealthMetricsPatch{HeartRateBPM: &hr}))

	require.Len(t, store.health, 1, "same-day vitals merge into one row")
	assert.InDelta(t, 82.5, store.health[0].WeightKg, 1e-9)
	assert.InDelta(t, 61.0, store.health[0].HeartRateBPM, 1e-9)
}

func TestCommit_ReconcileRefetchesAndComputesToday(t *testing.T) {
	store := &fakeStore{}
	c := NewCommitCoordinator(store, nil)

	_, err := c.LogToHistory(1, testInfo())
	require.NoError(t, err)

	snap, err := c.Reconcile(1)
	require.NoError(t, err)
	require.Len(t, snap.History, 1)
	require.NotNil(t, snap.Today)
	assert.InDelta(t, 420.0, snap.Today.Calories, 1e-9)
	assert.Equal(t, 1, snap.Today.Meals)
}

func TestRecipeToInfo_SumsIngredients(t *testing.T) {
	r := models.Recipe{
		Name: "Veggie Stir Fry",
		Ingredients: []models.Ingredient{
			{Name: "Broccoli", WeightGrams: 150, Calories: 51, Protein: 4.2},
			{Name: "Tofu", WeightGrams: 100, Calories: 76, Protein: 8},
		},
		Instructions: []string{"chop", "fry"},
	}

	info := RecipeToInfo(r)
	assert.Equal(t, "Veggie Stir Fry", info.MealName)
	assert.InDelta(t, 127.0, info.TotalCalories, 1e-9)
	assert.InDelta(t, 12.2, info.TotalProtein, 1e-9)
	assert.Equal(t, "chop\nfry", info.RecipeText)
}
