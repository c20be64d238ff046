package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
)

// Destination names one of the persistent collections a finished record
// can be committed to.
type Destination string

const (
	DestHistory Destination = "history"
	DestLibrary Destination = "library"
	DestPlan    Destination = "plan"
	DestGrocery Destination = "grocery"
	DestHealth  Destination = "health"
)

// Collection names a refetchable collection for reconciliation.
type Collection string

const (
	CollectionHistory Collection = "history"
	CollectionLibrary Collection = "library"
	CollectionPlans   Collection = "plans"
	CollectionGrocery Collection = "grocery"
	CollectionHealth  Collection = "health"
)

// AllCollections is the full reconcile set, used on day rollover.
var AllCollections = []Collection{
	CollectionHistory, CollectionLibrary, CollectionPlans, CollectionGrocery, CollectionHealth,
}

// Collections is a refetched snapshot. The store is the source of truth
// for ids, timestamps and aggregates; we reload whole collections after
// a mutation instead of patching locally.
type Collections struct {
	History []models.MealLogEntry  `json:"history,omitempty"`
	Library []models.SavedMeal     `json:"library,omitempty"`
	Plans   []models.MealPlan      `json:"plans,omitempty"`
	Grocery []models.GroceryList   `json:"grocery,omitempty"`
	Health  []models.HealthMetrics `json:"health,omitempty"`

	// day-scoped totals over today's history entries
	Today *DailyProgress `json:"today,omitempty"`
}

// DailyProgress is the today view recomputed on every history refetch.
type DailyProgress struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Meals    int     `json:"meals"`
}

// CommitCoordinator fans finished records out to destinations. Each
// commit is independent: one destination failing never rolls back or
// blocks another. Every successful mutation is followed by a
// reconcile-by-refetch of the collections it touched.
type CommitCoordinator struct {
	store Store
	hub   *RealtimeHub
	now   func() time.Time
}

func NewCommitCoordinator(store Store, hub *RealtimeHub) *CommitCoordinator {
	return &CommitCoordinator{store: store, hub: hub, now: time.Now}
}

// LogToHistory files the record into the dated ledger. Invoked
// automatically once analysis succeeds, distinct from explicit save.
func (c *CommitCoordinator) LogToHistory(userID uint, info models.NutritionInfo) (*models.MealLogEntry, error) {
	entry := models.NewLogEntry(userID, info)
	if err := c.store.CreateLogEntry(entry); err != nil {
		return nil, &CommitError{Destination: DestHistory, Cause: err}
	}
	c.reconcile(userID, CollectionHistory)
	return entry, nil
}

// SaveToLibrary files the record into the reusable library. Saving the
// same logical meal twice yields two rows; the store does not dedupe.
func (c *CommitCoordinator) SaveToLibrary(userID uint, info models.NutritionInfo) (*models.SavedMeal, error) {
	meal := models.NewSavedMeal(userID, info)
	if err := c.store.CreateSavedMeal(meal); err != nil {
		return nil, &CommitError{Destination: DestLibrary, Cause: err}
	}
	c.reconcile(userID, CollectionLibrary)
	return meal, nil
}

// AddToPlan schedules a SavedMeal into a (day, slot) cell. When no
// SavedMeal exists yet, the record is saved to the library first and
// the returned id is used; the save must complete before the plan add
// runs. A plan-add failure after a successful save leaves the save
// durable.
func (c *CommitCoordinator) AddToPlan(userID, planID, savedMealID uint, info *models.NutritionInfo, day, slot string) (*models.MealPlanItem, error) {
	if savedMealID == 0 {
		if info == nil {
			return nil, &CommitError{Destination: DestPlan, Cause: fmt.Errorf("no saved meal id and no record to save")}
		}
		saved, err := c.SaveToLibrary(userID, *info)
		if err != nil {
			return nil, err // CommitError{library}
		}
		savedMealID = saved.ID
	}

	item := &models.MealPlanItem{
		MealPlanID:  planID,
		SavedMealID: savedMealID,
		Day:         day,
		Slot:        slot,
	}
	if err := c.store.CreatePlanItem(userID, item); err != nil {
		return nil, &CommitError{Destination: DestPlan, Cause: err}
	}
	c.reconcile(userID, CollectionPlans)
	return item, nil
}

// RemoveFromPlan deletes a plan item. The referenced SavedMeal is never
// touched.
func (c *CommitCoordinator) RemoveFromPlan(userID, itemID uint) error {
	if err := c.store.DeletePlanItem(userID, itemID); err != nil {
		return &CommitError{Destination: DestPlan, Cause: err}
	}
	c.reconcile(userID, CollectionPlans)
	return nil
}

// ImportFromPlans aggregates ingredient names across the given plans
// into grocery items on the target list. Names are deduplicated
// case-insensitively against the batch and the list's existing items;
// quantities are not merged.
func (c *CommitCoordinator) ImportFromPlans(userID, listID uint, planIDs []uint) ([]models.GroceryItem, error) {
	plans, err := c.store.ListPlans(userID)
	if err != nil {
		return nil, &CommitError{Destination: DestGrocery, Cause: err}
	}
	lists, err := c.store.ListGroceryLists(userID)
	if err != nil {
		return nil, &CommitError{Destination: DestGrocery, Cause: err}
	}

	wanted := make(map[uint]bool, len(planIDs))
	for _, id := range planIDs {
		wanted[id] = true
	}

	seen := make(map[string]bool)
	for _, l := range lists {
		if l.ID != listID {
			continue
		}
		for _, it := range l.Items {
			seen[strings.ToLower(strings.TrimSpace(it.Name))] = true
		}
	}

	var items []models.GroceryItem
	for _, p := range plans {
		if !wanted[p.ID] {
			continue
		}
		for _, pi := range p.Items {
			for _, ing := range pi.SavedMeal.Items {
				key := strings.ToLower(strings.TrimSpace(ing.Name))
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				items = append(items, models.GroceryItem{Name: ing.Name})
			}
		}
	}

	if err := c.store.CreateGroceryItems(userID, listID, items); err != nil {
		return nil, &CommitError{Destination: DestGrocery, Cause: err}
	}
	c.reconcile(userID, CollectionGrocery)
	return items, nil
}

// LogVitals merges a partial health-metric record into today's row.
func (c *CommitCoordinator) LogVitals(userID uint, patch *models.HealthMetricsPatch) error {
	if err := c.store.UpsertHealthMetrics(userID, c.now(), patch); err != nil {
		return &CommitError{Destination: DestHealth, Cause: err}
	}
	c.reconcile(userID, CollectionHealth)
	return nil
}

// Reconcile refetches the named collections (all of them when none are
// named) and pushes the snapshot over the realtime hub. This is the
// entry point the day-boundary monitor shares.
func (c *CommitCoordinator) Reconcile(userID uint, cols ...Collection) (*Collections, error) {
	if len(cols) == 0 {
		cols = AllCollections
	}

	snap := &Collections{}
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, string(col))
		switch col {
		case CollectionHistory:
			entries, err := c.store.ListLogEntries(userID)
			keep(err)
			snap.History = entries
			snap.Today = c.dailyProgress(entries)
		case CollectionLibrary:
			meals, err := c.store.ListSavedMeals(userID)
			keep(err)
			snap.Library = meals
		case CollectionPlans:
			plans, err := c.store.ListPlans(userID)
			keep(err)
			snap.Plans = plans
		case CollectionGrocery:
			lists, err := c.store.ListGroceryLists(userID)
			keep(err)
			snap.Grocery = lists
		case CollectionHealth:
			recs, err := c.store.ListHealthMetrics(userID)
			keep(err)
			snap.Health = recs
		}
	}

	if c.hub != nil {
		c.hub.BroadcastEvent(userID, "collections.reconciled", map[string]any{
			"collections": names,
			"snapshot":    snap,
		})
	}
	return snap, firstErr
}

// reconcile is the post-commit variant: the commit already succeeded,
// so a refetch failure is logged rather than surfaced.
func (c *CommitCoordinator) reconcile(userID uint, cols ...Collection) {
	if _, err := c.Reconcile(userID, cols...); err != nil {
		log.Printf("reconcile after commit failed for user %d: %v", userID, err)
	}
}

func (c *CommitCoordinator) dailyProgress(entries []models.MealLogEntry) *DailyProgress {
	now := c.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24 * time.Hour)

	dp := &DailyProgress{Date: start.Format("2006-01-02")}
	for _, e := range entries {
		if e.CreatedAt.Before(start) || !e.CreatedAt.Before(end) {
			continue
		}
		dp.Calories += e.TotalCalories
		dp.Protein += e.TotalProtein
		dp.Carbs += e.TotalCarbs
		dp.Fat += e.TotalFat
		dp.Meals++
	}
	return dp
}

// RecipeToInfo turns a pantry-photo recipe into a committable
// NutritionInfo with totals summed from its ingredients.
func RecipeToInfo(r models.Recipe) models.NutritionInfo {
	info := models.NutritionInfo{
		MealName:    r.Name,
		Ingredients: r.Ingredients,
		RecipeText:  strings.Join(r.Instructions, "\n"),
	}
	for _, in := range r.Ingredients {
		info.TotalCalories += in.Calories
		info.TotalProtein += in.Protein
		info.TotalCarbs += in.Carbs
		info.TotalFat += in.Fat
	}
	return info
}
