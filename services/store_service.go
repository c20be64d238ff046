package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/models"
)

// Store is the persistence collaborator consumed by the commit
// coordinator. Ids and timestamps are assigned by the store and treated
// as opaque once returned. Tests substitute an in-memory fake.
type Store interface {
	CreateLogEntry(entry *models.MealLogEntry) error
	ListLogEntries(userID uint) ([]models.MealLogEntry, error)
	ListLogEntriesByDateRange(userID uint, from, to time.Time) ([]models.MealLogEntry, error)

	CreateSavedMeal(meal *models.SavedMeal) error
	ListSavedMeals(userID uint) ([]models.SavedMeal, error)
	DeleteSavedMeal(userID, mealID uint) error

	CreatePlan(plan *models.MealPlan) error
	ListPlans(userID uint) ([]models.MealPlan, error)
	CreatePlanItem(userID uint, item *models.MealPlanItem) error
	DeletePlanItem(userID, itemID uint) error

	CreateGroceryList(list *models.GroceryList) error
	ListGroceryLists(userID uint) ([]models.GroceryList, error)
	SetActiveGroceryList(userID, listID uint) error
	CreateGroceryItems(userID, listID uint, items []models.GroceryItem) error
	SetGroceryItemChecked(userID, itemID uint, checked bool) error

	UpsertHealthMetrics(userID uint, day time.Time, patch *models.HealthMetricsPatch) error
	ListHealthMetrics(userID uint) ([]models.HealthMetrics, error)
}

// gormStore is the Postgres-backed Store.
type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateLogEntry(entry *models.MealLogEntry) error {
	return s.db.Create(entry).Error
}

func (s *gormStore) ListLogEntries(userID uint) ([]models.MealLogEntry, error) {
	var entries []models.MealLogEntry
	err := s.db.
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (s *gormStore) ListLogEntriesByDateRange(userID uint, from, to time.Time) ([]models.MealLogEntry, error) {
	var entries []models.MealLogEntry
	err := s.db.
		Preload("Items").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (s *gormStore) CreateSavedMeal(meal *models.SavedMeal) error {
	return s.db.Create(meal).Error
}

func (s *gormStore) ListSavedMeals(userID uint) ([]models.SavedMeal, error) {
	var meals []models.SavedMeal
	err := s.db.
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&meals).Error
	return meals, err
}

func (s *gormStore) DeleteSavedMeal(userID, mealID uint) error {
	if err := s.db.
		Where("saved_meal_id = ?", mealID).
		Delete(&models.SavedIngredient{}).Error; err != nil {
		return err
	}
	return s.db.
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&models.SavedMeal{}).Error
}

func (s *gormStore) CreatePlan(plan *models.MealPlan) error {
	return s.db.Create(plan).Error
}

func (s *gormStore) ListPlans(userID uint) ([]models.MealPlan, error) {
	var plans []models.MealPlan
	err := s.db.
		Preload("Items").
		Preload("Items.SavedMeal").
		Preload("Items.SavedMeal.Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

// CreatePlanItem verifies the target plan and saved meal both belong to
// the user before inserting; a foreign key check alone would accept
// another user's ids.
func (s *gormStore) CreatePlanItem(userID uint, item *models.MealPlanItem) error {
	var plan models.MealPlan
	if err := s.db.
		Where("id = ? AND user_id = ?", item.MealPlanID, userID).
		First(&plan).Error; err != nil {
		return err
	}
	var meal models.SavedMeal
	if err := s.db.
		Where("id = ? AND user_id = ?", item.SavedMealID, userID).
		First(&meal).Error; err != nil {
		return err
	}
	return s.db.Create(item).Error
}

func (s *gormStore) DeletePlanItem(userID, itemID uint) error {
	// scope the delete to plans the user owns
	var item models.MealPlanItem
	err := s.db.
		Joins("JOIN meal_plans ON meal_plans.id = meal_plan_items.meal_plan_id").
		Where("meal_plan_items.id = ? AND meal_plans.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return err
	}
	return s.db.Delete(&models.MealPlanItem{}, item.ID).Error
}

func (s *gormStore) CreateGroceryList(list *models.GroceryList) error {
	return s.db.Create(list).Error
}

func (s *gormStore) ListGroceryLists(userID uint) ([]models.GroceryList, error) {
	var lists []models.GroceryList
	err := s.db.
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lists).Error
	return lists, err
}

// SetActiveGroceryList enforces the one-active-list rule inside a
// transaction.
func (s *gormStore) SetActiveGroceryList(userID, listID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var list models.GroceryList
		if err := tx.Where("id = ? AND user_id = ?", listID, userID).First(&list).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.GroceryList{}).
			Where("user_id = ?", userID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.GroceryList{}).
			Where("id = ?", listID).
			Update("is_active", true).Error
	})
}

// CreateGroceryItems refuses to insert onto a list the user does not
// own, mirroring the join scoping on the item update path.
func (s *gormStore) CreateGroceryItems(userID, listID uint, items []models.GroceryItem) error {
	var list models.GroceryList
	if err := s.db.
		Where("id = ? AND user_id = ?", listID, userID).
		First(&list).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].GroceryListID = listID
	}
	return s.db.Create(&items).Error
}

func (s *gormStore) SetGroceryItemChecked(userID, itemID uint, checked bool) error {
	var item models.GroceryItem
	err := s.db.
		Joins("JOIN grocery_lists ON grocery_lists.id = grocery_items.grocery_list_id").
		Where("grocery_items.id = ? AND grocery_lists.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return err
	}
	return s.db.Model(&models.GroceryItem{}).
		Where("id = ?", item.ID).
		Update("checked", checked).Error
}

func (s *gormStore) UpsertHealthMetrics(userID uint, day time.Time, patch *models.HealthMetricsPatch) error {
	if patch == nil {
		return fmt.Errorf("nil health metrics patch")
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	var rec models.HealthMetrics
	err := s.db.Where("user_id = ? AND date = ?", userID, start).First(&rec).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		rec = models.HealthMetrics{UserID: userID, Date: start}
	}
	patch.Apply(&rec)
	return s.db.Save(&rec).Error
}

func (s *gormStore) ListHealthMetrics(userID uint) ([]models.HealthMetrics, error) {
	var recs []models.HealthMetrics
	err := s.db.
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&recs).Error
	return recs, err
}
