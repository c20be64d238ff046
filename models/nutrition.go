package models

import (
	"gorm.io/gorm"
)

// Ingredient is the in-memory/wire form of one food component of a meal.
// It carries no persisted identity; see LogIngredient / SavedIngredient
// for the stored snapshots.
type Ingredient struct {
	Name        string  `json:"name"`
	WeightGrams float64 `json:"weight_grams"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	// optional micronutrients
	Sodium float64 `json:"sodium,omitempty"`
	Sugar  float64 `json:"sugar,omitempty"`
	Fiber  float64 `json:"fiber,omitempty"`
}

// NutritionInfo is the transient meal aggregate being captured/edited
// before any commit. Total* fields always equal the sum over Ingredients.
type NutritionInfo struct {
	MealName      string       `json:"meal_name"`
	TotalCalories float64      `json:"total_calories"`
	TotalProtein  float64      `json:"total_protein"`
	TotalCarbs    float64      `json:"total_carbs"`
	TotalFat      float64      `json:"total_fat"`
	Ingredients   []Ingredient `json:"ingredients"`
	ImageURL      string       `json:"image_url,omitempty"`
	RecipeText    string       `json:"recipe,omitempty"`
}

// Recipe is what pantry-photo analysis returns: a suggested dish
// buildable from the detected items.
type Recipe struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions,omitempty"`
}

// MealLogEntry is one row of the dated history ledger. CreatedAt comes
// from gorm at insert time and is immutable thereafter.
type MealLogEntry struct {
	gorm.Model
	UserID        uint `gorm:"index"`
	MealName      string
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
	ImageURL      string
	Items         []LogIngredient
}

type LogIngredient struct {
	gorm.Model
	MealLogEntryID uint `gorm:"index"`
	Name           string
	WeightGrams    float64
	Calories       float64
	Protein        float64
	Carbs          float64
	Fat            float64
	Sodium         float64
	Sugar          float64
	Fiber          float64
}

// SavedMeal is a NutritionInfo persisted to the reusable library.
// Duplicates are allowed by design; "save" always inserts.
type SavedMeal struct {
	gorm.Model
	UserID        uint `gorm:"index"`
	MealName      string
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
	ImageURL      string
	Items         []SavedIngredient
}

type SavedIngredient struct {
	gorm.Model
	SavedMealID uint `gorm:"index"`
	Name        string
	WeightGrams float64
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	Sodium      float64
	Sugar       float64
	Fiber       float64
}

// Info rebuilds the in-memory aggregate from a stored log entry.
func (m *MealLogEntry) Info() NutritionInfo {
	info := NutritionInfo{
		MealName:      m.MealName,
		TotalCalories: m.TotalCalories,
		TotalProtein:  m.TotalProtein,
		TotalCarbs:    m.TotalCarbs,
		TotalFat:      m.TotalFat,
		ImageURL:      m.ImageURL,
	}
	for _, it := range m.Items {
		info.Ingredients = append(info.Ingredients, Ingredient{
			Name:        it.Name,
			WeightGrams: it.WeightGrams,
			Calories:    it.Calories,
			Protein:     it.Protein,
			Carbs:       it.Carbs,
			Fat:         it.Fat,
			Sodium:      it.Sodium,
			Sugar:       it.Sugar,
			Fiber:       it.Fiber,
		})
	}
	return info
}

// Info rebuilds the in-memory aggregate from a library entry.
func (m *SavedMeal) Info() NutritionInfo {
	info := NutritionInfo{
		MealName:      m.MealName,
		TotalCalories: m.TotalCalories,
		TotalProtein:  m.TotalProtein,
		TotalCarbs:    m.TotalCarbs,
		TotalFat:      m.TotalFat,
		ImageURL:      m.ImageURL,
	}
	for _, it := range m.Items {
		info.Ingredients = append(info.Ingredients, Ingredient{
			Name:        it.Name,
			WeightGrams: it.WeightGrams,
			Calories:    it.Calories,
			Protein:     it.Protein,
			Carbs:       it.Carbs,
			Fat:         it.Fat,
			Sodium:      it.Sodium,
			Sugar:       it.Sugar,
			Fiber:       it.Fiber,
		})
	}
	return info
}

// NewLogEntry snapshots an in-memory aggregate into a history row.
func NewLogEntry(userID uint, info NutritionInfo) *MealLogEntry {
	e := &MealLogEntry{
		UserID:        userID,
		MealName:      info.MealName,
		TotalCalories: info.TotalCalories,
		TotalProtein:  info.TotalProtein,
		TotalCarbs:    info.TotalCarbs,
		TotalFat:      info.TotalFat,
		ImageURL:      info.ImageURL,
	}
	for _, in := range info.Ingredients {
		e.Items = append(e.Items, LogIngredient{
			Name:        in.Name,
			WeightGrams: in.WeightGrams,
			Calories:    in.Calories,
			Protein:     in.Protein,
			Carbs:       in.Carbs,
			Fat:         in.Fat,
			Sodium:      in.Sodium,
			Sugar:       in.Sugar,
			Fiber:       in.Fiber,
		})
	}
	return e
}

// NewSavedMeal snapshots an in-memory aggregate into a library row.
func NewSavedMeal(userID uint, info NutritionInfo) *SavedMeal {
	m := &SavedMeal{
		UserID:        userID,
		MealName:      info.MealName,
		TotalCalories: info.TotalCalories,
		TotalProtein:  info.TotalProtein,
		TotalCarbs:    info.TotalCarbs,
		TotalFat:      info.TotalFat,
		ImageURL:      info.ImageURL,
	}
	for _, in := range info.Ingredients {
		m.Items = append(m.Items, SavedIngredient{
			Name:        in.Name,
			WeightGrams: in.WeightGrams,
			Calories:    in.Calories,
			Protein:     in.Protein,
			Carbs:       in.Carbs,
			Fat:         in.Fat,
			Sodium:      in.Sodium,
			Sugar:       in.Sugar,
			Fiber:       in.Fiber,
		})
	}
	return m
}
