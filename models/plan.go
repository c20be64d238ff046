package models

import "gorm.io/gorm"

// MealPlan is a named collection of meals scheduled into day×slot cells.
type MealPlan struct {
	gorm.Model
	UserID uint `gorm:"index"`
	Name   string
	Items  []MealPlanItem
}

// MealPlanItem references a SavedMeal and pins it to one (day, slot)
// cell. Removing an item never touches the referenced SavedMeal.
type MealPlanItem struct {
	gorm.Model
	MealPlanID  uint `gorm:"index"`
	SavedMealID uint
	SavedMeal   SavedMeal
	Day         string // "monday".."sunday"
	Slot        string // "breakfast"|"lunch"|"dinner"|"snack"
}
