package models

import "gorm.io/gorm"

// GroceryList is a shopping list. At most one list per user is active
// at a time; activating a list deactivates the others.
type GroceryList struct {
	gorm.Model
	UserID   uint `gorm:"index"`
	Name     string
	IsActive bool
	Items    []GroceryItem
}

type GroceryItem struct {
	gorm.Model
	GroceryListID uint `gorm:"index"`
	Name          string
	Checked       bool
}
