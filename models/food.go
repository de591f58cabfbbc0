package models

import "time"

// Ingredient is an atomic nutrition record; Protein and Calories are per unit.
type Ingredient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Protein   float64   `gorm:"not null;default:0" json:"protein"`
	Calories  float64   `gorm:"not null;default:0" json:"calories"`
	CreatedAt time.Time `json:"created_at"`
}

// Food is a named composition of ingredients. TotalProtein and
// TotalCalories are cached and must be recomputed when Ingredients change.
type Food struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Class         string    `gorm:"size:100" json:"class"`
	IsPublic      bool      `gorm:"index;not null" json:"is_public"`
	TotalProtein  float64   `gorm:"not null;default:0" json:"total_protein"`
	TotalCalories float64   `gorm:"not null;default:0" json:"total_calories"`
	CreatedAt     time.Time `json:"created_at"`

	Ingredients []FoodIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
}

// FoodIngredient links a food to an ingredient with a quantity multiplier.
type FoodIngredient struct {
	FoodID       uint    `gorm:"primaryKey" json:"food_id"`
	IngredientID uint    `gorm:"primaryKey;index" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`

	Ingredient Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
}
