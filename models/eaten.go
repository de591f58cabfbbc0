package models

import "time"

// Eaten freezes the nutrition of a food at the moment it was eaten.
// FoodID carries no foreign key so history survives food deletion.
type Eaten struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index:idx_eaten_user_time;not null" json:"user_id"`
	FoodID        uint      `gorm:"index;not null" json:"food_id"`
	Time          time.Time `gorm:"index:idx_eaten_user_time;not null" json:"time"`
	Quantity      float64   `gorm:"not null" json:"quantity"`
	EatenProtein  float64   `gorm:"not null" json:"eaten_protein"`
	EatenCalories float64   `gorm:"not null" json:"eaten_calories"`
}

func (Eaten) TableName() string { return "eaten" }
