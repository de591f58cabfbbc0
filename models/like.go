package models

import "time"

// Like is a user's favorite mark on a public food; (UserID, FoodID) is unique.
type Like struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	FoodID    uint      `gorm:"primaryKey;index" json:"food_id"`
	CreatedAt time.Time `json:"created_at"`
}
