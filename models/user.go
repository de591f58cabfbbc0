package models

import "time"

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:30;uniqueIndex;not null" json:"username"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	ProfilePicture []byte    `json:"-"`
	ProteinTarget  int       `gorm:"not null;default:100" json:"protein_target"`
	CalorieTarget  int       `gorm:"not null;default:2000" json:"calorie_target"`
	Goals          string    `gorm:"size:1000" json:"goals"`
	CreatedAt      time.Time `json:"created_at"`
}
