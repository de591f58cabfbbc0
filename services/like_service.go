package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aapokoiv/nutrition-tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeService struct{ db *gorm.DB }

func NewLikeService(db *gorm.DB) *LikeService { return &LikeService{db: db} }

// EnsureLiked likes a public food. A repeated like is a no-op and reports
// created=false rather than an error.
func (s *LikeService) EnsureLiked(ctx context.Context, userID, foodID uint) (bool, error) {
	db := s.db.WithContext(ctx)

	var food models.Food
	err := db.Select("id").Where("id = ? AND is_public = ?", foodID, true).First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, notFound("food", foodID)
	}
	if err != nil {
		return false, fmt.Errorf("get food: %w", err)
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, FoodID: foodID})
	if res.Error != nil {
		return false, fmt.Errorf("like food: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Unlike is idempotent and reports whether a like was removed.
func (s *LikeService) Unlike(ctx context.Context, userID, foodID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND food_id = ?", userID, foodID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("unlike food: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListLiked returns the liked foods that are still public.
func (s *LikeService) ListLiked(ctx context.Context, userID uint) ([]models.Food, error) {
	var foods []models.Food
	if err := s.db.WithContext(ctx).
		Joins("JOIN likes ON likes.food_id = foods.id").
		Where("likes.user_id = ? AND foods.is_public = ?", userID, true).
		Order("likes.created_at DESC").
		Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("list liked foods: %w", err)
	}
	return foods, nil
}
