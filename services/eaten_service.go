package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aapokoiv/nutrition-tracker/metrics"
	"github.com/aapokoiv/nutrition-tracker/models"

	"gorm.io/gorm"
)

type EatenService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewEatenService(db *gorm.DB, loc *time.Location) *EatenService {
	return &EatenService{db: db, loc: loc, now: time.Now}
}

// WithClock replaces the time source; used by tests and the seeder.
func (s *EatenService) WithClock(now func() time.Time) *EatenService {
	cp := *s
	cp.now = now
	return &cp
}

// EatenEntry is an eaten event with the current name of its food. FoodName
// is empty when the food has since been deleted.
type EatenEntry struct {
	models.Eaten
	FoodName string `json:"food_name"`
}

// Record stores a frozen snapshot of the food's current cached totals
// multiplied by qty. The food must be owned by the user or public.
func (s *EatenService) Record(ctx context.Context, userID, foodID uint, qty float64) (*models.Eaten, error) {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return nil, invalid("quantity", "must be greater than 0")
	}

	var food models.Food
	err := s.db.WithContext(ctx).
		Select("id", "total_protein", "total_calories").
		Where("id = ? AND (user_id = ? OR is_public = ?)", foodID, userID, true).
		First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("food", foodID)
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}

	ev := &models.Eaten{
		UserID:        userID,
		FoodID:        foodID,
		Time:          s.now().UTC(),
		Quantity:      qty,
		EatenProtein:  food.TotalProtein * qty,
		EatenCalories: food.TotalCalories * qty,
	}
	if err := s.db.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, fmt.Errorf("record eaten: %w", err)
	}
	metrics.EatenRecorded.Inc()
	return ev, nil
}

// Delete removes the event only when it belongs to userID. It reports
// whether a row was removed; other users' events are left untouched
// without an error so their existence is not revealed.
func (s *EatenService) Delete(ctx context.Context, userID, eatenID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", eatenID, userID).
		Delete(&models.Eaten{})
	if res.Error != nil {
		return false, fmt.Errorf("delete eaten: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *EatenService) ListRecent(ctx context.Context, userID uint, limit int) ([]EatenEntry, error) {
	if limit <= 0 {
		limit = recentEatenLimit
	}
	var rows []EatenEntry
	err := s.entries(ctx).
		Where("eaten.user_id = ?", userID).
		Order("eaten.time DESC, eaten.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list eaten: %w", err)
	}
	return rows, nil
}

// ListForDay returns the events of the calendar day containing day.
func (s *EatenService) ListForDay(ctx context.Context, userID uint, day time.Time) ([]EatenEntry, error) {
	from := dayStart(day, s.loc)
	to := from.AddDate(0, 0, 1)
	var rows []EatenEntry
	err := s.entries(ctx).
		Where("eaten.user_id = ? AND eaten.time >= ? AND eaten.time < ?", userID, from.UTC(), to.UTC()).
		Order("eaten.time DESC, eaten.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list eaten for day: %w", err)
	}
	return rows, nil
}

func (s *EatenService) entries(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("eaten").
		Select("eaten.*, COALESCE(foods.name, '') AS food_name").
		Joins("LEFT JOIN foods ON foods.id = eaten.food_id")
}
