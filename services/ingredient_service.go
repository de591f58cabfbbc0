package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aapokoiv/nutrition-tracker/models"

	"gorm.io/gorm"
)

type IngredientService struct{ db *gorm.DB }

func NewIngredientService(db *gorm.DB) *IngredientService { return &IngredientService{db: db} }

type IngredientInput struct {
	Name     string  `json:"name"`
	Protein  float64 `json:"protein"`
	Calories float64 `json:"calories"`
}

func (in IngredientInput) validate() (IngredientInput, error) {
	name, err := checkName("name", in.Name)
	if err != nil {
		return in, err
	}
	in.Name = name
	if err := checkRange("protein", in.Protein, 0, maxProtein); err != nil {
		return in, err
	}
	if err := checkRange("calories", in.Calories, 0, maxCalories); err != nil {
		return in, err
	}
	return in, nil
}

func (s *IngredientService) List(ctx context.Context, userID uint, q ListQuery) ([]models.Ingredient, error) {
	var items []models.Ingredient
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	items = FilterIngredients(items, q)
	SortIngredients(items, q)
	return items, nil
}

func (s *IngredientService) Get(ctx context.Context, userID, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&ing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("ingredient", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return &ing, nil
}

func (s *IngredientService) Create(ctx context.Context, userID uint, in IngredientInput) (*models.Ingredient, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	ing := &models.Ingredient{UserID: userID, Name: in.Name, Protein: in.Protein, Calories: in.Calories}
	if err := s.db.WithContext(ctx).Create(ing).Error; err != nil {
		return nil, fmt.Errorf("create ingredient: %w", err)
	}
	return ing, nil
}

// Update changes an owned ingredient and returns the ids of foods using it.
// Their cached totals are stale until FoodService.RecomputeTotals runs.
func (s *IngredientService) Update(ctx context.Context, userID, id uint, in IngredientInput) (*models.Ingredient, []uint, error) {
	in, err := in.validate()
	if err != nil {
		return nil, nil, err
	}
	ing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	ing.Name, ing.Protein, ing.Calories = in.Name, in.Protein, in.Calories
	if err := s.db.WithContext(ctx).Save(ing).Error; err != nil {
		return nil, nil, fmt.Errorf("update ingredient: %w", err)
	}
	foodIDs, err := s.foodsUsing(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return ing, foodIDs, nil
}

// Delete removes an owned ingredient together with every FoodIngredient
// link that references it. The returned foods keep stale totals until
// FoodService.RecomputeTotals is called for each of them.
func (s *IngredientService) Delete(ctx context.Context, userID, id uint) ([]uint, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	foodIDs, err := s.foodsUsing(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.FoodIngredient{}).Error; err != nil {
			return fmt.Errorf("delete ingredient links: %w", err)
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Ingredient{}).Error; err != nil {
			return fmt.Errorf("delete ingredient: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return foodIDs, nil
}

func (s *IngredientService) foodsUsing(ctx context.Context, ingredientID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).
		Model(&models.FoodIngredient{}).
		Where("ingredient_id = ?", ingredientID).
		Distinct("food_id").
		Pluck("food_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("find foods using ingredient: %w", err)
	}
	return ids, nil
}
