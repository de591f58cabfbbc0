package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aapokoiv/nutrition-tracker/metrics"
	"github.com/aapokoiv/nutrition-tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FoodService struct{ db *gorm.DB }

func NewFoodService(db *gorm.DB) *FoodService { return &FoodService{db: db} }

type IngredientAmount struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

// FoodInput creates a food or, on update, replaces its definition and
// its whole ingredient list.
type FoodInput struct {
	Name        string             `json:"name"`
	Class       string             `json:"class"`
	IsPublic    *bool              `json:"is_public"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

func (in FoodInput) validate() (FoodInput, error) {
	name, err := checkName("name", in.Name)
	if err != nil {
		return in, err
	}
	in.Name = name
	in.Class = strings.TrimSpace(in.Class)
	if utf8.RuneCountInString(in.Class) > maxNameLen {
		return in, invalid("class", "must be at most %d characters", maxNameLen)
	}
	seen := make(map[uint]bool, len(in.Ingredients))
	for _, a := range in.Ingredients {
		if seen[a.IngredientID] {
			return in, invalid("ingredients", "ingredient %d listed twice", a.IngredientID)
		}
		seen[a.IngredientID] = true
		if err := checkQuantity(a.Quantity); err != nil {
			return in, err
		}
	}
	return in, nil
}

type ingredientNutrition struct {
	Protein  float64
	Calories float64
	Quantity float64
}

// RecomputeTotals sets the cached totals of a food to the rounded sum of
// protein and calories over its ingredient links.
func (s *FoodService) RecomputeTotals(ctx context.Context, foodID uint) error {
	return recomputeTotals(s.db.WithContext(ctx), foodID)
}

func recomputeTotals(tx *gorm.DB, foodID uint) error {
	var rows []ingredientNutrition
	if err := tx.
		Table("food_ingredients AS fi").
		Select("i.protein AS protein, i.calories AS calories, fi.quantity AS quantity").
		Joins("JOIN ingredients i ON i.id = fi.ingredient_id").
		Where("fi.food_id = ?", foodID).
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("load food composition: %w", err)
	}

	var prot, cals float64
	for _, r := range rows {
		prot += r.Protein * r.Quantity
		cals += r.Calories * r.Quantity
	}

	res := tx.Model(&models.Food{}).
		Where("id = ?", foodID).
		Updates(map[string]any{
			"total_protein":  round2(prot),
			"total_calories": round2(cals),
		})
	if res.Error != nil {
		return fmt.Errorf("store food totals: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("food", foodID)
	}
	metrics.FoodTotalsRecomputed.Inc()
	return nil
}

func (s *FoodService) Create(ctx context.Context, userID uint, in FoodInput) (*models.Food, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	food := &models.Food{UserID: userID, Name: in.Name, Class: in.Class, IsPublic: true}
	if in.IsPublic != nil {
		food.IsPublic = *in.IsPublic
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwnedIngredients(tx, userID, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(food).Error; err != nil {
			return fmt.Errorf("create food: %w", err)
		}
		if err := insertLinks(tx, food.ID, in.Ingredients); err != nil {
			return err
		}
		return recomputeTotals(tx, food.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, food.ID)
}

func (s *FoodService) Update(ctx context.Context, userID, foodID uint, in FoodInput) (*models.Food, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		food, err := ownedFood(tx, userID, foodID)
		if err != nil {
			return err
		}
		if err := ensureOwnedIngredients(tx, userID, in.Ingredients); err != nil {
			return err
		}
		food.Name, food.Class = in.Name, in.Class
		if in.IsPublic != nil {
			food.IsPublic = *in.IsPublic
		}
		if err := tx.Model(food).Select("name", "class", "is_public").Updates(food).Error; err != nil {
			return fmt.Errorf("update food: %w", err)
		}
		if err := tx.Where("food_id = ?", foodID).Delete(&models.FoodIngredient{}).Error; err != nil {
			return fmt.Errorf("clear food ingredients: %w", err)
		}
		if err := insertLinks(tx, foodID, in.Ingredients); err != nil {
			return err
		}
		return recomputeTotals(tx, foodID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, foodID)
}

// SetIngredient adds an ingredient to a food or changes its quantity.
func (s *FoodService) SetIngredient(ctx context.Context, userID, foodID, ingredientID uint, qty float64) (*models.Food, error) {
	if err := checkQuantity(qty); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedFood(tx, userID, foodID); err != nil {
			return err
		}
		amounts := []IngredientAmount{{IngredientID: ingredientID, Quantity: qty}}
		if err := ensureOwnedIngredients(tx, userID, amounts); err != nil {
			return err
		}
		link := models.FoodIngredient{FoodID: foodID, IngredientID: ingredientID, Quantity: qty}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "food_id"}, {Name: "ingredient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).Omit("Ingredient").Create(&link).Error; err != nil {
			return fmt.Errorf("set food ingredient: %w", err)
		}
		return recomputeTotals(tx, foodID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, foodID)
}

func (s *FoodService) RemoveIngredient(ctx context.Context, userID, foodID, ingredientID uint) (*models.Food, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedFood(tx, userID, foodID); err != nil {
			return err
		}
		res := tx.Where("food_id = ? AND ingredient_id = ?", foodID, ingredientID).
			Delete(&models.FoodIngredient{})
		if res.Error != nil {
			return fmt.Errorf("remove food ingredient: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("food ingredient", ingredientID)
		}
		return recomputeTotals(tx, foodID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, foodID)
}

// Delete removes an owned food with its links and likes. Eaten history
// keeps its frozen values.
func (s *FoodService) Delete(ctx context.Context, userID, foodID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedFood(tx, userID, foodID); err != nil {
			return err
		}
		if err := tx.Where("food_id = ?", foodID).Delete(&models.FoodIngredient{}).Error; err != nil {
			return fmt.Errorf("delete food ingredients: %w", err)
		}
		if err := tx.Where("food_id = ?", foodID).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("delete food likes: %w", err)
		}
		if err := tx.Where("id = ? AND user_id = ?", foodID, userID).Delete(&models.Food{}).Error; err != nil {
			return fmt.Errorf("delete food: %w", err)
		}
		return nil
	})
}

func (s *FoodService) Get(ctx context.Context, userID, foodID uint) (*models.Food, error) {
	var food models.Food
	err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		Where("id = ? AND user_id = ?", foodID, userID).
		First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("food", foodID)
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return &food, nil
}

func (s *FoodService) List(ctx context.Context, userID uint, q ListQuery) ([]models.Food, error) {
	var foods []models.Food
	if err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		Where("user_id = ?", userID).
		Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	foods = FilterFoods(foods, q)
	SortFoods(foods, q)
	return foods, nil
}

type PublicFood struct {
	models.Food
	Owner string `json:"owner"`
	Liked bool   `json:"liked"`
}

type PublicFoodPage struct {
	Foods []PublicFood `json:"foods"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
}

// SearchPublic pages through public foods of all users whose name or
// class contains query. viewerID marks foods the viewer already liked.
func (s *FoodService) SearchPublic(ctx context.Context, viewerID uint, query string, page int) (*PublicFoodPage, error) {
	if page < 1 {
		page = 1
	}
	db := s.db.WithContext(ctx)

	base := db.Model(&models.Food{}).Where("is_public = ?", true)
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		base = base.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(class) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count public foods: %w", err)
	}

	var foods []models.Food
	if err := base.Session(&gorm.Session{}).
		Order("LOWER(name) ASC, id ASC").
		Limit(publicPageSize).
		Offset((page - 1) * publicPageSize).
		Find(&foods).Error; err != nil {
		return nil, fmt.Errorf("search public foods: %w", err)
	}

	out := &PublicFoodPage{
		Foods: make([]PublicFood, 0, len(foods)),
		Total: total,
		Page:  page,
		Pages: int((total + publicPageSize - 1) / publicPageSize),
	}
	if len(foods) == 0 {
		return out, nil
	}

	foodIDs := make([]uint, 0, len(foods))
	ownerIDs := make([]uint, 0, len(foods))
	for _, f := range foods {
		foodIDs = append(foodIDs, f.ID)
		ownerIDs = append(ownerIDs, f.UserID)
	}

	var owners []models.User
	if err := db.Select("id", "username").Where("id IN ?", ownerIDs).Find(&owners).Error; err != nil {
		return nil, fmt.Errorf("load food owners: %w", err)
	}
	names := make(map[uint]string, len(owners))
	for _, u := range owners {
		names[u.ID] = u.Username
	}

	var liked []uint
	if err := db.Model(&models.Like{}).
		Where("user_id = ? AND food_id IN ?", viewerID, foodIDs).
		Pluck("food_id", &liked).Error; err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	likedSet := make(map[uint]bool, len(liked))
	for _, id := range liked {
		likedSet[id] = true
	}

	for _, f := range foods {
		out.Foods = append(out.Foods, PublicFood{Food: f, Owner: names[f.UserID], Liked: likedSet[f.ID]})
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func ownedFood(tx *gorm.DB, userID, foodID uint) (*models.Food, error) {
	var food models.Food
	err := tx.Where("id = ? AND user_id = ?", foodID, userID).First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("food", foodID)
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return &food, nil
}

func ensureOwnedIngredients(tx *gorm.DB, userID uint, amounts []IngredientAmount) error {
	if len(amounts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(amounts))
	for _, a := range amounts {
		ids = append(ids, a.IngredientID)
	}
	var owned []uint
	if err := tx.Model(&models.Ingredient{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Pluck("id", &owned).Error; err != nil {
		return fmt.Errorf("check ingredients: %w", err)
	}
	have := make(map[uint]bool, len(owned))
	for _, id := range owned {
		have[id] = true
	}
	for _, id := range ids {
		if !have[id] {
			return notFound("ingredient", id)
		}
	}
	return nil
}

func insertLinks(tx *gorm.DB, foodID uint, amounts []IngredientAmount) error {
	if len(amounts) == 0 {
		return nil
	}
	links := make([]models.FoodIngredient, 0, len(amounts))
	for _, a := range amounts {
		links = append(links, models.FoodIngredient{FoodID: foodID, IngredientID: a.IngredientID, Quantity: a.Quantity})
	}
	if err := tx.Omit("Ingredient").Create(&links).Error; err != nil {
		return fmt.Errorf("add food ingredients: %w", err)
	}
	return nil
}
