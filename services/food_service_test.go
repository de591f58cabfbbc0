package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aapokoiv/nutrition-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFoodTotals(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "alice")
	egg := createIngredient(t, db, u.ID, "Egg", 10, 100)

	f := createFood(t, db, u.ID, "Omelette", true, IngredientAmount{IngredientID: egg.ID, Quantity: 2.5})
	assert.Equal(t, 25.0, f.TotalProtein)
	assert.Equal(t, 250.0, f.TotalCalories)
	require.Len(t, f.Ingredients, 1)
	assert.Equal(t, "Egg", f.Ingredients[0].Ingredient.Name)
}

func TestFoodTotals_NoIngredients(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "alice")

	f := createFood(t, db, u.ID, "Water", true)
	assert.Zero(t, f.TotalProtein)
	assert.Zero(t, f.TotalCalories)
}

func TestFoodTotals_Rounding(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "alice")
	a := createIngredient(t, db, u.ID, "A", 1.111, 3.333)
	b := createIngredient(t, db, u.ID, "B", 2.222, 0)

	f := createFood(t, db, u.ID, "Mix", false,
		IngredientAmount{IngredientID: a.ID, Quantity: 1},
		IngredientAmount{IngredientID: b.ID, Quantity: 1},
	)
	assert.Equal(t, 3.33, f.TotalProtein)
	assert.Equal(t, 3.33, f.TotalCalories)
	assert.False(t, f.IsPublic)
}

func TestSetAndRemoveIngredient(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFoodService(db)
	u := createUser(t, db, "alice")
	oat := createIngredient(t, db, u.ID, "Oats", 13, 380)
	milk := createIngredient(t, db, u.ID, "Milk", 3.4, 64)
	f := createFood(t, db, u.ID, "Porridge", true, IngredientAmount{IngredientID: oat.ID, Quantity: 1})

	f, err := svc.SetIngredient(ctx, u.ID, f.ID, milk.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 19.8, f.TotalProtein)
	assert.Equal(t, 508.0, f.TotalCalories)

	// Setting an existing link changes its quantity rather than adding a row.
	f, err = svc.SetIngredient(ctx, u.ID, f.ID, milk.ID, 1)
	require.NoError(t, err)
	assert.Len(t, f.Ingredients, 2)
	assert.Equal(t, 16.4, f.TotalProtein)

	f, err = svc.RemoveIngredient(ctx, u.ID, f.ID, oat.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.4, f.TotalProtein)
	assert.Equal(t, 64.0, f.TotalCalories)

	_, err = svc.RemoveIngredient(ctx, u.ID, f.ID, oat.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetIngredient(ctx, u.ID, f.ID, milk.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFoodUpdateReplacesComposition(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFoodService(db)
	u := createUser(t, db, "alice")
	a := createIngredient(t, db, u.ID, "A", 10, 10)
	b := createIngredient(t, db, u.ID, "B", 1, 1)
	f := createFood(t, db, u.ID, "Thing", true, IngredientAmount{IngredientID: a.ID, Quantity: 1})

	private := false
	f, err := svc.Update(ctx, u.ID, f.ID, FoodInput{
		Name:        "Other thing",
		Class:       "Drink",
		IsPublic:    &private,
		Ingredients: []IngredientAmount{{IngredientID: b.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Other thing", f.Name)
	assert.False(t, f.IsPublic)
	require.Len(t, f.Ingredients, 1)
	assert.Equal(t, b.ID, f.Ingredients[0].IngredientID)
	assert.Equal(t, 3.0, f.TotalProtein)
}

func TestFoodValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFoodService(db)
	u := createUser(t, db, "alice")
	other := createUser(t, db, "bob")
	a := createIngredient(t, db, u.ID, "A", 1, 1)
	foreign := createIngredient(t, db, other.ID, "B", 1, 1)

	_, err := svc.Create(ctx, u.ID, FoodInput{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, u.ID, FoodInput{Name: "Dup", Ingredients: []IngredientAmount{
		{IngredientID: a.ID, Quantity: 1}, {IngredientID: a.ID, Quantity: 2},
	}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, u.ID, FoodInput{Name: "Neg", Ingredients: []IngredientAmount{{IngredientID: a.ID, Quantity: -1}}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, u.ID, FoodInput{Name: "Theirs", Ingredients: []IngredientAmount{{IngredientID: foreign.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Food{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFoodOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFoodService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	f := createFood(t, db, alice.ID, "Secret", false)

	_, err := svc.Get(ctx, bob.ID, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, f.ID), ErrNotFound)
	_, err = svc.Get(ctx, alice.ID, f.ID)
	assert.NoError(t, err)
}

func TestIngredientDeleteLeavesTotalsUntilRecompute(t *testing.T) {
	db := setupTestDB(t)
	foods := NewFoodService(db)
	ings := NewIngredientService(db)
	u := createUser(t, db, "alice")
	a := createIngredient(t, db, u.ID, "A", 10, 100)
	b := createIngredient(t, db, u.ID, "B", 1, 10)
	f := createFood(t, db, u.ID, "AB", true,
		IngredientAmount{IngredientID: a.ID, Quantity: 1},
		IngredientAmount{IngredientID: b.ID, Quantity: 1},
	)
	require.Equal(t, 11.0, f.TotalProtein)

	affected, err := ings.Delete(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.ID}, affected)

	stale, err := foods.Get(ctx, u.ID, f.ID)
	require.NoError(t, err)
	assert.Len(t, stale.Ingredients, 1)
	assert.Equal(t, 11.0, stale.TotalProtein)

	require.NoError(t, foods.RecomputeTotals(ctx, f.ID))
	fresh, err := foods.Get(ctx, u.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, fresh.TotalProtein)
	assert.Equal(t, 10.0, fresh.TotalCalories)
}

func TestIngredientDeleteRollsBackLinks(t *testing.T) {
	db := setupTestDB(t)
	ings := NewIngredientService(db)
	u := createUser(t, db, "alice")
	a := createIngredient(t, db, u.ID, "A", 10, 100)
	createFood(t, db, u.ID, "A only", false, IngredientAmount{IngredientID: a.ID, Quantity: 1})

	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("fail_ingredient_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "ingredients" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	_, err := ings.Delete(ctx, u.ID, a.ID)
	require.Error(t, err)

	var links int64
	require.NoError(t, db.Model(&models.FoodIngredient{}).Where("ingredient_id = ?", a.ID).Count(&links).Error)
	assert.EqualValues(t, 1, links)
	_, err = ings.Get(ctx, u.ID, a.ID)
	assert.NoError(t, err)
}

func TestIngredientUpdateReportsFoods(t *testing.T) {
	db := setupTestDB(t)
	foods := NewFoodService(db)
	ings := NewIngredientService(db)
	u := createUser(t, db, "alice")
	a := createIngredient(t, db, u.ID, "A", 10, 100)
	f := createFood(t, db, u.ID, "A twice", true, IngredientAmount{IngredientID: a.ID, Quantity: 2})

	_, affected, err := ings.Update(ctx, u.ID, a.ID, IngredientInput{Name: "A", Protein: 20, Calories: 100})
	require.NoError(t, err)
	require.Equal(t, []uint{f.ID}, affected)
	require.NoError(t, foods.RecomputeTotals(ctx, f.ID))

	got, err := foods.Get(ctx, u.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got.TotalProtein)
}

func TestRecomputeTotals_MissingFood(t *testing.T) {
	db := setupTestDB(t)
	assert.ErrorIs(t, NewFoodService(db).RecomputeTotals(ctx, 999), ErrNotFound)
}

func TestDeleteFoodKeepsEatenHistory(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "alice")
	a := createIngredient(t, db, u.ID, "A", 10, 100)
	f := createFood(t, db, u.ID, "A", true, IngredientAmount{IngredientID: a.ID, Quantity: 1})

	eaten := NewEatenService(db, time.UTC)
	_, err := eaten.Record(ctx, u.ID, f.ID, 1)
	require.NoError(t, err)
	require.NoError(t, NewFoodService(db).Delete(ctx, u.ID, f.ID))

	list, err := eaten.ListRecent(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 10.0, list[0].EatenProtein)
	assert.Empty(t, list[0].FoodName)
}

func TestSearchPublic(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFoodService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	for i := 0; i < 25; i++ {
		createFood(t, db, alice.ID, fmt.Sprintf("Oat bar %02d", i), true)
	}
	createFood(t, db, alice.ID, "Oat secret", false)
	createFood(t, db, bob.ID, "100%_juice", true)

	page, err := svc.SearchPublic(ctx, bob.ID, "OAT", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Foods, 20)
	assert.Equal(t, "Oat bar 00", page.Foods[0].Name)
	assert.Equal(t, "alice", page.Foods[0].Owner)

	page, err = svc.SearchPublic(ctx, bob.ID, "oat", 2)
	require.NoError(t, err)
	assert.Len(t, page.Foods, 5)

	// Wildcards in the query match literally.
	page, err = svc.SearchPublic(ctx, alice.ID, "%_", 1)
	require.NoError(t, err)
	require.Len(t, page.Foods, 1)
	assert.Equal(t, "100%_juice", page.Foods[0].Name)

	page, err = svc.SearchPublic(ctx, alice.ID, "snack", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 26, page.Total, "class matches too")
}

func TestSearchPublicMarksLiked(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	f := createFood(t, db, alice.ID, "Shared", true)
	_, err := NewLikeService(db).EnsureLiked(ctx, bob.ID, f.ID)
	require.NoError(t, err)

	page, err := NewFoodService(db).SearchPublic(ctx, bob.ID, "", 1)
	require.NoError(t, err)
	require.Len(t, page.Foods, 1)
	assert.True(t, page.Foods[0].Liked)
}
