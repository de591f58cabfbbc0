package services

import (
	"testing"

	"github.com/aapokoiv/nutrition-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingredientNames(items []models.Ingredient) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestSortIngredients(t *testing.T) {
	items := []models.Ingredient{
		{Name: "banana", Protein: 1, Calories: 89},
		{Name: "Apple", Protein: 0.3, Calories: 52},
		{Name: "chicken", Protein: 31, Calories: 165},
	}

	SortIngredients(items, ListQuery{})
	assert.Equal(t, []string{"Apple", "banana", "chicken"}, ingredientNames(items))

	SortIngredients(items, ListQuery{Sort: "protein", Dir: "desc"})
	assert.Equal(t, []string{"chicken", "banana", "Apple"}, ingredientNames(items))

	// Unknown fields fall back to name.
	SortIngredients(items, ListQuery{Sort: "password_hash"})
	assert.Equal(t, []string{"Apple", "banana", "chicken"}, ingredientNames(items))
}

func TestFilterIngredients(t *testing.T) {
	items := []models.Ingredient{{Name: "Egg white"}, {Name: "Oats"}, {Name: "Whole EGG"}}
	got := FilterIngredients(items, ListQuery{Search: " egg "})
	assert.Equal(t, []string{"Egg white", "Whole EGG"}, ingredientNames(got))
	assert.Len(t, FilterIngredients(items, ListQuery{}), 3)
}

func TestFoodListSearchesIngredientNames(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "alice")
	oats := createIngredient(t, db, u.ID, "Rolled oats", 13, 380)
	createFood(t, db, u.ID, "Porridge", false, IngredientAmount{IngredientID: oats.ID, Quantity: 1})
	createFood(t, db, u.ID, "Coffee", false)

	foods, err := NewFoodService(db).List(ctx, u.ID, ListQuery{Search: "OATS"})
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Porridge", foods[0].Name)

	foods, err = NewFoodService(db).List(ctx, u.ID, ListQuery{Sort: "total_calories", Dir: "desc"})
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "Porridge", foods[0].Name)
}

func TestIngredientListIsPerUser(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	createIngredient(t, db, alice.ID, "Egg", 13, 155)
	createIngredient(t, db, bob.ID, "Tofu", 8, 76)

	list, err := NewIngredientService(db).List(ctx, alice.ID, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Egg"}, ingredientNames(list))
}

func TestIngredientValidation(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "alice")
	svc := NewIngredientService(db)

	for _, in := range []IngredientInput{
		{Name: "", Protein: 1, Calories: 1},
		{Name: "x", Protein: -1, Calories: 1},
		{Name: "x", Protein: 10001, Calories: 1},
		{Name: "x", Protein: 1, Calories: 1000001},
	} {
		_, err := svc.Create(ctx, u.ID, in)
		assert.ErrorIs(t, err, ErrValidation, "%+v", in)
	}
}
