package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aapokoiv/nutrition-tracker/config"
	"github.com/aapokoiv/nutrition-tracker/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ctx = context.Background()

// setupTestDB opens a private in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "x", ProteinTarget: 100, CalorieTarget: 2000}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createIngredient(t *testing.T, db *gorm.DB, userID uint, name string, protein, calories float64) *models.Ingredient {
	t.Helper()
	ing, err := NewIngredientService(db).Create(ctx, userID, IngredientInput{Name: name, Protein: protein, Calories: calories})
	require.NoError(t, err)
	return ing
}

func createFood(t *testing.T, db *gorm.DB, userID uint, name string, public bool, amounts ...IngredientAmount) *models.Food {
	t.Helper()
	f, err := NewFoodService(db).Create(ctx, userID, FoodInput{Name: name, Class: "Snack", IsPublic: &public, Ingredients: amounts})
	require.NoError(t, err)
	return f
}

// fixedClock returns a clock stuck at the given UTC wall time.
func fixedClock(y int, m time.Month, d, hh, mm int) func() time.Time {
	at := time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	return func() time.Time { return at }
}
