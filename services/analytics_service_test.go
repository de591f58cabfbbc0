package services

import (
	"testing"
	"time"

	"github.com/aapokoiv/nutrition-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFillMissingDays(t *testing.T) {
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	rows := []DayStat{
		{Day: "2024-05-08", TotalProtein: 50, TotalCalories: 900, Entries: 2},
		{Day: "2024-04-01", TotalProtein: 1, Entries: 1}, // outside the window
	}

	out := FillMissingDays(rows, 4, today)
	require.Len(t, out, 4)
	assert.Equal(t, []string{"2024-05-07", "2024-05-08", "2024-05-09", "2024-05-10"},
		[]string{out[0].Day, out[1].Day, out[2].Day, out[3].Day})
	assert.Equal(t, rows[0], out[1])
	assert.Equal(t, DayStat{Day: "2024-05-10"}, out[3])

	assert.Empty(t, FillMissingDays(rows, 0, today))
}

func TestFillMissingDays_CapsOversizedWindow(t *testing.T) {
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	out := FillMissingDays(nil, 1<<62, today)
	require.Len(t, out, maxWindowDays)
	assert.Equal(t, "2024-05-10", out[len(out)-1].Day)
}

func TestFillMissingDays_AcrossDST(t *testing.T) {
	hel, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)
	today := time.Date(2024, 3, 31, 0, 0, 0, 0, hel)

	out := FillMissingDays(nil, 3, today)
	require.Len(t, out, 3)
	assert.Equal(t, "2024-03-29", out[0].Day)
	assert.Equal(t, "2024-03-30", out[1].Day)
	assert.Equal(t, "2024-03-31", out[2].Day)
}

func TestSummarizeWindow(t *testing.T) {
	rows := []DayStat{
		{Day: "2024-05-08", TotalProtein: 200, TotalCalories: 2500, Entries: 3},
		{Day: "2024-05-09"}, // gap filled, ignored
		{Day: "2024-05-10", TotalProtein: 100, TotalCalories: 1500, Entries: 1},
	}
	got := SummarizeWindow(rows, 150)
	assert.Equal(t, WindowSummary{AvgCalories: 2000, AvgProtein: 150, HitDays: 1, TotalDays: 2}, got)

	assert.Equal(t, WindowSummary{}, SummarizeWindow(nil, 150))
	assert.Equal(t, WindowSummary{}, SummarizeWindow([]DayStat{{Day: "2024-05-09"}}, 150))
}

func TestSummarizeWindow_TargetIsInclusive(t *testing.T) {
	got := SummarizeWindow([]DayStat{{Day: "d", TotalProtein: 150, Entries: 1}}, 150)
	assert.Equal(t, 1, got.HitDays)
}

type analyticsFixture struct {
	db        *gorm.DB
	user      *models.User
	food      *models.Food
	analytics *AnalyticsService
	eaten     *EatenService
}

// newAnalyticsFixture has "today" at 2024-05-10 12:00 UTC and one food
// worth 10g protein and 100 kcal per unit.
func newAnalyticsFixture(t *testing.T) analyticsFixture {
	db := setupTestDB(t)
	u := createUser(t, db, "alice")
	ing := createIngredient(t, db, u.ID, "Unit", 10, 100)
	f := createFood(t, db, u.ID, "Unit food", false, IngredientAmount{IngredientID: ing.ID, Quantity: 1})
	return analyticsFixture{
		db:        db,
		user:      u,
		food:      f,
		analytics: NewAnalyticsService(db, time.UTC, discardLogger()).WithClock(fixedClock(2024, 5, 10, 12, 0)),
		eaten:     NewEatenService(db, time.UTC),
	}
}

func (fx analyticsFixture) eat(t *testing.T, day, hour int, qty float64) {
	t.Helper()
	_, err := fx.eaten.WithClock(fixedClock(2024, 5, day, hour, 0)).Record(ctx, fx.user.ID, fx.food.ID, qty)
	require.NoError(t, err)
}

func TestDailyIntake(t *testing.T) {
	fx := newAnalyticsFixture(t)
	fx.eat(t, 10, 8, 1)
	fx.eat(t, 10, 19, 2.5)
	fx.eat(t, 9, 23, 1)
	fx.eat(t, 11, 0, 1)

	got, err := fx.analytics.DailyIntake(ctx, fx.user.ID, fx.analytics.Today())
	require.NoError(t, err)
	assert.Equal(t, Intake{TotalProtein: 35, TotalCalories: 350}, got)

	empty, err := fx.analytics.DailyIntake(ctx, fx.user.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, Intake{}, empty)
}

func TestNutritionStatsAndSummary(t *testing.T) {
	fx := newAnalyticsFixture(t)
	require.NoError(t, fx.db.Model(fx.user).Update("protein_target", 150).Error)

	fx.eat(t, 10, 8, 20) // 200g
	fx.eat(t, 8, 8, 5)   // 50g
	fx.eat(t, 8, 20, 5)  // 50g
	fx.eat(t, 1, 8, 30)  // outside a 7 day window

	rows, err := fx.analytics.NutritionStats(ctx, fx.user.ID, 7)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, DayStat{Day: "2024-05-08", TotalProtein: 100, TotalCalories: 1000, Entries: 2}, rows[0])
	assert.Equal(t, "2024-05-10", rows[1].Day)

	sum, err := fx.analytics.WindowSummary(ctx, fx.user.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, WindowSummary{AvgCalories: 1500, AvgProtein: 150, HitDays: 1, TotalDays: 2}, sum)

	dense, err := fx.analytics.DenseStats(ctx, fx.user.ID, 7)
	require.NoError(t, err)
	require.Len(t, dense, 7)
	assert.Equal(t, "2024-05-04", dense[0].Day)
	assert.Equal(t, 200.0, dense[6].TotalProtein)

	_, err = fx.analytics.NutritionStats(ctx, fx.user.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNutritionStats_WindowBounds(t *testing.T) {
	fx := newAnalyticsFixture(t)

	_, err := fx.analytics.NutritionStats(ctx, fx.user.ID, maxWindowDays)
	require.NoError(t, err)
	for _, days := range []int{maxWindowDays + 1, 1 << 62} {
		_, err = fx.analytics.NutritionStats(ctx, fx.user.ID, days)
		assert.ErrorIs(t, err, ErrValidation, days)
		_, err = fx.analytics.DenseStats(ctx, fx.user.ID, days)
		assert.ErrorIs(t, err, ErrValidation, days)
	}
}

func TestNutritionStats_IgnoresFutureEvents(t *testing.T) {
	fx := newAnalyticsFixture(t)
	fx.eat(t, 10, 8, 5)
	fx.eat(t, 11, 8, 20) // tomorrow

	rows, err := fx.analytics.NutritionStats(ctx, fx.user.ID, 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, DayStat{Day: "2024-05-10", TotalProtein: 50, TotalCalories: 500, Entries: 1}, rows[0])

	sum, err := fx.analytics.WindowSummary(ctx, fx.user.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, WindowSummary{AvgCalories: 500, AvgProtein: 50, TotalDays: 1}, sum)
}

func TestWindowSummary_NoEvents(t *testing.T) {
	fx := newAnalyticsFixture(t)
	sum, err := fx.analytics.WindowSummary(ctx, fx.user.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, WindowSummary{}, sum)
}

func TestDashboardAndProfile(t *testing.T) {
	fx := newAnalyticsFixture(t)
	fx.eat(t, 10, 8, 2)
	fx.eat(t, 9, 8, 1)

	dash, err := fx.analytics.Dashboard(ctx, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", dash.Username)
	assert.Equal(t, Intake{TotalProtein: 20, TotalCalories: 200}, dash.Intake)
	require.Len(t, dash.EatenToday, 1)
	assert.Equal(t, "Unit food", dash.EatenToday[0].FoodName)

	prof, err := fx.analytics.Profile(ctx, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, prof.Summary30.TotalDays)
	assert.Len(t, prof.Summary7, 7)

	_, err = fx.analytics.Dashboard(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardDegradesOnStorageErrors(t *testing.T) {
	fx := newAnalyticsFixture(t)
	require.NoError(t, fx.db.Migrator().DropTable(&models.Eaten{}))

	dash, err := fx.analytics.Dashboard(ctx, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, Intake{}, dash.Intake)
	assert.Empty(t, dash.EatenToday)

	prof, err := fx.analytics.Profile(ctx, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, WindowSummary{}, prof.Summary30)
	assert.Len(t, prof.Summary7, 7)
}
