// Package seed fills a database with demo users, ingredients, foods and a
// daily eating history. Data goes through the services so cached totals
// and frozen eaten values are computed the same way as in production.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aapokoiv/nutrition-tracker/models"
	"github.com/aapokoiv/nutrition-tracker/services"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

const DemoPassword = "password123"

var FoodClasses = []string{"Breakfast/Supper", "Lunch/Dinner", "Snack", "Drink"}

type Options struct {
	Users          int
	Ingredients    int // per user
	Foods          int // per user
	Days           int
	MaxEatenPerDay int
	Seed           int64 // 0 picks a time based seed
}

func DefaultOptions() Options {
	return Options{Users: 10, Ingredients: 50, Foods: 20, Days: 30, MaxEatenPerDay: 10}
}

type Result struct {
	Users       int
	Ingredients int
	Foods       int
	Eaten       int
}

type Seeder struct {
	db   *gorm.DB
	loc  *time.Location
	log  *slog.Logger
	now  func() time.Time
	fake *gofakeit.Faker
}

func New(db *gorm.DB, loc *time.Location, log *slog.Logger, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{db: db, loc: loc, log: log, now: time.Now, fake: gofakeit.New(seed)}
}

func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	users := services.NewUserService(s.db, services.NewDBPictureStore(s.db))
	ingredients := services.NewIngredientService(s.db)
	foods := services.NewFoodService(s.db)

	for i := 0; i < opts.Users; i++ {
		u, err := users.Register(ctx, services.RegisterInput{
			Username:        s.username(i),
			Password:        DemoPassword,
			PasswordConfirm: DemoPassword,
		})
		if err != nil {
			return res, fmt.Errorf("seed user %d: %w", i, err)
		}
		res.Users++

		ings := make([]*models.Ingredient, 0, opts.Ingredients)
		for j := 0; j < opts.Ingredients; j++ {
			ing, err := ingredients.Create(ctx, u.ID, s.ingredient())
			if err != nil {
				return res, fmt.Errorf("seed ingredient: %w", err)
			}
			ings = append(ings, ing)
		}
		res.Ingredients += len(ings)
		if len(ings) == 0 {
			continue
		}

		owned := make([]uint, 0, opts.Foods)
		for j := 0; j < opts.Foods; j++ {
			f, err := foods.Create(ctx, u.ID, s.food(ings))
			if err != nil {
				return res, fmt.Errorf("seed food: %w", err)
			}
			owned = append(owned, f.ID)
		}
		res.Foods += len(owned)

		n, err := s.history(ctx, u.ID, owned, opts)
		if err != nil {
			return res, err
		}
		res.Eaten += n
		s.log.InfoContext(ctx, "seeded user", "username", u.Username, "eaten", n)
	}
	return res, nil
}

func (s *Seeder) username(i int) string {
	name := fmt.Sprintf("%s%d", s.fake.Username(), i)
	if len(name) > 30 {
		name = name[len(name)-30:]
	}
	return name
}

func (s *Seeder) ingredient() services.IngredientInput {
	name := s.fake.Fruit()
	if s.fake.Bool() {
		name = s.fake.Vegetable()
	}
	return services.IngredientInput{
		Name:     name,
		Protein:  math.Round(s.fake.Float64Range(0.1, 50)*100) / 100,
		Calories: float64(s.fake.IntRange(10, 1000)),
	}
}

func (s *Seeder) food(ings []*models.Ingredient) services.FoodInput {
	class := s.fake.RandomString(FoodClasses)
	var name string
	switch class {
	case "Breakfast/Supper":
		name = s.fake.Breakfast()
	case "Lunch/Dinner":
		name = s.fake.Lunch()
	case "Snack":
		name = s.fake.Snack()
	default:
		name = s.fake.Drink()
	}
	if len(name) > 100 {
		name = name[:100]
	}

	k := s.fake.IntRange(1, min(10, len(ings)))
	amounts := make([]services.IngredientAmount, 0, k)
	for _, idx := range s.fake.Rand.Perm(len(ings))[:k] {
		amounts = append(amounts, services.IngredientAmount{
			IngredientID: ings[idx].ID,
			Quantity:     math.Round(s.fake.Float64Range(0.5, 2)*100) / 100,
		})
	}
	public := s.fake.Bool()
	return services.FoodInput{Name: name, Class: class, IsPublic: &public, Ingredients: amounts}
}

// history records 1..MaxEatenPerDay events on each of the last Days days.
func (s *Seeder) history(ctx context.Context, userID uint, foods []uint, opts Options) (int, error) {
	if len(foods) == 0 || opts.MaxEatenPerDay < 1 {
		return 0, nil
	}
	today := s.now().In(s.loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.loc)

	count := 0
	for d := 0; d < opts.Days; d++ {
		day := today.AddDate(0, 0, -d)
		for k := s.fake.IntRange(1, opts.MaxEatenPerDay); k > 0; k-- {
			at := day.Add(time.Duration(s.fake.IntRange(6*60, 22*60)) * time.Minute)
			eaten := services.NewEatenService(s.db, s.loc).WithClock(func() time.Time { return at })
			qty := math.Round(s.fake.Float64Range(0.5, 3)*100) / 100
			if _, err := eaten.Record(ctx, userID, foods[s.fake.IntRange(0, len(foods)-1)], qty); err != nil {
				return count, fmt.Errorf("seed eaten: %w", err)
			}
			count++
		}
	}
	return count, nil
}
