package services

import (
	"sort"
	"strings"

	"github.com/aapokoiv/nutrition-tracker/models"
)

// ListQuery controls search and ordering of owned ingredient and food lists.
type ListQuery struct {
	Sort   string `form:"sort"`
	Dir    string `form:"dir"`
	Search string `form:"q"`
}

func (q ListQuery) desc() bool { return strings.EqualFold(q.Dir, "desc") }

func (q ListQuery) needle() string { return strings.ToLower(strings.TrimSpace(q.Search)) }

// sortField returns q.Sort when allowed, otherwise "name".
func sortField(q ListQuery, allowed ...string) string {
	for _, f := range allowed {
		if q.Sort == f {
			return f
		}
	}
	return "name"
}

func contains(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func FilterIngredients(items []models.Ingredient, q ListQuery) []models.Ingredient {
	n := q.needle()
	if n == "" {
		return items
	}
	out := make([]models.Ingredient, 0, len(items))
	for _, it := range items {
		if contains(it.Name, n) {
			out = append(out, it)
		}
	}
	return out
}

func SortIngredients(items []models.Ingredient, q ListQuery) {
	field := sortField(q, "name", "protein", "calories")
	less := func(a, b models.Ingredient) bool {
		switch field {
		case "protein":
			return a.Protein < b.Protein
		case "calories":
			return a.Calories < b.Calories
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	desc := q.desc()
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// FilterFoods matches name, class or any ingredient name. Ingredients must
// be preloaded for the ingredient match to work.
func FilterFoods(items []models.Food, q ListQuery) []models.Food {
	n := q.needle()
	if n == "" {
		return items
	}
	out := make([]models.Food, 0, len(items))
	for _, f := range items {
		if foodMatches(f, n) {
			out = append(out, f)
		}
	}
	return out
}

func foodMatches(f models.Food, n string) bool {
	if contains(f.Name, n) || contains(f.Class, n) {
		return true
	}
	for _, fi := range f.Ingredients {
		if contains(fi.Ingredient.Name, n) {
			return true
		}
	}
	return false
}

func SortFoods(items []models.Food, q ListQuery) {
	field := sortField(q, "name", "class", "total_protein", "total_calories")
	less := func(a, b models.Food) bool {
		switch field {
		case "class":
			return strings.ToLower(a.Class) < strings.ToLower(b.Class)
		case "total_protein":
			return a.TotalProtein < b.TotalProtein
		case "total_calories":
			return a.TotalCalories < b.TotalCalories
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	desc := q.desc()
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
