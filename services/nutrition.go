package services

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNameLen       = 100
	maxProtein       = 10000
	maxCalories      = 1000000
	maxQuantity      = 10000
	maxUsernameLen   = 30
	minPasswordLen   = 6
	maxPasswordLen   = 50
	maxTarget        = 1000000
	maxWindowDays    = 366
	maxPasswordBytes = 72
	maxGoalsLen      = 1000
	publicPageSize   = 20
	recentEatenLimit = 50
)

// Intake is a protein/calorie pair, used for daily totals.
type Intake struct {
	TotalProtein  float64 `json:"total_protein"`
	TotalCalories float64 `json:"total_calories"`
}

// round2 rounds half away from zero, matching the stored 2-decimal totals.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

func dayStart(t time.Time, loc *time.Location) time.Time {
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

func dayKey(t time.Time, loc *time.Location) string { return t.In(loc).Format("2006-01-02") }

func checkName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(field, "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", invalid(field, "must be at most %d characters", maxNameLen)
	}
	return name, nil
}

func checkRange(field string, v, min, max float64) error {
	if math.IsNaN(v) || v < min || v > max {
		return invalid(field, "must be between %g and %g", min, max)
	}
	return nil
}

func checkQuantity(q float64) error {
	if math.IsNaN(q) || q <= 0 || q > maxQuantity {
		return invalid("quantity", "must be greater than 0 and at most %d", maxQuantity)
	}
	return nil
}
