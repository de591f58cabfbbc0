package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aapokoiv/nutrition-tracker/models"

	"gorm.io/gorm"
)

type AnalyticsService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
	log *slog.Logger
}

func NewAnalyticsService(db *gorm.DB, loc *time.Location, log *slog.Logger) *AnalyticsService {
	return &AnalyticsService{db: db, loc: loc, now: time.Now, log: log}
}

func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	cp := *s
	cp.now = now
	return &cp
}

// Today is the current calendar day in the service's location.
func (s *AnalyticsService) Today() time.Time { return dayStart(s.now(), s.loc) }

// ---------- Daily ----------

// DailyIntake sums the frozen eaten values of one calendar day. A day
// without events yields zeros.
func (s *AnalyticsService) DailyIntake(ctx context.Context, userID uint, day time.Time) (Intake, error) {
	from := dayStart(day, s.loc)
	to := from.AddDate(0, 0, 1)

	var out Intake
	if err := s.db.WithContext(ctx).
		Model(&models.Eaten{}).
		Select("COALESCE(SUM(eaten_protein), 0) AS total_protein, COALESCE(SUM(eaten_calories), 0) AS total_calories").
		Where("user_id = ? AND time >= ? AND time < ?", userID, from.UTC(), to.UTC()).
		Scan(&out).Error; err != nil {
		return Intake{}, fmt.Errorf("daily intake: %w", err)
	}
	out.TotalProtein = round2(out.TotalProtein)
	out.TotalCalories = round2(out.TotalCalories)
	return out, nil
}

// ---------- Windows ----------

// DayStat is one calendar day of a window. Entries is the number of eaten
// events behind the totals; gap-filled days have zero entries.
type DayStat struct {
	Day           string  `json:"day"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCalories float64 `json:"total_calories"`
	Entries       int     `json:"entries"`
}

type WindowSummary struct {
	AvgCalories float64 `json:"avg_calories"`
	AvgProtein  float64 `json:"avg_protein"`
	HitDays     int     `json:"hit_days"`
	TotalDays   int     `json:"total_days"`
}

// NutritionStats returns one row per day with at least one event in the
// trailing window [today-(days-1), today], oldest first. Empty days are
// absent; use FillMissingDays for a dense series.
func (s *AnalyticsService) NutritionStats(ctx context.Context, userID uint, days int) ([]DayStat, error) {
	if err := checkWindow(days); err != nil {
		return nil, err
	}
	today := s.Today()
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	var events []models.Eaten
	if err := s.db.WithContext(ctx).
		Select("time", "eaten_protein", "eaten_calories").
		Where("user_id = ? AND time >= ? AND time < ?", userID, from.UTC(), to.UTC()).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("nutrition stats: %w", err)
	}

	idx := map[string]*DayStat{}
	for _, e := range events {
		key := dayKey(e.Time, s.loc)
		d := idx[key]
		if d == nil {
			d = &DayStat{Day: key}
			idx[key] = d
		}
		d.TotalProtein += e.EatenProtein
		d.TotalCalories += e.EatenCalories
		d.Entries++
	}

	out := make([]DayStat, 0, len(idx))
	for _, d := range idx {
		d.TotalProtein = round2(d.TotalProtein)
		d.TotalCalories = round2(d.TotalCalories)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func checkWindow(days int) error {
	if days < 1 || days > maxWindowDays {
		return invalid("days", "must be between 1 and %d", maxWindowDays)
	}
	return nil
}

// FillMissingDays returns exactly days entries covering
// [today-(days-1), today] oldest first, taking rows where present and
// zero placeholders elsewhere. Rows outside the window are ignored.
// days is capped at 366.
func FillMissingDays(rows []DayStat, days int, today time.Time) []DayStat {
	if days < 1 {
		return []DayStat{}
	}
	days = min(days, maxWindowDays)
	idx := make(map[string]DayStat, len(rows))
	for _, r := range rows {
		idx[r.Day] = r
	}
	base := time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, today.Location())
	out := make([]DayStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := base.AddDate(0, 0, -i).Format("2006-01-02")
		if r, ok := idx[key]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, DayStat{Day: key})
	}
	return out
}

// SummarizeWindow accepts sparse or dense rows. Only days with at least one
// event count toward TotalDays, the averages and HitDays.
func SummarizeWindow(rows []DayStat, proteinTarget int) WindowSummary {
	var out WindowSummary
	var prot, cals float64
	for _, r := range rows {
		if r.Entries == 0 {
			continue
		}
		out.TotalDays++
		prot += r.TotalProtein
		cals += r.TotalCalories
		if r.TotalProtein >= float64(proteinTarget) {
			out.HitDays++
		}
	}
	if out.TotalDays == 0 {
		return WindowSummary{}
	}
	out.AvgCalories = round2(cals / float64(out.TotalDays))
	out.AvgProtein = round2(prot / float64(out.TotalDays))
	return out
}

func (s *AnalyticsService) WindowSummary(ctx context.Context, userID uint, days int) (WindowSummary, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return WindowSummary{}, err
	}
	rows, err := s.NutritionStats(ctx, userID, days)
	if err != nil {
		return WindowSummary{}, err
	}
	return SummarizeWindow(rows, user.ProteinTarget), nil
}

// DenseStats is NutritionStats gap-filled to exactly days entries.
func (s *AnalyticsService) DenseStats(ctx context.Context, userID uint, days int) ([]DayStat, error) {
	rows, err := s.NutritionStats(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return FillMissingDays(rows, days, s.Today()), nil
}

// ---------- Page bundles ----------

type ProfileView struct {
	User      *models.User  `json:"user"`
	Summary30 WindowSummary `json:"summary30"`
	Summary7  []DayStat     `json:"summary7"`
}

// Profile bundles the 30-day summary and the dense 7-day series. Storage
// errors in either section are logged and leave that section zeroed.
func (s *AnalyticsService) Profile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &ProfileView{User: user}

	if rows, err := s.NutritionStats(ctx, userID, 30); err != nil {
		s.log.WarnContext(ctx, "profile: 30 day summary unavailable", "user_id", userID, "err", err)
	} else {
		out.Summary30 = SummarizeWindow(rows, user.ProteinTarget)
	}

	rows, err := s.NutritionStats(ctx, userID, 7)
	if err != nil {
		s.log.WarnContext(ctx, "profile: 7 day series unavailable", "user_id", userID, "err", err)
		rows = nil
	}
	out.Summary7 = FillMissingDays(rows, 7, s.Today())
	return out, nil
}

type DashboardView struct {
	Username      string       `json:"username"`
	ProteinTarget int          `json:"protein_target"`
	CalorieTarget int          `json:"calorie_target"`
	Goals         string       `json:"goals"`
	Intake        Intake       `json:"intake"`
	EatenToday    []EatenEntry `json:"eaten_today"`
}

func (s *AnalyticsService) Dashboard(ctx context.Context, userID uint) (*DashboardView, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &DashboardView{
		Username:      user.Username,
		ProteinTarget: user.ProteinTarget,
		CalorieTarget: user.CalorieTarget,
		Goals:         user.Goals,
		EatenToday:    []EatenEntry{},
	}

	today := s.Today()
	if in, err := s.DailyIntake(ctx, userID, today); err != nil {
		s.log.WarnContext(ctx, "dashboard: intake unavailable", "user_id", userID, "err", err)
	} else {
		out.Intake = in
	}

	eaten := &EatenService{db: s.db, loc: s.loc, now: s.now}
	if list, err := eaten.ListForDay(ctx, userID, today); err != nil {
		s.log.WarnContext(ctx, "dashboard: eaten list unavailable", "user_id", userID, "err", err)
	} else if list != nil {
		out.EatenToday = list
	}
	return out, nil
}

func (s *AnalyticsService) user(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Omit("profile_picture").First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
