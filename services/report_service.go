package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

type ReportService struct {
	analytics *AnalyticsService
}

func NewReportService(analytics *AnalyticsService) *ReportService {
	return &ReportService{analytics: analytics}
}

// WindowPDF renders the window summary followed by one table row per day
// of [today-(days-1), today].
func (s *ReportService) WindowPDF(ctx context.Context, userID uint, days int) ([]byte, error) {
	if err := checkWindow(days); err != nil {
		return nil, err
	}
	user, err := s.analytics.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.analytics.NutritionStats(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	summary := SummarizeWindow(rows, user.ProteinTarget)
	dense := FillMissingDays(rows, days, s.analytics.Today())

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Nutrition report for %s", user.Username), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Nutrition report: last %d days", days))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("User: %s", user.Username))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Protein target: %d g   Calorie target: %d kcal", user.ProteinTarget, user.CalorieTarget))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Days logged: %d   Protein target hit: %d", summary.TotalDays, summary.HitDays))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Average per logged day: %.2f g protein, %.2f kcal", summary.AvgProtein, summary.AvgCalories))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	for _, h := range []struct {
		w float64
		s string
	}{{40, "Day"}, {40, "Protein (g)"}, {40, "Calories"}, {30, "Entries"}} {
		pdf.CellFormat(h.w, 7, h.s, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	for _, d := range dense {
		pdf.CellFormat(40, 6, d.Day, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", d.TotalProtein), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", d.TotalCalories), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", d.Entries), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
