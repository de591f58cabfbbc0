package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aapokoiv/nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc    *services.AnalyticsService
	Report *services.ReportService
	Loc    *time.Location
}

func NewAnalyticsController(svc *services.AnalyticsService, report *services.ReportService, loc *time.Location) *AnalyticsController {
	return &AnalyticsController{Svc: svc, Report: report, Loc: loc}
}

func (h *AnalyticsController) Dashboard(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	out, err := h.Svc.Dashboard(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsController) Profile(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	out, err := h.Svc.Profile(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /analytics/daily?date=2024-05-01 (defaults to today)
func (h *AnalyticsController) Daily(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	day := h.Svc.Today()
	if v := c.Query("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, h.Loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		day = d
	}
	out, err := h.Svc.DailyIntake(c.Request.Context(), uid, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format("2006-01-02"), "intake": out})
}

// GET /analytics/stats?days=7&fill=true
func (h *AnalyticsController) Stats(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	days, ok := intQuery(c, "days", 7)
	if !ok {
		return
	}
	var (
		out []services.DayStat
		err error
	)
	if c.Query("fill") == "true" {
		out, err = h.Svc.DenseStats(c.Request.Context(), uid, days)
	} else {
		out, err = h.Svc.NutritionStats(c.Request.Context(), uid, days)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /analytics/summary?days=30
func (h *AnalyticsController) Summary(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	days, ok := intQuery(c, "days", 30)
	if !ok {
		return
	}
	out, err := h.Svc.WindowSummary(c.Request.Context(), uid, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsController) ReportPDF(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	days, ok := intQuery(c, "days", 30)
	if !ok {
		return
	}
	pdf, err := h.Report.WindowPDF(c.Request.Context(), uid, days)
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("nutrition-%s-%dd.pdf", h.Svc.Today().Format("2006-01-02"), days)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
