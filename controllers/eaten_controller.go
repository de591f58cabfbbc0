package controllers

import (
	"net/http"

	"github.com/aapokoiv/nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

type EatenController struct {
	Svc    *services.EatenService
	Notify *services.IntakeNotifier
}

func NewEatenController(svc *services.EatenService, notify *services.IntakeNotifier) *EatenController {
	return &EatenController{Svc: svc, Notify: notify}
}

type recordInput struct {
	FoodID   uint    `json:"food_id" binding:"required"`
	Quantity float64 `json:"quantity"`
}

func (h *EatenController) Record(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var in recordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := h.Svc.Record(c.Request.Context(), uid, in.FoodID, in.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Notify != nil {
		h.Notify.EatenRecorded(c.Request.Context(), uid, ev)
	}
	c.JSON(http.StatusCreated, ev)
}

// GET /eaten?limit=50
func (h *EatenController) List(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	out, err := h.Svc.ListRecent(c.Request.Context(), uid, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Delete answers 200 even when the event is missing or not the caller's.
func (h *EatenController) Delete(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.Svc.Delete(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if removed && h.Notify != nil {
		h.Notify.EatenDeleted(c.Request.Context(), uid)
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
