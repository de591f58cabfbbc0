package controllers

import (
	"context"
	"net/http"

	"github.com/aapokoiv/nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

type IngredientController struct {
	Svc   *services.IngredientService
	Foods *services.FoodService
}

func NewIngredientController(svc *services.IngredientService, foods *services.FoodService) *IngredientController {
	return &IngredientController{Svc: svc, Foods: foods}
}

// GET /ingredients?sort=protein&dir=desc&q=egg
func (h *IngredientController) List(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var q services.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Svc.List(c.Request.Context(), uid, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *IngredientController) Get(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	out, err := h.Svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *IngredientController) Create(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var in services.IngredientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Svc.Create(c.Request.Context(), uid, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *IngredientController) Update(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.IngredientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, foodIDs, err := h.Svc.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.recompute(c.Request.Context(), foodIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *IngredientController) Delete(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	foodIDs, err := h.Svc.Delete(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.recompute(c.Request.Context(), foodIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ingredient deleted", "recomputed_foods": foodIDs})
}

func (h *IngredientController) recompute(ctx context.Context, foodIDs []uint) error {
	for _, id := range foodIDs {
		if err := h.Foods.RecomputeTotals(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
