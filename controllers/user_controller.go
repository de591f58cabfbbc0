package controllers

import (
	"net/http"

	"github.com/aapokoiv/nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Svc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{Svc: svc}
}

type targetInput struct {
	Target int `json:"target" binding:"required"`
}

func (h *UserController) UpdateProteinTarget(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var in targetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.UpdateProteinTarget(c.Request.Context(), uid, in.Target); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"protein_target": in.Target})
}

func (h *UserController) UpdateCalorieTarget(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var in targetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.UpdateCalorieTarget(c.Request.Context(), uid, in.Target); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calorie_target": in.Target})
}

func (h *UserController) UpdateGoals(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var in struct {
		Goals string `json:"goals"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.UpdateGoals(c.Request.Context(), uid, in.Goals); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "goals updated"})
}
