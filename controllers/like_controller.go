package controllers

import (
	"net/http"

	"github.com/aapokoiv/nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

type LikeController struct {
	Svc *services.LikeService
}

func NewLikeController(svc *services.LikeService) *LikeController {
	return &LikeController{Svc: svc}
}

func (h *LikeController) Like(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	created, err := h.Svc.EnsureLiked(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"liked": true, "created": created})
}

func (h *LikeController) Unlike(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.Svc.Unlike(c.Request.Context(), uid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false, "removed": removed})
}

func (h *LikeController) List(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	out, err := h.Svc.ListLiked(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
