package controllers

import (
	"net/http"
	"time"

	"github.com/aapokoiv/nutrition-tracker/cache"
	"github.com/aapokoiv/nutrition-tracker/middlewares"
	"github.com/aapokoiv/nutrition-tracker/services"
	"github.com/aapokoiv/nutrition-tracker/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Users   *services.UserService
	Revoked *cache.Revocations
	Secret  string
}

func NewAuthController(users *services.UserService, revoked *cache.Revocations, secret string) *AuthController {
	return &AuthController{Users: users, Revoked: revoked, Secret: secret}
}

func (h *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := utils.GenerateJWT(h.Secret, user.ID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := utils.GenerateJWT(h.Secret, user.ID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout revokes the presented token until its natural expiry. Without
// Redis tokens stay valid and the client just drops it.
func (h *AuthController) Logout(c *gin.Context) {
	jti := c.GetString(middlewares.CtxTokenID)
	exp := c.GetTime(middlewares.CtxTokenExpiry)
	if err := h.Revoked.Revoke(c.Request.Context(), jti, exp); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out", "revoked": h.Revoked.Enabled()})
}
