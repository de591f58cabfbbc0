package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aapokoiv/nutrition-tracker/cache"
	"github.com/aapokoiv/nutrition-tracker/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func authedEngine(rev *cache.Revocations) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret, rev), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetUint(CtxUserID), "jti": c.GetString(CtxTokenID)})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := authedEngine(cache.NewRevocations(nil))

	token, err := utils.GenerateJWT(testSecret, 42, time.Now())
	require.NoError(t, err)

	w := get(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":42`)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)

	other, err := utils.GenerateJWT("other-secret", 42, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", other).Code)

	expired, err := utils.GenerateJWT(testSecret, 42, time.Now().Add(-utils.TokenTTL-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", expired).Code)
}

func TestAuthMiddleware_Revoked(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rev := cache.NewRevocations(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	r := authedEngine(rev)

	token, err := utils.GenerateJWT(testSecret, 1, time.Now())
	require.NoError(t, err)
	claims, err := utils.ParseJWT(testSecret, token)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(r, "/me", token).Code)
	require.NoError(t, rev.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", token).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := get(r, "/", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/login", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })
	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, post())
}
