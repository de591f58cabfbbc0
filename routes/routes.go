package routes

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aapokoiv/nutrition-tracker/cache"
	"github.com/aapokoiv/nutrition-tracker/config"
	"github.com/aapokoiv/nutrition-tracker/controllers"
	"github.com/aapokoiv/nutrition-tracker/middlewares"
	"github.com/aapokoiv/nutrition-tracker/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// Deps is everything the router needs from the outside world.
type Deps struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Log      *slog.Logger
	Loc      *time.Location
	Revoked  *cache.Revocations
	Pictures services.PictureStore
	Hub      *services.RealtimeHub
	// Now overrides the clock of the time dependent services.
	Now func() time.Time
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Pictures == nil {
		d.Pictures = services.NewDBPictureStore(d.DB)
	}
	if d.Hub == nil {
		d.Hub = services.NewRealtimeHub()
	}

	ingredients := services.NewIngredientService(d.DB)
	foods := services.NewFoodService(d.DB)
	likes := services.NewLikeService(d.DB)
	users := services.NewUserService(d.DB, d.Pictures)
	eaten := services.NewEatenService(d.DB, d.Loc)
	analytics := services.NewAnalyticsService(d.DB, d.Loc, d.Log)
	if d.Now != nil {
		eaten = eaten.WithClock(d.Now)
		analytics = analytics.WithClock(d.Now)
	}
	notifier := services.NewIntakeNotifier(analytics, d.Hub, d.Log)
	report := services.NewReportService(analytics)

	authCtl := controllers.NewAuthController(users, d.Revoked, d.Cfg.JWTSecret)
	userCtl := controllers.NewUserController(users)
	ingCtl := controllers.NewIngredientController(ingredients, foods)
	foodCtl := controllers.NewFoodController(foods)
	likeCtl := controllers.NewLikeController(likes)
	eatenCtl := controllers.NewEatenController(eaten, notifier)
	anaCtl := controllers.NewAnalyticsController(analytics, report, d.Loc)
	rtCtl := controllers.NewRealtimeController(d.Hub, originAllowed(d.Cfg.AllowedOrigins))

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.RequestLogger(d.Log), middlewares.Metrics())
	r.MaxMultipartMemory = 1 << 20

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middlewares.NewRateLimiter(d.Cfg.LoginRatePerMinute)
	authMW := middlewares.AuthMiddleware(d.Cfg.JWTSecret, d.Revoked)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", limiter.Limit(), authCtl.Register)
		auth.POST("/login", limiter.Limit(), authCtl.Login)
		auth.POST("/logout", authMW, authCtl.Logout)
	}
	r.GET("/users/:id/picture", userCtl.Picture)

	api := r.Group("/")
	api.Use(authMW)
	{
		api.GET("/dashboard", anaCtl.Dashboard)
		api.GET("/profile", anaCtl.Profile)

		api.PUT("/user/targets/protein", userCtl.UpdateProteinTarget)
		api.PUT("/user/targets/calories", userCtl.UpdateCalorieTarget)
		api.PUT("/user/goals", userCtl.UpdateGoals)
		api.PUT("/user/picture", userCtl.UploadPicture)

		api.GET("/ingredients", ingCtl.List)
		api.POST("/ingredients", ingCtl.Create)
		api.GET("/ingredients/:id", ingCtl.Get)
		api.PUT("/ingredients/:id", ingCtl.Update)
		api.DELETE("/ingredients/:id", ingCtl.Delete)

		api.GET("/foods", foodCtl.List)
		api.POST("/foods", foodCtl.Create)
		api.GET("/foods/public", foodCtl.SearchPublic)
		api.GET("/foods/:id", foodCtl.Get)
		api.PUT("/foods/:id", foodCtl.Update)
		api.DELETE("/foods/:id", foodCtl.Delete)
		api.PUT("/foods/:id/ingredients/:ingredientId", foodCtl.SetIngredient)
		api.DELETE("/foods/:id/ingredients/:ingredientId", foodCtl.RemoveIngredient)
		api.POST("/foods/:id/like", likeCtl.Like)
		api.DELETE("/foods/:id/like", likeCtl.Unlike)
		api.GET("/likes", likeCtl.List)

		api.POST("/eaten", eatenCtl.Record)
		api.GET("/eaten", eatenCtl.List)
		api.DELETE("/eaten/:id", eatenCtl.Delete)

		api.GET("/analytics/daily", anaCtl.Daily)
		api.GET("/analytics/stats", anaCtl.Stats)
		api.GET("/analytics/summary", anaCtl.Summary)
		api.GET("/analytics/report.pdf", anaCtl.ReportPDF)

		api.GET("/ws/intake", rtCtl.IntakeWS)
	}

	return r
}

func splitOrigins(list string) []string {
	var out []string
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func originAllowed(list string) func(string) bool {
	origins := splitOrigins(list)
	return func(origin string) bool {
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// WithCORS wraps the router for browser clients on ALLOWED_ORIGINS.
func WithCORS(h http.Handler, allowedOrigins string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   splitOrigins(allowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposedHeaders:   []string{middlewares.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(h)
}
