package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/middleware"
)

type RouterConfig struct {
	Auth      *AuthHandler
	Tasks     *TaskHandler
	Reminders *ReminderHandler
	Users     *UserHandler
	Avatars   *AvatarHandler
	Activity  *ActivityHandler

	AuthMiddleware *middleware.AuthMiddleware
	// TokenLimiter throttles the unauthenticated token endpoints per IP.
	TokenLimiter   *middleware.IPRateLimiter
	InternalAPIKey string
	CORSOrigins    []string
	// Ready reports dependency health for /health. Nil means always healthy.
	Ready func() error
}

// NewRouter builds the gin engine and registers every route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger())
	router.Use(middleware.RecoveryWithLogger())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSOrigins))
	}

	var throttle gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.TokenLimiter != nil {
		throttle = cfg.TokenLimiter.Middleware()
	}

	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if cfg.Ready != nil {
			if err := cfg.Ready(); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"service":   "taskmate-service",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/verify-email", throttle, cfg.Auth.VerifyEmailLink)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", cfg.Auth.Register)
			auth.POST("/login", throttle, cfg.Auth.Login)
			auth.POST("/verify-email", throttle, cfg.Auth.VerifyEmail)
		}

		v1.POST("/tasks/confirm", throttle, cfg.Tasks.Confirm)

		internal := v1.Group("")
		internal.Use(middleware.RequireInternalKey(cfg.InternalAPIKey))
		{
			internal.POST("/reminders", cfg.Reminders.Send)
			internal.POST("/internal/tasks/sweep-overdue", cfg.Tasks.SweepOverdue)
		}

		protected := v1.Group("")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		{
			authProtected := protected.Group("/auth")
			{
				authProtected.POST("/logout", cfg.Auth.Logout)
				authProtected.POST("/send-verification", cfg.Auth.SendVerification)
			}

			tasks := protected.Group("/tasks")
			{
				tasks.POST("", cfg.Tasks.Create)
				tasks.GET("", cfg.Tasks.List)
				tasks.GET("/stats", cfg.Tasks.Stats)
				tasks.GET("/:id", cfg.Tasks.Get)
				tasks.PUT("/:id", cfg.Tasks.Update)
				tasks.PATCH("/:id/status", cfg.Tasks.UpdateStatus)
				tasks.DELETE("/:id", cfg.Tasks.Delete)
				tasks.POST("/:id/request-confirmation", cfg.Tasks.RequestConfirmation)
			}

			users := protected.Group("/users")
			{
				users.GET("/me", cfg.Users.GetMe)
				users.PUT("/me", cfg.Users.UpdateMe)
				users.POST("/avatar", cfg.Avatars.UploadAvatar)
				users.GET("/avatar", cfg.Avatars.GetAvatar)
				users.DELETE("/avatar", cfg.Avatars.DeleteAvatar)
			}

			protected.GET("/activity", cfg.Activity.List)
		}
	}

	return router
}
