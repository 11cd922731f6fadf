package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/app"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/config"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/handler"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/middleware"
	"github.com/zhanserikAmangeldi/taskmate-service/internal/migration"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Bootstrap("taskmate-service")
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.MustInit(cfg.Logging())
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	logger.Info("Running database migrations...")
	if err := migration.AutoMigrate(cfg.DBUrl); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	logger.Info("Migrations completed successfully")

	stack, err := app.Open(ctx, cfg, app.Options{WithRedis: true, WithObjectStore: true})
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer stack.Close()

	tokenLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.TokenRateLimit), cfg.TokenRateBurst)
	router := setupRouter(cfg, stack, tokenLimiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("TaskMate service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tokenLimiter.Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(cleanupDone)

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func setupRouter(cfg *config.Config, stack *app.Stack, tokenLimiter *middleware.IPRateLimiter) *gin.Engine {
	return handler.NewRouter(handler.RouterConfig{
		Auth:      handler.NewAuthHandler(stack.Auth, stack.Verification),
		Tasks:     handler.NewTaskHandler(stack.Tasks, stack.Confirmations),
		Reminders: handler.NewReminderHandler(stack.Reminders),
		Users:     handler.NewUserHandler(stack.Profiles),
		Avatars:   handler.NewAvatarHandler(stack.Profiles),
		Activity:  handler.NewActivityHandler(stack.Activity),

		AuthMiddleware: middleware.NewAuthMiddleware(stack.TokenManager, stack.Revocations),
		TokenLimiter:   tokenLimiter,
		InternalAPIKey: cfg.InternalAPIKey,
		CORSOrigins:    cfg.CORSOrigins,
		Ready: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return stack.Ping(ctx)
		},
	})
}
