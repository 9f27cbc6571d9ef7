package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"linkpage-be/internal/cache"
	"linkpage-be/internal/config"
	"linkpage-be/internal/controllers"
	"linkpage-be/internal/database"
	"linkpage-be/internal/jwt"
	"linkpage-be/internal/logger"
	"linkpage-be/internal/metrics"
	"linkpage-be/internal/middleware"
	"linkpage-be/internal/repository"
	"linkpage-be/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		return err
	}

	// Redis is optional; the service runs uncached without it
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			zlog.Warn("redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		} else {
			zlog.Info("connected to redis cache")
			defer cacheClient.Close()
		}
	}

	m := metrics.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Services
	profileService := service.NewProfileService(profileRepo, cacheClient, zlog, m, cfg.FrontendURL)
	authService := service.NewAuthService(userRepo, profileRepo, jwtService, zlog)

	// Rate limiters
	limiters := []*middleware.RateLimiter{
		middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst),
		middleware.NewRateLimiter(rate.Limit(cfg.RateLimitWriteRPS), cfg.RateLimitWriteBurst),
		middleware.NewRateLimiter(rate.Limit(cfg.RateLimitPublicRPS), cfg.RateLimitPublicBurst),
	}
	defer func() {
		for _, rl := range limiters {
			rl.Stop()
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := controllers.NewRouter(controllers.RouterConfig{
		Log:            zlog,
		Metrics:        m,
		JWTService:     jwtService,
		AllowedOrigins: []string{cfg.FrontendURL},
		Auth:           controllers.NewAuthController(authService, zlog),
		Profile:        controllers.NewProfileController(profileService, zlog),
		QRCode:         controllers.NewQRCodeController(profileService, zlog),
		GeneralLimiter: limiters[0],
		AuthLimiter:    limiters[1],
		WriteLimiter:   limiters[2],
		PublicLimiter:  limiters[3],
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
