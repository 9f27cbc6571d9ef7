package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"linkpage-be/internal/jwt"
	"linkpage-be/internal/metrics"
	"linkpage-be/internal/middleware"
	"linkpage-be/internal/models"
)

// RouterConfig carries everything the HTTP layer is built from. A nil
// rate limiter leaves its routes unthrottled.
type RouterConfig struct {
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	JWTService     *jwt.JWTService
	AllowedOrigins []string

	Auth    *AuthController
	Profile *ProfileController
	QRCode  *QRCodeController

	GeneralLimiter *middleware.RateLimiter // every /api/v1 route
	AuthLimiter    *middleware.RateLimiter // register and login
	WriteLimiter   *middleware.RateLimiter // profile mutations
	PublicLimiter  *middleware.RateLimiter // public pages and link redirects
}

// RegisterBindingValidations installs the model validations on gin's
// binding engine so request DTOs can use them in binding tags
func RegisterBindingValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		models.RegisterValidations(v)
	}
}

func limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.LimitMiddleware()
}

// NewRouter builds the gin engine with every route of the service
func NewRouter(cfg RouterConfig) *gin.Engine {
	RegisterBindingValidations()

	router := gin.New()
	router.Use(
		middleware.Recovery(cfg.Log),
		middleware.RequestLogger(cfg.Log),
		middleware.Metrics(cfg.Metrics),
	)
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.AllowedOrigins))
	}

	// Health check and metrics (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Public profile pages and link redirects
	public := limit(cfg.PublicLimiter)
	router.GET("/:customUrl", public, cfg.Profile.GetPublicProfile)
	router.GET("/:customUrl/links/:linkId", public, cfg.Profile.VisitLink)

	api := router.Group("/api/v1")
	api.Use(limit(cfg.GeneralLimiter))
	{
		auth := api.Group("/auth")
		auth.Use(limit(cfg.AuthLimiter))
		{
			auth.POST("/register", cfg.Auth.Register)
			auth.POST("/login", cfg.Auth.Login)
		}

		profiles := api.Group("/profiles")
		{
			profiles.GET("", cfg.Profile.SearchProfiles)
			profiles.GET("/available/:customUrl", cfg.Profile.CheckAvailability)
			profiles.GET("/:customUrl", public, cfg.Profile.GetPublicProfile)
		}

		api.GET("/qrcode/:customUrl", cfg.QRCode.GenerateQRCode)

		// Protected routes - require JWT authentication
		protected := api.Group("/profile")
		protected.Use(middleware.AuthMiddleware(cfg.JWTService))
		{
			write := limit(cfg.WriteLimiter)

			protected.GET("", cfg.Profile.GetMyProfile)
			protected.GET("/analytics", cfg.Profile.GetClickAnalytics)

			protected.POST("", write, cfg.Profile.CreateProfile)
			protected.PATCH("", write, cfg.Profile.UpdateProfile)
			protected.DELETE("", write, cfg.Profile.DeleteProfile)
			protected.PUT("/custom-url", write, cfg.Profile.ChangeCustomURL)
			protected.PUT("/tags", write, cfg.Profile.SetTags)

			protected.POST("/links", write, cfg.Profile.AddSocialLink)
			protected.PUT("/links/order", write, cfg.Profile.ReorderSocialLinks)
			protected.PATCH("/links/:linkId", write, cfg.Profile.UpdateSocialLink)
			protected.DELETE("/links/:linkId", write, cfg.Profile.RemoveSocialLink)
		}
	}

	return router
}
