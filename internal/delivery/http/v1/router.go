package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"go-jobswipe-backend/config"
	"go-jobswipe-backend/internal/delivery/http/middleware"
	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/internal/usecase"
	"go-jobswipe-backend/pkg/security"
	"go-jobswipe-backend/pkg/validation"
)

type RouterDeps struct {
	ApplicationUC domain.ApplicationUsecase
	MatchUC       domain.MatchUsecase
	ChatUC        domain.ChatUsecase
	NotifyUC      domain.NotificationUsecase
	HealthUC      usecase.HealthUsecase
	Presence      domain.PresenceReader
	Sessions      SessionServer
	Authenticator *middleware.Authenticator
	Origins       *middleware.OriginPolicy
	Audit         *security.SecurityLogger
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Origins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config.IsProduction()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(), deps.Audit))

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authenticates itself before the upgrade
	NewRealtimeHandler(v1, deps.Authenticator, deps.Sessions, deps.Origins)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Authenticator))
	protected.Use(middleware.CSRFMiddleware(deps.Config.IsProduction()))
	{
		window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second
		sendLimit := middleware.RateLimitMiddleware(
			middleware.MessageRateLimitConfig(deps.Config.MessageRateLimit, window), deps.Audit)

		NewApplicationHandler(protected, deps.ApplicationUC)
		NewMatchHandler(protected, deps.MatchUC, deps.ChatUC)
		NewChatHandler(protected, deps.ChatUC, deps.Presence, sendLimit)
		NewNotificationHandler(protected, deps.NotifyUC)
	}

	return r
}
