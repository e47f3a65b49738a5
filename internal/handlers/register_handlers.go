package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kobopay/fx_wallet_app/internal/core/ports"
	portssvc "github.com/kobopay/fx_wallet_app/internal/core/ports/services"
	"github.com/kobopay/fx_wallet_app/internal/middleware"
	"github.com/kobopay/fx_wallet_app/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	clock ports.Clock,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, clock)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	clock ports.Clock,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Delegate route registration to specific handlers, passing required services
	registerCurrencyRoutes(v1)
	registerExchangeRateRoutes(v1, services.ExchangeRate, services.RateResolver)
	registerRateLockRoutes(v1, services.RateLock, clock, cfg.LockExpiryWarningThreshold)
}
