// Package router assembles the gin engine and its middleware chain.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/invoiceportal/backend/internal/infrastructure/auth"
	"github.com/invoiceportal/backend/internal/infrastructure/config"
	"github.com/invoiceportal/backend/internal/infrastructure/logger"
	"github.com/invoiceportal/backend/internal/interfaces/http/handler"
	"github.com/invoiceportal/backend/internal/interfaces/http/middleware"
)

// Handlers groups the route handlers wired into the engine.
type Handlers struct {
	System  *handler.SystemHandler
	Profile *handler.ProfileHandler
	Payroll *handler.PayrollHandler
	Invoice *handler.InvoiceHandler
}

// Setup builds the gin engine with the full middleware chain and all routes
// mounted under /api/v1.
func Setup(cfg *config.Config, log *zap.Logger, verifier *auth.Verifier, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsCfg),
	)
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	api := engine.Group("/api/v1")
	h.System.RegisterRoutes(api)

	authed := api.Group("", middleware.Session(verifier))

	// JSON endpoints get the small body cap; the payroll upload carries
	// whole spreadsheets and gets its own, larger one.
	std := authed.Group("", middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	h.Profile.RegisterRoutes(std)
	h.Invoice.RegisterRoutes(std)

	uploads := authed.Group("", middleware.BodyLimit(cfg.HTTP.MaxUploadSize))
	h.Payroll.RegisterRoutes(uploads)

	return engine
}
