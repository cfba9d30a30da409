// Package router registers the HTTP API on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/config"
	"github.com/iliyamo/parking-reservation/internal/handler"
	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Reservations  *handler.ReservationHandler
	Payments      *handler.PaymentHandler
	Spots         *handler.SpotHandler
	Catalog       *handler.CatalogHandler
	Notifications *handler.NotificationHandler
	Auth          *handler.AuthHandler
}

// Options carries the shared middleware settings. Redis is optional; a nil
// client turns caching and rate limiting into pass-throughs.
type Options struct {
	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	DB        handler.Pinger
	Log       *zap.Logger
}

// Register mounts health, auth, catalog and reservation routes plus the
// global request logger and rate limiter.
func Register(e *echo.Echo, h Handlers, opts Options) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(opts.RateLimit, opts.Redis, log))

	e.GET("/healthz", handler.Health(opts.DB))

	RegisterAuth(e, h.Auth, opts.JWTSecret)
	RegisterCatalog(e, h.Spots, h.Catalog, opts, log)
	RegisterReservations(e, h.Reservations, h.Payments, h.Notifications, opts, log)
}

// authenticated returns the middleware chain every signed-in route uses.
func authenticated(secret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(secret),
		middleware.RequireRole(model.RoleAdmin, model.RoleUser),
	}
}
