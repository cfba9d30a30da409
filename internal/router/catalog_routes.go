package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/handler"
	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// RegisterCatalog mounts parking spot and add-on service routes. Reads are
// public and cached; writes require ADMIN and drop the cached group.
func RegisterCatalog(e *echo.Echo, s *handler.SpotHandler, c *handler.CatalogHandler, opts Options, log *zap.Logger) {
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis, log)
	admin := []echo.MiddlewareFunc{
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
		middleware.NewCacheInvalidator(opts.Cache, opts.Redis, log),
	}

	spots := e.Group("/parkingspots")
	spots.GET("/GetAllParkingSpots", s.GetAll, cache)
	spots.GET("/GetParkingSpotById", s.GetByID, cache)
	spots.POST("/AddParkingSpot", s.Add, admin...)
	spots.PUT("/UpdateParkingSpot", s.Update, admin...)
	spots.DELETE("/DeleteParkingSpot", s.Delete, admin...)

	services := e.Group("/services")
	services.GET("/GetAllServices", c.GetAll, cache)
	services.GET("/GetServiceById", c.GetByID, cache)
	services.POST("/AddService", c.Add, admin...)
	services.PUT("/UpdateService", c.Update, admin...)
	services.DELETE("/DeleteService", c.Delete, admin...)
}
