package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/middleware"
	"github.com/iliyamo/restaurant-booking/internal/model"
)

// Deps carries everything the routes need.  Redis may be nil; the cache
// and rate limiter then fall back to in-process state.
type Deps struct {
	Health    *handler.HealthHandler
	Bookings  *handler.BookingHandler
	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// RegisterRoutes registers the health check, which needs no
// authentication.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health.Health)
}

// RegisterBookings registers the booking API under /v1/bookings.
// Available slots are public and cached briefly; everything else needs
// a valid access token.  Static paths are registered before /:id.
func RegisterBookings(e *echo.Echo, d Deps) {
	h := d.Bookings
	e.GET("/v1/bookings/available-slots", h.AvailableSlots, middleware.NewResponseCache(d.Cache, d.Redis))

	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(d.JWTSecret))
	g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleStaff))
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	g.GET("", h.List)
	g.POST("", h.Create, limit)
	g.GET("/statistics", h.Statistics, middleware.RequireRole(model.RoleStaff))
	g.GET("/:id", h.Get)
	g.GET("/:id/history", h.History)
	g.POST("/:id/cancel", h.Cancel, limit)
	g.POST("/:id/menu-items", h.AddMenuItem, limit)
	g.PUT("/:id/menu-items/:item_id", h.UpdateMenuItem, limit)
	g.DELETE("/:id/menu-items/:item_id", h.RemoveMenuItem, limit)

	staff := middleware.RequireRole(model.RoleStaff)
	g.POST("/:id/confirm", h.Confirm, staff)
	g.POST("/:id/activate", h.Activate, staff)
	g.POST("/:id/complete", h.Complete, staff)
	g.POST("/:id/no-show", h.NoShow, staff)
	g.DELETE("/:id", h.Delete, staff)
}
