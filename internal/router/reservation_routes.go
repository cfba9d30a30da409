package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/handler"
	"github.com/iliyamo/parking-reservation/internal/middleware"
)

// RegisterReservations mounts reservation, payment and notification routes.
// Every route requires a valid token; ownership and admin-only operations
// are enforced by the services. Reservation writes can flip spot
// occupancy, so they drop the cached spot reads.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, p *handler.PaymentHandler, n *handler.NotificationHandler, opts Options, log *zap.Logger) {
	mw := authenticated(opts.JWTSecret)
	spots := middleware.NewGroupInvalidator(opts.Cache, opts.Redis, log, middleware.SpotsGroup)

	res := e.Group("/reservations", mw...)
	res.GET("/GetAllReservations", r.GetAll)
	res.GET("/GetReservationById", r.GetByID)
	res.GET("/CheckAvailability", r.CheckAvailability)
	res.POST("/AddReservation", r.Add, spots)
	res.PUT("/UpdateReservation", r.Update, spots)
	res.PUT("/CancelReservation", r.Cancel, spots)
	res.DELETE("/DeleteReservation", r.Delete, spots)

	pay := e.Group("/payments", mw...)
	pay.GET("/GetAllPayments", p.GetAll)
	pay.GET("/GetPaymentById", p.GetByID)
	pay.POST("/AddPayment", p.Add)
	pay.PUT("/UpdatePayment", p.Update)
	pay.DELETE("/DeletePayment", p.Delete)

	notes := e.Group("/notifications", mw...)
	notes.GET("/GetMyNotifications", n.GetMine)
	notes.PUT("/MarkAsRead", n.MarkAsRead)
}
