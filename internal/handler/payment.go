package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// PaymentHandler serves /payments.
type PaymentHandler struct {
	svc *service.PaymentService
	log *zap.Logger
}

func NewPaymentHandler(svc *service.PaymentService, log *zap.Logger) *PaymentHandler {
	if svc == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{svc: svc, log: orNop(log)}
}

type paymentReq struct {
	UserID        uint64      `json:"userId"`
	ReservationID uint64      `json:"reservationId"`
	Amount        model.Money `json:"amount"`
	PaymentMethod string      `json:"paymentMethod" validate:"max=50"`
	PaymentStatus string      `json:"paymentStatus"`
}

func (r paymentReq) input() service.PaymentInput {
	return service.PaymentInput{
		UserID:        r.UserID,
		ReservationID: r.ReservationID,
		Amount:        r.Amount,
		Method:        r.PaymentMethod,
		Status:        r.PaymentStatus,
	}
}

// GetAll handles GET /payments/GetAllPayments.
func (h *PaymentHandler) GetAll(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.svc.List(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetByID handles GET /payments/GetPaymentById?paymentId=.
func (h *PaymentHandler) GetByID(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "paymentId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	p, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Add handles POST /payments/AddPayment.
func (h *PaymentHandler) Add(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req paymentReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	p, err := h.svc.Add(c.Request().Context(), actor, req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Payment added successfully", "payment": p})
}

// Update handles PUT /payments/UpdatePayment?paymentId=.
func (h *PaymentHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "paymentId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req paymentReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	p, err := h.svc.Update(c.Request().Context(), actor, id, req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Payment updated successfully", "payment": p})
}

// Delete handles DELETE /payments/DeletePayment?paymentId=.
func (h *PaymentHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "paymentId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Payment deleted successfully"})
}
