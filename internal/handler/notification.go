package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/service"
)

// NotificationHandler lets a user read the notices produced by their
// reservation and payment events.
type NotificationHandler struct {
	svc *service.NotificationService
	log *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: orNop(log)}
}

// GetMine handles GET /notifications/GetMyNotifications.
func (h *NotificationHandler) GetMine(c echo.Context) error {
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

// MarkAsRead handles PUT /notifications/MarkAsRead?notificationId=.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "notificationId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.svc.MarkRead(c.Request().Context(), actor, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}
