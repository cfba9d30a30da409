package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
)

// Notifier delivers a notification outside the application (email, SMS).
type Notifier interface {
	Notify(ctx context.Context, u model.User, subject, body string) error
}

// NotificationService turns domain events into stored notifications and
// forwards them to the configured notifiers.
type NotificationService struct {
	store     Store
	notifiers []Notifier
	log       *zap.Logger
}

func NewNotificationService(store Store, log *zap.Logger, notifiers ...Notifier) *NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationService{store: store, notifiers: notifiers, log: log}
}

// HandleEvent stores a notification for the event's user and fans it out.
// Delivery failures are logged and do not fail the event.
func (s *NotificationService) HandleEvent(ctx context.Context, ev queue.Event) error {
	if ev.UserID == 0 {
		return nil
	}
	subject, body := describeEvent(ev)
	n := model.Notification{UserID: ev.UserID, Message: body, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := s.store.InsertNotification(ctx, &n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if len(s.notifiers) == 0 {
		return nil
	}
	u, err := s.store.UserByID(ctx, ev.UserID)
	if err != nil {
		s.log.Warn("notification user lookup failed", zap.Uint64("user_id", ev.UserID), zap.Error(err))
		return nil
	}
	for _, nt := range s.notifiers {
		if err := nt.Notify(ctx, u, subject, body); err != nil {
			s.log.Warn("notification delivery failed", zap.String("event", ev.Type), zap.Uint64("user_id", u.ID), zap.Error(err))
		}
	}
	return nil
}

func describeEvent(ev queue.Event) (string, string) {
	window := fmt.Sprintf("%s to %s", ev.StartsAt, ev.EndsAt)
	switch ev.Type {
	case queue.EventReservationCreated:
		return "Reservation received", fmt.Sprintf("Reservation #%d for spot %d from %s is %s.", ev.ReservationID, ev.ParkingSpotID, window, ev.Status)
	case queue.EventReservationUpdated:
		return "Reservation updated", fmt.Sprintf("Reservation #%d is now %s, %s.", ev.ReservationID, ev.Status, window)
	case queue.EventReservationCancelled:
		return "Reservation cancelled", fmt.Sprintf("Reservation #%d has been cancelled.", ev.ReservationID)
	case queue.EventReservationDeleted:
		return "Reservation removed", fmt.Sprintf("Reservation #%d has been removed.", ev.ReservationID)
	case queue.EventReservationActivated:
		return "Reservation started", fmt.Sprintf("Reservation #%d on spot %d is now active.", ev.ReservationID, ev.ParkingSpotID)
	case queue.EventReservationCompleted:
		return "Reservation completed", fmt.Sprintf("Reservation #%d has ended. Thank you for parking with us.", ev.ReservationID)
	case queue.EventPaymentRecorded:
		return "Payment received", fmt.Sprintf("Payment #%d of %s for reservation #%d was recorded.", ev.PaymentID, model.Money(ev.AmountCents), ev.ReservationID)
	case queue.EventPaymentUpdated:
		return "Payment updated", fmt.Sprintf("Payment #%d for reservation #%d is now %s.", ev.PaymentID, ev.ReservationID, ev.Status)
	case queue.EventPaymentDeleted:
		return "Payment removed", fmt.Sprintf("Payment #%d for reservation #%d was removed.", ev.PaymentID, ev.ReservationID)
	}
	return "Notice", fmt.Sprintf("Event %s for reservation #%d.", ev.Type, ev.ReservationID)
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor model.Actor) ([]model.Notification, error) {
	if actor.UserID == 0 {
		return nil, apperror.Unauthorized("unauthorized")
	}
	return s.store.ListNotifications(ctx, actor.UserID)
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor model.Actor, id uint64) error {
	if id == 0 {
		return apperror.InvalidArgument("notificationId", "notificationId is required")
	}
	if err := s.store.MarkNotificationRead(ctx, id, actor.UserID); err != nil {
		return lookupErr(err, "notification", id)
	}
	return nil
}
