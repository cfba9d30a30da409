// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher/consumer that carry them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on the reservation.events queue.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationDeleted   = "reservation.deleted"
	EventReservationActivated = "reservation.activated"
	EventReservationCompleted = "reservation.completed"
	EventPaymentRecorded      = "payment.recorded"
	EventPaymentUpdated       = "payment.updated"
	EventPaymentDeleted       = "payment.deleted"
)

// Event is published after a reservation or payment changes. It carries
// enough for downstream consumers to notify the user without querying the
// primary database.
type Event struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	UserID        uint64 `json:"user_id"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	PaymentID     uint64 `json:"payment_id,omitempty"`
	ParkingSpotID uint64 `json:"parking_spot_id,omitempty"`
	Status        string `json:"status,omitempty"`
	StartsAt      string `json:"starts_at,omitempty"`
	EndsAt        string `json:"ends_at,omitempty"`
	AmountCents   int64  `json:"amount_cents,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// NewEvent stamps a fresh id and the current UTC time.
func NewEvent(typ string, userID uint64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
