package model

import "time"

// Payment statuses.
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
	PaymentRefunded  = "Refunded"
)

// MaxPaymentMethodLen bounds Payment.Method.
const MaxPaymentMethodLen = 50

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment records money received for a reservation.  The (UserID,
// ReservationID) pair is fixed once the payment is created.
//
// Fields:
//
//	ID            – primary key identifier.
//	ReservationID – reservation being paid.
//	UserID        – paying user; owns the reservation.
//	Amount        – strictly positive amount in cents.
//	Method        – payment method label (card, cash, ...).
//	Status        – Pending, Completed, Failed or Refunded.
//	DateTime      – UTC instant the payment was recorded.
type Payment struct {
	ID            uint64    `db:"id" json:"id"`                        // payments.id
	ReservationID uint64    `db:"reservation_id" json:"reservationId"` // payments.reservation_id
	UserID        uint64    `db:"user_id" json:"userId"`               // payments.user_id
	Amount        Money     `db:"amount_cents" json:"amount"`          // payments.amount_cents
	Method        string    `db:"payment_method" json:"paymentMethod"` // payments.payment_method
	Status        string    `db:"payment_status" json:"paymentStatus"` // payments.payment_status
	DateTime      time.Time `db:"date_time" json:"dateTime"`           // payments.date_time
}
