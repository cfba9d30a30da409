package model

import "time"

// Reservation statuses.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusActive    = "Active"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
	StatusCompleted = "Completed"
)

// Statuses lists every reservation status.
var Statuses = []string{StatusPending, StatusApproved, StatusActive, StatusRejected, StatusCancelled, StatusCompleted}

// ValidStatus reports whether s is a reservation status.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Blocking reports whether a reservation in status s holds its window on the
// spot. Cancelled and Rejected reservations release it.
func Blocking(s string) bool {
	return s != StatusCancelled && s != StatusRejected
}

// Reservation is a booked time window on a parking spot.  Start and End are
// stored in UTC and form the half-open interval [Start, End).
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – owner of the reservation.
//	ParkingSpotID – reserved spot.
//	StartTime     – inclusive start (UTC).
//	EndTime       – exclusive end (UTC).
//	Status        – one of Statuses.
//	TotalAmount   – optional total in cents.
//	Services      – add-ons attached through reservation_services.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            uint64    `db:"id" json:"id"`                                    // reservations.id
	UserID        uint64    `db:"user_id" json:"userId"`                           // reservations.user_id
	ParkingSpotID uint64    `db:"parking_spot_id" json:"parkingSpotId"`            // reservations.parking_spot_id
	StartTime     time.Time `db:"start_time" json:"startTime"`                     // reservations.start_time
	EndTime       time.Time `db:"end_time" json:"endTime"`                         // reservations.end_time
	Status        string    `db:"status" json:"status"`                            // reservations.status
	TotalAmount   *Money    `db:"total_amount_cents" json:"totalAmount,omitempty"` // reservations.total_amount_cents (nullable)
	Services      []Service `db:"-" json:"services"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"` // reservations.created_at
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"` // reservations.updated_at
}

// Overlaps reports whether r's window intersects [start, end) under the
// half-open rule. Touching windows do not overlap.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

// ReservationService links a reservation to an add-on service.
type ReservationService struct {
	ReservationID uint64 `db:"reservation_id"` // reservation_services.reservation_id
	ServiceID     uint64 `db:"service_id"`     // reservation_services.service_id
}

// Sort keys accepted by reservation search.
const (
	SortByID            = "id"
	SortByStartTime     = "startTime"
	SortByEndTime       = "endTime"
	SortByStatus        = "status"
	SortByUserID        = "userId"
	SortByParkingSpotID = "parkingSpotId"
	SortByCreatedAt     = "createdAt"
)

// ReservationQuery filters reservation listings. Zero values mean "any".
type ReservationQuery struct {
	Search        string // matches status or spot number
	Status        string
	UserID        uint64
	ParkingSpotID uint64
	Date          *time.Time // UTC day whose window the reservation overlaps
	SortBy        string     // one of the SortBy* keys; defaults to SortByStartTime
	Desc          bool
}
