package service

import (
	"context"
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
)

// Queries is the persistence surface used by the services. Lookups of a
// missing row return sql.ErrNoRows; writes that violate a uniqueness or
// reference rule return an error matching apperror.ErrConflict.
type Queries interface {
	UserByID(ctx context.Context, id uint64) (model.User, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	InsertUser(ctx context.Context, u *model.User) error

	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeRefresh(ctx context.Context, tokenHash string) error
	RevokeAllRefresh(ctx context.Context, userID uint64) error

	SpotByID(ctx context.Context, id uint64) (model.ParkingSpot, error)
	// LockSpot reads the spot and, inside a transaction, holds an exclusive
	// lock on it until commit. Writers on the same spot serialize here.
	LockSpot(ctx context.Context, id uint64) (model.ParkingSpot, error)
	ListSpots(ctx context.Context) ([]model.ParkingSpot, error)
	SpotNumberTaken(ctx context.Context, number string, excludeID uint64) (bool, error)
	InsertSpot(ctx context.Context, s *model.ParkingSpot) error
	UpdateSpot(ctx context.Context, s *model.ParkingSpot) error
	DeleteSpot(ctx context.Context, id uint64) error
	SetSpotOccupied(ctx context.Context, id uint64, occupied bool) error

	ServiceByID(ctx context.Context, id uint64) (model.Service, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	ServicesByIDs(ctx context.Context, ids []uint64) ([]model.Service, error)
	ServiceNameTaken(ctx context.Context, name string, excludeID uint64) (bool, error)
	InsertService(ctx context.Context, s *model.Service) error
	UpdateService(ctx context.Context, s *model.Service) error
	DeleteService(ctx context.Context, id uint64) error

	ReservationByID(ctx context.Context, id uint64) (model.Reservation, error)
	LockReservation(ctx context.Context, id uint64) (model.Reservation, error)
	SearchReservations(ctx context.Context, q model.ReservationQuery) ([]model.Reservation, error)
	SpotReservations(ctx context.Context, spotID uint64) ([]model.Reservation, error)
	ReservationsStarted(ctx context.Context, status string, now time.Time) ([]model.Reservation, error)
	ReservationsEnded(ctx context.Context, status string, now time.Time) ([]model.Reservation, error)
	InsertReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, id uint64) error
	ServicesForReservations(ctx context.Context, ids []uint64) (map[uint64][]model.Service, error)
	ReplaceReservationServices(ctx context.Context, reservationID uint64, serviceIDs []uint64) error

	PaymentByID(ctx context.Context, id uint64) (model.Payment, error)
	ListPayments(ctx context.Context, userID uint64) ([]model.Payment, error)
	InsertPayment(ctx context.Context, p *model.Payment) error
	UpdatePayment(ctx context.Context, p *model.Payment) error
	DeletePayment(ctx context.Context, id uint64) error
	DeletePaymentsByReservation(ctx context.Context, reservationID uint64) (int64, error)

	InsertNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID uint64) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uint64) error
}

// Store adds transactions to Queries. InTx commits when fn returns nil and
// rolls back otherwise; fn must not retain tx after returning.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(tx Queries) error) error
}

// Publisher emits domain events after a successful commit.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.Event) error { return nil }
