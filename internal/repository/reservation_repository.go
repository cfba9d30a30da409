package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const reservationColumns = `r.id, r.user_id, r.parking_spot_id, r.start_time, r.end_time, r.status,
	r.total_amount_cents, r.created_at, r.updated_at`

// ReservationByID returns a reservation or sql.ErrNoRows. Services are not
// loaded; see ServicesForReservations.
func (r queries) ReservationByID(ctx context.Context, id uint64) (model.Reservation, error) {
	var res model.Reservation
	err := sqlx.GetContext(ctx, r.q, &res, "SELECT "+reservationColumns+" FROM reservations r WHERE r.id=?", id)
	return res, err
}

// LockReservation reads a reservation with FOR UPDATE.
func (r queries) LockReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	var res model.Reservation
	err := sqlx.GetContext(ctx, r.q, &res,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.id=? FOR UPDATE", id)
	return res, translate(err)
}

// SpotReservations returns every reservation on a spot, whatever its
// status; callers decide which statuses block.
func (r queries) SpotReservations(ctx context.Context, spotID uint64) ([]model.Reservation, error) {
	out := []model.Reservation{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.parking_spot_id=? ORDER BY r.start_time", spotID)
	return out, err
}

// ReservationsStarted lists reservations in status whose window contains now.
func (r queries) ReservationsStarted(ctx context.Context, status string, now time.Time) ([]model.Reservation, error) {
	out := []model.Reservation{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.status=? AND r.start_time<=? AND r.end_time>? ORDER BY r.id",
		status, now.UTC(), now.UTC())
	return out, err
}

// ReservationsEnded lists reservations in status whose window is over.
func (r queries) ReservationsEnded(ctx context.Context, status string, now time.Time) ([]model.Reservation, error) {
	out := []model.Reservation{}
	err := sqlx.SelectContext(ctx, r.q, &out,
		"SELECT "+reservationColumns+" FROM reservations r WHERE r.status=? AND r.end_time<=? ORDER BY r.id",
		status, now.UTC())
	return out, err
}

// InsertReservation inserts res and reads back the stored row to populate
// the id and timestamps.
func (r queries) InsertReservation(ctx context.Context, res *model.Reservation) error {
	id, err := lastInsertID(r.q.ExecContext(ctx,
		`INSERT INTO reservations (user_id, parking_spot_id, start_time, end_time, status, total_amount_cents)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.UserID, res.ParkingSpotID, res.StartTime.UTC(), res.EndTime.UTC(), res.Status, res.TotalAmount))
	if err != nil {
		return err
	}
	services := res.Services
	if err := sqlx.GetContext(ctx, r.q, res, "SELECT "+reservationColumns+" FROM reservations r WHERE r.id=?", id); err != nil {
		return err
	}
	res.Services = services
	return nil
}

// UpdateReservation writes the mutable columns of res.
func (r queries) UpdateReservation(ctx context.Context, res *model.Reservation) error {
	if err := affected(r.q.ExecContext(ctx,
		"UPDATE reservations SET start_time=?, end_time=?, status=?, total_amount_cents=? WHERE id=?",
		res.StartTime.UTC(), res.EndTime.UTC(), res.Status, res.TotalAmount, res.ID)); err != nil {
		return err
	}
	services := res.Services
	if err := sqlx.GetContext(ctx, r.q, res, "SELECT "+reservationColumns+" FROM reservations r WHERE r.id=?", res.ID); err != nil {
		return err
	}
	res.Services = services
	return nil
}

func (r queries) DeleteReservation(ctx context.Context, id uint64) error {
	return affected(r.q.ExecContext(ctx, "DELETE FROM reservations WHERE id=?", id))
}

// ServicesForReservations loads the add-ons of several reservations in one
// query, keyed by reservation id.
func (r queries) ServicesForReservations(ctx context.Context, ids []uint64) (map[uint64][]model.Service, error) {
	out := make(map[uint64][]model.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT rs.reservation_id, s.id, s.name, s.description, s.price_cents
		FROM reservation_services rs
		JOIN services s ON s.id = rs.service_id
		WHERE rs.reservation_id IN (?)
		ORDER BY rs.reservation_id, s.id`, ids)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ReservationID uint64 `db:"reservation_id"`
		model.Service
	}
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ReservationID] = append(out[row.ReservationID], row.Service)
	}
	return out, nil
}

// ReplaceReservationServices makes serviceIDs the complete add-on set of a
// reservation. An empty slice clears it.
func (r queries) ReplaceReservationServices(ctx context.Context, reservationID uint64, serviceIDs []uint64) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM reservation_services WHERE reservation_id=?", reservationID); err != nil {
		return translate(err)
	}
	if len(serviceIDs) == 0 {
		return nil
	}
	query := "INSERT INTO reservation_services (reservation_id, service_id) VALUES "
	args := make([]any, 0, len(serviceIDs)*2)
	for i, id := range serviceIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, reservationID, id)
	}
	_, err := r.q.ExecContext(ctx, query, args...)
	return translate(err)
}
