package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const paymentColumns = `id, reservation_id, user_id, amount_cents, payment_method, payment_status, date_time`

func (r queries) PaymentByID(ctx context.Context, id uint64) (model.Payment, error) {
	var p model.Payment
	err := sqlx.GetContext(ctx, r.q, &p, "SELECT "+paymentColumns+" FROM payments WHERE id=?", id)
	return p, err
}

// ListPayments returns the payments of userID, or all payments when userID
// is zero, newest first.
func (r queries) ListPayments(ctx context.Context, userID uint64) ([]model.Payment, error) {
	out := []model.Payment{}
	query := "SELECT " + paymentColumns + " FROM payments"
	args := []any{}
	if userID != 0 {
		query += " WHERE user_id=?"
		args = append(args, userID)
	}
	query += " ORDER BY date_time DESC, id DESC"
	err := sqlx.SelectContext(ctx, r.q, &out, query, args...)
	return out, err
}

func (r queries) InsertPayment(ctx context.Context, p *model.Payment) error {
	id, err := lastInsertID(r.q.ExecContext(ctx,
		`INSERT INTO payments (reservation_id, user_id, amount_cents, payment_method, payment_status, date_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ReservationID, p.UserID, p.Amount, p.Method, p.Status, p.DateTime.UTC()))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// UpdatePayment writes amount, method and status. The user and reservation
// columns are never updated.
func (r queries) UpdatePayment(ctx context.Context, p *model.Payment) error {
	return affected(r.q.ExecContext(ctx,
		"UPDATE payments SET amount_cents=?, payment_method=?, payment_status=? WHERE id=?",
		p.Amount, p.Method, p.Status, p.ID))
}

func (r queries) DeletePayment(ctx context.Context, id uint64) error {
	return affected(r.q.ExecContext(ctx, "DELETE FROM payments WHERE id=?", id))
}

// DeletePaymentsByReservation removes every payment of a reservation and
// reports how many were removed.
func (r queries) DeletePaymentsByReservation(ctx context.Context, reservationID uint64) (int64, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM payments WHERE reservation_id=?", reservationID)
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}
