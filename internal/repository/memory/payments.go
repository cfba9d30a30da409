package memory

import (
	"context"
	"database/sql"
	"sort"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

func (q queries) PaymentByID(_ context.Context, id uint64) (model.Payment, error) {
	defer q.enter()()
	p, ok := q.db.t.payments[id]
	if !ok {
		return notFound[model.Payment]()
	}
	return p, nil
}

func (q queries) ListPayments(_ context.Context, userID uint64) ([]model.Payment, error) {
	defer q.enter()()
	out := []model.Payment{}
	for _, p := range q.db.t.payments {
		if userID == 0 || p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.After(out[j].DateTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (q queries) InsertPayment(_ context.Context, p *model.Payment) error {
	defer q.enter()()
	if _, ok := q.db.t.users[p.UserID]; !ok {
		return repository.ErrConflict
	}
	if _, ok := q.db.t.reservations[p.ReservationID]; !ok {
		return repository.ErrConflict
	}
	p.ID = q.db.t.next("payments")
	q.db.t.payments[p.ID] = *p
	return nil
}

func (q queries) UpdatePayment(_ context.Context, p *model.Payment) error {
	defer q.enter()()
	current, ok := q.db.t.payments[p.ID]
	if !ok {
		return sql.ErrNoRows
	}
	current.Amount, current.Method, current.Status = p.Amount, p.Method, p.Status
	q.db.t.payments[p.ID] = current
	*p = current
	return nil
}

func (q queries) DeletePayment(_ context.Context, id uint64) error {
	defer q.enter()()
	if _, ok := q.db.t.payments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(q.db.t.payments, id)
	return nil
}

func (q queries) DeletePaymentsByReservation(_ context.Context, reservationID uint64) (int64, error) {
	defer q.enter()()
	var n int64
	for id, p := range q.db.t.payments {
		if p.ReservationID == reservationID {
			delete(q.db.t.payments, id)
			n++
		}
	}
	return n, nil
}

func (q queries) InsertNotification(_ context.Context, n *model.Notification) error {
	defer q.enter()()
	if _, ok := q.db.t.users[n.UserID]; !ok {
		return repository.ErrConflict
	}
	n.ID = q.db.t.next("notifications")
	q.db.t.notifications[n.ID] = *n
	return nil
}

func (q queries) ListNotifications(_ context.Context, userID uint64) ([]model.Notification, error) {
	defer q.enter()()
	out := []model.Notification{}
	for _, n := range q.db.t.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (q queries) MarkNotificationRead(_ context.Context, id, userID uint64) error {
	defer q.enter()()
	n, ok := q.db.t.notifications[id]
	if !ok || n.UserID != userID {
		return sql.ErrNoRows
	}
	n.IsRead = true
	q.db.t.notifications[id] = n
	return nil
}
