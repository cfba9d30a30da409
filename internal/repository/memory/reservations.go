package memory

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

func (q queries) ReservationByID(_ context.Context, id uint64) (model.Reservation, error) {
	defer q.enter()()
	r, ok := q.db.t.reservations[id]
	if !ok {
		return notFound[model.Reservation]()
	}
	return r, nil
}

func (q queries) LockReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	return q.ReservationByID(ctx, id)
}

func (q queries) filter(keep func(model.Reservation) bool) []model.Reservation {
	out := []model.Reservation{}
	for _, r := range q.db.t.reservations {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (q queries) SpotReservations(_ context.Context, spotID uint64) ([]model.Reservation, error) {
	defer q.enter()()
	out := q.filter(func(r model.Reservation) bool { return r.ParkingSpotID == spotID })
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (q queries) ReservationsStarted(_ context.Context, status string, at time.Time) ([]model.Reservation, error) {
	defer q.enter()()
	out := q.filter(func(r model.Reservation) bool {
		return r.Status == status && !r.StartTime.After(at) && r.EndTime.After(at)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (q queries) ReservationsEnded(_ context.Context, status string, at time.Time) ([]model.Reservation, error) {
	defer q.enter()()
	out := q.filter(func(r model.Reservation) bool {
		return r.Status == status && !r.EndTime.After(at)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var reservationLess = map[string]func(a, b model.Reservation) int{
	model.SortByID:            func(a, b model.Reservation) int { return cmpUint(a.ID, b.ID) },
	model.SortByStartTime:     func(a, b model.Reservation) int { return a.StartTime.Compare(b.StartTime) },
	model.SortByEndTime:       func(a, b model.Reservation) int { return a.EndTime.Compare(b.EndTime) },
	model.SortByStatus:        func(a, b model.Reservation) int { return strings.Compare(a.Status, b.Status) },
	model.SortByUserID:        func(a, b model.Reservation) int { return cmpUint(a.UserID, b.UserID) },
	model.SortByParkingSpotID: func(a, b model.Reservation) int { return cmpUint(a.ParkingSpotID, b.ParkingSpotID) },
	model.SortByCreatedAt:     func(a, b model.Reservation) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (q queries) SearchReservations(_ context.Context, rq model.ReservationQuery) ([]model.Reservation, error) {
	defer q.enter()()
	search := strings.ToLower(strings.TrimSpace(rq.Search))
	out := q.filter(func(r model.Reservation) bool {
		if search != "" {
			spot := strings.ToLower(q.db.t.spots[r.ParkingSpotID].Number)
			if !strings.Contains(strings.ToLower(r.Status), search) && !strings.Contains(spot, search) {
				return false
			}
		}
		if rq.Status != "" && r.Status != rq.Status {
			return false
		}
		if rq.UserID != 0 && r.UserID != rq.UserID {
			return false
		}
		if rq.ParkingSpotID != 0 && r.ParkingSpotID != rq.ParkingSpotID {
			return false
		}
		if rq.Date != nil {
			day := rq.Date.UTC()
			if !r.Overlaps(day, day.Add(24*time.Hour)) {
				return false
			}
		}
		return true
	})
	cmp, ok := reservationLess[rq.SortBy]
	if !ok {
		cmp = reservationLess[model.SortByStartTime]
	}
	slices.SortFunc(out, func(a, b model.Reservation) int {
		c := cmp(a, b)
		if c == 0 {
			c = cmpUint(a.ID, b.ID)
		}
		if rq.Desc {
			return -c
		}
		return c
	})
	return out, nil
}

func (q queries) InsertReservation(_ context.Context, r *model.Reservation) error {
	defer q.enter()()
	if _, ok := q.db.t.users[r.UserID]; !ok {
		return repository.ErrConflict
	}
	if _, ok := q.db.t.spots[r.ParkingSpotID]; !ok {
		return repository.ErrConflict
	}
	r.ID = q.db.t.next("reservations")
	r.StartTime, r.EndTime = r.StartTime.UTC(), r.EndTime.UTC()
	r.CreatedAt, r.UpdatedAt = now(), now()
	row := *r
	row.Services = nil
	row.TotalAmount = copyMoney(r.TotalAmount)
	q.db.t.reservations[r.ID] = row
	return nil
}

func (q queries) UpdateReservation(_ context.Context, r *model.Reservation) error {
	defer q.enter()()
	current, ok := q.db.t.reservations[r.ID]
	if !ok {
		return sql.ErrNoRows
	}
	current.StartTime, current.EndTime = r.StartTime.UTC(), r.EndTime.UTC()
	current.Status = r.Status
	current.TotalAmount = copyMoney(r.TotalAmount)
	current.UpdatedAt = now()
	q.db.t.reservations[r.ID] = current
	services := r.Services
	*r = current
	r.Services = services
	return nil
}

// DeleteReservation removes the reservation and its add-on links. Payments
// still pointing at it block the delete.
func (q queries) DeleteReservation(_ context.Context, id uint64) error {
	defer q.enter()()
	if _, ok := q.db.t.reservations[id]; !ok {
		return sql.ErrNoRows
	}
	for _, p := range q.db.t.payments {
		if p.ReservationID == id {
			return repository.ErrConflict
		}
	}
	delete(q.db.t.reservations, id)
	delete(q.db.t.resServices, id)
	return nil
}

func (q queries) ServicesForReservations(_ context.Context, ids []uint64) (map[uint64][]model.Service, error) {
	defer q.enter()()
	out := make(map[uint64][]model.Service, len(ids))
	for _, id := range ids {
		for _, sid := range q.db.t.resServices[id] {
			if s, ok := q.db.t.services[sid]; ok {
				out[id] = append(out[id], s)
			}
		}
		sort.Slice(out[id], func(i, j int) bool { return out[id][i].ID < out[id][j].ID })
	}
	return out, nil
}

func (q queries) ReplaceReservationServices(_ context.Context, reservationID uint64, serviceIDs []uint64) error {
	defer q.enter()()
	if len(serviceIDs) == 0 {
		delete(q.db.t.resServices, reservationID)
		return nil
	}
	if _, ok := q.db.t.reservations[reservationID]; !ok {
		return repository.ErrConflict
	}
	seen := map[uint64]bool{}
	for _, sid := range serviceIDs {
		if _, ok := q.db.t.services[sid]; !ok || seen[sid] {
			return repository.ErrConflict
		}
		seen[sid] = true
	}
	q.db.t.resServices[reservationID] = slices.Clone(serviceIDs)
	return nil
}

func copyMoney(m *model.Money) *model.Money {
	if m == nil {
		return nil
	}
	v := *m
	return &v
}
