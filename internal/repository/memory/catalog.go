package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/repository"
)

func (q queries) SpotByID(_ context.Context, id uint64) (model.ParkingSpot, error) {
	defer q.enter()()
	s, ok := q.db.t.spots[id]
	if !ok {
		return notFound[model.ParkingSpot]()
	}
	return s, nil
}

func (q queries) LockSpot(ctx context.Context, id uint64) (model.ParkingSpot, error) {
	return q.SpotByID(ctx, id)
}

func (q queries) ListSpots(context.Context) ([]model.ParkingSpot, error) {
	defer q.enter()()
	out := make([]model.ParkingSpot, 0, len(q.db.t.spots))
	for _, s := range q.db.t.spots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (q queries) SpotNumberTaken(_ context.Context, number string, excludeID uint64) (bool, error) {
	defer q.enter()()
	return q.spotNumberTaken(strings.TrimSpace(number), excludeID), nil
}

func (q queries) spotNumberTaken(number string, excludeID uint64) bool {
	for id, s := range q.db.t.spots {
		if id != excludeID && s.Number == number {
			return true
		}
	}
	return false
}

func (q queries) InsertSpot(_ context.Context, s *model.ParkingSpot) error {
	defer q.enter()()
	if q.spotNumberTaken(s.Number, 0) {
		return repository.ErrConflict
	}
	s.ID = q.db.t.next("parking_spots")
	s.CreatedAt, s.UpdatedAt = now(), now()
	q.db.t.spots[s.ID] = *s
	return nil
}

func (q queries) UpdateSpot(_ context.Context, s *model.ParkingSpot) error {
	defer q.enter()()
	current, ok := q.db.t.spots[s.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if q.spotNumberTaken(s.Number, s.ID) {
		return repository.ErrConflict
	}
	s.CreatedAt, s.UpdatedAt = current.CreatedAt, now()
	q.db.t.spots[s.ID] = *s
	return nil
}

func (q queries) DeleteSpot(_ context.Context, id uint64) error {
	defer q.enter()()
	if _, ok := q.db.t.spots[id]; !ok {
		return sql.ErrNoRows
	}
	for _, r := range q.db.t.reservations {
		if r.ParkingSpotID == id {
			return repository.ErrConflict
		}
	}
	delete(q.db.t.spots, id)
	return nil
}

func (q queries) SetSpotOccupied(_ context.Context, id uint64, occupied bool) error {
	defer q.enter()()
	s, ok := q.db.t.spots[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.IsOccupied = occupied
	s.UpdatedAt = now()
	q.db.t.spots[id] = s
	return nil
}

func (q queries) ServiceByID(_ context.Context, id uint64) (model.Service, error) {
	defer q.enter()()
	s, ok := q.db.t.services[id]
	if !ok {
		return notFound[model.Service]()
	}
	return s, nil
}

func (q queries) ListServices(context.Context) ([]model.Service, error) {
	defer q.enter()()
	out := make([]model.Service, 0, len(q.db.t.services))
	for _, s := range q.db.t.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (q queries) ServicesByIDs(_ context.Context, ids []uint64) ([]model.Service, error) {
	defer q.enter()()
	out := []model.Service{}
	for _, id := range ids {
		if s, ok := q.db.t.services[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (q queries) ServiceNameTaken(_ context.Context, name string, excludeID uint64) (bool, error) {
	defer q.enter()()
	return q.serviceNameTaken(strings.TrimSpace(name), excludeID), nil
}

func (q queries) serviceNameTaken(name string, excludeID uint64) bool {
	for id, s := range q.db.t.services {
		if id != excludeID && s.Name == name {
			return true
		}
	}
	return false
}

func (q queries) InsertService(_ context.Context, s *model.Service) error {
	defer q.enter()()
	if q.serviceNameTaken(s.Name, 0) {
		return repository.ErrConflict
	}
	s.ID = q.db.t.next("services")
	q.db.t.services[s.ID] = *s
	return nil
}

func (q queries) UpdateService(_ context.Context, s *model.Service) error {
	defer q.enter()()
	if _, ok := q.db.t.services[s.ID]; !ok {
		return sql.ErrNoRows
	}
	if q.serviceNameTaken(s.Name, s.ID) {
		return repository.ErrConflict
	}
	q.db.t.services[s.ID] = *s
	return nil
}

// DeleteService also detaches the service from every reservation.
func (q queries) DeleteService(_ context.Context, id uint64) error {
	defer q.enter()()
	if _, ok := q.db.t.services[id]; !ok {
		return sql.ErrNoRows
	}
	delete(q.db.t.services, id)
	for resID, ids := range q.db.t.resServices {
		kept := ids[:0]
		for _, sid := range ids {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		q.db.t.resServices[resID] = kept
	}
	return nil
}
