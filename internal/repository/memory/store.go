// Package memory is an in-process service.Store. It mirrors the MySQL
// store's observable behaviour: sql.ErrNoRows for missing rows,
// repository.ErrConflict for uniqueness and reference violations, and
// transactions that either apply completely or not at all.
package memory

import (
	"context"
	"database/sql"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

type refreshRow struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

// tables holds every row. A transaction works on the live tables and puts
// back a snapshot taken at its start when it fails.
type tables struct {
	seq           map[string]uint64
	users         map[uint64]model.User
	refresh       map[string]refreshRow
	spots         map[uint64]model.ParkingSpot
	services      map[uint64]model.Service
	reservations  map[uint64]model.Reservation
	resServices   map[uint64][]uint64
	payments      map[uint64]model.Payment
	notifications map[uint64]model.Notification
}

func newTables() *tables {
	return &tables{
		seq:           map[string]uint64{},
		users:         map[uint64]model.User{},
		refresh:       map[string]refreshRow{},
		spots:         map[uint64]model.ParkingSpot{},
		services:      map[uint64]model.Service{},
		reservations:  map[uint64]model.Reservation{},
		resServices:   map[uint64][]uint64{},
		payments:      map[uint64]model.Payment{},
		notifications: map[uint64]model.Notification{},
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		seq:           maps.Clone(t.seq),
		users:         maps.Clone(t.users),
		refresh:       maps.Clone(t.refresh),
		spots:         maps.Clone(t.spots),
		services:      maps.Clone(t.services),
		reservations:  maps.Clone(t.reservations),
		resServices:   make(map[uint64][]uint64, len(t.resServices)),
		payments:      maps.Clone(t.payments),
		notifications: maps.Clone(t.notifications),
	}
	for k, v := range t.resServices {
		c.resServices[k] = slices.Clone(v)
	}
	return c
}

func (t *tables) next(table string) uint64 {
	t.seq[table]++
	return t.seq[table]
}

type db struct {
	mu sync.Mutex
	t  *tables
}

// queries implements service.Queries. Outside a transaction every call
// takes the store mutex; inside one the mutex is already held by InTx.
type queries struct {
	db   *db
	held bool
}

func (q queries) enter() func() {
	if q.held {
		return func() {}
	}
	q.db.mu.Lock()
	return q.db.mu.Unlock
}

// Store is the in-memory service.Store. Transactions are serialized, which
// also gives LockSpot and LockReservation their exclusive semantics.
type Store struct {
	queries
}

var _ service.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{queries: queries{db: &db{t: newTables()}}}
}

// InTx runs fn while holding the store exclusively. When fn fails every
// change it made is discarded.
func (s *Store) InTx(ctx context.Context, fn func(tx service.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	snapshot := s.db.t.clone()
	if err := fn(queries{db: s.db, held: true}); err != nil {
		s.db.t = snapshot
		return err
	}
	return nil
}

func now() time.Time { return time.Now().UTC().Truncate(time.Second) }

func notFound[T any]() (T, error) {
	var zero T
	return zero, sql.ErrNoRows
}
