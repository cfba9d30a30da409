package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const spotColumns = `id, number, section, size, is_occupied, created_at, updated_at`

// SpotByID returns a spot or sql.ErrNoRows.
func (r queries) SpotByID(ctx context.Context, id uint64) (model.ParkingSpot, error) {
	var s model.ParkingSpot
	err := sqlx.GetContext(ctx, r.q, &s, "SELECT "+spotColumns+" FROM parking_spots WHERE id=?", id)
	return s, err
}

// LockSpot reads the spot with FOR UPDATE. Inside a transaction the row
// lock serializes every writer touching this spot's reservations.
func (r queries) LockSpot(ctx context.Context, id uint64) (model.ParkingSpot, error) {
	var s model.ParkingSpot
	err := sqlx.GetContext(ctx, r.q, &s, "SELECT "+spotColumns+" FROM parking_spots WHERE id=? FOR UPDATE", id)
	return s, translate(err)
}

func (r queries) ListSpots(ctx context.Context) ([]model.ParkingSpot, error) {
	out := []model.ParkingSpot{}
	err := sqlx.SelectContext(ctx, r.q, &out, "SELECT "+spotColumns+" FROM parking_spots ORDER BY number")
	return out, err
}

// SpotNumberTaken reports whether another spot already uses number.
func (r queries) SpotNumberTaken(ctx context.Context, number string, excludeID uint64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n,
		"SELECT COUNT(*) FROM parking_spots WHERE number=? AND id<>?", strings.TrimSpace(number), excludeID)
	return n > 0, err
}

func (r queries) InsertSpot(ctx context.Context, s *model.ParkingSpot) error {
	id, err := lastInsertID(r.q.ExecContext(ctx,
		"INSERT INTO parking_spots (number, section, size, is_occupied) VALUES (?,?,?,?)",
		s.Number, s.Section, s.Size, s.IsOccupied))
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, r.q, s, "SELECT "+spotColumns+" FROM parking_spots WHERE id=?", id)
}

func (r queries) UpdateSpot(ctx context.Context, s *model.ParkingSpot) error {
	if err := affected(r.q.ExecContext(ctx,
		"UPDATE parking_spots SET number=?, section=?, size=?, is_occupied=? WHERE id=?",
		s.Number, s.Section, s.Size, s.IsOccupied, s.ID)); err != nil {
		return err
	}
	return sqlx.GetContext(ctx, r.q, s, "SELECT "+spotColumns+" FROM parking_spots WHERE id=?", s.ID)
}

// DeleteSpot removes a spot. Reservations reference spots with ON DELETE
// RESTRICT, so a spot in use yields ErrConflict.
func (r queries) DeleteSpot(ctx context.Context, id uint64) error {
	return affected(r.q.ExecContext(ctx, "DELETE FROM parking_spots WHERE id=?", id))
}

func (r queries) SetSpotOccupied(ctx context.Context, id uint64, occupied bool) error {
	return affected(r.q.ExecContext(ctx, "UPDATE parking_spots SET is_occupied=? WHERE id=?", occupied, id))
}
