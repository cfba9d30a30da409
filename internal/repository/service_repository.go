package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/parking-reservation/internal/model"
)

const serviceColumns = `id, name, description, price_cents`

// ServiceByID returns an add-on service or sql.ErrNoRows.
func (r queries) ServiceByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := sqlx.GetContext(ctx, r.q, &s, "SELECT "+serviceColumns+" FROM services WHERE id=?", id)
	return s, err
}

func (r queries) ListServices(ctx context.Context) ([]model.Service, error) {
	out := []model.Service{}
	err := sqlx.SelectContext(ctx, r.q, &out, "SELECT "+serviceColumns+" FROM services ORDER BY name")
	return out, err
}

// ServicesByIDs returns the services among ids that exist, ordered by id.
func (r queries) ServicesByIDs(ctx context.Context, ids []uint64) ([]model.Service, error) {
	out := []model.Service{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In("SELECT "+serviceColumns+" FROM services WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, err
	}
	err = sqlx.SelectContext(ctx, r.q, &out, r.q.Rebind(query), args...)
	return out, err
}

func (r queries) ServiceNameTaken(ctx context.Context, name string, excludeID uint64) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n,
		"SELECT COUNT(*) FROM services WHERE name=? AND id<>?", strings.TrimSpace(name), excludeID)
	return n > 0, err
}

func (r queries) InsertService(ctx context.Context, s *model.Service) error {
	id, err := lastInsertID(r.q.ExecContext(ctx,
		"INSERT INTO services (name, description, price_cents) VALUES (?,?,?)",
		s.Name, s.Description, s.Price))
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r queries) UpdateService(ctx context.Context, s *model.Service) error {
	return affected(r.q.ExecContext(ctx,
		"UPDATE services SET name=?, description=?, price_cents=? WHERE id=?",
		s.Name, s.Description, s.Price, s.ID))
}

// DeleteService removes a service; reservation_services rows referencing
// it go with it (ON DELETE CASCADE).
func (r queries) DeleteService(ctx context.Context, id uint64) error {
	return affected(r.q.ExecContext(ctx, "DELETE FROM services WHERE id=?", id))
}
