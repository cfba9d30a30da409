package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/parking-reservation/internal/service"
)

// Store is the MySQL-backed service.Store. Its query methods run on the
// connection pool; InTx hands fn the same methods bound to a transaction.
type Store struct {
	queries
	db *sqlx.DB
}

// queries implements service.Queries on any sqlx executor, so the same
// code serves both pooled and transactional access.
type queries struct {
	q sqlx.ExtContext
}

var _ service.Store = (*Store)(nil)

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{queries: queries{q: db}, db: db}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sqlx.DB { return s.db }

// InTx runs fn in a READ COMMITTED transaction. Row locks taken with
// LockSpot/LockReservation are held until commit or rollback.
func (s *Store) InTx(ctx context.Context, fn func(tx service.Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(queries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translate(fmt.Errorf("commit: %w", err))
	}
	committed = true
	return nil
}

// affected turns a zero-row write into sql.ErrNoRows.
func affected(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func lastInsertID(res sql.Result, err error) (uint64, error) {
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
