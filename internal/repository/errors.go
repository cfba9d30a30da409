// Package repository implements the service store on MySQL through sqlx.
// Lookups of a missing row return sql.ErrNoRows, as database/sql does;
// writes rejected by a uniqueness or foreign-key rule return ErrConflict.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/parking-reservation/internal/apperror"
)

// ErrConflict is returned when a write cannot be applied because of
// conflicting state: a duplicate unique key, a row still referenced by
// others, or a lock the database gave up waiting for. It matches
// apperror.ErrConflict.
var ErrConflict = apperror.Conflict("conflicting record")

// MySQL server error numbers translated to ErrConflict.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
	errLockWaitTimeout = 1205
	errLockDeadlock    = 1213
	errCheckConstraint = 3819
)

// translate maps driver errors onto repository sentinels. Unknown errors
// pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry, errRowIsReferenced, errNoReferencedRow, errLockWaitTimeout, errLockDeadlock, errCheckConstraint:
			return fmt.Errorf("%w: %s", ErrConflict, me.Message)
		}
	}
	return err
}
