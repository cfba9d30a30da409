package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/parking-reservation/internal/apperror"
)

// lookupErr classifies a store lookup failure: a missing row becomes
// NotFound(entity, id), anything else is wrapped as internal.
func lookupErr(err error, entity string, id uint64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(entity, id)
	}
	return fmt.Errorf("load %s %d: %w", entity, id, err)
}

// writeErr classifies a store write failure. Uniqueness or reference
// violations raised by the store become Conflict with the given reason.
func writeErr(err error, op, conflict string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperror.ErrConflict) {
		return apperror.Wrap(apperror.KindConflict, conflict, err)
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
