package service

import (
	"context"
	"time"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// IsAvailable reports whether [start, end) is free among existing, ignoring
// the reservation with id excludeID (0 excludes nothing) and reservations
// whose status no longer holds the spot. Windows that only touch at a
// boundary instant do not conflict.
func IsAvailable(existing []model.Reservation, start, end time.Time, excludeID uint64) bool {
	return firstConflict(existing, start, end, excludeID) == nil
}

func firstConflict(existing []model.Reservation, start, end time.Time, excludeID uint64) *model.Reservation {
	for i := range existing {
		r := &existing[i]
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if !model.Blocking(r.Status) {
			continue
		}
		if r.Overlaps(start, end) {
			return r
		}
	}
	return nil
}

// CheckAvailability is the read-only availability query for a spot. It
// takes no locks, so the answer may be stale by the time a booking is
// attempted; Create and Update re-check under the spot lock.
func (s *ReservationService) CheckAvailability(ctx context.Context, spotID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	if spotID == 0 {
		return false, apperror.InvalidArgument("parkingSpotId", "parkingSpotId is required")
	}
	if start.IsZero() || end.IsZero() {
		return false, apperror.InvalidArgument("startTime", "startTime and endTime are required")
	}
	start, end = toStored(start), toStored(end)
	if !start.Before(end) {
		return false, apperror.Unprocessable(msgTimeOrder)
	}
	if _, err := s.store.SpotByID(ctx, spotID); err != nil {
		return false, lookupErr(err, "parking spot", spotID)
	}
	existing, err := s.store.SpotReservations(ctx, spotID)
	if err != nil {
		return false, err
	}
	return IsAvailable(existing, start, end, excludeID), nil
}
