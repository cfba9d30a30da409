package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
)

const msgTimeOrder = "Start time must be before end time"

// requireFields runs the store-free checks of a new reservation: both
// references present and both instants supplied.
func requireFields(in CreateReservationInput) error {
	if in.UserID == 0 {
		return apperror.InvalidArgument("userId", "userId is required")
	}
	if in.ParkingSpotID == 0 {
		return apperror.InvalidArgument("parkingSpotId", "parkingSpotId is required")
	}
	if in.StartTime.IsZero() {
		return apperror.InvalidArgument("startTime", "startTime is required")
	}
	if in.EndTime.IsZero() {
		return apperror.InvalidArgument("endTime", "endTime is required")
	}
	return nil
}

// validateRefs checks that the user exists and locks the spot. The spot
// lock is held for the rest of the transaction.
func validateRefs(ctx context.Context, tx Queries, userID, spotID uint64) (model.ParkingSpot, error) {
	if _, err := tx.UserByID(ctx, userID); err != nil {
		return model.ParkingSpot{}, lookupErr(err, "user", userID)
	}
	spot, err := tx.LockSpot(ctx, spotID)
	if err != nil {
		return model.ParkingSpot{}, lookupErr(err, "parking spot", spotID)
	}
	return spot, nil
}

func validateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return apperror.Unprocessable(msgTimeOrder)
	}
	return nil
}

// validateStatus checks enum membership and, when from is set, that the
// move is allowed.
func validateStatus(from, to string) error {
	if !model.ValidStatus(to) {
		return apperror.Unprocessable(fmt.Sprintf("invalid status %q", to))
	}
	if from != "" && !CanTransition(from, to) {
		return apperror.Unprocessable(fmt.Sprintf("cannot change status from %s to %s", from, to))
	}
	return nil
}

func validateTotal(total *model.Money) error {
	if total != nil && *total < 0 {
		return apperror.Unprocessable("totalAmount cannot be negative")
	}
	return nil
}

func ensureAvailable(ctx context.Context, tx Queries, spotID uint64, start, end time.Time, excludeID uint64) error {
	existing, err := tx.SpotReservations(ctx, spotID)
	if err != nil {
		return fmt.Errorf("scan spot %d reservations: %w", spotID, err)
	}
	if c := firstConflict(existing, start, end, excludeID); c != nil {
		return apperror.Conflict(fmt.Sprintf(
			"parking spot %d is already reserved from %s to %s",
			spotID, c.StartTime.Format(time.RFC3339), c.EndTime.Format(time.RFC3339)))
	}
	return nil
}
