package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
)

// SweepResult counts the reservations moved by one sweep.
type SweepResult struct {
	Activated int
	Completed int
}

// Sweep advances reservations whose window has been reached: Approved
// reservations that have started become Active and mark their spot
// occupied; Active reservations that have ended become Completed and free
// the spot. Each reservation is moved in its own transaction under the spot
// lock so a failure only skips that reservation.
func (s *ReservationService) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()
	var out SweepResult

	started, err := s.store.ReservationsStarted(ctx, model.StatusApproved, now)
	if err != nil {
		return out, fmt.Errorf("list started reservations: %w", err)
	}
	for _, r := range started {
		moved, err := s.advance(ctx, r.ID, model.StatusApproved, model.StatusActive, true)
		if err != nil {
			s.log.Warn("activate reservation failed", zap.Uint64("reservation_id", r.ID), zap.Error(err))
			continue
		}
		if moved != nil {
			out.Activated++
			s.publish(ctx, queue.EventReservationActivated, *moved)
		}
	}

	ended, err := s.store.ReservationsEnded(ctx, model.StatusActive, now)
	if err != nil {
		return out, fmt.Errorf("list ended reservations: %w", err)
	}
	for _, r := range ended {
		moved, err := s.advance(ctx, r.ID, model.StatusActive, model.StatusCompleted, false)
		if err != nil {
			s.log.Warn("complete reservation failed", zap.Uint64("reservation_id", r.ID), zap.Error(err))
			continue
		}
		if moved != nil {
			out.Completed++
			s.publish(ctx, queue.EventReservationCompleted, *moved)
		}
	}
	return out, nil
}

// advance moves one reservation from -> to unless it changed since it was
// listed, in which case it returns nil without error.
func (s *ReservationService) advance(ctx context.Context, id uint64, from, to string, occupied bool) (*model.Reservation, error) {
	var moved *model.Reservation
	err := s.store.InTx(ctx, func(tx Queries) error {
		current, err := s.lockForWrite(ctx, tx, model.Actor{Role: model.RoleAdmin}, id)
		if err != nil {
			return err
		}
		if current.Status != from {
			return nil
		}
		current.Status = to
		if err := tx.UpdateReservation(ctx, &current); err != nil {
			return err
		}
		if err := tx.SetSpotOccupied(ctx, current.ParkingSpotID, occupied); err != nil {
			return err
		}
		moved = &current
		return nil
	})
	return moved, err
}
