package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// SpotInput carries writable spot fields. IsOccupied is optional on update.
type SpotInput struct {
	Number     string
	Section    string
	IsOccupied *bool
}

// SpotService manages the parking spot inventory.
type SpotService struct {
	store Store
}

func NewSpotService(store Store) *SpotService { return &SpotService{store: store} }

func normalizeSpot(in *SpotInput) (string, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.Section = strings.TrimSpace(in.Section)
	if in.Number == "" {
		return "", apperror.InvalidArgument("number", "number is required")
	}
	if in.Section == "" {
		return "", apperror.InvalidArgument("section", "section is required")
	}
	size, ok := model.SizeForSection(in.Section)
	if !ok {
		return "", apperror.Unprocessable(fmt.Sprintf("unknown section %q", in.Section))
	}
	return size, nil
}

func (s *SpotService) Create(ctx context.Context, actor model.Actor, in SpotInput) (model.ParkingSpot, error) {
	if !actor.IsAdmin() {
		return model.ParkingSpot{}, apperror.Forbidden("only administrators can manage spots")
	}
	size, err := normalizeSpot(&in)
	if err != nil {
		return model.ParkingSpot{}, err
	}
	spot := model.ParkingSpot{Number: in.Number, Section: in.Section, Size: size}
	if in.IsOccupied != nil {
		spot.IsOccupied = *in.IsOccupied
	}
	err = s.store.InTx(ctx, func(tx Queries) error {
		taken, err := tx.SpotNumberTaken(ctx, spot.Number, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict(fmt.Sprintf("parking spot number %q already exists", spot.Number))
		}
		return writeErr(tx.InsertSpot(ctx, &spot), "insert spot", "parking spot number already exists")
	})
	if err != nil {
		return model.ParkingSpot{}, err
	}
	return spot, nil
}

func (s *SpotService) Update(ctx context.Context, actor model.Actor, id uint64, in SpotInput) (model.ParkingSpot, error) {
	if !actor.IsAdmin() {
		return model.ParkingSpot{}, apperror.Forbidden("only administrators can manage spots")
	}
	if id == 0 {
		return model.ParkingSpot{}, apperror.InvalidArgument("parkingSpotId", "parkingSpotId is required")
	}
	size, err := normalizeSpot(&in)
	if err != nil {
		return model.ParkingSpot{}, err
	}
	var spot model.ParkingSpot
	err = s.store.InTx(ctx, func(tx Queries) error {
		current, err := tx.LockSpot(ctx, id)
		if err != nil {
			return lookupErr(err, "parking spot", id)
		}
		taken, err := tx.SpotNumberTaken(ctx, in.Number, id)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict(fmt.Sprintf("parking spot number %q already exists", in.Number))
		}
		current.Number, current.Section, current.Size = in.Number, in.Section, size
		if in.IsOccupied != nil {
			current.IsOccupied = *in.IsOccupied
		}
		if err := tx.UpdateSpot(ctx, &current); err != nil {
			return writeErr(err, "update spot", "parking spot number already exists")
		}
		spot = current
		return nil
	})
	if err != nil {
		return model.ParkingSpot{}, err
	}
	return spot, nil
}

// Delete removes a spot. A spot that still has reservations cannot be
// deleted.
func (s *SpotService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("only administrators can manage spots")
	}
	if id == 0 {
		return apperror.InvalidArgument("parkingSpotId", "parkingSpotId is required")
	}
	return s.store.InTx(ctx, func(tx Queries) error {
		if _, err := tx.LockSpot(ctx, id); err != nil {
			return lookupErr(err, "parking spot", id)
		}
		if err := tx.DeleteSpot(ctx, id); err != nil {
			return writeErr(err, "delete spot", "parking spot still has reservations")
		}
		return nil
	})
}

func (s *SpotService) Get(ctx context.Context, id uint64) (model.ParkingSpot, error) {
	if id == 0 {
		return model.ParkingSpot{}, apperror.InvalidArgument("parkingSpotId", "parkingSpotId is required")
	}
	spot, err := s.store.SpotByID(ctx, id)
	if err != nil {
		return model.ParkingSpot{}, lookupErr(err, "parking spot", id)
	}
	return spot, nil
}

func (s *SpotService) List(ctx context.Context) ([]model.ParkingSpot, error) {
	return s.store.ListSpots(ctx)
}
