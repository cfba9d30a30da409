package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := New()
	boom := errors.New("boom")
	err := st.InTx(ctx, func(tx service.Queries) error {
		if err := tx.InsertSpot(ctx, &model.ParkingSpot{Number: "A-1", Section: model.SectionStandard}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}
	spots, _ := st.ListSpots(ctx)
	if len(spots) != 0 {
		t.Fatalf("expected rollback, found %d spots", len(spots))
	}
}

func TestMissingRowsAndConflicts(t *testing.T) {
	ctx := context.Background()
	st := New()
	if _, err := st.ReservationByID(ctx, 42); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("ReservationByID error = %v, want sql.ErrNoRows", err)
	}
	if err := st.InsertUser(ctx, &model.User{Email: "a@example.com"}); err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
	err := st.InsertUser(ctx, &model.User{Email: "A@example.com"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate email error = %v, want conflict", err)
	}
	r := model.Reservation{UserID: 1, ParkingSpotID: 9, StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	if err := st.InsertReservation(ctx, &r); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("reservation on missing spot error = %v, want conflict", err)
	}
}

func TestSearchSortsAndFilters(t *testing.T) {
	ctx := context.Background()
	st := New()
	_ = st.InsertUser(ctx, &model.User{Email: "u@example.com"})
	_ = st.InsertSpot(ctx, &model.ParkingSpot{Number: "B-7", Section: model.SectionLarge})
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, status := range []string{model.StatusApproved, model.StatusPending, model.StatusCancelled} {
		r := model.Reservation{
			UserID:        1,
			ParkingSpotID: 1,
			StartTime:     base.Add(time.Duration(2-i) * 24 * time.Hour),
			EndTime:       base.Add(time.Duration(2-i)*24*time.Hour + time.Hour),
			Status:        status,
		}
		if err := st.InsertReservation(ctx, &r); err != nil {
			t.Fatalf("InsertReservation: %v", err)
		}
	}

	list, _ := st.SearchReservations(ctx, model.ReservationQuery{SortBy: model.SortByStartTime})
	if len(list) != 3 || list[0].ID != 3 || list[2].ID != 1 {
		t.Fatalf("unexpected order: %+v", list)
	}
	list, _ = st.SearchReservations(ctx, model.ReservationQuery{Search: "b-7", Status: model.StatusPending})
	if len(list) != 1 || list[0].ID != 2 {
		t.Fatalf("unexpected filter result: %+v", list)
	}
	day := base.Add(24 * time.Hour)
	list, _ = st.SearchReservations(ctx, model.ReservationQuery{Date: &day})
	if len(list) != 1 || list[0].ID != 2 {
		t.Fatalf("unexpected date result: %+v", list)
	}
}
