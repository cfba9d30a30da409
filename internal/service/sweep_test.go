package service_test

import (
	"testing"
	"time"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/service"
)

func TestSweepAdvancesReservations(t *testing.T) {
	e := newEnv(t)
	now := time.Now().UTC().Truncate(time.Minute)
	create := func(spot uint64, start, end time.Time, status string) model.Reservation {
		t.Helper()
		r, err := e.res.Create(ctx, e.admin, service.CreateReservationInput{
			UserID: e.alice.UserID, ParkingSpotID: spot, StartTime: start, EndTime: end, Status: status,
		})
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	started := create(e.spot1, now.Add(-time.Hour), now.Add(time.Hour), model.StatusApproved)
	future := create(e.spot1, now.Add(2*time.Hour), now.Add(3*time.Hour), model.StatusApproved)
	pending := create(e.spot2, now.Add(-time.Hour), now.Add(time.Hour), model.StatusPending)
	ended := create(e.spot2, now.Add(-3*time.Hour), now.Add(-2*time.Hour), model.StatusActive)

	res, err := e.res.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Activated != 1 || res.Completed != 1 {
		t.Fatalf("sweep = %+v", res)
	}

	want := map[uint64]string{
		started.ID: model.StatusActive,
		future.ID:  model.StatusApproved,
		pending.ID: model.StatusPending,
		ended.ID:   model.StatusCompleted,
	}
	for id, status := range want {
		r, err := e.res.Get(ctx, e.admin, id)
		if err != nil {
			t.Fatal(err)
		}
		if r.Status != status {
			t.Errorf("reservation %d: %s, want %s", id, r.Status, status)
		}
	}

	spot1, _ := e.store.SpotByID(ctx, e.spot1)
	spot2, _ := e.store.SpotByID(ctx, e.spot2)
	if !spot1.IsOccupied || spot2.IsOccupied {
		t.Fatalf("occupancy spot1=%v spot2=%v", spot1.IsOccupied, spot2.IsOccupied)
	}

	types := e.pub.types()
	if types[len(types)-2] != queue.EventReservationActivated || types[len(types)-1] != queue.EventReservationCompleted {
		t.Fatalf("events %v", types)
	}

	again, err := e.res.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.Activated != 0 || again.Completed != 0 {
		t.Fatalf("second sweep moved %+v", again)
	}
}

func TestCancellingActiveReservationFreesSpot(t *testing.T) {
	e := newEnv(t)
	now := time.Now().UTC().Truncate(time.Minute)
	r, err := e.res.Create(ctx, e.admin, service.CreateReservationInput{
		UserID: e.alice.UserID, ParkingSpotID: e.spot1, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: model.StatusApproved,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.res.Sweep(ctx); err != nil {
		t.Fatal(err)
	}
	occupied := func() bool {
		t.Helper()
		s, err := e.store.SpotByID(ctx, e.spot1)
		if err != nil {
			t.Fatal(err)
		}
		return s.IsOccupied
	}
	if !occupied() {
		t.Fatal("sweep should occupy the spot")
	}

	if _, err := e.res.Cancel(ctx, e.alice, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := e.res.Sweep(ctx); err != nil {
		t.Fatal(err)
	}
	if occupied() {
		t.Fatal("cancelled reservation left the spot occupied")
	}
}

func TestManualStatusChangesTrackOccupancy(t *testing.T) {
	e := newEnv(t)
	occupied := func(spot uint64) bool {
		t.Helper()
		s, err := e.store.SpotByID(ctx, spot)
		if err != nil {
			t.Fatal(err)
		}
		return s.IsOccupied
	}

	r := e.book(t, e.spot1, at(10, 0), at(12, 0))
	for _, status := range []string{model.StatusApproved, model.StatusActive} {
		if _, err := e.res.Update(ctx, e.admin, r.ID, service.UpdateReservationInput{Status: status}); err != nil {
			t.Fatal(err)
		}
	}
	if !occupied(e.spot1) {
		t.Fatal("activating should occupy the spot")
	}
	if _, err := e.res.Update(ctx, e.admin, r.ID, service.UpdateReservationInput{Status: model.StatusCompleted}); err != nil {
		t.Fatal(err)
	}
	if occupied(e.spot1) {
		t.Fatal("completing should free the spot")
	}

	active, err := e.res.Create(ctx, e.admin, service.CreateReservationInput{
		UserID: e.alice.UserID, ParkingSpotID: e.spot2, StartTime: at(10, 0), EndTime: at(12, 0), Status: model.StatusActive,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !occupied(e.spot2) {
		t.Fatal("creating an active reservation should occupy the spot")
	}
	if err := e.res.Delete(ctx, e.admin, active.ID); err != nil {
		t.Fatal(err)
	}
	if occupied(e.spot2) {
		t.Fatal("deleting an active reservation left the spot occupied")
	}
}
