package service_test

import (
	"testing"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

func TestSpotLifecycle(t *testing.T) {
	e := newEnv(t)
	spots := service.NewSpotService(e.store)

	_, err := spots.Create(ctx, e.alice, service.SpotInput{Number: "B-01", Section: model.SectionLarge})
	wantKind(t, err, apperror.KindForbidden)
	_, err = spots.Create(ctx, e.admin, service.SpotInput{Number: "B-01", Section: "Roof"})
	wantKind(t, err, apperror.KindUnprocessable)
	_, err = spots.Create(ctx, e.admin, service.SpotInput{Number: "A-01", Section: model.SectionLarge})
	wantKind(t, err, apperror.KindConflict)

	s, err := spots.Create(ctx, e.admin, service.SpotInput{Number: " B-01 ", Section: model.SectionMotorcycle})
	if err != nil {
		t.Fatal(err)
	}
	if s.Number != "B-01" || s.Size != model.SizeSmall {
		t.Fatalf("got %+v", s)
	}

	occupied := true
	s, err = spots.Update(ctx, e.admin, s.ID, service.SpotInput{Number: "B-02", Section: model.SectionDisabled, IsOccupied: &occupied})
	if err != nil {
		t.Fatal(err)
	}
	if s.Number != "B-02" || s.Size != model.SizeLarge || !s.IsOccupied {
		t.Fatalf("got %+v", s)
	}
	_, err = spots.Update(ctx, e.admin, s.ID, service.SpotInput{Number: "A-02", Section: model.SectionDisabled})
	wantKind(t, err, apperror.KindConflict)
	_, err = spots.Update(ctx, e.admin, 999, service.SpotInput{Number: "Z", Section: model.SectionStandard})
	wantKind(t, err, apperror.KindNotFound)

	list, err := spots.List(ctx)
	if err != nil || len(list) != 3 {
		t.Fatalf("list %v %v", list, err)
	}

	if err := spots.Delete(ctx, e.admin, s.ID); err != nil {
		t.Fatal(err)
	}
	_, err = spots.Get(ctx, s.ID)
	wantKind(t, err, apperror.KindNotFound)
}

func TestSpotWithReservationsCannotBeDeleted(t *testing.T) {
	e := newEnv(t)
	spots := service.NewSpotService(e.store)
	e.book(t, e.spot1, at(10, 0), at(12, 0))
	wantKind(t, spots.Delete(ctx, e.admin, e.spot1), apperror.KindConflict)
	wantKind(t, spots.Delete(ctx, e.admin, 999), apperror.KindNotFound)
}

func TestServiceCatalog(t *testing.T) {
	e := newEnv(t)
	catalog := service.NewCatalogService(e.store)

	_, err := catalog.Create(ctx, e.admin, service.ServiceInput{Name: "Car wash", Price: 100})
	wantKind(t, err, apperror.KindConflict)
	_, err = catalog.Create(ctx, e.admin, service.ServiceInput{Name: "Valet", Price: -1})
	wantKind(t, err, apperror.KindUnprocessable)
	_, err = catalog.Create(ctx, e.bob, service.ServiceInput{Name: "Valet", Price: 100})
	wantKind(t, err, apperror.KindForbidden)

	valet, err := catalog.Create(ctx, e.admin, service.ServiceInput{Name: "Valet", Description: "We park it", Price: model.Cents(12)})
	if err != nil {
		t.Fatal(err)
	}
	valet, err = catalog.Update(ctx, e.admin, valet.ID, service.ServiceInput{Name: "Valet parking", Price: model.Cents(14)})
	if err != nil {
		t.Fatal(err)
	}
	if valet.Name != "Valet parking" || valet.Price != model.Cents(14) {
		t.Fatalf("got %+v", valet)
	}

	r, err := e.res.Create(ctx, e.alice, service.CreateReservationInput{
		UserID: e.alice.UserID, ParkingSpotID: e.spot1, StartTime: at(10, 0), EndTime: at(12, 0),
		ServiceIDs: []uint64{valet.ID, e.wash.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := catalog.Delete(ctx, e.admin, valet.ID); err != nil {
		t.Fatal(err)
	}
	got, err := e.res.Get(ctx, e.alice, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Services) != 1 || got.Services[0].ID != e.wash.ID {
		t.Fatalf("services after delete: %+v", got.Services)
	}
	wantKind(t, catalog.Delete(ctx, e.admin, valet.ID), apperror.KindNotFound)

	list, err := catalog.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list %v %v", list, err)
	}
}
