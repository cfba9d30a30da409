package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/repository/memory"
	"github.com/iliyamo/parking-reservation/internal/service"
)

var ctx = context.Background()

// recorder collects published events.
type recorder struct{ events []queue.Event }

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type env struct {
	store    *memory.Store
	pub      *recorder
	res      *service.ReservationService
	pay      *service.PaymentService
	admin    model.Actor
	alice    model.Actor
	bob      model.Actor
	spot1    uint64
	spot2    uint64
	wash     model.Service
	charging model.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memory.New()
	pub := &recorder{}
	e := &env{store: st, pub: pub}
	e.res = service.NewReservationService(st, pub, nil)
	e.pay = service.NewPaymentService(st, pub, nil)

	e.admin = model.Actor{UserID: e.user(t, "admin@example.com", model.RoleAdmin), Role: model.RoleAdmin}
	e.alice = model.Actor{UserID: e.user(t, "alice@example.com", model.RoleUser), Role: model.RoleUser}
	e.bob = model.Actor{UserID: e.user(t, "bob@example.com", model.RoleUser), Role: model.RoleUser}

	for i, num := range []string{"A-01", "A-02"} {
		s := model.ParkingSpot{Number: num, Section: model.SectionStandard, Size: model.SizeMedium}
		if err := st.InsertSpot(ctx, &s); err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			e.spot1 = s.ID
		} else {
			e.spot2 = s.ID
		}
	}
	e.wash = e.service(t, "Car wash", model.Cents(15))
	e.charging = e.service(t, "EV charging", model.Cents(7.5))
	return e
}

func (e *env) user(t *testing.T, email, role string) uint64 {
	t.Helper()
	u := model.User{Email: email, Name: email, PasswordHash: "x", Role: role, IsActive: true}
	if err := e.store.InsertUser(ctx, &u); err != nil {
		t.Fatal(err)
	}
	return u.ID
}

func (e *env) service(t *testing.T, name string, price model.Money) model.Service {
	t.Helper()
	s := model.Service{Name: name, Price: price}
	if err := e.store.InsertService(ctx, &s); err != nil {
		t.Fatal(err)
	}
	return s
}

// book creates a Pending reservation for alice on spot.
func (e *env) book(t *testing.T, spot uint64, start, end time.Time) model.Reservation {
	t.Helper()
	r, err := e.res.Create(ctx, e.alice, service.CreateReservationInput{
		UserID: e.alice.UserID, ParkingSpotID: spot, StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("book %s-%s: %v", start.Format(time.Kitchen), end.Format(time.Kitchen), err)
	}
	return r
}

// at returns 2024-01-01 at hh:mm UTC.
func at(hh, mm int) time.Time {
	return time.Date(2024, 1, 1, hh, mm, 0, 0, time.UTC)
}

func money(v float64) *model.Money {
	m := model.Cents(v)
	return &m
}

func wantKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if got := apperror.KindOf(err); got != kind {
		t.Fatalf("expected %v error, got %v (%v)", kind, got, err)
	}
}

func wantMessage(t *testing.T, err error, msg string) {
	t.Helper()
	var ae *apperror.Error
	if !errors.As(err, &ae) || ae.Message != msg {
		t.Fatalf("expected message %q, got %v", msg, err)
	}
}

func asAppError(err error, target **apperror.Error) bool {
	return errors.As(err, target)
}
