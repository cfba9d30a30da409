package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestHandleDelivery(t *testing.T) {
	ev := NewEvent(EventReservationCreated, 7)
	ev.ReservationID = 11
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Event
	err = HandleDelivery(context.Background(), body, func(_ context.Context, e Event) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("HandleDelivery error: %v", err)
	}
	if got.ID != ev.ID || got.UserID != 7 || got.ReservationID != 11 || got.Type != EventReservationCreated {
		t.Errorf("decoded event = %+v, want %+v", got, ev)
	}
}

func TestHandleDeliveryRejects(t *testing.T) {
	called := false
	h := func(context.Context, Event) error { called = true; return nil }
	if err := HandleDelivery(context.Background(), []byte("{not json"), h); err == nil {
		t.Errorf("expected decode error")
	}
	if err := HandleDelivery(context.Background(), []byte(`{"user_id":1}`), h); err == nil {
		t.Errorf("expected error for missing type")
	}
	if called {
		t.Errorf("handler must not run for rejected messages")
	}
	boom := errors.New("boom")
	err := HandleDelivery(context.Background(), []byte(`{"type":"payment.recorded"}`), func(context.Context, Event) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("handler error not propagated: %v", err)
	}
}

func TestNewEventStampsIDAndTime(t *testing.T) {
	a, b := NewEvent(EventPaymentRecorded, 1), NewEvent(EventPaymentRecorded, 1)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected unique ids, got %q and %q", a.ID, b.ID)
	}
	if a.OccurredAt == "" {
		t.Errorf("OccurredAt not set")
	}
}
