package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", NotFound("reservation", 9), http.StatusNotFound, "reservation 9 not found"},
		{"invalid", InvalidArgument("userId", "userId is required"), http.StatusBadRequest, "userId is required"},
		{"conflict", Conflict("spot taken"), http.StatusConflict, "spot taken"},
		{"unprocessable", Unprocessable("bad range"), http.StatusUnprocessableEntity, "bad range"},
		{"wrapped", fmt.Errorf("create: %w", Conflict("spot taken")), http.StatusConflict, "spot taken"},
		{"plain", errors.New("db exploded"), http.StatusInternalServerError, "internal server error"},
		{"internal kind", Wrap(KindInternal, "scan", errors.New("x")), http.StatusInternalServerError, "internal server error"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "request timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := Describe(tt.err)
			if status != tt.status || msg != tt.message {
				t.Errorf("Describe() = (%d, %q), want (%d, %q)", status, msg, tt.status, tt.message)
			}
		})
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("user", 3))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is(err, ErrNotFound)")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatalf("not found must not match conflict")
	}
	if !errors.Is(err, &Error{Kind: KindNotFound, Entity: "user"}) {
		t.Fatalf("expected entity match")
	}
	if errors.Is(err, &Error{Kind: KindNotFound, Entity: "parking spot"}) {
		t.Fatalf("entity mismatch must not match")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf(plain) = %v, want internal", got)
	}
	if got := KindOf(Unprocessable("x")); got != KindUnprocessable {
		t.Errorf("KindOf(unprocessable) = %v", got)
	}
}
