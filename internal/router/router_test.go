package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/parking-reservation/internal/handler"
	"github.com/iliyamo/parking-reservation/internal/repository/memory"
	"github.com/iliyamo/parking-reservation/internal/service"
)

const secret = "router-test-secret"

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	st := memory.New()
	notes := service.NewNotificationService(st, nil)
	auth := service.NewAuthService(st, service.AuthOptions{
		JWTSecret: secret, AccessTTLMin: 15, RefreshTTLDays: 1, BcryptCost: bcrypt.MinCost,
	})
	if err := auth.EnsureAdmin(context.Background(), "admin@example.com", "admin-password"); err != nil {
		t.Fatal(err)
	}
	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	Register(e, Handlers{
		Reservations:  handler.NewReservationHandler(service.NewReservationService(st, nil, nil), nil),
		Payments:      handler.NewPaymentHandler(service.NewPaymentService(st, nil, nil), nil),
		Spots:         handler.NewSpotHandler(service.NewSpotService(st), nil),
		Catalog:       handler.NewCatalogHandler(service.NewCatalogService(st), nil),
		Notifications: handler.NewNotificationHandler(notes, nil),
		Auth:          handler.NewAuthHandler(auth, nil),
	}, Options{JWTSecret: secret})
	return &api{t: t, e: e}
}

// do sends a JSON request and decodes the JSON response into out when out
// is non-nil.
func (a *api) do(method, target, token string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, target, rec.Body.String(), err)
		}
	}
	return rec.Code
}

type session struct {
	User struct {
		ID uint64 `json:"id"`
	} `json:"user"`
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
}

func (a *api) login(email, password string) session {
	a.t.Helper()
	var s session
	if code := a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &s); code != http.StatusOK {
		a.t.Fatalf("login %s: %d", email, code)
	}
	return s
}

func (a *api) register(email string) session {
	a.t.Helper()
	var s session
	body := map[string]string{"email": email, "password": "long-enough-pw", "name": email}
	if code := a.do(http.MethodPost, "/auth/register", "", body, &s); code != http.StatusCreated {
		a.t.Fatalf("register %s: %d", email, code)
	}
	return s
}

type errBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type reservationBody struct {
	Message     string `json:"message"`
	Reservation struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
	} `json:"reservation"`
}

func TestReservationAndPaymentFlow(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@example.com", "admin-password")
	alice := a.register("alice@example.com")
	bob := a.register("bob@example.com")

	var spot struct {
		ParkingSpot struct {
			ID uint64 `json:"id"`
		} `json:"parkingSpot"`
	}
	if code := a.do(http.MethodPost, "/parkingspots/AddParkingSpot", alice.Access.Token, map[string]any{"number": "P1", "section": "Standard"}, nil); code != http.StatusForbidden {
		t.Fatalf("user adding spot: %d", code)
	}
	if code := a.do(http.MethodPost, "/parkingspots/AddParkingSpot", admin.Access.Token, map[string]any{"number": "P1", "section": "Standard"}, &spot); code != http.StatusOK {
		t.Fatalf("add spot: %d", code)
	}
	var spots []map[string]any
	if code := a.do(http.MethodGet, "/parkingspots/GetAllParkingSpots", "", nil, &spots); code != http.StatusOK || len(spots) != 1 {
		t.Fatalf("public spot list: %d %v", code, spots)
	}

	book := func(token string, userID uint64, start, end string) (int, reservationBody) {
		var out reservationBody
		code := a.do(http.MethodPost, "/reservations/AddReservation", token, map[string]any{
			"userId": userID, "parkingSpotId": spot.ParkingSpot.ID, "startTime": start, "endTime": end,
		}, &out)
		return code, out
	}

	code, r1 := book(alice.Access.Token, alice.User.ID, "2024-01-01T10:00:00Z", "2024-01-01T12:00:00Z")
	if code != http.StatusOK || r1.Message != "Reservation created successfully" || r1.Reservation.Status != "Pending" {
		t.Fatalf("create: %d %+v", code, r1)
	}
	if code, _ := book(bob.Access.Token, bob.User.ID, "2024-01-01T11:00:00Z", "2024-01-01T13:00:00Z"); code != http.StatusConflict {
		t.Fatalf("overlap: %d", code)
	}
	if code, _ := book(bob.Access.Token, bob.User.ID, "2024-01-01T12:00:00Z", "2024-01-01T14:00:00Z"); code != http.StatusOK {
		t.Fatalf("touching: %d", code)
	}
	var e errBody
	code = a.do(http.MethodPost, "/reservations/AddReservation", bob.Access.Token, map[string]any{
		"userId": bob.User.ID, "parkingSpotId": spot.ParkingSpot.ID,
		"startTime": "2024-01-02T10:00:00Z", "endTime": "2024-01-02T10:00:00Z",
	}, &e)
	if code != http.StatusUnprocessableEntity || e.Message != "Start time must be before end time" {
		t.Fatalf("time order: %d %+v", code, e)
	}
	if code, _ := book(bob.Access.Token, alice.User.ID, "2024-01-03T10:00:00Z", "2024-01-03T11:00:00Z"); code != http.StatusForbidden {
		t.Fatalf("booking for someone else: %d", code)
	}

	var upd reservationBody
	code = a.do(http.MethodPut, fmt.Sprintf("/reservations/UpdateReservation?reservationId=%d", r1.Reservation.ID), alice.Access.Token,
		map[string]any{"startTime": "2024-01-01T09:30:00Z", "endTime": "2024-01-01T11:30:00Z"}, &upd)
	if code != http.StatusOK || upd.Message != "Reservation updated successfully" || upd.Reservation.ID != r1.Reservation.ID {
		t.Fatalf("update: %d %+v", code, upd)
	}
	if code := a.do(http.MethodPut, "/reservations/UpdateReservation?reservationId=999", alice.Access.Token, map[string]any{"status": "Cancelled"}, nil); code != http.StatusNotFound {
		t.Fatalf("update missing: %d", code)
	}
	if code := a.do(http.MethodGet, "/reservations/GetReservationById", alice.Access.Token, nil, &e); code != http.StatusBadRequest {
		t.Fatalf("missing id: %d", code)
	}

	var list []map[string]any
	if code := a.do(http.MethodGet, "/reservations/GetAllReservations", alice.Access.Token, nil, &list); code != http.StatusOK || len(list) != 1 {
		t.Fatalf("alice list: %d %d", code, len(list))
	}
	if code := a.do(http.MethodGet, "/reservations/GetAllReservations?sortBy=startTime&order=desc", admin.Access.Token, nil, &list); code != http.StatusOK || len(list) != 2 {
		t.Fatalf("admin list: %d %d", code, len(list))
	}
	if code := a.do(http.MethodGet, "/reservations/GetAllReservations", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: %d", code)
	}

	var avail struct {
		Available bool `json:"available"`
	}
	target := fmt.Sprintf("/reservations/CheckAvailability?parkingSpotId=%d&startTime=2024-01-01T08:00:00Z&endTime=2024-01-01T09:30:00Z", spot.ParkingSpot.ID)
	if code := a.do(http.MethodGet, target, bob.Access.Token, nil, &avail); code != http.StatusOK || !avail.Available {
		t.Fatalf("availability: %d %+v", code, avail)
	}

	// payments
	pay := func(token string, body map[string]any, out any) int {
		return a.do(http.MethodPost, "/payments/AddPayment", token, body, out)
	}
	if code := pay(alice.Access.Token, map[string]any{"userId": alice.User.ID, "reservationId": 0, "amount": 10, "paymentMethod": "card"}, nil); code != http.StatusBadRequest {
		t.Fatalf("payment without reservation: %d", code)
	}
	if code := pay(alice.Access.Token, map[string]any{"userId": alice.User.ID, "reservationId": r1.Reservation.ID, "amount": 0, "paymentMethod": "card"}, nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("zero amount: %d", code)
	}
	var paid struct {
		Payment struct {
			ID     uint64  `json:"id"`
			Amount float64 `json:"amount"`
		} `json:"payment"`
	}
	if code := pay(alice.Access.Token, map[string]any{"userId": alice.User.ID, "reservationId": r1.Reservation.ID, "amount": 12.5, "paymentMethod": "card"}, &paid); code != http.StatusOK || paid.Payment.Amount != 12.5 {
		t.Fatalf("add payment: %d %+v", code, paid)
	}
	payTarget := fmt.Sprintf("/payments/UpdatePayment?paymentId=%d", paid.Payment.ID)
	if code := a.do(http.MethodPut, payTarget, admin.Access.Token, map[string]any{"userId": bob.User.ID, "reservationId": r1.Reservation.ID, "amount": 12.5, "paymentMethod": "card"}, nil); code != http.StatusConflict {
		t.Fatalf("payment identity change: %d", code)
	}
	if code := a.do(http.MethodPut, payTarget, alice.Access.Token, map[string]any{"userId": alice.User.ID, "reservationId": r1.Reservation.ID, "amount": 15, "paymentMethod": "cash"}, nil); code != http.StatusOK {
		t.Fatalf("payment update: %d", code)
	}
	if code := a.do(http.MethodDelete, fmt.Sprintf("/payments/DeletePayment?paymentId=%d", paid.Payment.ID), alice.Access.Token, nil, nil); code != http.StatusForbidden {
		t.Fatalf("user deleting payment: %d", code)
	}

	delTarget := fmt.Sprintf("/reservations/DeleteReservation?reservationId=%d", r1.Reservation.ID)
	if code := a.do(http.MethodDelete, delTarget, alice.Access.Token, nil, nil); code != http.StatusForbidden {
		t.Fatalf("user deleting reservation: %d", code)
	}
	if code := a.do(http.MethodDelete, delTarget, admin.Access.Token, nil, nil); code != http.StatusOK {
		t.Fatalf("delete reservation: %d", code)
	}
	if code := a.do(http.MethodGet, fmt.Sprintf("/payments/GetPaymentById?paymentId=%d", paid.Payment.ID), admin.Access.Token, nil, nil); code != http.StatusNotFound {
		t.Fatalf("payment after reservation delete: %d", code)
	}
}

func TestAuthRoutes(t *testing.T) {
	a := newAPI(t)
	s := a.register("carol@example.com")

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if code := a.do(http.MethodGet, "/auth/me", s.Access.Token, nil, &me); code != http.StatusOK || me.Email != "carol@example.com" || me.Role != "USER" {
		t.Fatalf("me: %d %+v", code, me)
	}
	if code := a.do(http.MethodGet, "/auth/me", "not-a-token", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", code)
	}
	if code := a.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "carol@example.com", "password": "long-enough-pw"}, nil); code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", code)
	}
	if code := a.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "not-an-email", "password": "long-enough-pw"}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad email: %d", code)
	}
	if code := a.do(http.MethodPost, "/auth/logout", s.Access.Token, map[string]string{}, nil); code != http.StatusNoContent {
		t.Fatalf("logout: %d", code)
	}

	var health map[string]string
	if code := a.do(http.MethodGet, "/healthz", "", nil, &health); code != http.StatusOK || health["status"] != "ok" {
		t.Fatalf("health: %d %v", code, health)
	}
}

func TestOffsetTimestampsCompareAsInstants(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@example.com", "admin-password")
	alice := a.register("alice@example.com")
	bob := a.register("bob@example.com")

	var spot struct {
		ParkingSpot struct {
			ID uint64 `json:"id"`
		} `json:"parkingSpot"`
	}
	if code := a.do(http.MethodPost, "/parkingspots/AddParkingSpot", admin.Access.Token, map[string]any{"number": "Z1", "section": "Standard"}, &spot); code != http.StatusOK {
		t.Fatalf("add spot: %d", code)
	}
	type window struct {
		Reservation struct {
			StartTime string `json:"startTime"`
			EndTime   string `json:"endTime"`
		} `json:"reservation"`
	}
	book := func(s session, start, end string) (int, window) {
		var out window
		code := a.do(http.MethodPost, "/reservations/AddReservation", s.Access.Token, map[string]any{
			"userId": s.User.ID, "parkingSpotId": spot.ParkingSpot.ID, "startTime": start, "endTime": end,
		}, &out)
		return code, out
	}

	if code, _ := book(alice, "2024-01-01T10:00:00Z", "2024-01-01T12:00:00Z"); code != http.StatusOK {
		t.Fatalf("create: %d", code)
	}
	// 13:00+02:00 is 11:00Z
	if code, _ := book(bob, "2024-01-01T13:00:00+02:00", "2024-01-01T15:00:00+02:00"); code != http.StatusConflict {
		t.Fatalf("overlap across zones: %d", code)
	}
	code, w := book(bob, "2024-01-01T14:00:00+02:00", "2024-01-01T16:00:00+02:00")
	if code != http.StatusOK {
		t.Fatalf("touching across zones: %d", code)
	}
	if w.Reservation.StartTime != "2024-01-01T12:00:00Z" || w.Reservation.EndTime != "2024-01-01T14:00:00Z" {
		t.Fatalf("stored window = %+v", w.Reservation)
	}
}
