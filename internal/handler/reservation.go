package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/apperror"
	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// ReservationHandler serves /reservations.
type ReservationHandler struct {
	svc *service.ReservationService
	log *zap.Logger
}

func NewReservationHandler(svc *service.ReservationService, log *zap.Logger) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{svc: svc, log: orNop(log)}
}

type addReservationReq struct {
	UserID        uint64       `json:"userId"`
	ParkingSpotID uint64       `json:"parkingSpotId"`
	StartTime     *time.Time   `json:"startTime"`
	EndTime       *time.Time   `json:"endTime"`
	Status        string       `json:"status"`
	TotalAmount   *model.Money `json:"totalAmount"`
	ServiceIDs    []uint64     `json:"serviceIds"`
}

type updateReservationReq struct {
	StartTime   *time.Time   `json:"startTime"`
	EndTime     *time.Time   `json:"endTime"`
	Status      string       `json:"status"`
	TotalAmount *model.Money `json:"totalAmount"`
	ServiceIDs  []uint64     `json:"serviceIds"`
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// GetAll handles GET /reservations/GetAllReservations. Optional query
// parameters: search, status, userId, parkingSpotId, date (YYYY-MM-DD),
// sortBy and order (asc|desc).
func (h *ReservationHandler) GetAll(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	q, err := parseReservationQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.svc.List(c.Request().Context(), actor, q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func parseReservationQuery(c echo.Context) (model.ReservationQuery, error) {
	q := model.ReservationQuery{
		Search: strings.TrimSpace(c.QueryParam("search")),
		Status: strings.TrimSpace(c.QueryParam("status")),
		SortBy: strings.TrimSpace(c.QueryParam("sortBy")),
	}
	for name, dst := range map[string]*uint64{"userId": &q.UserID, "parkingSpotId": &q.ParkingSpotID} {
		if raw := strings.TrimSpace(c.QueryParam(name)); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return q, apperror.InvalidArgument(name, name+" must be a positive integer")
			}
			*dst = n
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return q, apperror.InvalidArgument("date", "date must be YYYY-MM-DD")
		}
		q.Date = &d
	}
	switch strings.ToLower(strings.TrimSpace(c.QueryParam("order"))) {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		return q, apperror.InvalidArgument("order", "order must be asc or desc")
	}
	return q, nil
}

// GetByID handles GET /reservations/GetReservationById?reservationId=.
func (h *ReservationHandler) GetByID(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "reservationId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Add handles POST /reservations/AddReservation.
func (h *ReservationHandler) Add(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req addReservationReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.svc.Create(c.Request().Context(), actor, service.CreateReservationInput{
		UserID:        req.UserID,
		ParkingSpotID: req.ParkingSpotID,
		StartTime:     deref(req.StartTime),
		EndTime:       deref(req.EndTime),
		Status:        strings.TrimSpace(req.Status),
		TotalAmount:   req.TotalAmount,
		ServiceIDs:    req.ServiceIDs,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation created successfully", "reservation": res})
}

// Update handles PUT /reservations/UpdateReservation?reservationId=.
func (h *ReservationHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "reservationId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req updateReservationReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.svc.Update(c.Request().Context(), actor, id, service.UpdateReservationInput{
		StartTime:   deref(req.StartTime),
		EndTime:     deref(req.EndTime),
		Status:      strings.TrimSpace(req.Status),
		TotalAmount: req.TotalAmount,
		ServiceIDs:  req.ServiceIDs,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation updated successfully", "reservation": res})
}

// Cancel handles PUT /reservations/CancelReservation?reservationId=.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "reservationId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.svc.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation cancelled successfully", "reservation": res})
}

// Delete handles DELETE /reservations/DeleteReservation?reservationId=.
func (h *ReservationHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "reservationId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reservation deleted successfully"})
}

// CheckAvailability handles GET /reservations/CheckAvailability with
// parkingSpotId, startTime and endTime (RFC 3339) and an optional
// excludeReservationId.
func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
	spotID, err := queryID(c, "parkingSpotId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	start, err := queryTime(c, "startTime")
	if err != nil {
		return writeError(c, h.log, err)
	}
	end, err := queryTime(c, "endTime")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var exclude uint64
	if c.QueryParam("excludeReservationId") != "" {
		if exclude, err = queryID(c, "excludeReservationId"); err != nil {
			return writeError(c, h.log, err)
		}
	}
	ok, err := h.svc.CheckAvailability(c.Request().Context(), spotID, start, end, exclude)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"parkingSpotId": spotID,
		"startTime":     start.UTC(),
		"endTime":       end.UTC(),
		"available":     ok,
	})
}

func queryTime(c echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, apperror.InvalidArgument(name, name+" is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperror.InvalidArgument(name, name+" must be an RFC 3339 timestamp")
	}
	return t, nil
}
