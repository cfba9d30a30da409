package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/service"
)

// SpotHandler serves /parkingspots. Reads are public; writes require an
// administrator.
type SpotHandler struct {
	svc *service.SpotService
	log *zap.Logger
}

func NewSpotHandler(svc *service.SpotService, log *zap.Logger) *SpotHandler {
	return &SpotHandler{svc: svc, log: orNop(log)}
}

type spotReq struct {
	Number     string `json:"number" validate:"max=20"`
	Section    string `json:"section"`
	IsOccupied *bool  `json:"isOccupied"`
}

func (h *SpotHandler) GetAll(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *SpotHandler) GetByID(c echo.Context) error {
	id, err := queryID(c, "parkingSpotId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	spot, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, spot)
}

func (h *SpotHandler) Add(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req spotReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	spot, err := h.svc.Create(c.Request().Context(), actor, service.SpotInput{Number: req.Number, Section: req.Section, IsOccupied: req.IsOccupied})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Parking spot created successfully", "parkingSpot": spot})
}

func (h *SpotHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "parkingSpotId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req spotReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	spot, err := h.svc.Update(c.Request().Context(), actor, id, service.SpotInput{Number: req.Number, Section: req.Section, IsOccupied: req.IsOccupied})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Parking spot updated successfully", "parkingSpot": spot})
}

func (h *SpotHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "parkingSpotId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Parking spot deleted successfully"})
}
