package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/model"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// CatalogHandler serves /services, the add-on catalog.
type CatalogHandler struct {
	svc *service.CatalogService
	log *zap.Logger
}

func NewCatalogHandler(svc *service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: orNop(log)}
}

type catalogReq struct {
	Name        string      `json:"name" validate:"max=100"`
	Description string      `json:"description" validate:"max=500"`
	Price       model.Money `json:"price"`
}

func (r catalogReq) input() service.ServiceInput {
	return service.ServiceInput{Name: r.Name, Description: r.Description, Price: r.Price}
}

func (h *CatalogHandler) GetAll(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetByID(c echo.Context) error {
	id, err := queryID(c, "serviceId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	svc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) Add(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req catalogReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	svc, err := h.svc.Create(c.Request().Context(), actor, req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Service created successfully", "service": svc})
}

func (h *CatalogHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "serviceId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req catalogReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	svc, err := h.svc.Update(c.Request().Context(), actor, id, req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Service updated successfully", "service": svc})
}

func (h *CatalogHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	id, err := queryID(c, "serviceId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Service deleted successfully"})
}
