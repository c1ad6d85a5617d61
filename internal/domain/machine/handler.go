package machine

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dialytrack/dialytrack/internal/platform/apperr"
	"github.com/dialytrack/dialytrack/internal/platform/auth"
	"github.com/dialytrack/dialytrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleTechnician, auth.RolePatient))
	read.GET("/machines", h.ListMachines)
	read.GET("/machines/:id", h.GetMachine)

	write := api.Group("", auth.RequireRole(auth.RoleTechnician))
	write.POST("/machines", h.CreateMachine)
	write.PUT("/machines/:id", h.UpdateMachine)
	write.DELETE("/machines/:id", h.DeleteMachine)
}

func (h *Handler) CreateMachine(c echo.Context) error {
	var m Machine
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateMachine(c.Request().Context(), &m); err != nil {
		return apperr.HTTP(err, "machine not found")
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMachine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.GetMachine(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err, "machine not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMachines(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"status", "location", "name"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.SearchMachines(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateMachine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m Machine
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = id
	if err := h.svc.UpdateMachine(c.Request().Context(), &m); err != nil {
		return apperr.HTTP(err, "machine not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMachine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteMachine(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err, "machine not found")
	}
	return c.NoContent(http.StatusNoContent)
}
