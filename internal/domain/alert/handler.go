package alert

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
	read.GET("/alerts", h.ListAlerts)
	read.GET("/alerts/:id", h.GetAlert)

	manage := api.Group("", auth.RequireRole(auth.RoleTechnician))
	manage.POST("/alerts", h.CreateAlert)
	manage.POST("/alerts/:id/resolve", h.ResolveAlert)
}

func (h *Handler) CreateAlert(c echo.Context) error {
	var a Alert
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.SourceType = SourceManual
	a.Cycle = nil
	a.WindowBucket = nil
	result, err := h.svc.Emit(c.Request().Context(), &a)
	if err != nil {
		return apperr.HTTP(err, "alert not found")
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAlert(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err, "alert not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAlerts(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"machine_id", "status", "priority"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.SearchAlerts(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ResolveAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.ResolveAlert(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err, "no active alert with that id")
	}
	return c.NoContent(http.StatusNoContent)
}
