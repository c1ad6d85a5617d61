package fault

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
	// Patients may file and view fault reports; only staff manage them.
	read := api.Group("", auth.RequireRole(auth.RoleTechnician, auth.RolePatient))
	read.GET("/faults", h.ListFaults)
	read.GET("/faults/:id", h.GetFault)
	read.POST("/faults", h.ReportFault)

	manage := api.Group("", auth.RequireRole(auth.RoleTechnician))
	manage.PUT("/faults/:id", h.UpdateFault)
	manage.DELETE("/faults/:id", h.DeleteFault)
}

func (h *Handler) ReportFault(c echo.Context) error {
	var f Fault
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if f.ReportedBy == nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			f.ReportedBy = &uid
		}
	}
	if err := h.svc.ReportFault(c.Request().Context(), &f); err != nil {
		return apperr.HTTP(err, "fault not found")
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) GetFault(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := h.svc.GetFault(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err, "fault not found")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListFaults(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"machine_id", "status", "severity"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.SearchFaults(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateFault(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var f Fault
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f.ID = id
	if err := h.svc.UpdateFault(c.Request().Context(), &f); err != nil {
		return apperr.HTTP(err, "fault not found")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFault(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteFault(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err, "fault not found")
	}
	return c.NoContent(http.StatusNoContent)
}
