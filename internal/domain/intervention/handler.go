package intervention

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
	read.GET("/interventions", h.ListInterventions)
	read.GET("/interventions/:id", h.GetIntervention)

	manage := api.Group("", auth.RequireRole(auth.RoleTechnician))
	manage.POST("/interventions", h.CreateIntervention)
	manage.PUT("/interventions/:id", h.UpdateIntervention)
	manage.DELETE("/interventions/:id", h.DeleteIntervention)
}

func (h *Handler) CreateIntervention(c echo.Context) error {
	var i Intervention
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if i.TechnicianID == nil {
		if uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			i.TechnicianID = &uid
		}
	}
	if err := h.svc.CreateIntervention(c.Request().Context(), &i); err != nil {
		return apperr.HTTP(err, "intervention not found")
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *Handler) GetIntervention(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	i, err := h.svc.GetIntervention(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err, "intervention not found")
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) ListInterventions(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"machine_id", "technician_id", "fault_id", "type", "status"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.SearchInterventions(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateIntervention(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var i Intervention
	if err := c.Bind(&i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	i.ID = id
	if err := h.svc.UpdateIntervention(c.Request().Context(), &i); err != nil {
		return apperr.HTTP(err, "intervention not found")
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) DeleteIntervention(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteIntervention(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err, "intervention not found")
	}
	return c.NoContent(http.StatusNoContent)
}
