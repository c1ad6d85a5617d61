package maintenance

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dialytrack/dialytrack/internal/platform/apperr"
	"github.com/dialytrack/dialytrack/internal/platform/auth"
	"github.com/dialytrack/dialytrack/pkg/pagination"
)

type Handler struct {
	svc     *Service
	checker *Checker
}

func NewHandler(svc *Service, checker *Checker) *Handler {
	return &Handler{svc: svc, checker: checker}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleTechnician, auth.RolePatient))
	read.GET("/maintenance/controls", h.ListControls)
	read.GET("/maintenance/controls/:id", h.GetControl)
	read.GET("/maintenance/schedules", h.ListSchedules)
	read.GET("/maintenance/schedules/:id", h.GetSchedule)

	manage := api.Group("", auth.RequireRole(auth.RoleTechnician))
	manage.POST("/maintenance/controls", h.CreateControl)
	manage.PUT("/maintenance/controls/:id", h.UpdateControl)
	manage.DELETE("/maintenance/controls/:id", h.DeleteControl)
	manage.POST("/maintenance/controls/:id/complete", h.CompleteControl)
	manage.POST("/maintenance/schedules", h.CreateSchedule)
	manage.PUT("/maintenance/schedules/:id", h.UpdateSchedule)
	manage.DELETE("/maintenance/schedules/:id", h.DeleteSchedule)
	manage.POST("/maintenance/schedules/:id/complete", h.CompleteSchedule)

	// On-demand check runs; no cron is wired, callers trigger these.
	manage.POST("/maintenance/check/controls", h.CheckControls)
	manage.POST("/maintenance/check/schedules", h.CheckSchedules)
}

// -- Controls --

func (h *Handler) CreateControl(c echo.Context) error {
	var ctrl MaintenanceControl
	if err := c.Bind(&ctrl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateControl(c.Request().Context(), &ctrl); err != nil {
		return apperr.HTTP(err, "control not found")
	}
	return c.JSON(http.StatusCreated, ctrl)
}

func (h *Handler) GetControl(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctrl, err := h.svc.GetControl(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err, "control not found")
	}
	return c.JSON(http.StatusOK, ctrl)
}

func (h *Handler) ListControls(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"machine_id", "status", "control_type"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.SearchControls(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateControl(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ctrl MaintenanceControl
	if err := c.Bind(&ctrl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctrl.ID = id
	if err := h.svc.UpdateControl(c.Request().Context(), &ctrl); err != nil {
		return apperr.HTTP(err, "control not found")
	}
	return c.JSON(http.StatusOK, ctrl)
}

func (h *Handler) DeleteControl(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteControl(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err, "control not found")
	}
	return c.NoContent(http.StatusNoContent)
}

type completeRequest struct {
	PerformedAt *time.Time `json:"performed_at"`
	Notes       *string    `json:"notes"`
}

func (h *Handler) CompleteControl(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	performedAt := time.Now()
	if req.PerformedAt != nil {
		performedAt = *req.PerformedAt
	}
	ctrl, err := h.svc.CompleteControl(c.Request().Context(), id, performedAt, req.Notes)
	if err != nil {
		return apperr.HTTP(err, "control not found")
	}
	return c.JSON(http.StatusOK, ctrl)
}

// -- Schedules --

func (h *Handler) CreateSchedule(c echo.Context) error {
	var sch MaintenanceSchedule
	if err := c.Bind(&sch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSchedule(c.Request().Context(), &sch); err != nil {
		return apperr.HTTP(err, "schedule not found")
	}
	return c.JSON(http.StatusCreated, sch)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sch, err := h.svc.GetSchedule(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err, "schedule not found")
	}
	return c.JSON(http.StatusOK, sch)
}

func (h *Handler) ListSchedules(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"machine_id", "status", "type"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	items, total, err := h.svc.SearchSchedules(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var sch MaintenanceSchedule
	if err := c.Bind(&sch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sch.ID = id
	if err := h.svc.UpdateSchedule(c.Request().Context(), &sch); err != nil {
		return apperr.HTTP(err, "schedule not found")
	}
	return c.JSON(http.StatusOK, sch)
}

func (h *Handler) DeleteSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteSchedule(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err, "schedule not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CompleteSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	completedAt := time.Now()
	if req.PerformedAt != nil {
		completedAt = *req.PerformedAt
	}
	sch, err := h.svc.CompleteSchedule(c.Request().Context(), id, completedAt)
	if err != nil {
		return apperr.HTTP(err, "schedule not found")
	}
	return c.JSON(http.StatusOK, sch)
}

// -- Checks --

func (h *Handler) CheckControls(c echo.Context) error {
	sum, err := h.checker.RunControls(c.Request().Context(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) CheckSchedules(c echo.Context) error {
	sum, err := h.checker.RunSchedules(c.Request().Context(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}
