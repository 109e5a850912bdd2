package http

import (
	"net/http"
	"strconv"

	"ger-comercial/internal/dto"
	"ger-comercial/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSchedules(base *echo.Group) {
	v1 := base.Group("/v1/schedules")
	{
		v1.GET("", h.ListSchedules)
		v1.POST("/:id/run", h.RunScheduleNow)
	}
}

func (h *HttpAPIHandler) ListSchedules(c echo.Context) error {
	var opts []utils.DBOption
	if active := c.QueryParam("ativo"); active != "" {
		opts = append(opts, utils.WithWhere("ativo = ?", active == "true"))
	}

	schedules, err := h.service.DispatcherService.ListSchedules(c.Request().Context(), opts...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	summaries := make([]dto.ScheduleSummary, 0, len(schedules))
	for _, schedule := range schedules {
		summary := dto.ScheduleSummary{
			ID:         schedule.ID,
			Name:       schedule.Name,
			ReportKind: string(schedule.ReportKind),
			DaySpec:    schedule.DaySpec,
			Hour:       schedule.Hour,
			Period:     schedule.PeriodToken,
			Active:     schedule.Active,
			TotalRuns:  schedule.TotalRuns,
		}
		if schedule.LastRunAt.Valid {
			summary.LastRunAt = utils.FormatDateTimeBR(schedule.LastRunAt.Time)
		}
		if schedule.LastRunSucceeded.Valid {
			summary.LastRunSucceeded = utils.ToPointer(schedule.LastRunSucceeded.Bool)
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("schedules listed", summaries))
}

// RunScheduleNow triggers one schedule immediately, outside its day/hour
// match. The dashboard uses it for "send this report now".
func (h *HttpAPIHandler) RunScheduleNow(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid schedule id"))
	}

	if err := h.service.DispatcherService.RunSchedule(c.Request().Context(), uint(id)); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("schedule executed", nil))
}
