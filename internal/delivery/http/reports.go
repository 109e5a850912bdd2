package http

import (
	"errors"
	"net/http"
	"time"

	"ger-comercial/internal/dto"
	"ger-comercial/internal/model"
	"ger-comercial/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupReports(base *echo.Group) {
	v1 := base.Group("/v1/reports")
	{
		v1.POST("/run", h.RunReport)
		v1.POST("/comparison", h.RunComparison)
	}
}

// RunReport executes one dashboard report interactively. Results are served
// from the TTL cache when a matching query ran recently.
func (h *HttpAPIHandler) RunReport(c echo.Context) error {
	var req dto.RunReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.ReportService.GenerateCached(
		c.Request().Context(),
		model.ReportKind(req.Kind),
		req.Period,
		req.Filters,
		time.Now(),
	)
	if err != nil {
		if errors.Is(err, service.ErrUnknownReportKind) {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("report generated", result))
}

// RunComparison computes KPI totals and variance for a principal window and
// its comparison window.
func (h *HttpAPIHandler) RunComparison(c echo.Context) error {
	var req dto.ComparisonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.ComparisonService.Compare(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("comparison computed", result))
}
