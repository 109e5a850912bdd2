package service

import (
	"context"
	"fmt"
	"time"

	"ger-comercial/config"
	"ger-comercial/internal/dto"
	"ger-comercial/internal/model"
	"ger-comercial/internal/repository"
	"ger-comercial/pkg/logger"
	"ger-comercial/pkg/utils"
)

// ComparisonService backs the dashboard's period-comparison view: KPI totals
// for a principal window and a comparison window, with the variance between
// them. The same filters apply to both windows.
type ComparisonService interface {
	Compare(ctx context.Context, req dto.ComparisonRequest) (*dto.ComparisonResponse, error)
}

type comparisonService struct {
	cfg        *config.Config
	log        *logger.Logger
	reportRepo repository.ReportRepository
}

func NewComparisonService(cfg *config.Config, log *logger.Logger, reportRepo repository.ReportRepository) ComparisonService {
	return &comparisonService{
		cfg:        cfg,
		log:        log,
		reportRepo: reportRepo,
	}
}

func (s *comparisonService) Compare(ctx context.Context, req dto.ComparisonRequest) (*dto.ComparisonResponse, error) {
	principal, err := parsePeriod(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if err := s.checkPeriodCap(principal); err != nil {
		return nil, err
	}

	var comparison model.Period
	switch req.Mode {
	case dto.ComparisonModeCustom:
		if req.ComparisonStart == "" || req.ComparisonEnd == "" {
			return nil, fmt.Errorf("%w: comparison start and end dates are required", ErrValidation)
		}
		comparison, err = parsePeriod(req.ComparisonStart, req.ComparisonEnd)
		if err != nil {
			return nil, err
		}
		if err := s.checkPeriodCap(comparison); err != nil {
			return nil, err
		}
	default:
		comparison = principal.PreviousEquivalent()
	}

	principalSummary, err := s.reportRepo.SalesSummary(ctx, principal, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("principal period summary: %w", err)
	}
	comparisonSummary, err := s.reportRepo.SalesSummary(ctx, comparison, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("comparison period summary: %w", err)
	}

	return &dto.ComparisonResponse{
		Principal: dto.PeriodSummary{
			Start:   utils.FormatDateISO(principal.Start),
			End:     utils.FormatDateISO(principal.End),
			Summary: *principalSummary,
		},
		Comparison: dto.PeriodSummary{
			Start:   utils.FormatDateISO(comparison.Start),
			End:     utils.FormatDateISO(comparison.End),
			Summary: *comparisonSummary,
		},
		Value:     model.ComputeVariance(principalSummary.TotalValue, comparisonSummary.TotalValue),
		Orders:    model.ComputeVariance(float64(principalSummary.TotalOrders), float64(comparisonSummary.TotalOrders)),
		Customers: model.ComputeVariance(float64(principalSummary.TotalCustomers), float64(comparisonSummary.TotalCustomers)),
	}, nil
}

// checkPeriodCap refuses oversized windows up front. The hosted database has
// a read quota; an unbounded range would otherwise surface as a slow query.
func (s *comparisonService) checkPeriodCap(p model.Period) error {
	if maxDays := s.cfg.Dispatch.MaxPeriodDays; maxDays > 0 && p.Days() > maxDays {
		return fmt.Errorf("%w: period exceeds %d days", ErrValidation, maxDays)
	}
	return nil
}

func parsePeriod(start, end string) (model.Period, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return model.Period{}, fmt.Errorf("%w: invalid start date %q", ErrValidation, start)
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return model.Period{}, fmt.Errorf("%w: invalid end date %q", ErrValidation, end)
	}
	if endDate.Before(startDate) {
		return model.Period{}, fmt.Errorf("%w: end date precedes start date", ErrValidation)
	}
	return model.Period{Start: startDate, End: endDate}, nil
}
