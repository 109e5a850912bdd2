package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ger-comercial/config"
	"ger-comercial/internal/model"
	"ger-comercial/internal/repository"
	"ger-comercial/pkg/cache"
	"ger-comercial/pkg/logger"
	"ger-comercial/pkg/utils"
)

// ReportService produces the normalized table for one report kind. The
// scheduled path always queries fresh; the interactive path may serve a
// cached result to spare the hosted database's read quota.
type ReportService interface {
	Generate(ctx context.Context, kind model.ReportKind, periodToken string, filters model.Filters, now time.Time) (*model.ReportResult, error)
	GenerateCached(ctx context.Context, kind model.ReportKind, periodToken string, filters model.Filters, now time.Time) (*model.ReportResult, error)
}

type reportService struct {
	cfg        *config.Config
	log        *logger.Logger
	reportRepo repository.ReportRepository
	cache      cache.Cache
}

func NewReportService(cfg *config.Config, log *logger.Logger, reportRepo repository.ReportRepository, inmemoryCache cache.Cache) ReportService {
	return &reportService{
		cfg:        cfg,
		log:        log,
		reportRepo: reportRepo,
		cache:      inmemoryCache,
	}
}

func (s *reportService) Generate(ctx context.Context, kind model.ReportKind, periodToken string, filters model.Filters, now time.Time) (*model.ReportResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReportKind, kind)
	}

	period := model.ResolvePeriod(periodToken, now)

	if kind == model.ReportKindSalesByRegion && filters.HasAny(model.LocationFilterKeys...) {
		return s.generateRegionBreakdown(ctx, period, filters)
	}

	return s.reportRepo.Run(ctx, kind, period, filters)
}

func (s *reportService) GenerateCached(ctx context.Context, kind model.ReportKind, periodToken string, filters model.Filters, now time.Time) (*model.ReportResult, error) {
	key := reportCacheKey(kind, periodToken, filters)
	if cached, ok := cache.Typed[*model.ReportResult](s.cache, key); ok {
		s.log.DebugContext(ctx, "Report served from cache", logger.StringField("key", key))
		return cached, nil
	}

	result, err := s.Generate(ctx, kind, periodToken, filters, now)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, result, s.cfg.Cache.DefaultExpiration)
	return result, nil
}

// generateRegionBreakdown issues the two correlated aggregations and
// interleaves them: each region's total row immediately followed by its
// salesperson detail rows. Blank leading cells mark a detail row.
func (s *reportService) generateRegionBreakdown(ctx context.Context, period model.Period, filters model.Filters) (*model.ReportResult, error) {
	totals, err := s.reportRepo.RegionTotals(ctx, period, filters)
	if err != nil {
		return nil, err
	}
	details, err := s.reportRepo.RegionDetails(ctx, period, filters)
	if err != nil {
		return nil, err
	}
	return interleaveRegionRows(totals, details), nil
}

func interleaveRegionRows(totals []model.RegionTotal, details []model.RegionDetail) *model.ReportResult {
	detailsByRegion := make(map[string][]model.RegionDetail)
	for _, detail := range details {
		detailsByRegion[detail.Region] = append(detailsByRegion[detail.Region], detail)
	}

	result := &model.ReportResult{
		Columns: []string{"Região/Rota", "Total Clientes", "Representante", "Total Vendas"},
	}
	for _, total := range totals {
		result.Rows = append(result.Rows, []string{
			total.Region,
			utils.FormatNumberBR(total.Customers),
			"",
			utils.FormatBRL(total.Sales),
		})
		for _, detail := range detailsByRegion[total.Region] {
			rep := detail.Rep
			if detail.RepName != "" {
				rep = fmt.Sprintf("%s - %s", detail.Rep, detail.RepName)
			}
			result.Rows = append(result.Rows, []string{
				"",
				"",
				rep,
				utils.FormatBRL(detail.Sales),
			})
		}
	}
	return result
}

func reportCacheKey(kind model.ReportKind, periodToken string, filters model.Filters) string {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("report:")
	b.WriteString(string(kind))
	b.WriteString(":")
	b.WriteString(periodToken)
	for _, key := range keys {
		b.WriteString(":")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(filters[key])
	}
	return b.String()
}
