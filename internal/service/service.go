package service

import (
	"ger-comercial/config"
	"ger-comercial/internal/repository"
	"ger-comercial/pkg/cache"
	"ger-comercial/pkg/logger"
	"ger-comercial/pkg/mailer"
)

type Service struct {
	ReportService     ReportService
	ComparisonService ComparisonService
	DispatcherService DispatcherService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	mail mailer.Mailer,
) *Service {
	reportService := NewReportService(cfg, log, repo.ReportRepo, inmemoryCache)
	return &Service{
		ReportService:     reportService,
		ComparisonService: NewComparisonService(cfg, log, repo.ReportRepo),
		DispatcherService: NewDispatcherService(cfg, log, repo.ScheduleRepo, reportService, mail),
	}
}
