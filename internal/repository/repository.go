package repository

import (
	"ger-comercial/config"
	"ger-comercial/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	ScheduleRepo ScheduleRepository
	ReportRepo   ReportRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	return &Repository{
		ScheduleRepo: NewScheduleRepository(db),
		ReportRepo:   NewReportRepository(db, log),
	}, nil
}
