package repository

import (
	"context"
	"time"

	"ger-comercial/internal/model"
	"ger-comercial/pkg/utils"

	"gorm.io/gorm"
)

type ScheduleRepository interface {
	FindActive(ctx context.Context, opts ...utils.DBOption) ([]model.ReportSchedule, error)
	FindByID(ctx context.Context, id uint) (*model.ReportSchedule, error)
	List(ctx context.Context, opts ...utils.DBOption) ([]model.ReportSchedule, error)
	RecordRunOutcome(ctx context.Context, id uint, runAt time.Time, succeeded bool, opts ...utils.DBOption) error
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

// FindActive returns every active schedule, tokens normalized. Day and hour
// matching happens in process; the table is small and a single fetch avoids
// the stored-token whitespace problems a SQL equality filter runs into.
func (r *scheduleRepository) FindActive(ctx context.Context, opts ...utils.DBOption) ([]model.ReportSchedule, error) {
	var schedules []model.ReportSchedule
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("ativo = ?", true).
		Order("id").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		schedules[i].Normalize()
	}
	return schedules, nil
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uint) (*model.ReportSchedule, error) {
	var schedule model.ReportSchedule
	if err := r.db.WithContext(ctx).First(&schedule, id).Error; err != nil {
		return nil, err
	}
	schedule.Normalize()
	return &schedule, nil
}

func (r *scheduleRepository) List(ctx context.Context, opts ...utils.DBOption) ([]model.ReportSchedule, error) {
	var schedules []model.ReportSchedule
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Order("id").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		schedules[i].Normalize()
	}
	return schedules, nil
}

// RecordRunOutcome stamps the bookkeeping fields after one attempt. The run
// counter only advances on success; a failed attempt still updates the
// timestamp and the success flag.
func (r *scheduleRepository) RecordRunOutcome(ctx context.Context, id uint, runAt time.Time, succeeded bool, opts ...utils.DBOption) error {
	updates := map[string]interface{}{
		"ultima_execucao":         runAt,
		"ultima_execucao_sucesso": succeeded,
	}
	if succeeded {
		updates["total_execucoes"] = gorm.Expr("total_execucoes + 1")
	}
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.ReportSchedule{}).
		Where("id = ?", id).
		Updates(updates).Error
}
