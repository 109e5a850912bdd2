package service

import (
	"context"
	"fmt"
	"time"

	"ger-comercial/config"
	"ger-comercial/internal/model"
	"ger-comercial/internal/repository"
	"ger-comercial/pkg/logger"
	"ger-comercial/pkg/mailer"
	"ger-comercial/pkg/utils"
)

// DispatcherService runs one scheduling tick: find due schedules, build each
// report, mail it, and persist the run outcome. Records are processed
// strictly one at a time so a slow query or mail relay never interleaves two
// records' work, and one record's failure never aborts the batch.
type DispatcherService interface {
	Run(ctx context.Context, now time.Time) error
	RunSchedule(ctx context.Context, id uint) error
	ListSchedules(ctx context.Context, opts ...utils.DBOption) ([]model.ReportSchedule, error)
}

type dispatcherService struct {
	cfg           *config.Config
	log           *logger.Logger
	scheduleRepo  repository.ScheduleRepository
	reportService ReportService
	mailer        mailer.Mailer
}

func NewDispatcherService(
	cfg *config.Config,
	log *logger.Logger,
	scheduleRepo repository.ScheduleRepository,
	reportService ReportService,
	mail mailer.Mailer,
) DispatcherService {
	return &dispatcherService{
		cfg:           cfg,
		log:           log,
		scheduleRepo:  scheduleRepo,
		reportService: reportService,
		mailer:        mail,
	}
}

// Run processes every schedule due at now. Only the schedule fetch itself is
// allowed to fail the whole run; everything past that point is caught at the
// per-record boundary.
func (s *dispatcherService) Run(ctx context.Context, now time.Time) error {
	schedules, err := s.scheduleRepo.FindActive(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch schedules", logger.ErrorField(err))
		return fmt.Errorf("failed to fetch schedules: %w", err)
	}

	due := make([]model.ReportSchedule, 0, len(schedules))
	for _, schedule := range schedules {
		if schedule.IsDueAt(now) {
			due = append(due, schedule)
		}
	}

	s.log.InfoContext(ctx, "Dispatch tick",
		logger.StringField("day", model.DayToken(now)),
		logger.StringField("hour", model.HourToken(now)),
		logger.IntField("due_count", len(due)),
	)

	if len(due) == 0 {
		return nil
	}

	for _, schedule := range due {
		if ctx.Err() != nil {
			s.log.WarnContext(ctx, "Dispatch cancelled", logger.ErrorField(ctx.Err()))
			return nil
		}
		s.processAndRecord(ctx, &schedule, now)
	}

	return nil
}

// ListSchedules returns schedule records, active or not unless the caller
// narrows them.
func (s *dispatcherService) ListSchedules(ctx context.Context, opts ...utils.DBOption) ([]model.ReportSchedule, error) {
	return s.scheduleRepo.List(ctx, opts...)
}

// RunSchedule triggers one schedule immediately, skipping the due predicate.
// Used by the dashboard's manual "run now" action.
func (s *dispatcherService) RunSchedule(ctx context.Context, id uint) error {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find schedule %d: %w", id, err)
	}
	return s.processAndRecord(ctx, schedule, time.Now())
}

func (s *dispatcherService) processAndRecord(ctx context.Context, schedule *model.ReportSchedule, now time.Time) error {
	recordLog := s.log.With(
		logger.IntField("schedule_id", int(schedule.ID)),
		logger.StringField("schedule_name", schedule.Name),
		logger.StringField("report_kind", string(schedule.ReportKind)),
	)

	err := s.processSchedule(ctx, recordLog, schedule, now)
	if err != nil {
		recordLog.ErrorContext(ctx, "Schedule failed", logger.ErrorField(err))
	} else {
		recordLog.InfoContext(ctx, "Schedule processed")
	}

	// Bookkeeping is stamped regardless of the attempt's outcome.
	if bkErr := s.scheduleRepo.RecordRunOutcome(ctx, schedule.ID, now, err == nil); bkErr != nil {
		recordLog.ErrorContext(ctx, "Failed to record run outcome", logger.ErrorField(bkErr))
		if err == nil {
			err = bkErr
		}
	}
	return err
}

// processSchedule runs one record's full pipeline. A panic anywhere below is
// converted into the record's failure so the batch loop survives it.
func (s *dispatcherService) processSchedule(ctx context.Context, recordLog *logger.Logger, schedule *model.ReportSchedule, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing schedule %d: %v", schedule.ID, r)
		}
	}()

	filters, filterErr := schedule.ParseFilters()
	if filterErr != nil {
		// Degraded, not fatal: the report runs unfiltered.
		recordLog.WarnContext(ctx, "Malformed filter JSON, proceeding without filters",
			logger.ErrorField(filterErr))
		filters = model.Filters{}
	}

	result, err := s.reportService.Generate(ctx, schedule.ReportKind, schedule.PeriodToken, filters, now)
	if err != nil {
		return fmt.Errorf("report query failed: %w", err)
	}

	html, err := renderReportEmail(schedule, filters, result, now)
	if err != nil {
		return err
	}

	recipients, err := schedule.RecipientList()
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return fmt.Errorf("schedule %d has no recipients", schedule.ID)
	}

	subject := fmt.Sprintf("📊 %s - %s", schedule.Name, utils.FormatDateTimeBR(now))
	for _, recipient := range recipients {
		if err := s.mailer.Send(ctx, recipient, subject, html); err != nil {
			// The whole record is marked failed even when earlier
			// recipients already got their copy.
			return fmt.Errorf("mail send failed: %w", err)
		}
		recordLog.DebugContext(ctx, "Email sent", logger.StringField("recipient", recipient))
	}

	recordLog.InfoContext(ctx, "Report delivered",
		logger.IntField("rows", len(result.Rows)),
		logger.IntField("recipients", len(recipients)),
	)
	return nil
}
