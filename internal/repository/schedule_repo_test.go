package repository

import (
	"context"
	"testing"
	"time"

	"ger-comercial/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second pooled connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)
	return db
}

func newScheduleDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&model.ReportSchedule{}))
	return db
}

func seedSchedule(t *testing.T, db *gorm.DB, s *model.ReportSchedule) {
	t.Helper()
	if s.Recipients == nil {
		s.Recipients = datatypes.JSON(`["gestor@germani.com"]`)
	}
	require.NoError(t, db.Create(s).Error)
}

func TestScheduleRepository_FindActive(t *testing.T) {
	db := newScheduleDB(t)
	repo := NewScheduleRepository(db)

	// Stored tokens carry the whitespace and casing the dashboard lets through.
	seedSchedule(t, db, &model.ReportSchedule{
		Name:       "Vendas Semanal",
		ReportKind: model.ReportKindSalesByTeam,
		DaySpec:    " Segunda ",
		Hour:       "08:00 ",
		Active:     true,
	})
	seedSchedule(t, db, &model.ReportSchedule{
		Name:       "Desativado",
		ReportKind: model.ReportKindSalesByTeam,
		DaySpec:    "terca",
		Hour:       "08:00",
		Active:     false,
	})

	schedules, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "segunda", schedules[0].DaySpec)
	assert.Equal(t, "08:00", schedules[0].Hour)
}

func TestScheduleRepository_FindByID(t *testing.T) {
	db := newScheduleDB(t)
	repo := NewScheduleRepository(db)

	seedSchedule(t, db, &model.ReportSchedule{
		Name:       "Ranking Mensal",
		ReportKind: model.ReportKindCustomerRanking,
		DaySpec:    "Sexta",
		Hour:       "17:00",
		Active:     true,
	})

	schedule, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "sexta", schedule.DaySpec)

	_, err = repo.FindByID(context.Background(), 99)
	assert.Error(t, err)
}

func TestScheduleRepository_RecordRunOutcome(t *testing.T) {
	db := newScheduleDB(t)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	seedSchedule(t, db, &model.ReportSchedule{
		Name:       "Produtos Parados",
		ReportKind: model.ReportKindStagnantProducts,
		DaySpec:    "segunda",
		Hour:       "08:00",
		Active:     true,
	})

	firstRun := time.Date(2025, time.August, 18, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordRunOutcome(ctx, 1, firstRun, true))

	schedule, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, schedule.TotalRuns)
	require.True(t, schedule.LastRunAt.Valid)
	assert.Equal(t, firstRun.Unix(), schedule.LastRunAt.Time.Unix())
	require.True(t, schedule.LastRunSucceeded.Valid)
	assert.True(t, schedule.LastRunSucceeded.Bool)

	// A failed attempt stamps the timestamp and flag but not the counter.
	secondRun := firstRun.Add(time.Hour)
	require.NoError(t, repo.RecordRunOutcome(ctx, 1, secondRun, false))

	schedule, err = repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, schedule.TotalRuns)
	assert.Equal(t, secondRun.Unix(), schedule.LastRunAt.Time.Unix())
	assert.False(t, schedule.LastRunSucceeded.Bool)
}

func TestScheduleRepository_List(t *testing.T) {
	db := newScheduleDB(t)
	repo := NewScheduleRepository(db)

	seedSchedule(t, db, &model.ReportSchedule{Name: "A", ReportKind: model.ReportKindSalesByTeam, DaySpec: "segunda", Hour: "08:00", Active: true})
	seedSchedule(t, db, &model.ReportSchedule{Name: "B", ReportKind: model.ReportKindSalesByTeam, DaySpec: "terca", Hour: "09:00", Active: false})

	schedules, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, schedules, 2)
}
