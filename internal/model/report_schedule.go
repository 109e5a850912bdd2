package model

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ger-comercial/pkg/utils"

	"gorm.io/datatypes"
)

// Day specifiers stored on schedule records. Besides the seven weekday
// tokens a record can ask for every day or business days only.
const (
	DayEveryDay    = "todos-dias"
	DayBusinessDay = "dia-util"
)

// weekdayTokens is indexed by time.Weekday (Sunday = 0).
var weekdayTokens = [7]string{
	"domingo", "segunda", "terca", "quarta", "quinta", "sexta", "sabado",
}

// DayToken returns the weekday token for an instant.
func DayToken(t time.Time) string {
	return weekdayTokens[int(t.Weekday())]
}

// HourToken returns the instant truncated to "HH:00". The dispatcher runs
// hourly, so sub-hour precision is discarded.
func HourToken(t time.Time) string {
	return fmt.Sprintf("%02d:00", t.Hour())
}

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// ReportSchedule is one persisted email-report schedule. The table is shared
// with the dashboard frontend, which creates and edits records; this service
// only reads them and writes the run bookkeeping fields.
type ReportSchedule struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"column:nome_agendamento;type:varchar(255);not null"`
	ReportKind  ReportKind     `gorm:"column:dashboard;type:varchar(50);not null"`
	DaySpec     string         `gorm:"column:dia_semana;type:varchar(20);not null"`
	Hour        string         `gorm:"column:hora;type:varchar(5);not null"`
	PeriodToken string         `gorm:"column:periodo;type:varchar(30)"`
	FiltersJSON datatypes.JSON `gorm:"column:filtros_json"`
	Recipients  datatypes.JSON `gorm:"column:emails_destinatarios;not null"`
	Active      bool           `gorm:"column:ativo;default:true"`

	// Bookkeeping, written only by the dispatcher after each attempt.
	LastRunAt        sql.NullTime `gorm:"column:ultima_execucao"`
	LastRunSucceeded sql.NullBool `gorm:"column:ultima_execucao_sucesso"`
	TotalRuns        int          `gorm:"column:total_execucoes;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ReportSchedule) TableName() string {
	return "agendamentos_relatorios"
}

// Normalize canonicalizes the stored day, hour and period tokens. Records
// are edited by hand in the dashboard and have shipped with stray whitespace
// before; normalizing once at the read boundary keeps the due predicate a
// plain string comparison.
func (s *ReportSchedule) Normalize() {
	s.DaySpec = utils.NormalizeToken(s.DaySpec)
	s.Hour = utils.NormalizeToken(s.Hour)
	s.PeriodToken = utils.NormalizeToken(s.PeriodToken)
}

// IsDueAt reports whether the schedule should run at the given instant.
// A record whose hour is not a clean "HH:00" never matches.
func (s *ReportSchedule) IsDueAt(now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.Hour != HourToken(now) {
		return false
	}
	switch s.DaySpec {
	case DayToken(now), DayEveryDay:
		return true
	case DayBusinessDay:
		return IsBusinessDay(now)
	}
	return false
}

// ParseFilters decodes the stored filter JSON. Callers treat a decode error
// as "no filters" so one malformed record cannot poison a batch.
func (s *ReportSchedule) ParseFilters() (Filters, error) {
	if len(s.FiltersJSON) == 0 {
		return Filters{}, nil
	}
	// Values are decoded loosely: the dashboard stores the stale-customer
	// threshold as a bare number while every other filter is a string.
	var raw map[string]interface{}
	if err := json.Unmarshal(s.FiltersJSON, &raw); err != nil {
		return Filters{}, fmt.Errorf("malformed filter JSON: %w", err)
	}
	filters := make(Filters, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			filters[key] = v
		case float64:
			filters[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			filters[key] = fmt.Sprint(v)
		}
	}
	return filters, nil
}

// RecipientList decodes the stored recipient addresses, preserving order.
func (s *ReportSchedule) RecipientList() ([]string, error) {
	if len(s.Recipients) == 0 {
		return nil, nil
	}
	var recipients []string
	if err := json.Unmarshal(s.Recipients, &recipients); err != nil {
		return nil, fmt.Errorf("malformed recipient list: %w", err)
	}
	return recipients, nil
}
