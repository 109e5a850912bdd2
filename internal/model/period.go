package model

import (
	"math"
	"time"
)

// Period tokens stored on schedule records. Unknown tokens resolve to the
// current month on purpose, see ResolvePeriod.
const (
	PeriodCurrentMonth   = "mes-atual"
	PeriodPreviousMonth  = "mes-anterior"
	PeriodLast30Days     = "ultimos-30-dias"
	PeriodLast7Days      = "ultimos-7-dias"
	PeriodCurrentYear    = "ano-atual"
	PeriodCurrentQuarter = "trimestre-atual"
)

// Period is a resolved date window with inclusive calendar-day bounds.
// OpenEnd marks rolling windows ("last N days") whose upper bound is not
// enforced in SQL.
type Period struct {
	Start   time.Time
	End     time.Time
	OpenEnd bool
}

// ResolvePeriod maps a period token to concrete bounds relative to now.
// An unknown or empty token falls back to the current month; schedules
// created before the period field existed have no token at all.
func ResolvePeriod(token string, now time.Time) Period {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch token {
	case PeriodPreviousMonth:
		return Period{
			Start: monthStart.AddDate(0, -1, 0),
			End:   monthStart.AddDate(0, 0, -1),
		}
	case PeriodLast30Days:
		return Period{Start: day.AddDate(0, 0, -30), End: day, OpenEnd: true}
	case PeriodLast7Days:
		return Period{Start: day.AddDate(0, 0, -7), End: day, OpenEnd: true}
	case PeriodCurrentYear:
		return Period{
			Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
			End:   time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()),
		}
	case PeriodCurrentQuarter:
		// Quarter boundaries are calendar-aligned: months 1, 4, 7, 10.
		offset := (int(now.Month()) - 1) % 3
		quarterStart := monthStart.AddDate(0, -offset, 0)
		return Period{
			Start: quarterStart,
			End:   quarterStart.AddDate(0, 3, 0).AddDate(0, 0, -1),
		}
	case PeriodCurrentMonth:
		fallthrough
	default:
		return Period{
			Start: monthStart,
			End:   monthStart.AddDate(0, 1, -1),
		}
	}
}

// Days returns the span in whole days between the bounds, rounded.
func (p Period) Days() int {
	return int(math.Round(p.End.Sub(p.Start).Hours() / 24))
}

// PreviousEquivalent computes the comparison window of equal length
// immediately preceding p: its end is the day before p.Start, NOT the
// calendar-aligned previous month.
func (p Period) PreviousEquivalent() Period {
	diffDays := p.Days()
	end := p.Start.AddDate(0, 0, -1)
	return Period{
		Start: end.AddDate(0, 0, -diffDays),
		End:   end,
	}
}

// Condition renders the window as a parameterized SQL predicate over the
// given date column.
func (p Period) Condition(column string) (string, []interface{}) {
	start := p.Start.Format("2006-01-02")
	if p.OpenEnd {
		return column + " >= ?", []interface{}{start}
	}
	return column + " >= ? AND " + column + " <= ?", []interface{}{start, p.End.Format("2006-01-02")}
}

// VarianceDirection is "up", "down" or "neutral".
type VarianceDirection string

const (
	VarianceUp      VarianceDirection = "up"
	VarianceDown    VarianceDirection = "down"
	VarianceNeutral VarianceDirection = "neutral"
)

// Variance describes how a measure moved between two periods.
type Variance struct {
	Difference float64           `json:"difference"`
	Percent    float64           `json:"percent"`
	Direction  VarianceDirection `json:"direction"`
}

// ComputeVariance compares a current value against a previous-period
// baseline. A zero baseline is reported as a flat 100% movement rather than
// dividing by zero: any positive current value against nothing is "up".
func ComputeVariance(current, previous float64) Variance {
	if previous == 0 {
		direction := VarianceNeutral
		if current > 0 {
			direction = VarianceUp
		}
		return Variance{Difference: current, Percent: 100, Direction: direction}
	}

	difference := current - previous
	direction := VarianceNeutral
	if difference > 0 {
		direction = VarianceUp
	} else if difference < 0 {
		direction = VarianceDown
	}

	return Variance{
		Difference: difference,
		Percent:    math.Abs(difference / previous * 100),
		Direction:  direction,
	}
}
