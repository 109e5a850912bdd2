package utils

import (
	"fmt"
	"time"
)

// FormatDateBR renders a date as dd/mm/yyyy.
func FormatDateBR(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatDateTimeBR renders an instant as dd/mm/yyyy hh:mm.
func FormatDateTimeBR(t time.Time) string {
	return fmt.Sprintf("%s %02d:%02d", t.Format("02/01/2006"), t.Hour(), t.Minute())
}

// FormatDateISO renders a date as yyyy-mm-dd, the form SQLite date() emits.
func FormatDateISO(t time.Time) string {
	return t.Format("2006-01-02")
}
