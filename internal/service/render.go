package service

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sort"
	"time"

	"ger-comercial/internal/model"
	"ger-comercial/pkg/utils"
)

//go:embed templates/report_email.html
var reportEmailHTML string

var reportEmailTmpl = template.Must(template.New("report_email").Parse(reportEmailHTML))

type emailRow struct {
	Cells []string
	Even  bool
}

type emailData struct {
	Title       string
	KindName    string
	GeneratedAt string
	Filters     []string
	Columns     []string
	Rows        []emailRow
	TotalRows   int
}

// renderReportEmail builds the fixed HTML layout embedding the normalized
// columns/rows and the active filter summary.
func renderReportEmail(schedule *model.ReportSchedule, filters model.Filters, result *model.ReportResult, generatedAt time.Time) (string, error) {
	filterLines := make([]string, 0, len(filters))
	for key, value := range filters {
		filterLines = append(filterLines, fmt.Sprintf("%s: %s", key, value))
	}
	sort.Strings(filterLines)

	data := emailData{
		Title:       schedule.Name,
		KindName:    schedule.ReportKind.DisplayName(),
		GeneratedAt: utils.FormatDateTimeBR(generatedAt),
		Filters:     filterLines,
		Columns:     result.Columns,
		TotalRows:   len(result.Rows),
	}
	for i, cells := range result.Rows {
		data.Rows = append(data.Rows, emailRow{Cells: cells, Even: i%2 == 0})
	}

	var buf bytes.Buffer
	if err := reportEmailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report email: %w", err)
	}
	return buf.String(), nil
}
