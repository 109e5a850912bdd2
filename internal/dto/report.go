package dto

import "ger-comercial/internal/model"

// Comparison modes offered by the dashboard.
const (
	ComparisonModePrevious = "mes-anterior"
	ComparisonModeCustom   = "personalizado"
)

type RunReportRequest struct {
	Kind    string        `json:"dashboard" validate:"required"`
	Period  string        `json:"periodo"`
	Filters model.Filters `json:"filtros"`
}

type ComparisonRequest struct {
	Start           string        `json:"inicio" validate:"required"`
	End             string        `json:"fim" validate:"required"`
	Mode            string        `json:"modo" validate:"omitempty,oneof=mes-anterior personalizado"`
	ComparisonStart string        `json:"comp_inicio"`
	ComparisonEnd   string        `json:"comp_fim"`
	Filters         model.Filters `json:"filtros"`
}

type PeriodSummary struct {
	Start   string             `json:"inicio"`
	End     string             `json:"fim"`
	Summary model.SalesSummary `json:"totais"`
}

type ComparisonResponse struct {
	Principal  PeriodSummary  `json:"periodo_principal"`
	Comparison PeriodSummary  `json:"periodo_comparacao"`
	Value      model.Variance `json:"variacao_valor"`
	Orders     model.Variance `json:"variacao_pedidos"`
	Customers  model.Variance `json:"variacao_clientes"`
}

type ScheduleSummary struct {
	ID               uint   `json:"id"`
	Name             string `json:"nome_agendamento"`
	ReportKind       string `json:"dashboard"`
	DaySpec          string `json:"dia_semana"`
	Hour             string `json:"hora"`
	Period           string `json:"periodo"`
	Active           bool   `json:"ativo"`
	LastRunAt        string `json:"ultima_execucao,omitempty"`
	LastRunSucceeded *bool  `json:"ultima_execucao_sucesso,omitempty"`
	TotalRuns        int    `json:"total_execucoes"`
}
