package model

// ReportKind identifies one of the dashboards that can be scheduled as an
// email report. Values are stored in the database, so they stay as the
// dashboard identifiers the frontend uses.
type ReportKind string

const (
	ReportKindStagnantProducts ReportKind = "produtos-parados"
	ReportKindSalesByRegion    ReportKind = "vendas-regiao"
	ReportKindSalesByTeam      ReportKind = "vendas-equipe"
	ReportKindCustomerActivity ReportKind = "performance-clientes"
	ReportKindCustomerRanking  ReportKind = "ranking-clientes"
	ReportKindProductAnalysis  ReportKind = "analise-produtos"
	ReportKindStaleCustomers   ReportKind = "clientes-semcompras"
)

// AllReportKinds lists every supported kind, in menu order.
var AllReportKinds = []ReportKind{
	ReportKindStagnantProducts,
	ReportKindSalesByRegion,
	ReportKindSalesByTeam,
	ReportKindCustomerActivity,
	ReportKindCustomerRanking,
	ReportKindProductAnalysis,
	ReportKindStaleCustomers,
}

var reportKindNames = map[ReportKind]string{
	ReportKindStagnantProducts: "Produtos Parados",
	ReportKindSalesByRegion:    "Vendas por Região",
	ReportKindSalesByTeam:      "Vendas por Equipe",
	ReportKindCustomerActivity: "Performance de Clientes",
	ReportKindCustomerRanking:  "Ranking de Clientes",
	ReportKindProductAnalysis:  "Análise de Produtos",
	ReportKindStaleCustomers:   "Clientes sem Compras",
}

func (k ReportKind) Valid() bool {
	_, ok := reportKindNames[k]
	return ok
}

// DisplayName returns the human title used in email subjects and headers.
func (k ReportKind) DisplayName() string {
	if name, ok := reportKindNames[k]; ok {
		return name
	}
	return string(k)
}

// Filters maps a filter key to the single equality value applied on its
// column. Absent keys are omitted from the query, never defaulted.
type Filters map[string]string

func (f Filters) HasAny(keys ...string) bool {
	for _, key := range keys {
		if f[key] != "" {
			return true
		}
	}
	return false
}

// LocationFilterKeys are the filters that switch vendas-regiao into its
// two-tier total/detail output.
var LocationFilterKeys = []string{"rota", "sub_rota", "cidade"}

// ReportResult is the normalized shape every report query returns, so the
// dispatcher can render any kind uniformly. Cells are already formatted for
// presentation.
type ReportResult struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RegionTotal is one per-region aggregate row of the two-tier
// vendas-regiao output.
type RegionTotal struct {
	Region    string
	Customers int64
	Sales     float64
	Reps      int64
}

// RegionDetail is one per-region-per-salesperson breakdown row.
type RegionDetail struct {
	Region  string
	Rep     string
	RepName string
	Sales   float64
}

// SalesSummary carries the KPI totals the period-comparison view compares.
type SalesSummary struct {
	TotalValue     float64 `json:"total_value"`
	TotalOrders    int64   `json:"total_orders"`
	TotalCustomers int64   `json:"total_customers"`
}
