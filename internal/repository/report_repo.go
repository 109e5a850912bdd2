package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"ger-comercial/internal/model"
	"ger-comercial/pkg/logger"
	"ger-comercial/pkg/utils"

	"gorm.io/gorm"
)

// DefaultStaleDays is the clientes-semcompras threshold applied when the
// schedule carries no dias_sem_compra filter.
const DefaultStaleDays = 90

// ReportRepository builds and executes the aggregation query for each report
// kind and normalizes the result into model.ReportResult. Presentation
// formatting (currency, dates) happens here at the normalization boundary,
// never inside the SQL.
type ReportRepository interface {
	Run(ctx context.Context, kind model.ReportKind, period model.Period, filters model.Filters) (*model.ReportResult, error)
	RegionTotals(ctx context.Context, period model.Period, filters model.Filters) ([]model.RegionTotal, error)
	RegionDetails(ctx context.Context, period model.Period, filters model.Filters) ([]model.RegionDetail, error)
	SalesSummary(ctx context.Context, period model.Period, filters model.Filters) (*model.SalesSummary, error)
}

type reportQueryFunc func(ctx context.Context, db *gorm.DB, period model.Period, filters model.Filters) (*model.ReportResult, error)

type reportRepository struct {
	db      *gorm.DB
	log     *logger.Logger
	queries map[model.ReportKind]reportQueryFunc
}

func NewReportRepository(db *gorm.DB, log *logger.Logger) ReportRepository {
	r := &reportRepository{db: db, log: log}
	r.queries = map[model.ReportKind]reportQueryFunc{
		model.ReportKindStagnantProducts: r.stagnantProducts,
		model.ReportKindSalesByRegion:    r.salesByRegion,
		model.ReportKindSalesByTeam:      r.salesByTeam,
		model.ReportKindCustomerActivity: r.customerActivity,
		model.ReportKindCustomerRanking:  r.customerRanking,
		model.ReportKindProductAnalysis:  r.productAnalysis,
		model.ReportKindStaleCustomers:   r.staleCustomers,
	}
	return r
}

func (r *reportRepository) Run(ctx context.Context, kind model.ReportKind, period model.Period, filters model.Filters) (*model.ReportResult, error) {
	query, ok := r.queries[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported report kind: %s", kind)
	}
	return query(ctx, r.db.WithContext(ctx), period, filters)
}

// filterClause appends "AND column = ?" when the filter key is present.
// Absent keys are omitted, never defaulted.
func filterClause(sql string, args []interface{}, filters model.Filters, key, column string) (string, []interface{}) {
	if value := filters[key]; value != "" {
		sql += " AND " + column + " = ?"
		args = append(args, value)
	}
	return sql, args
}

func (r *reportRepository) stagnantProducts(ctx context.Context, db *gorm.DB, _ model.Period, filters model.Filters) (*model.ReportResult, error) {
	// Pre-filtered by supervisor/risk/category before the view's own
	// aggregation; staleness, not revenue, drives the sort.
	query := `
		SELECT
			sku_produto AS produto,
			desc_produto,
			categoria_produto AS desc_familia,
			rep_supervisor,
			qtd_semanas_parado,
			nivel_risco,
			ultima_venda,
			valor_medio_perdido
		FROM vw_produtos_parados
		WHERE 1=1`
	var args []interface{}
	query, args = filterClause(query, args, filters, "supervisor", "rep_supervisor")
	query, args = filterClause(query, args, filters, "nivel_risco", "nivel_risco")
	query, args = filterClause(query, args, filters, "familia", "categoria_produto")
	query += " ORDER BY qtd_semanas_parado DESC LIMIT 100"

	var rows []struct {
		Produto           string
		DescProduto       string
		DescFamilia       string
		RepSupervisor     string
		QtdSemanasParado  int64
		NivelRisco        string
		UltimaVenda       sql.NullString
		ValorMedioPerdido float64
	}
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("stagnant products query: %w", err)
	}

	result := &model.ReportResult{
		Columns: []string{"Produto", "Descrição", "Família", "Supervisor", "Semanas Parado", "Nível Risco", "Última Venda", "Valor Médio"},
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, []string{
			row.Produto,
			row.DescProduto,
			row.DescFamilia,
			row.RepSupervisor,
			strconv.FormatInt(row.QtdSemanasParado, 10),
			row.NivelRisco,
			dateCell(row.UltimaVenda, "N/A"),
			utils.FormatBRL(row.ValorMedioPerdido),
		})
	}
	return result, nil
}

// salesByRegion is the coarse single-tier variant grouped by state. The
// two-tier breakdown used when location filters are present lives in
// RegionTotals/RegionDetails; the caller decides which shape it needs.
func (r *reportRepository) salesByRegion(ctx context.Context, db *gorm.DB, period model.Period, filters model.Filters) (*model.ReportResult, error) {
	condition, args := period.Condition("v.emissao")
	query := `
		SELECT
			v.uf AS rota,
			COUNT(DISTINCT v.cliente) AS total_clientes,
			SUM(v.valor_liquido) AS total_vendas,
			COUNT(DISTINCT v.representante) AS total_reps
		FROM vendas v
		WHERE ` + condition
	query, args = filterClause(query, args, filters, "estado", "v.uf")
	query += " GROUP BY v.uf ORDER BY total_vendas DESC LIMIT 100"

	var rows []struct {
		Rota          string
		TotalClientes int64
		TotalVendas   float64
		TotalReps     int64
	}
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sales by region query: %w", err)
	}

	result := &model.ReportResult{Columns: regionColumns()}
	for _, row := range rows {
		result.Rows = append(result.Rows, []string{
			row.Rota,
			utils.FormatNumberBR(row.TotalClientes),
			utils.FormatBRL(row.TotalVendas),
			utils.FormatNumberBR(row.TotalReps),
		})
	}
	return result, nil
}

func regionColumns() []string {
	return []string{"Região/Rota", "Total Clientes", "Total Vendas", "Representantes"}
}

func (r *reportRepository) RegionTotals(ctx context.Context, period model.Period, filters model.Filters) ([]model.RegionTotal, error) {
	condition, args := period.Condition("v.emissao")
	query := `
		SELECT
			c.rota,
			COUNT(DISTINCT v.cliente) AS total_clientes,
			SUM(v.valor_liquido) AS total_vendas,
			COUNT(DISTINCT v.representante) AS total_reps
		FROM vendas v
		LEFT JOIN tab_cliente c ON v.cliente = c.cliente
		WHERE ` + condition
	query, args = appendLocationFilters(query, args, filters)
	query += " GROUP BY c.rota ORDER BY total_vendas DESC LIMIT 100"

	var rows []struct {
		Rota          string
		TotalClientes int64
		TotalVendas   float64
		TotalReps     int64
	}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("region totals query: %w", err)
	}

	totals := make([]model.RegionTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, model.RegionTotal{
			Region:    row.Rota,
			Customers: row.TotalClientes,
			Sales:     row.TotalVendas,
			Reps:      row.TotalReps,
		})
	}
	return totals, nil
}

func (r *reportRepository) RegionDetails(ctx context.Context, period model.Period, filters model.Filters) ([]model.RegionDetail, error) {
	condition, args := period.Condition("v.emissao")
	query := `
		SELECT
			c.rota,
			v.representante,
			r.desc_representante,
			SUM(v.valor_liquido) AS total_vendas
		FROM vendas v
		LEFT JOIN tab_cliente c ON v.cliente = c.cliente
		LEFT JOIN tab_representante r ON v.representante = r.representante
		WHERE ` + condition
	query, args = appendLocationFilters(query, args, filters)
	query += " GROUP BY c.rota, v.representante ORDER BY c.rota, total_vendas DESC"

	var rows []struct {
		Rota              string
		Representante     string
		DescRepresentante string
		TotalVendas       float64
	}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("region details query: %w", err)
	}

	details := make([]model.RegionDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, model.RegionDetail{
			Region:  row.Rota,
			Rep:     row.Representante,
			RepName: row.DescRepresentante,
			Sales:   row.TotalVendas,
		})
	}
	return details, nil
}

func appendLocationFilters(query string, args []interface{}, filters model.Filters) (string, []interface{}) {
	query, args = filterClause(query, args, filters, "rota", "c.rota")
	query, args = filterClause(query, args, filters, "sub_rota", "c.sub_rota")
	query, args = filterClause(query, args, filters, "cidade", "c.cidade")
	query, args = filterClause(query, args, filters, "estado", "c.estado")
	return query, args
}

func (r *reportRepository) salesByTeam(ctx context.Context, db *gorm.DB, period model.Period, filters model.Filters) (*model.ReportResult, error) {
	condition, args := period.Condition("v.emissao")
	query := `
		SELECT
			v.representante,
			r.desc_representante,
			r.rep_supervisor,
			COUNT(DISTINCT v.cliente) AS total_clientes,
			SUM(v.valor_liquido) AS total_vendas
		FROM vendas v
		LEFT JOIN tab_representante r ON v.representante = r.representante
		WHERE ` + condition
	query, args = filterClause(query, args, filters, "supervisor", "r.rep_supervisor")
	query, args = filterClause(query, args, filters, "representante", "v.representante")
	query += " GROUP BY v.representante ORDER BY total_vendas DESC LIMIT 100"

	var rows []struct {
		Representante     string
		DescRepresentante string
		RepSupervisor     string
		TotalClientes     int64
		TotalVendas       float64
	}
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sales by team query: %w", err)
	}

	result := &model.ReportResult{
		Columns: []string{"Representante", "Nome", "Supervisor", "Clientes", "Total Vendas"},
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, []string{
			row.Representante,
			row.DescRepresentante,
			row.RepSupervisor,
			utils.FormatNumberBR(row.TotalClientes),
			utils.FormatBRL(row.TotalVendas),
		})
	}
	return result, nil
}

func (r *reportRepository) customerActivity(ctx context.Context, db *gorm.DB, period model.Period, filters model.Filters) (*model.ReportResult, error) {
	condition, args := period.Condition("v.emissao")
	query := `
		SELECT
			c.cliente,
			c.nome,
			c.rota,
			COUNT(*) AS total_pedidos,
			SUM(v.valor_liquido) AS total_vendas
		FROM vendas v
		LEFT JOIN tab_cliente c ON v.cliente = c.cliente
		WHERE ` + condition
	query, args = filterClause(query, args, filters, "rota", "c.rota")
	query, args = filterClause(query, args, filters, "grupo", "c.grupo")
	query += " GROUP BY v.cliente ORDER BY total_vendas DESC LIMIT 50"

	var rows []struct {
		Cliente      string
		Nome         string
		Rota         string
		TotalPedidos int64
		TotalVendas  float64
	}
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("customer activity query: %w", err)
	}

	result := &model.ReportResult{
		Columns: []string{"Cliente", "Nome", "Rota", "Pedidos", "Total Vendas"},
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, []string{
			row.Cliente,
			row.Nome,
			row.Rota,
			utils.FormatNumberBR(row.TotalPedidos),
			utils.FormatBRL(row.TotalVendas),
		})
	}
	return result, nil
}

func (r *reportRepository) customerRanking(ctx context.Context, db *gorm.DB, period model.Period, filters model.Filters) (*model.ReportResult, error) {
	condition, args := period.Condition("v.emissao")
	query := `
		SELECT
			c.cliente,
			c.nome,
			c.rota,
			SUM(v.valor_liquido) AS total_vendas,
			COUNT(*) AS total_pedidos,
			AVG(v.valor_liquido) AS ticket_medio
		FROM vendas v
		LEFT JOIN tab_cliente c ON v.cliente = c.cliente
		WHERE ` + condition
	query, args = filterClause(query, args, filters, "rota", "c.rota")
	query += " GROUP BY v.cliente ORDER BY total_vendas DESC LIMIT 30"

	var rows []struct {
		Cliente      string
		Nome         string
		Rota         string
		TotalVendas  float64
		TotalPedidos int64
		TicketMedio  float64
	}
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("customer ranking query: %w", err)
	}

	result := &model.ReportResult{
		Columns: []string{"Ranking", "Cliente", "Nome", "Rota", "Total Vendas", "Pedidos", "Ticket Médio"},
	}
	for i, row := range rows {
		result.Rows = append(result.Rows, []string{
			strconv.Itoa(i + 1),
			row.Cliente,
			row.Nome,
			row.Rota,
			utils.FormatBRL(row.TotalVendas),
			utils.FormatNumberBR(row.TotalPedidos),
			utils.FormatBRL(row.TicketMedio),
		})
	}
	return result, nil
}

func (r *reportRepository) productAnalysis(ctx context.Context, db *gorm.DB, period model.Period, filters model.Filters) (*model.ReportResult, error) {
	condition, args := period.Condition("v.emissao")
	query := `
		SELECT
			v.produto,
			p.desc_produto,
			p.desc_familia,
			COUNT(*) AS total_vendas,
			SUM(v.quantidade) AS qtd_vendida,
			SUM(v.valor_liquido) AS valor_total
		FROM vendas v
		LEFT JOIN tab_produto p ON v.produto = p.produto
		WHERE ` + condition
	query, args = filterClause(query, args, filters, "familia", "p.familia")
	query, args = filterClause(query, args, filters, "origem", "p.origem")
	query += " GROUP BY v.produto ORDER BY valor_total DESC LIMIT 50"

	var rows []struct {
		Produto     string
		DescProduto string
		DescFamilia string
		TotalVendas int64
		QtdVendida  float64
		ValorTotal  float64
	}
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("product analysis query: %w", err)
	}

	result := &model.ReportResult{
		Columns: []string{"Produto", "Descrição", "Família", "Vendas", "Qtd Vendida", "Valor Total"},
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, []string{
			row.Produto,
			row.DescProduto,
			row.DescFamilia,
			utils.FormatNumberBR(row.TotalVendas),
			// Quantities sum fractionally for weight-based products.
			utils.FormatNumberBR(int64(math.Round(row.QtdVendida))),
			utils.FormatBRL(row.ValorTotal),
		})
	}
	return result, nil
}

// staleCustomers applies its dias_sem_compra threshold after aggregation;
// it is a HAVING condition on the computed staleness, not a row filter.
func (r *reportRepository) staleCustomers(ctx context.Context, db *gorm.DB, _ model.Period, filters model.Filters) (*model.ReportResult, error) {
	threshold := DefaultStaleDays
	if raw := filters["dias_sem_compra"]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			threshold = parsed
		}
	}

	query := `
		SELECT
			c.cliente,
			c.nome,
			c.rota,
			MAX(v.emissao) AS ultima_compra,
			julianday('now') - julianday(MAX(v.emissao)) AS dias_sem_compra
		FROM tab_cliente c
		LEFT JOIN vendas v ON c.cliente = v.cliente
		WHERE c.sit_cliente = 'ATIVO'`
	var args []interface{}
	query, args = filterClause(query, args, filters, "rota", "c.rota")
	query += `
		GROUP BY c.cliente
		HAVING dias_sem_compra > ?
		ORDER BY dias_sem_compra DESC
		LIMIT 50`
	args = append(args, threshold)

	var rows []struct {
		Cliente       string
		Nome          string
		Rota          string
		UltimaCompra  sql.NullString
		DiasSemCompra float64
	}
	if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("stale customers query: %w", err)
	}

	result := &model.ReportResult{
		Columns: []string{"Cliente", "Nome", "Rota", "Última Compra", "Dias sem Compra"},
	}
	for _, row := range rows {
		result.Rows = append(result.Rows, []string{
			row.Cliente,
			row.Nome,
			row.Rota,
			dateCell(row.UltimaCompra, "Nunca"),
			strconv.Itoa(int(row.DiasSemCompra + 0.5)),
		})
	}
	return result, nil
}

func (r *reportRepository) SalesSummary(ctx context.Context, period model.Period, filters model.Filters) (*model.SalesSummary, error) {
	condition, args := period.Condition("v.emissao")
	query := `
		SELECT
			COALESCE(SUM(v.valor_liquido), 0) AS total_value,
			COUNT(*) AS total_orders,
			COUNT(DISTINCT v.cliente) AS total_customers
		FROM vendas v
		LEFT JOIN tab_cliente c ON v.cliente = c.cliente
		WHERE ` + condition
	query, args = appendLocationFilters(query, args, filters)
	query, args = filterClause(query, args, filters, "representante", "v.representante")
	query, args = filterClause(query, args, filters, "grupo", "c.grupo")

	var summary model.SalesSummary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&summary).Error; err != nil {
		return nil, fmt.Errorf("sales summary query: %w", err)
	}
	return &summary, nil
}

// dateCell formats a nullable stored date as dd/mm/yyyy, falling back to the
// raw value when it is not in a recognized layout.
func dateCell(value sql.NullString, empty string) string {
	if !value.Valid || value.String == "" {
		return empty
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, value.String); err == nil {
			return utils.FormatDateBR(parsed)
		}
	}
	return value.String
}
