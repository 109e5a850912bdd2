package repository

import (
	"context"
	"testing"
	"time"

	"ger-comercial/internal/model"
	"ger-comercial/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var augustPeriod = model.Period{
	Start: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
}

func newReportDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	for _, ddl := range []string{
		`CREATE TABLE vendas (
			emissao TEXT, cliente TEXT, representante TEXT, produto TEXT,
			quantidade REAL, valor_liquido REAL, uf TEXT)`,
		`CREATE TABLE tab_cliente (
			cliente TEXT, nome TEXT, rota TEXT, sub_rota TEXT, cidade TEXT,
			estado TEXT, grupo TEXT, sit_cliente TEXT)`,
		`CREATE TABLE tab_representante (
			representante TEXT, desc_representante TEXT, rep_supervisor TEXT)`,
		`CREATE TABLE tab_produto (
			produto TEXT, desc_produto TEXT, desc_familia TEXT, familia TEXT, origem TEXT)`,
		`CREATE TABLE vw_produtos_parados (
			sku_produto TEXT, desc_produto TEXT, categoria_produto TEXT,
			rep_supervisor TEXT, qtd_semanas_parado INTEGER, nivel_risco TEXT,
			ultima_venda TEXT, valor_medio_perdido REAL)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newTestReportRepo(t *testing.T) (ReportRepository, *gorm.DB) {
	t.Helper()
	db := newReportDB(t)
	return NewReportRepository(db, &logger.Logger{Logger: zap.NewNop()}), db
}

func seedSale(t *testing.T, db *gorm.DB, emissao, cliente, representante, produto string, quantidade, valor float64, uf string) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO vendas (emissao, cliente, representante, produto, quantidade, valor_liquido, uf) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		emissao, cliente, representante, produto, quantidade, valor, uf,
	).Error
	require.NoError(t, err)
}

func seedCustomer(t *testing.T, db *gorm.DB, cliente, nome, rota string) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO tab_cliente (cliente, nome, rota, sit_cliente) VALUES (?, ?, ?, 'ATIVO')`,
		cliente, nome, rota,
	).Error
	require.NoError(t, err)
}

func TestReportRepository_Run_UnknownKind(t *testing.T) {
	repo, _ := newTestReportRepo(t)
	_, err := repo.Run(context.Background(), "dashboard-inexistente", augustPeriod, nil)
	assert.Error(t, err)
}

func TestReportRepository_SalesByTeam(t *testing.T) {
	repo, db := newTestReportRepo(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(
		`INSERT INTO tab_representante VALUES ('10', 'JOAO', 'CARLOS'), ('20', 'MARIA', 'PAULA')`,
	).Error)
	seedSale(t, db, "2025-08-05", "C1", "10", "P1", 2, 1000, "RS")
	seedSale(t, db, "2025-08-10", "C2", "10", "P1", 1, 500, "RS")
	seedSale(t, db, "2025-08-12", "C3", "20", "P2", 1, 2000, "SC")
	// Outside the window, must not count.
	seedSale(t, db, "2025-07-20", "C1", "10", "P1", 1, 9999, "RS")

	t.Run("aggregates inside the window, highest total first", func(t *testing.T) {
		result, err := repo.Run(ctx, model.ReportKindSalesByTeam, augustPeriod, nil)
		require.NoError(t, err)
		require.Len(t, result.Rows, 2)
		assert.Equal(t, []string{"20", "MARIA", "PAULA", "1", "R$ 2.000,00"}, result.Rows[0])
		assert.Equal(t, []string{"10", "JOAO", "CARLOS", "2", "R$ 1.500,00"}, result.Rows[1])
	})

	t.Run("supervisor filter narrows the result", func(t *testing.T) {
		result, err := repo.Run(ctx, model.ReportKindSalesByTeam, augustPeriod, model.Filters{"supervisor": "CARLOS"})
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, "10", result.Rows[0][0])
	})

	t.Run("empty filter value is not applied", func(t *testing.T) {
		result, err := repo.Run(ctx, model.ReportKindSalesByTeam, augustPeriod, model.Filters{"supervisor": ""})
		require.NoError(t, err)
		assert.Len(t, result.Rows, 2)
	})
}

func TestReportRepository_RegionBreakdown(t *testing.T) {
	repo, db := newTestReportRepo(t)
	ctx := context.Background()

	seedCustomer(t, db, "C1", "CLIENTE UM", "SERRA")
	seedCustomer(t, db, "C2", "CLIENTE DOIS", "SERRA")
	seedCustomer(t, db, "C3", "CLIENTE TRES", "LITORAL")
	require.NoError(t, db.Exec(`INSERT INTO tab_representante VALUES ('10', 'JOAO', 'CARLOS')`).Error)
	seedSale(t, db, "2025-08-05", "C1", "10", "P1", 1, 300, "RS")
	seedSale(t, db, "2025-08-06", "C2", "10", "P1", 1, 200, "RS")
	seedSale(t, db, "2025-08-07", "C3", "10", "P1", 1, 400, "RS")

	t.Run("totals group by customer route", func(t *testing.T) {
		totals, err := repo.RegionTotals(ctx, augustPeriod, nil)
		require.NoError(t, err)
		require.Len(t, totals, 2)
		assert.Equal(t, model.RegionTotal{Region: "SERRA", Customers: 2, Sales: 500, Reps: 1}, totals[0])
		assert.Equal(t, model.RegionTotal{Region: "LITORAL", Customers: 1, Sales: 400, Reps: 1}, totals[1])
	})

	t.Run("route filter keeps only the matching route", func(t *testing.T) {
		totals, err := repo.RegionTotals(ctx, augustPeriod, model.Filters{"rota": "SERRA"})
		require.NoError(t, err)
		require.Len(t, totals, 1)
		assert.Equal(t, "SERRA", totals[0].Region)

		details, err := repo.RegionDetails(ctx, augustPeriod, model.Filters{"rota": "SERRA"})
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, model.RegionDetail{Region: "SERRA", Rep: "10", RepName: "JOAO", Sales: 500}, details[0])
	})
}

func TestReportRepository_CustomerRanking(t *testing.T) {
	repo, db := newTestReportRepo(t)

	seedCustomer(t, db, "C1", "CLIENTE UM", "SERRA")
	seedCustomer(t, db, "C2", "CLIENTE DOIS", "SERRA")
	seedSale(t, db, "2025-08-05", "C1", "10", "P1", 1, 100, "RS")
	seedSale(t, db, "2025-08-06", "C2", "10", "P1", 1, 300, "RS")
	seedSale(t, db, "2025-08-07", "C2", "10", "P1", 1, 100, "RS")

	result, err := repo.Run(context.Background(), model.ReportKindCustomerRanking, augustPeriod, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	// Position numbers follow the revenue order.
	assert.Equal(t, []string{"1", "C2", "CLIENTE DOIS", "SERRA", "R$ 400,00", "2", "R$ 200,00"}, result.Rows[0])
	assert.Equal(t, []string{"2", "C1", "CLIENTE UM", "SERRA", "R$ 100,00", "1", "R$ 100,00"}, result.Rows[1])
}

func TestReportRepository_StaleCustomers(t *testing.T) {
	repo, db := newTestReportRepo(t)
	ctx := context.Background()

	seedCustomer(t, db, "C1", "CLIENTE ANTIGO", "SERRA")
	seedCustomer(t, db, "C2", "CLIENTE RECENTE", "SERRA")
	seedSale(t, db, "2020-01-15", "C1", "10", "P1", 1, 100, "RS")
	seedSale(t, db, time.Now().Format("2006-01-02"), "C2", "10", "P1", 1, 100, "RS")

	t.Run("default threshold keeps only long-inactive customers", func(t *testing.T) {
		result, err := repo.Run(ctx, model.ReportKindStaleCustomers, model.Period{}, nil)
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, "C1", result.Rows[0][0])
		assert.Equal(t, "15/01/2020", result.Rows[0][3])
	})

	t.Run("threshold filter overrides the default", func(t *testing.T) {
		result, err := repo.Run(ctx, model.ReportKindStaleCustomers, model.Period{}, model.Filters{"dias_sem_compra": "100000"})
		require.NoError(t, err)
		assert.Empty(t, result.Rows)
	})
}

func TestReportRepository_StagnantProducts(t *testing.T) {
	repo, db := newTestReportRepo(t)

	require.NoError(t, db.Exec(
		`INSERT INTO vw_produtos_parados VALUES
			('SKU1', 'FARINHA ESPECIAL', 'FARINHAS', 'CARLOS', 12, 'ALTO', '2025-05-01', 1500.5),
			('SKU2', 'MASSA CASEIRA', 'MASSAS', 'PAULA', 4, 'BAIXO', NULL, 200)`,
	).Error)

	t.Run("sorted by weeks stagnant", func(t *testing.T) {
		result, err := repo.Run(context.Background(), model.ReportKindStagnantProducts, model.Period{}, nil)
		require.NoError(t, err)
		require.Len(t, result.Rows, 2)
		assert.Equal(t, []string{"SKU1", "FARINHA ESPECIAL", "FARINHAS", "CARLOS", "12", "ALTO", "01/05/2025", "R$ 1.500,50"}, result.Rows[0])
		// A product that never sold shows the placeholder.
		assert.Equal(t, "N/A", result.Rows[1][6])
	})

	t.Run("risk filter", func(t *testing.T) {
		result, err := repo.Run(context.Background(), model.ReportKindStagnantProducts, model.Period{}, model.Filters{"nivel_risco": "BAIXO"})
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, "SKU2", result.Rows[0][0])
	})
}

func TestReportRepository_ProductAnalysis(t *testing.T) {
	repo, db := newTestReportRepo(t)

	require.NoError(t, db.Exec(
		`INSERT INTO tab_produto VALUES ('P1', 'FARINHA ESPECIAL', 'FARINHAS', 'F1', 'PROPRIA')`,
	).Error)
	// Weight-based quantities sum fractionally.
	seedSale(t, db, "2025-08-05", "C1", "10", "P1", 1.5, 100, "RS")
	seedSale(t, db, "2025-08-06", "C2", "10", "P1", 1.25, 50.5, "RS")

	result, err := repo.Run(context.Background(), model.ReportKindProductAnalysis, augustPeriod, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	// 2.75 units sold round to 3, not truncate to 2.
	assert.Equal(t, []string{"P1", "FARINHA ESPECIAL", "FARINHAS", "2", "3", "R$ 150,50"}, result.Rows[0])
}

func TestReportRepository_SalesSummary(t *testing.T) {
	repo, db := newTestReportRepo(t)
	ctx := context.Background()

	t.Run("empty table yields zero totals", func(t *testing.T) {
		summary, err := repo.SalesSummary(ctx, augustPeriod, nil)
		require.NoError(t, err)
		assert.Equal(t, &model.SalesSummary{}, summary)
	})

	t.Run("totals respect the window and filters", func(t *testing.T) {
		seedCustomer(t, db, "C1", "CLIENTE UM", "SERRA")
		seedCustomer(t, db, "C2", "CLIENTE DOIS", "LITORAL")
		seedSale(t, db, "2025-08-05", "C1", "10", "P1", 1, 100, "RS")
		seedSale(t, db, "2025-08-06", "C1", "10", "P1", 1, 150, "RS")
		seedSale(t, db, "2025-08-07", "C2", "20", "P1", 1, 400, "RS")
		seedSale(t, db, "2025-09-01", "C1", "10", "P1", 1, 999, "RS")

		summary, err := repo.SalesSummary(ctx, augustPeriod, nil)
		require.NoError(t, err)
		assert.Equal(t, &model.SalesSummary{TotalValue: 650, TotalOrders: 3, TotalCustomers: 2}, summary)

		summary, err = repo.SalesSummary(ctx, augustPeriod, model.Filters{"rota": "SERRA"})
		require.NoError(t, err)
		assert.Equal(t, &model.SalesSummary{TotalValue: 250, TotalOrders: 2, TotalCustomers: 1}, summary)
	})
}
