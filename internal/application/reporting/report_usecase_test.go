package reporting_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/reporting"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/testutil"
)

type fixture struct {
	uc         *reporting.UseCase
	p1, p2, p3 *entity.Product
	a, b, c    *entity.RawMaterial
	c1, c2     *entity.Customer
}

// newFixture cuatro ventas (una cancelada) sobre un producto simple y uno con receta.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := testutil.NewStore(t)
	f := &fixture{uc: reporting.NewUseCase(store)}
	f.a = testutil.SeedMaterial(t, store, "RM-A", "10", "100")
	f.b = testutil.SeedMaterial(t, store, "RM-B", "3", "40")
	f.c = testutil.SeedMaterial(t, store, "RM-C", "0", "1")
	f.p1 = testutil.SeedProduct(t, store, "PROD-001", "1000", 10)
	f.p2 = testutil.SeedProduct(t, store, "PROD-002", "5000", 10,
		testutil.Edge{Material: f.a, Qty: "2"}, testutil.Edge{Material: f.b, Qty: "0.5"})
	f.p3 = testutil.SeedProduct(t, store, "PROD-003", "800", 0)
	f.c1 = testutil.SeedCustomer(t, store, "Ana")
	f.c2 = testutil.SeedCustomer(t, store, "Bruno")

	uc := sales.NewSaleUseCase(store, store, appinv.NewEngine(appinv.NewLedger()), zerolog.Nop())
	sell := func(customer *entity.Customer, method, transfer string, productID, qty int64) *dto.SaleResponse {
		out, err := uc.Create(ctx, dto.CreateSaleRequest{
			CustomerID: &customer.ID, PaymentMethod: method, TransferType: transfer,
			Lines: []dto.SaleLineRequest{{ProductID: productID, Quantity: qty}},
		})
		require.NoError(t, err)
		return out
	}
	sell(f.c1, "efectivo", "", f.p1.ID, 3)
	sell(f.c2, "tarjeta", "", f.p2.ID, 1)
	sell(f.c1, "transferencia", "Nequi", f.p1.ID, 1)
	cancelled := sell(f.c2, "efectivo", "", f.p2.ID, 1)
	_, err := uc.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)
	return f
}

func TestTopProducts_SinCanceladas(t *testing.T) {
	f := newFixture(t)

	top, err := f.uc.TopProducts(context.Background(), dto.TopQuery{})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, f.p1.ID, top[0].ProductID)
	assert.EqualValues(t, 4, top[0].Quantity)
	testutil.RequireDecimal(t, "4000", top[0].Total)
	assert.Equal(t, f.p2.ID, top[1].ProductID)
	assert.EqualValues(t, 1, top[1].Quantity)
	testutil.RequireDecimal(t, "5000", top[1].Total)

	top, err = f.uc.TopProducts(context.Background(), dto.TopQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, top, 1)
}

func TestTopCustomers_PorMonto(t *testing.T) {
	f := newFixture(t)

	top, err := f.uc.TopCustomers(context.Background(), dto.TopQuery{})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, dto.TopCustomerDTO{CustomerID: f.c2.ID, Name: "Bruno", SalesCount: 1, Total: top[0].Total}, top[0])
	testutil.RequireDecimal(t, "5000", top[0].Total)
	assert.Equal(t, "Ana", top[1].Name)
	assert.Equal(t, 2, top[1].SalesCount)
	testutil.RequireDecimal(t, "4000", top[1].Total)
}

func TestLowStock_ProductosYMaterias(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	products, err := f.uc.LowStockProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "PROD-003", products[0].SKU)

	materials, err := f.uc.LowStockMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, f.c.ID, materials[0].RawMaterialID)
	assert.Equal(t, "ML", materials[0].Unit)
}

func TestMaterialConsumption_IgnoraAnulados(t *testing.T) {
	f := newFixture(t)

	rows, err := f.uc.MaterialConsumption(context.Background(), dto.RangeQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, f.a.ID, rows[0].RawMaterialID)
	testutil.RequireDecimal(t, "2", rows[0].Quantity)
	testutil.RequireDecimal(t, "200", rows[0].Cost)
	testutil.RequireDecimal(t, "8", rows[0].CurrentStock)

	assert.Equal(t, f.b.ID, rows[1].RawMaterialID)
	testutil.RequireDecimal(t, "0.5", rows[1].Quantity)
	testutil.RequireDecimal(t, "20", rows[1].Cost)
	testutil.RequireDecimal(t, "2.5", rows[1].CurrentStock)

	_, err = f.uc.MaterialConsumption(context.Background(), dto.RangeQuery{From: "2026-02-30"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductionProjection_CuelloDeBotella(t *testing.T) {
	f := newFixture(t)

	rows, err := f.uc.ProductionProjection(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.p2.ID, rows[0].ProductID)
	// A: 8/2 = 4, B: 2.5/0.5 = 5
	assert.EqualValues(t, 4, rows[0].MaxProducible)
	testutil.RequireDecimal(t, "220", rows[0].RealCost)
	testutil.RequireDecimal(t, "4780", rows[0].UnitMargin)
}

func TestSalesSummary_PorMedioDePago(t *testing.T) {
	f := newFixture(t)

	sum, err := f.uc.SalesSummary(context.Background(), dto.RangeQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 1, sum.CancelledCount)
	testutil.RequireDecimal(t, "9000", sum.Total)
	testutil.RequireDecimal(t, "9000", sum.Subtotal)

	require.Len(t, sum.ByPayment, 3)
	assert.Equal(t, string(entity.PaymentCard), sum.ByPayment[0].Method)
	assert.Equal(t, "Tarjeta", sum.ByPayment[0].Label)
	assert.Equal(t, string(entity.PaymentCash), sum.ByPayment[1].Method)
	assert.Equal(t, 1, sum.ByPayment[1].Count)
	assert.Equal(t, string(entity.PaymentTransfer), sum.ByPayment[2].Method)

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	sum, err = f.uc.SalesSummary(context.Background(), dto.RangeQuery{From: tomorrow})
	require.NoError(t, err)
	assert.Zero(t, sum.Count)
	assert.True(t, sum.Total.IsZero())
}

func TestDashboard_HoyYMes(t *testing.T) {
	f := newFixture(t)

	d, err := f.uc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, d.Today.Count)
	assert.Equal(t, 3, d.Month.Count)
	testutil.RequireDecimal(t, "9000", d.Month.Total)
	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, f.p1.ID, d.TopProducts[0].ProductID)
	assert.Equal(t, 1, d.LowStockCount)
	assert.Contains(t, d.DateLabel, strconv.Itoa(time.Now().Year()))
}
