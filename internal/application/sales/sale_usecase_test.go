package sales_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/persistence"
	"github.com/jhoicas/inventario-pos/internal/testutil"
)

type env struct {
	ctx      context.Context
	store    *persistence.Store
	sales    *sales.SaleUseCase
	invoices *sales.InvoiceUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := testutil.NewStore(t)
	engine := appinv.NewEngine(appinv.NewLedger())
	return &env{
		ctx:      context.Background(),
		store:    store,
		sales:    sales.NewSaleUseCase(store, store, engine, zerolog.Nop()),
		invoices: sales.NewInvoiceUseCase(store, store, stubPDF{}, zerolog.Nop()),
	}
}

type stubPDF struct{}

func (stubPDF) GenerateInvoicePDF(_ context.Context, doc *sales.InvoiceDocument) ([]byte, error) {
	return []byte("%PDF " + doc.InvoiceNumber), nil
}

func cashSale(lines ...dto.SaleLineRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{PaymentMethod: "efectivo", Lines: lines}
}

func line(productID, qty int64) dto.SaleLineRequest {
	return dto.SaleLineRequest{ProductID: productID, Quantity: qty}
}

func (e *env) productMovements(t *testing.T, ref string) []*entity.ProductMovement {
	t.Helper()
	list, err := e.store.ProductMovements().ListByReference(e.ctx, ref)
	require.NoError(t, err)
	return list
}

func (e *env) materialMovements(t *testing.T, ref string) []*entity.MaterialMovement {
	t.Helper()
	list, err := e.store.MaterialMovements().ListByReference(e.ctx, ref)
	require.NoError(t, err)
	return list
}

// bomCatalog producto con receta {A: 2.0, B: 0.5}.
func bomCatalog(t *testing.T, store *persistence.Store, stockA string) (*entity.Product, *entity.RawMaterial, *entity.RawMaterial) {
	a := testutil.SeedMaterial(t, store, "RM-A", stockA, "100")
	b := testutil.SeedMaterial(t, store, "RM-B", "3", "40")
	p := testutil.SeedProduct(t, store, "PROD-002", "5000", 10,
		testutil.Edge{Material: a, Qty: "2.0"}, testutil.Edge{Material: b, Qty: "0.5"})
	return p, a, b
}

func TestCreate_VentaSimple(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1000", 10)
	c := testutil.SeedCustomer(t, e.store, "Cliente C")

	in := cashSale(dto.SaleLineRequest{ProductID: p.ID, Quantity: 3, UnitPrice: ptr(testutil.D("1000"))})
	in.CustomerID = &c.ID
	out, err := e.sales.Create(e.ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", out.InvoiceNumber)
	testutil.RequireDecimal(t, "3000", out.Total)
	testutil.RequireDecimal(t, "3000", out.Subtotal)
	assert.Equal(t, string(entity.SaleStatusCompleted), out.Status)
	assert.Equal(t, "Cliente C", out.CustomerName)
	assert.Equal(t, "Efectivo", out.PaymentLabel)
	assert.EqualValues(t, 7, testutil.ProductStock(t, e.store, p.ID))

	ms := e.productMovements(t, fmt.Sprintf("SALE-%d", out.ID))
	require.Len(t, ms, 1)
	assert.Equal(t, entity.ProductExit, ms[0].Kind)
	assert.EqualValues(t, -3, ms[0].Quantity)
	assert.EqualValues(t, 10, ms[0].PreviousStock)
	assert.EqualValues(t, 7, ms[0].NewStock)
	assert.Equal(t, "Venta INV-000001", ms[0].Reason)
	testutil.AssertLedgerIdentity(t, e.store)
}

func TestCreate_PrecioPorDefectoDelProducto(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1250.50", 10)

	in := cashSale(line(p.ID, 2))
	in.Tax = testutil.D("100")
	in.Discount = testutil.D("1.005")
	out, err := e.sales.Create(e.ctx, in)
	require.NoError(t, err)

	require.Len(t, out.Lines, 1)
	testutil.RequireDecimal(t, "1250.50", out.Lines[0].UnitPrice)
	testutil.RequireDecimal(t, "2501", out.Subtotal)
	testutil.RequireDecimal(t, "1.01", out.Discount)
	testutil.RequireDecimal(t, "2599.99", out.Total)
	assert.Equal(t, "PROD-001", out.Lines[0].SKU)
}

func TestCreate_CascadaPorReceta(t *testing.T) {
	e := newEnv(t)
	p, a, b := bomCatalog(t, e.store, "10")

	out, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 4)))
	require.NoError(t, err)

	assert.EqualValues(t, 6, testutil.ProductStock(t, e.store, p.ID))
	testutil.RequireDecimal(t, "2", testutil.MaterialStock(t, e.store, a.ID))
	testutil.RequireDecimal(t, "1", testutil.MaterialStock(t, e.store, b.ID))

	ref := fmt.Sprintf("SALE-%d", out.ID)
	require.Len(t, e.productMovements(t, ref), 1)
	mms := e.materialMovements(t, ref)
	require.Len(t, mms, 2)
	byMaterial := map[int64]*entity.MaterialMovement{}
	for _, m := range mms {
		assert.Equal(t, entity.MaterialProduction, m.Kind)
		byMaterial[m.RawMaterialID] = m
	}
	testutil.RequireDecimal(t, "-8", byMaterial[a.ID].Quantity)
	testutil.RequireDecimal(t, "-2", byMaterial[b.ID].Quantity)
	testutil.AssertLedgerIdentity(t, e.store)
}

func TestCreate_MateriaPrimaInsuficienteNoDejaRastro(t *testing.T) {
	e := newEnv(t)
	p, a, b := bomCatalog(t, e.store, "5")

	_, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 3)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "RM-A", ise.Name)
	testutil.RequireDecimal(t, "6", ise.Requested)
	testutil.RequireDecimal(t, "5", ise.Available)

	list, err := e.store.Sales().List(e.ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.EqualValues(t, 10, testutil.ProductStock(t, e.store, p.ID))
	testutil.RequireDecimal(t, "5", testutil.MaterialStock(t, e.store, a.ID))
	testutil.RequireDecimal(t, "3", testutil.MaterialStock(t, e.store, b.ID))
	assert.Empty(t, e.productMovements(t, "SALE-1"))
	assert.Empty(t, e.materialMovements(t, "SALE-1"))

	// el número no se consumió
	q := testutil.SeedProduct(t, e.store, "PROD-003", "10", 1)
	out, err := e.sales.Create(e.ctx, cashSale(line(q.ID, 1)))
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", out.InvoiceNumber)
}

func TestCreate_LineasCompartenMateriaPrima(t *testing.T) {
	e := newEnv(t)
	a := testutil.SeedMaterial(t, e.store, "RM-A", "5", "1")
	p := testutil.SeedProduct(t, e.store, "PROD-001", "10", 10, testutil.Edge{Material: a, Qty: "2"})

	// cada línea sola alcanza, juntas no
	_, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 2), line(p.ID, 1)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.EqualValues(t, 10, testutil.ProductStock(t, e.store, p.ID))
	testutil.RequireDecimal(t, "5", testutil.MaterialStock(t, e.store, a.ID))
	testutil.AssertLedgerIdentity(t, e.store)
}

func TestCreate_Validaciones(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1000", 10)

	cases := []struct {
		name string
		in   dto.CreateSaleRequest
		want error
	}{
		{"sin lineas", cashSale(), domain.ErrInvalidInput},
		{"cantidad cero", cashSale(line(p.ID, 0)), domain.ErrInvalidQuantity},
		{"precio negativo", cashSale(dto.SaleLineRequest{ProductID: p.ID, Quantity: 1, UnitPrice: ptr(testutil.D("-1"))}), domain.ErrInvalidInput},
		{"producto inexistente", cashSale(line(999, 1)), domain.ErrInvalidReference},
		{"medio de pago desconocido", dto.CreateSaleRequest{PaymentMethod: "trueque", Lines: []dto.SaleLineRequest{line(p.ID, 1)}}, domain.ErrInvalidInput},
		{"transferencia sin tipo", dto.CreateSaleRequest{PaymentMethod: "transferencia", Lines: []dto.SaleLineRequest{line(p.ID, 1)}}, domain.ErrInvalidInput},
		{"otro sin detalle", dto.CreateSaleRequest{PaymentMethod: "transfer", TransferType: "Otro", Lines: []dto.SaleLineRequest{line(p.ID, 1)}}, domain.ErrInvalidInput},
		{"descuento mayor al subtotal", dto.CreateSaleRequest{PaymentMethod: "cash", Discount: testutil.D("1000.01"), Lines: []dto.SaleLineRequest{line(p.ID, 1)}}, domain.ErrInvalidInput},
		{"impuesto negativo", dto.CreateSaleRequest{PaymentMethod: "cash", Tax: testutil.D("-5"), Lines: []dto.SaleLineRequest{line(p.ID, 1)}}, domain.ErrInvalidInput},
		{"cliente inexistente", dto.CreateSaleRequest{PaymentMethod: "cash", CustomerID: ptr(int64(77)), Lines: []dto.SaleLineRequest{line(p.ID, 1)}}, domain.ErrInvalidReference},
		{"stock insuficiente", cashSale(line(p.ID, 11)), domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.sales.Create(e.ctx, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
	assert.EqualValues(t, 10, testutil.ProductStock(t, e.store, p.ID))
}

func TestCreate_TransferenciaOtroGuardaEtiquetaLibre(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1000", 10)

	out, err := e.sales.Create(e.ctx, dto.CreateSaleRequest{
		PaymentMethod: "Transferencia", TransferType: "Otro", TransferTypeOther: "Daviplata",
		Lines: []dto.SaleLineRequest{line(p.ID, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentTransfer), out.PaymentMethod)
	assert.Equal(t, "Daviplata", out.TransferType)

	out, err = e.sales.Create(e.ctx, dto.CreateSaleRequest{
		PaymentMethod: "cash", TransferType: "Nequi", Lines: []dto.SaleLineRequest{line(p.ID, 1)},
	})
	require.NoError(t, err)
	assert.Empty(t, out.TransferType, "solo aplica a transferencias")
}

func TestCancel_RestauraTodo(t *testing.T) {
	e := newEnv(t)
	p, a, b := bomCatalog(t, e.store, "10")
	sale, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 4)))
	require.NoError(t, err)

	out, err := e.sales.Cancel(e.ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SaleStatusCancelled), out.Status)

	assert.EqualValues(t, 10, testutil.ProductStock(t, e.store, p.ID))
	testutil.RequireDecimal(t, "10", testutil.MaterialStock(t, e.store, a.ID))
	testutil.RequireDecimal(t, "3", testutil.MaterialStock(t, e.store, b.ID))

	orig := e.productMovements(t, fmt.Sprintf("SALE-%d", sale.ID))
	require.Len(t, orig, 1)
	assert.True(t, strings.HasPrefix(orig[0].UserNote, "[ANULADO]"))
	assert.Equal(t, "[ANULADO] Cancelación de venta "+sale.InvoiceNumber, orig[0].UserNote)
	assert.EqualValues(t, -4, orig[0].Quantity, "la fila original no cambia sus cantidades")
	for _, m := range e.materialMovements(t, fmt.Sprintf("SALE-%d", sale.ID)) {
		assert.True(t, m.IsAnnulled())
	}

	ref := fmt.Sprintf("CANCELLED-SALE-%d", sale.ID)
	comp := e.productMovements(t, ref)
	require.Len(t, comp, 1)
	assert.Equal(t, entity.ProductEntry, comp[0].Kind)
	assert.EqualValues(t, 4, comp[0].Quantity)
	mcomp := e.materialMovements(t, ref)
	require.Len(t, mcomp, 2)
	for _, m := range mcomp {
		assert.Equal(t, entity.MaterialReturn, m.Kind)
	}
	testutil.AssertLedgerIdentity(t, e.store)

	_, err = e.sales.Cancel(e.ctx, sale.ID)
	require.ErrorIs(t, err, domain.ErrStateTransitionForbidden)
}

func TestEdit_FacturadaProhibidaPeroCancelable(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1000", 10)
	sale, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 3)))
	require.NoError(t, err)

	confirmed, err := e.invoices.ConfirmInvoice(e.ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.HasInvoice)
	require.NotNil(t, confirmed.InvoiceGeneratedAt)

	_, err = e.sales.Edit(e.ctx, sale.ID, dto.EditSaleRequest{CreateSaleRequest: cashSale(line(p.ID, 1))})
	require.ErrorIs(t, err, domain.ErrStateTransitionForbidden)
	var ste *domain.StateTransitionError
	require.ErrorAs(t, err, &ste)
	assert.Equal(t, sale.ID, ste.SaleID)
	assert.EqualValues(t, 7, testutil.ProductStock(t, e.store, p.ID))

	_, err = e.sales.Cancel(e.ctx, sale.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, testutil.ProductStock(t, e.store, p.ID))

	_, err = e.invoices.ConfirmInvoice(e.ctx, sale.ID)
	require.ErrorIs(t, err, domain.ErrStateTransitionForbidden)
}

func TestEdit_ReemplazaLineasYAnulaSalidas(t *testing.T) {
	e := newEnv(t)
	p, a, _ := bomCatalog(t, e.store, "10")
	q := testutil.SeedProduct(t, e.store, "PROD-009", "700", 5)
	sale, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 4)))
	require.NoError(t, err)

	in := dto.EditSaleRequest{CreateSaleRequest: cashSale(line(p.ID, 2), line(q.ID, 1)), Reason: "cliente cambió el pedido"}
	in.Tax = testutil.D("50")
	out, err := e.sales.Edit(e.ctx, sale.ID, in)
	require.NoError(t, err)

	assert.Equal(t, string(entity.SaleStatusEdited), out.Status)
	assert.Equal(t, sale.InvoiceNumber, out.InvoiceNumber)
	require.Len(t, out.Lines, 2)
	testutil.RequireDecimal(t, "10700", out.Subtotal)
	testutil.RequireDecimal(t, "10750", out.Total)

	assert.EqualValues(t, 8, testutil.ProductStock(t, e.store, p.ID))
	assert.EqualValues(t, 4, testutil.ProductStock(t, e.store, q.ID))
	testutil.RequireDecimal(t, "6", testutil.MaterialStock(t, e.store, a.ID))

	// una sola salida vigente por línea
	live := map[int64]int64{}
	for _, m := range e.productMovements(t, fmt.Sprintf("SALE-%d", sale.ID)) {
		if m.Kind == entity.ProductExit && !m.IsAnnulled() {
			live[m.ProductID] += m.Quantity
		}
	}
	assert.Equal(t, map[int64]int64{p.ID: -2, q.ID: -1}, live)

	rev := e.productMovements(t, fmt.Sprintf("EDIT-SALE-%d", sale.ID))
	require.Len(t, rev, 1)
	assert.EqualValues(t, 4, rev[0].Quantity)
	testutil.AssertLedgerIdentity(t, e.store)
}

func TestEdit_MismasLineasNoCambiaStock(t *testing.T) {
	e := newEnv(t)
	p, a, b := bomCatalog(t, e.store, "8")
	sale, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 4)))
	require.NoError(t, err)
	testutil.RequireDecimal(t, "0", testutil.MaterialStock(t, e.store, a.ID))

	for i := 0; i < 2; i++ {
		_, err = e.sales.Edit(e.ctx, sale.ID, dto.EditSaleRequest{CreateSaleRequest: cashSale(line(p.ID, 4))})
		require.NoError(t, err)
	}
	assert.EqualValues(t, 6, testutil.ProductStock(t, e.store, p.ID))
	testutil.RequireDecimal(t, "0", testutil.MaterialStock(t, e.store, a.ID))
	testutil.RequireDecimal(t, "1", testutil.MaterialStock(t, e.store, b.ID))
	testutil.AssertLedgerIdentity(t, e.store)
}

func TestEdit_FallaDejaLaVentaIntacta(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1000", 5)
	sale, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 2)))
	require.NoError(t, err)

	_, err = e.sales.Edit(e.ctx, sale.ID, dto.EditSaleRequest{CreateSaleRequest: cashSale(line(p.ID, 6))})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := e.sales.GetByID(e.ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SaleStatusCompleted), got.Status)
	require.Len(t, got.Lines, 1)
	assert.EqualValues(t, 2, got.Lines[0].Quantity)
	assert.EqualValues(t, 3, testutil.ProductStock(t, e.store, p.ID))
	assert.Empty(t, e.productMovements(t, fmt.Sprintf("EDIT-SALE-%d", sale.ID)))
	testutil.AssertLedgerIdentity(t, e.store)
}

func TestCancel_VentaEditadaDevuelveLoVigente(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1000", 10)
	sale, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 5)))
	require.NoError(t, err)
	_, err = e.sales.Edit(e.ctx, sale.ID, dto.EditSaleRequest{CreateSaleRequest: cashSale(line(p.ID, 2))})
	require.NoError(t, err)

	_, err = e.sales.Cancel(e.ctx, sale.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, testutil.ProductStock(t, e.store, p.ID))

	for _, m := range e.productMovements(t, fmt.Sprintf("SALE-%d", sale.ID)) {
		assert.True(t, m.IsAnnulled(), "movimiento %d", m.ID)
	}
	comp := e.productMovements(t, fmt.Sprintf("CANCELLED-SALE-%d", sale.ID))
	require.Len(t, comp, 1)
	assert.EqualValues(t, 2, comp[0].Quantity)
	testutil.AssertLedgerIdentity(t, e.store)
}

func TestDelete_SoloCanceladas(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1000", 10)
	sale, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 1)))
	require.NoError(t, err)

	require.ErrorIs(t, e.sales.Delete(e.ctx, sale.ID), domain.ErrStateTransitionForbidden)

	_, err = e.sales.Cancel(e.ctx, sale.ID)
	require.NoError(t, err)
	require.NoError(t, e.sales.Delete(e.ctx, sale.ID))

	_, err = e.sales.GetByID(e.ctx, sale.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotEmpty(t, e.productMovements(t, fmt.Sprintf("SALE-%d", sale.ID)), "el kardex se conserva")
	testutil.AssertLedgerIdentity(t, e.store)
}

func TestList_FiltrosYGetByInvoice(t *testing.T) {
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "PROD-001", "1000", 10)
	c := testutil.SeedCustomer(t, e.store, "Ana")
	in := cashSale(line(p.ID, 1))
	in.CustomerID = &c.ID
	first, err := e.sales.Create(e.ctx, in)
	require.NoError(t, err)
	second, err := e.sales.Create(e.ctx, cashSale(line(p.ID, 1)))
	require.NoError(t, err)
	_, err = e.sales.Cancel(e.ctx, second.ID)
	require.NoError(t, err)

	all, err := e.sales.List(e.ctx, dto.SaleQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	live, err := e.sales.List(e.ctx, dto.SaleQuery{ExcludeCancelled: true})
	require.NoError(t, err)
	require.Len(t, live.Items, 1)
	assert.Equal(t, first.ID, live.Items[0].ID)
	assert.Equal(t, "Ana", live.Items[0].CustomerName)

	cancelled, err := e.sales.List(e.ctx, dto.SaleQuery{Status: "Cancelada"})
	require.NoError(t, err)
	require.Len(t, cancelled.Items, 1)
	assert.Equal(t, second.ID, cancelled.Items[0].ID)

	today := time.Now().Format("2006-01-02")
	ranged, err := e.sales.List(e.ctx, dto.SaleQuery{From: today, To: today, CustomerID: c.ID})
	require.NoError(t, err)
	assert.Len(t, ranged.Items, 1)

	_, err = e.sales.List(e.ctx, dto.SaleQuery{Status: "perdida"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := e.sales.GetByInvoice(e.ctx, " inv-000001 ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	_, err = e.sales.GetByInvoice(e.ctx, "INV-999999")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func ptr[T any](v T) *T { return &v }
