package portation_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/portation"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/persistence"
	"github.com/jhoicas/inventario-pos/internal/testutil"
)

func newImporter(t *testing.T) (*portation.Importer, *persistence.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	return portation.NewImporter(store, appinv.NewEngine(appinv.NewLedger()), zerolog.Nop()), store
}

// table arma una hoja: la primera fila es el encabezado y las demás se numeran desde 2.
func table(header []string, rows ...[]string) *portation.Table {
	t := &portation.Table{Header: header}
	for i, cells := range rows {
		t.Rows = append(t.Rows, portation.Row{Number: i + 2, Cells: cells})
	}
	return t
}

var catalogHeader = []string{"CODIGO", "PRODUCTO", "VALOR UNITARIO", "CATEGORIA", "Esencia lavanda (ML)", "Cera de soya (GR)"}

func TestImportCatalog_CreaMateriasYRecetas(t *testing.T) {
	ctx := context.Background()
	im, store := newImporter(t)

	report, err := im.Import(ctx, portation.KindCatalog, table(catalogHeader,
		[]string{"0", "EJEMPLO", "$ 1.000", "", "1", "1"},
		[]string{"1", "Vela lavanda", "$ 25.000", "Velas", "-2,5", "150"},
		[]string{"", "", "", "", "", ""},
		[]string{"12", "Vela sin aroma", "18.500,50", "velas", "0", "120.5"},
		[]string{"x", "Mala", "100", "", "", ""},
	), false)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 2, report.Skipped[0].Row)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 6, report.Failed[0].Row)

	p, err := store.Products().GetBySKU(ctx, "PROD-001")
	require.NoError(t, err)
	require.NotNil(t, p)
	testutil.RequireDecimal(t, "25000", p.SalePrice)
	assert.Zero(t, p.Stock)
	require.NotNil(t, p.CategoryID)

	p12, err := store.Products().GetBySKU(ctx, "PROD-012")
	require.NoError(t, err)
	require.NotNil(t, p12)
	testutil.RequireDecimal(t, "18500.5", p12.SalePrice)
	assert.Equal(t, *p.CategoryID, *p12.CategoryID, "la categoría se reutiliza sin importar mayúsculas")

	lavanda, err := store.RawMaterials().GetByName(ctx, "Esencia lavanda")
	require.NoError(t, err)
	require.NotNil(t, lavanda)
	assert.Equal(t, "MAT-ESENCIA LA", lavanda.SKU)
	assert.Equal(t, "ML", lavanda.Unit)
	cera, err := store.RawMaterials().GetByName(ctx, "Cera de soya")
	require.NoError(t, err)
	require.NotNil(t, cera)
	assert.Equal(t, "GR", cera.Unit)

	edges, err := store.BOM().ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	testutil.RequireDecimal(t, "2.5", edges[0].QtyNeeded, "el negativo se toma en valor absoluto")
	testutil.RequireDecimal(t, "150", edges[1].QtyNeeded)

	edges, err = store.BOM().ListByProduct(ctx, p12.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1, "el cero no crea arista")
	assert.Equal(t, cera.ID, edges[0].RawMaterialID)
	testutil.AssertLedgerIdentity(t, store)
}

func TestImportCatalog_ExistentesSegunBandera(t *testing.T) {
	ctx := context.Background()
	im, store := newImporter(t)
	testutil.SeedProduct(t, store, "PROD-001", "1000", 4)

	sheet := table(catalogHeader, []string{"1", "Vela renovada", "2.000", "", "3", ""})

	report, err := im.Import(ctx, portation.KindCatalog, sheet, false)
	require.NoError(t, err)
	assert.Zero(t, report.Imported+report.Updated)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "PROD-001", report.Skipped[0].Key)

	report, err = im.Import(ctx, portation.KindCatalog, sheet, true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	p, err := store.Products().GetBySKU(ctx, "PROD-001")
	require.NoError(t, err)
	assert.Equal(t, "Vela renovada", p.Name)
	testutil.RequireDecimal(t, "2000", p.SalePrice)
	assert.EqualValues(t, 4, p.Stock, "actualizar no toca el stock")
	edges, err := store.BOM().ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
}

func TestImport_EncabezadoInvalidoNoInsertaNada(t *testing.T) {
	ctx := context.Background()
	im, store := newImporter(t)

	_, err := im.Import(ctx, portation.KindCustomers, table(
		[]string{"Factura", "Fecha", "Cliente", "Total"},
		[]string{"INV-000001", "2025-01-01", "Ana", "1000"},
	), false)
	require.ErrorIs(t, err, domain.ErrInvalidHeader)

	list, err := store.Customers().List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportCustomers_DuplicadosSeOmiten(t *testing.T) {
	ctx := context.Background()
	im, store := newImporter(t)
	testutil.SeedCustomer(t, store, "Ana Pérez")

	report, err := im.Import(ctx, portation.KindCustomers, table(
		[]string{"ID", "Nombre", "Email", "Teléfono", "Dirección", "Tipo Documento", "Número Documento"},
		[]string{"1", "ana pérez", "", "", "", "", ""},
		[]string{"2", "Bruno Díaz", "BRUNO@MAIL.CO", "300 1234567", "Cra 1", "CC", "1010"},
		[]string{"3", "Carla Ruiz", "bruno@mail.co", "", "", "", ""},
		[]string{"4", "", "sin@nombre.co", "", "", "", ""},
	), false)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, 2, report.Skipped[0].Row)
	assert.Equal(t, 4, report.Skipped[1].Row, "email repetido")
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 5, report.Failed[0].Row)

	c, err := store.Customers().GetByDocument(ctx, "1010")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "bruno@mail.co", c.Email)
	assert.Equal(t, "CC", c.DocumentType)
	assert.Equal(t, "Cra 1", c.Address)
}

func TestImportSales_CabecerasYSecuencia(t *testing.T) {
	ctx := context.Background()
	im, store := newImporter(t)

	report, err := im.Import(ctx, portation.KindSales, table(
		[]string{"Factura", "Fecha", "Cliente", "Método Pago", "Estado", "Subtotal", "Impuesto", "Descuento", "Total"},
		[]string{"inv-000041", "15/03/2025 10:30", "Ana", "Tarjeta", "Pagada", "10.000", "0", "500", "9.500"},
		[]string{"INV-000041", "16/03/2025", "Ana", "Efectivo", "", "1000", "", "", "1000"},
		[]string{"FAC-9", "2025-03-17", "", "bitcoin", "raro", "2000", "", "", ""},
		[]string{"INV-000050", "mañana", "", "", "", "1", "", "", "1"},
	), false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 3, report.Skipped[0].Row)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 5, report.Failed[0].Row)

	s, err := store.Sales().GetByInvoice(ctx, "INV-000041")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, entity.PaymentCard, s.PaymentMethod)
	assert.Equal(t, entity.SaleStatusCompleted, s.Status)
	testutil.RequireDecimal(t, "9500", s.Total)
	assert.Equal(t, 15, s.CreatedAt.Local().Day())
	require.NotNil(t, s.CustomerID)
	ana, err := store.Customers().GetByID(ctx, *s.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", ana.Name)

	other, err := store.Sales().GetByInvoice(ctx, "FAC-9")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, entity.PaymentCash, other.PaymentMethod)
	assert.Equal(t, entity.SaleStatusCompleted, other.Status)
	testutil.RequireDecimal(t, "2000", other.Total, "sin total se calcula")

	current, err := store.InvoiceSequence().Current(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 41, current)

	lines, err := store.Sales().ListLines(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
	pms, err := store.ProductMovements().ListByRange(ctx, repository.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, pms, "las ventas importadas no mueven inventario")
}
