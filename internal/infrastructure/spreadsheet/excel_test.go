package spreadsheet

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/portation"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/testutil"
)

func TestWriteWorkbook_DosHojas(t *testing.T) {
	var buf bytes.Buffer
	err := New().WriteWorkbook(&buf, []portation.Sheet{
		{Name: "Productos", Header: []string{"SKU", "Cantidad"}, Rows: [][]any{{"PROD-001", int64(-3)}}},
		{Name: "Materias Primas", Header: []string{"SKU", "Cantidad"}, Rows: [][]any{{"MAT-A", decimal.RequireFromString("-0.5")}}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Productos", "Materias Primas"}, f.GetSheetList())

	v, err := f.GetCellValue("Materias Primas", "B2")
	require.NoError(t, err)
	assert.Equal(t, "-0.5", v)
}

func TestReadTable_NumerosDeFila(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WriteWorkbook(&buf, []portation.Sheet{{
		Name:   "Productos",
		Header: []string{"CODIGO", "PRODUCTO", "VALOR UNITARIO"},
		Rows: [][]any{
			{0, "Ejemplo", 0},
			{1, "Jabón de avena", decimal.RequireFromString("12500")},
		},
	}}))

	table, err := New().ReadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"CODIGO", "PRODUCTO", "VALOR UNITARIO"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 3, table.Rows[1].Number)
	assert.Equal(t, "1", table.Rows[1].Get(0))
	assert.Equal(t, "Jabón de avena", table.Rows[1].Get(1))
	assert.Equal(t, "12500", table.Rows[1].Get(2))
	assert.Equal(t, "", table.Rows[1].Get(7))
}

func TestReadTable_NoEsUnLibro(t *testing.T) {
	_, err := New().ReadTable(bytes.NewReader([]byte("nombre,email\nAna,ana@x.co\n")))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReadTable_MarcaCeldasNumericas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WriteWorkbook(&buf, []portation.Sheet{{
		Name:   "Ventas",
		Header: []string{"Factura", "Impuesto"},
		Rows:   [][]any{{"INV-000050", decimal.RequireFromString("190.475")}, {"INV-000051", "$ 5.000"}},
	}}))

	table, err := New().ReadTable(&buf)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []bool{false, true}, table.Rows[0].Numeric)
	assert.Equal(t, []bool{false, false}, table.Rows[1].Numeric)

	v, err := table.Rows[0].Amount(1)
	require.NoError(t, err)
	testutil.RequireDecimal(t, "190.475", v)
	v, err = table.Rows[1].Amount(1)
	require.NoError(t, err)
	testutil.RequireDecimal(t, "5000", v, "el texto conserva el punto de miles")
}

func TestImportSales_MontosNumericosNoSeInflan(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	var buf bytes.Buffer
	require.NoError(t, New().WriteWorkbook(&buf, []portation.Sheet{{
		Name:   "Ventas",
		Header: []string{"Factura", "Fecha", "Cliente", "Método Pago", "Estado", "Subtotal", "Impuesto", "Descuento", "Total"},
		Rows: [][]any{
			{"INV-000050", "2025-03-17", "", "Efectivo", "", decimal.RequireFromString("1002.5"),
				decimal.RequireFromString("190.475"), 0, decimal.RequireFromString("1192.975")},
			{"INV-000051", "2025-03-17", "", "Efectivo", "", "$ 5.000", "", "", "$ 5.000"},
		},
	}}))
	table, err := New().ReadTable(&buf)
	require.NoError(t, err)

	im := portation.NewImporter(store, appinv.NewEngine(appinv.NewLedger()), zerolog.Nop())
	report, err := im.Import(ctx, portation.KindSales, table, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Empty(t, report.Failed)

	s, err := store.Sales().GetByInvoice(ctx, "INV-000050")
	require.NoError(t, err)
	require.NotNil(t, s)
	testutil.RequireDecimal(t, "1002.5", s.Subtotal)
	testutil.RequireDecimal(t, "190.48", s.Tax)
	testutil.RequireDecimal(t, "1192.98", s.Total)

	text, err := store.Sales().GetByInvoice(ctx, "INV-000051")
	require.NoError(t, err)
	require.NotNil(t, text)
	testutil.RequireDecimal(t, "5000", text.Total)
}
