package portation_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/portation"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/inventario-pos/internal/testutil"
)

func TestExportCatalog_IdaYVuelta(t *testing.T) {
	ctx := context.Background()
	src := testutil.NewStore(t)
	a := testutil.SeedMaterial(t, src, "Esencia", "10", "100")
	b := testutil.SeedMaterial(t, src, "Cera", "3", "40")
	testutil.SeedProduct(t, src, "PROD-007", "5000", 2,
		testutil.Edge{Material: a, Qty: "2"}, testutil.Edge{Material: b, Qty: "0.5"})
	testutil.SeedProduct(t, src, "LIBRE", "800", 0)

	engine := appinv.NewEngine(appinv.NewLedger())
	var buf bytes.Buffer
	require.NoError(t, portation.NewService(src, src, engine, spreadsheet.New(), zerolog.Nop()).
		Export(ctx, portation.KindCatalog, &buf, time.Now()))

	dst := testutil.NewStore(t)
	report, err := portation.NewService(dst, dst, engine, spreadsheet.New(), zerolog.Nop()).
		Import(ctx, portation.KindCatalog, &buf, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Skipped, 1, "el producto sin código se omite")

	p, err := dst.Products().GetBySKU(ctx, "PROD-007")
	require.NoError(t, err)
	require.NotNil(t, p)
	testutil.RequireDecimal(t, "5000", p.SalePrice)
	edges, err := dst.BOM().ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	qty := map[string]string{}
	for _, e := range edges {
		rm, err := dst.RawMaterials().GetByID(ctx, e.RawMaterialID)
		require.NoError(t, err)
		assert.Equal(t, "ML", rm.Unit)
		qty[rm.Name] = e.QtyNeeded.String()
	}
	assert.Equal(t, map[string]string{"Esencia": "2", "Cera": "0.5"}, qty)
}

func TestExportSales_SeReimportaComoVentas(t *testing.T) {
	ctx := context.Background()
	src := testutil.NewStore(t)
	engine := appinv.NewEngine(appinv.NewLedger())
	p := testutil.SeedProduct(t, src, "PROD-001", "1000", 10)
	c := testutil.SeedCustomer(t, src, "Ana")
	uc := sales.NewSaleUseCase(src, src, engine, zerolog.Nop())
	_, err := uc.Create(ctx, dto.CreateSaleRequest{
		CustomerID: &c.ID, PaymentMethod: "tarjeta",
		Lines: []dto.SaleLineRequest{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, portation.NewService(src, src, engine, spreadsheet.New(), zerolog.Nop()).
		Export(ctx, portation.KindSales, &buf, time.Now()))
	data := buf.Bytes()

	dst := testutil.NewStore(t)
	svc := portation.NewService(dst, dst, engine, spreadsheet.New(), zerolog.Nop())

	// una hoja de ventas no pasa como clientes
	_, err = svc.Import(ctx, portation.KindCustomers, bytes.NewReader(data), false)
	require.ErrorIs(t, err, domain.ErrInvalidHeader)

	report, err := svc.Import(ctx, portation.KindSales, bytes.NewReader(data), false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)

	s, err := dst.Sales().GetByInvoice(ctx, "INV-000001")
	require.NoError(t, err)
	require.NotNil(t, s)
	testutil.RequireDecimal(t, "3000", s.Total)
	assert.Equal(t, "card", string(s.PaymentMethod))

	// la siguiente venta nueva en el destino no reutiliza el número importado
	q := testutil.SeedProduct(t, dst, "PROD-001", "1000", 5)
	out, err := sales.NewSaleUseCase(dst, dst, engine, zerolog.Nop()).Create(ctx, dto.CreateSaleRequest{
		PaymentMethod: "efectivo", Lines: []dto.SaleLineRequest{{ProductID: q.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-000002", out.InvoiceNumber)
}

func TestExportMovements_DosHojasDelDia(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	engine := appinv.NewEngine(appinv.NewLedger())
	a := testutil.SeedMaterial(t, store, "Esencia", "10", "100")
	p := testutil.SeedProduct(t, store, "PROD-001", "1000", 10, testutil.Edge{Material: a, Qty: "1.5"})
	_, err := sales.NewSaleUseCase(store, store, engine, zerolog.Nop()).Create(ctx, dto.CreateSaleRequest{
		PaymentMethod: "efectivo", Lines: []dto.SaleLineRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	svc := portation.NewService(store, store, engine, spreadsheet.New(), zerolog.Nop())
	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, portation.KindMovements, &buf, time.Now()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Productos", "Materias Primas"}, f.GetSheetList())

	rows, err := f.GetRows("Productos")
	require.NoError(t, err)
	require.Len(t, rows, 3, "encabezado, apertura y venta")
	assert.Equal(t, "PROD-001", rows[2][2])
	assert.Equal(t, "exit", rows[2][4])
	assert.Equal(t, "-2", rows[2][5])

	rows, err = f.GetRows("Materias Primas")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "production", rows[2][4])
	assert.Equal(t, "-3", rows[2][5])

	var empty bytes.Buffer
	require.NoError(t, svc.Export(ctx, portation.KindMovements, &empty, time.Now().AddDate(0, 0, -3)))
	f2, err := excelize.OpenReader(&empty)
	require.NoError(t, err)
	defer f2.Close()
	rows, err = f2.GetRows("Productos")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Import(ctx, portation.KindMovements, &empty, false)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "movimientos-2026-01-05.xlsx", portation.FileName(portation.KindMovements, time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local)))
}

// blockingBook retiene la lectura hasta que se cierra release.
type blockingBook struct {
	release chan struct{}
	table   *portation.Table
	err     error
}

func (b *blockingBook) ReadTable(io.Reader) (*portation.Table, error) {
	<-b.release
	return b.table, b.err
}

func (b *blockingBook) WriteWorkbook(io.Writer, []portation.Sheet) error { return nil }

func TestWorker_UnTrabajoALaVez(t *testing.T) {
	store := testutil.NewStore(t)
	book := &blockingBook{
		release: make(chan struct{}),
		table: &portation.Table{
			Header: []string{"Nombre", "Email"},
			Rows:   []portation.Row{{Number: 2, Cells: []string{"Ana", "ana@mail.co"}}},
		},
	}
	svc := portation.NewService(store, store, appinv.NewEngine(appinv.NewLedger()), book, zerolog.Nop())
	w := portation.NewWorker(svc, zerolog.Nop())

	id, done, err := w.Submit(portation.KindCustomers, []byte("x"), false)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.True(t, w.Busy())

	_, _, err = w.Submit(portation.KindCustomers, []byte("y"), false)
	require.ErrorIs(t, err, domain.ErrImportInProgress)

	job, ok := w.Job(id)
	require.True(t, ok)
	assert.Equal(t, portation.JobRunning, job.Status)

	close(book.release)
	var result dto.ImportJobResponse
	select {
	case result = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("la importación no terminó")
	}
	assert.Equal(t, portation.JobDone, result.Status)
	require.NotNil(t, result.Report)
	assert.Equal(t, 1, result.Report.Imported)

	_, open := <-done
	assert.False(t, open, "un solo resultado por trabajo")
	assert.False(t, w.Busy())

	job, ok = w.Job(id)
	require.True(t, ok)
	assert.Equal(t, portation.JobDone, job.Status)
	_, ok = w.Job("otro")
	assert.False(t, ok)
}

func TestWorker_ErrorQuedaRegistrado(t *testing.T) {
	store := testutil.NewStore(t)
	book := &blockingBook{release: make(chan struct{}), err: errors.New("archivo dañado")}
	close(book.release)
	svc := portation.NewService(store, store, appinv.NewEngine(appinv.NewLedger()), book, zerolog.Nop())
	w := portation.NewWorker(svc, zerolog.Nop())

	id, done, err := w.Submit(portation.KindSales, nil, false)
	require.NoError(t, err)
	result := <-done
	assert.Equal(t, id, result.JobID)
	assert.Equal(t, portation.JobFailed, result.Status)
	assert.Contains(t, result.Error, "archivo dañado")

	// liberado el turno se puede enviar otro
	_, done, err = w.Submit(portation.KindSales, nil, false)
	require.NoError(t, err)
	<-done
}

func TestWorker_OlvidaTrabajosViejos(t *testing.T) {
	store := testutil.NewStore(t)
	book := &blockingBook{release: make(chan struct{}), err: errors.New("archivo dañado")}
	close(book.release)
	svc := portation.NewService(store, store, appinv.NewEngine(appinv.NewLedger()), book, zerolog.Nop())
	w := portation.NewWorker(svc, zerolog.Nop(), portation.WithJobHistory(2))

	var ids []string
	for i := 0; i < 3; i++ {
		id, done, err := w.Submit(portation.KindSales, nil, false)
		require.NoError(t, err)
		<-done
		ids = append(ids, id)
	}

	_, ok := w.Job(ids[0])
	assert.False(t, ok, "el más viejo se olvida")
	for _, id := range ids[1:] {
		job, ok := w.Job(id)
		require.True(t, ok)
		assert.Equal(t, portation.JobFailed, job.Status)
	}
}
