package portation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/catalog"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/pkg/money"
)

var customerFields = []field{
	{"id", []string{"id", "codigo"}},
	{"name", []string{"nombre", "name", "cliente", "nombre cliente", "customer"}},
	{"email", []string{"email", "correo", "correo electronico", "e mail"}},
	{"phone", []string{"telefono", "celular", "phone", "tel"}},
	{"address", []string{"direccion", "address"}},
	{"doc_type", []string{"tipo documento", "tipo de documento", "tipo doc", "document type"}},
	{"doc_number", []string{"numero documento", "numero de documento", "document number", "documento", "nit", "cedula"}},
	{"city", []string{"ciudad", "city"}},
}

var saleFields = []field{
	{"invoice", []string{"factura", "numero factura", "no factura", "n factura", "invoice", "invoice number"}},
	{"date", []string{"fecha", "date", "fecha venta"}},
	{"customer", []string{"cliente", "nombre cliente", "customer"}},
	{"payment", []string{"metodo pago", "metodo de pago", "medio de pago", "forma de pago", "pago", "payment method"}},
	{"status", []string{"estado", "status"}},
	{"subtotal", []string{"subtotal"}},
	{"tax", []string{"impuesto", "impuestos", "iva", "tax"}},
	{"discount", []string{"descuento", "discount"}},
	{"total", []string{"total"}},
}

var catalogFields = []field{
	{"code", []string{"codigo"}},
	{"name", []string{"producto", "nombre producto"}},
	{"price", []string{"valor unitario", "precio"}},
	{"category", []string{"categoria"}},
}

// Formatos de fecha aceptados en la hoja de ventas.
var saleDateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Excel guarda las fechas como días desde 1899-12-30.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.Local)

type outcome int

const (
	outcomeImported outcome = iota
	outcomeUpdated
	outcomeSkipped
)

// rowResult resultado de una fila; reason se informa cuando se omite.
type rowResult struct {
	outcome outcome
	key     string
	reason  string
}

// Importer carga hojas ya leídas. Todo el lote corre en una transacción y cada fila en
// un punto de guardado: una fila fallida no aborta el lote.
type Importer struct {
	tx     repository.TxRunner
	engine *appinv.Engine
	log    zerolog.Logger
	now    func() time.Time
}

// NewImporter construye el importador.
func NewImporter(tx repository.TxRunner, engine *appinv.Engine, log zerolog.Logger) *Importer {
	return &Importer{tx: tx, engine: engine, log: log, now: time.Now}
}

// Import valida los encabezados y procesa las filas. update solo aplica al catálogo:
// con true los productos existentes se actualizan; con false se omiten.
func (im *Importer) Import(ctx context.Context, kind Kind, t *Table, update bool) (*dto.ImportReport, error) {
	if err := validateHeader(kind, t.Header); err != nil {
		return nil, err
	}
	var rowFn func(ctx context.Context, uow repository.UnitOfWork, row Row) (rowResult, error)
	switch kind {
	case KindCustomers:
		cols := mapColumns(t.Header, customerFields)
		rowFn = func(ctx context.Context, uow repository.UnitOfWork, row Row) (rowResult, error) {
			return im.customerRow(ctx, uow, cols, row)
		}
	case KindSales:
		cols := mapColumns(t.Header, saleFields)
		rowFn = func(ctx context.Context, uow repository.UnitOfWork, row Row) (rowResult, error) {
			return im.saleRow(ctx, uow, cols, row)
		}
	case KindCatalog:
		cols := mapColumns(t.Header, catalogFields)
		materials := materialColumns(t.Header, cols)
		rowFn = func(ctx context.Context, uow repository.UnitOfWork, row Row) (rowResult, error) {
			return im.catalogRow(ctx, uow, cols, materials, row, update)
		}
	}

	report := &dto.ImportReport{
		Kind:      string(kind),
		Skipped:   []dto.ImportRowIssue{},
		Failed:    []dto.ImportRowIssue{},
		StartedAt: im.now(),
	}
	err := im.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		for _, row := range t.Rows {
			if row.Blank() {
				continue
			}
			report.Total++
			var res rowResult
			err := uow.Savepoint(ctx, func() error {
				var err error
				res, err = rowFn(ctx, uow, row)
				return err
			})
			switch {
			case errors.Is(err, domain.ErrDuplicate):
				report.Skipped = append(report.Skipped, dto.ImportRowIssue{Row: row.Number, Key: res.key, Reason: err.Error()})
			case err != nil:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				report.Failed = append(report.Failed, dto.ImportRowIssue{Row: row.Number, Key: res.key, Reason: err.Error()})
			case res.outcome == outcomeSkipped:
				report.Skipped = append(report.Skipped, dto.ImportRowIssue{Row: row.Number, Key: res.key, Reason: res.reason})
			case res.outcome == outcomeUpdated:
				report.Updated++
			default:
				report.Imported++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importar %s: %w", kind.Label(), err)
	}
	report.FinishedAt = im.now()
	im.log.Info().Str("kind", string(kind)).Int("total", report.Total).Int("imported", report.Imported).
		Int("updated", report.Updated).Int("skipped", len(report.Skipped)).Int("failed", len(report.Failed)).
		Msg("importación finalizada")
	return report, nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

func (im *Importer) customerRow(ctx context.Context, uow repository.UnitOfWork, cols columns, row Row) (rowResult, error) {
	name := row.Get(cols.idx("name"))
	res := rowResult{key: name}
	if name == "" {
		return res, domain.Invalid(domain.ErrInvalidInput, "nombre", "obligatorio")
	}
	existing, err := uow.Customers().GetByName(ctx, name)
	if err != nil {
		return res, err
	}
	if existing != nil {
		res.outcome, res.reason = outcomeSkipped, "ya existe un cliente con ese nombre"
		return res, nil
	}
	now := im.now()
	c := &entity.Customer{
		Name:           name,
		Email:          strings.ToLower(row.Get(cols.idx("email"))),
		Phone:          row.Get(cols.idx("phone")),
		Address:        row.Get(cols.idx("address")),
		DocumentType:   row.Get(cols.idx("doc_type")),
		DocumentNumber: row.Get(cols.idx("doc_number")),
		City:           row.Get(cols.idx("city")),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return res, catalog.CreateCustomer(ctx, uow, c)
}

// ── Ventas ────────────────────────────────────────────────────────────────────

// saleRow importa solo la cabecera: las ventas históricas no mueven inventario.
func (im *Importer) saleRow(ctx context.Context, uow repository.UnitOfWork, cols columns, row Row) (rowResult, error) {
	invoice := strings.ToUpper(row.Get(cols.idx("invoice")))
	res := rowResult{key: invoice}
	if invoice == "" {
		return res, domain.Invalid(domain.ErrInvalidInput, "factura", "obligatoria")
	}
	exists, err := uow.Sales().InvoiceExists(ctx, invoice)
	if err != nil {
		return res, err
	}
	if exists {
		return res, &domain.DuplicateKeyError{Entity: "venta", Key: "factura", Value: invoice}
	}

	date := im.now()
	if raw := row.Get(cols.idx("date")); raw != "" {
		if date, err = parseSaleDate(raw); err != nil {
			return res, err
		}
	}
	amounts := map[string]decimal.Decimal{}
	for _, name := range []string{"subtotal", "tax", "discount", "total"} {
		raw := row.Get(cols.idx(name))
		if raw == "" {
			amounts[name] = decimal.Zero
			continue
		}
		v, err := row.Amount(cols.idx(name))
		if err != nil {
			return res, domain.Invalid(domain.ErrInvalidInput, name, err.Error())
		}
		amounts[name] = money.Round2(v)
	}
	if row.Get(cols.idx("total")) == "" {
		amounts["total"] = money.Round2(amounts["subtotal"].Add(amounts["tax"]).Sub(amounts["discount"]))
	}

	method, ok := entity.ParsePaymentMethod(row.Get(cols.idx("payment")))
	if !ok {
		method = entity.PaymentCash
	}
	status, ok := entity.ParseSaleStatus(row.Get(cols.idx("status")))
	if !ok {
		status = entity.SaleStatusCompleted
	}

	s := &entity.Sale{
		InvoiceNumber: invoice,
		Subtotal:      amounts["subtotal"],
		Tax:           amounts["tax"],
		Discount:      amounts["discount"],
		Total:         amounts["total"],
		PaymentMethod: method,
		Status:        status,
		CreatedAt:     date,
		UpdatedAt:     date,
	}
	if name := row.Get(cols.idx("customer")); name != "" {
		c, err := uow.Customers().GetByName(ctx, name)
		if err != nil {
			return res, err
		}
		if c == nil {
			c = &entity.Customer{Name: name, CreatedAt: im.now(), UpdatedAt: im.now()}
			if err := catalog.CreateCustomer(ctx, uow, c); err != nil {
				return res, err
			}
		}
		s.CustomerID = &c.ID
	}
	if err := uow.Sales().Create(ctx, s); err != nil {
		return res, err
	}
	// Un número INV-<n> importado adelanta la secuencia para que no se vuelva a asignar.
	if n, ok := sales.ParseInvoiceNumber(invoice); ok {
		if err := uow.InvoiceSequence().EnsureAtLeast(ctx, n); err != nil {
			return res, err
		}
	}
	return res, nil
}

func parseSaleDate(raw string) (time.Time, error) {
	for _, layout := range saleDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		days, frac := math.Modf(serial)
		return excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(frac * 24 * float64(time.Hour))).Round(time.Second), nil
	}
	return time.Time{}, domain.Invalid(domain.ErrInvalidInput, "fecha", "formato no reconocido: "+raw)
}

// ── Productos y recetas ───────────────────────────────────────────────────────

// materialColumn columna de materia prima de la hoja de catálogo.
type materialColumn struct {
	index int
	name  string
	unit  string
}

func materialColumns(header []string, cols columns) []materialColumn {
	used := cols.used()
	var out []materialColumn
	for i, h := range header {
		if used[i] || strings.TrimSpace(h) == "" {
			continue
		}
		name, unit := materialHeader(h)
		out = append(out, materialColumn{index: i, name: name, unit: unit})
	}
	return out
}

func (im *Importer) catalogRow(ctx context.Context, uow repository.UnitOfWork, cols columns,
	materials []materialColumn, row Row, update bool,
) (rowResult, error) {
	rawCode := row.Get(cols.idx("code"))
	res := rowResult{key: rawCode}
	if rawCode == "" {
		res.outcome, res.reason = outcomeSkipped, "fila sin código"
		return res, nil
	}
	code, err := decimal.NewFromString(strings.ReplaceAll(rawCode, ",", "."))
	if err != nil || !code.Equal(code.Truncate(0)) || code.IsNegative() {
		return res, domain.Invalid(domain.ErrInvalidInput, "codigo", "debe ser un entero: "+rawCode)
	}
	if code.IsZero() {
		res.outcome, res.reason = outcomeSkipped, "fila de ejemplo (CODIGO = 0)"
		return res, nil
	}
	sku := catalog.ProductSKU(code.IntPart())
	res.key = sku

	name := row.Get(cols.idx("name"))
	if name == "" {
		return res, domain.Invalid(domain.ErrInvalidInput, "producto", "nombre obligatorio")
	}
	price := decimal.Zero
	if raw := row.Get(cols.idx("price")); raw != "" {
		if price, err = row.Amount(cols.idx("price")); err != nil {
			return res, domain.Invalid(domain.ErrInvalidInput, "valor unitario", err.Error())
		}
		if price.IsNegative() {
			return res, domain.Invalid(domain.ErrInvalidInput, "valor unitario", "no puede ser negativo")
		}
		price = money.Round2(price)
	}

	existing, err := uow.Products().GetBySKU(ctx, sku)
	if err != nil {
		return res, err
	}
	if existing != nil && !update {
		res.outcome, res.reason = outcomeSkipped, "el producto ya existe"
		return res, nil
	}

	categoryID, err := im.ensureCategory(ctx, uow, row.Get(cols.idx("category")))
	if err != nil {
		return res, err
	}
	edges, err := im.bomEdges(ctx, uow, materials, row)
	if err != nil {
		return res, err
	}

	if existing != nil {
		existing.Name = name
		existing.SalePrice = price
		if categoryID != nil {
			existing.CategoryID = categoryID
		}
		existing.UpdatedAt = im.now()
		if err := uow.Products().Update(ctx, existing); err != nil {
			return res, err
		}
		res.outcome = outcomeUpdated
		return res, uow.BOM().Replace(ctx, existing.ID, edges)
	}

	now := im.now()
	p := &entity.Product{
		SKU: sku, Name: name, SalePrice: price, CostPrice: decimal.Zero,
		CategoryID: categoryID, CreatedAt: now, UpdatedAt: now,
	}
	if err := catalog.CreateProduct(ctx, uow, im.engine, p, 0, edges); err != nil {
		return res, err
	}
	return res, nil
}

// bomEdges receta de la fila. Las cantidades negativas se toman en valor absoluto y el
// cero o la celda vacía no generan arista. Crea las materias primas que no existan.
func (im *Importer) bomEdges(ctx context.Context, uow repository.UnitOfWork, materials []materialColumn, row Row) ([]entity.BOMEdge, error) {
	var edges []entity.BOMEdge
	for _, mc := range materials {
		qty, err := money.ParseQuantity(row.Get(mc.index))
		if err != nil {
			return nil, domain.Invalid(domain.ErrInvalidQuantity, mc.name, err.Error())
		}
		if qty.IsZero() {
			continue
		}
		rm, err := im.ensureMaterial(ctx, uow, mc)
		if err != nil {
			return nil, err
		}
		edges = append(edges, entity.BOMEdge{RawMaterialID: rm.ID, QtyNeeded: qty.Abs()})
	}
	return edges, nil
}

func (im *Importer) ensureMaterial(ctx context.Context, uow repository.UnitOfWork, mc materialColumn) (*entity.RawMaterial, error) {
	rm, err := uow.RawMaterials().GetByName(ctx, mc.name)
	if err != nil || rm != nil {
		return rm, err
	}
	sku, err := freeMaterialSKU(ctx, uow, mc.name)
	if err != nil {
		return nil, err
	}
	now := im.now()
	rm = &entity.RawMaterial{
		SKU: sku, Name: mc.name, Unit: mc.unit,
		CostPerUnit: decimal.Zero, MinStock: decimal.Zero, CreatedAt: now, UpdatedAt: now,
	}
	if err := catalog.CreateRawMaterial(ctx, uow, im.engine, rm, decimal.Zero); err != nil {
		return nil, err
	}
	return rm, nil
}

// freeMaterialSKU MAT-<nombre>; si dos nombres comparten los primeros caracteres agrega -2, -3...
func freeMaterialSKU(ctx context.Context, uow repository.UnitOfWork, name string) (string, error) {
	base := catalog.MaterialSKU(name)
	sku := base
	for n := 2; ; n++ {
		other, err := uow.RawMaterials().GetBySKU(ctx, sku)
		if err != nil {
			return "", err
		}
		if other == nil {
			return sku, nil
		}
		sku = fmt.Sprintf("%s-%d", base, n)
	}
}

func (im *Importer) ensureCategory(ctx context.Context, uow repository.UnitOfWork, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	c, err := uow.Categories().GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		now := im.now()
		c = &entity.Category{Name: name, CreatedAt: now, UpdatedAt: now}
		if err := uow.Categories().Create(ctx, c); err != nil {
			return nil, err
		}
	}
	return &c.ID, nil
}
