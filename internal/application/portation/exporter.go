package portation

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var productCode = regexp.MustCompile(`^PROD-(\d+)$`)

// Exporter arma las hojas de exportación sobre la conexión de lectura.
type Exporter struct {
	reader repository.UnitOfWork
}

// NewExporter construye el exportador.
func NewExporter(reader repository.UnitOfWork) *Exporter {
	return &Exporter{reader: reader}
}

// Customers hoja de clientes con las columnas que acepta la importación.
func (ex *Exporter) Customers(ctx context.Context) ([]Sheet, error) {
	list, err := ex.reader.Customers().List(ctx, "")
	if err != nil {
		return nil, err
	}
	sheet := Sheet{
		Name:   "Clientes",
		Header: []string{"ID", "Nombre", "Email", "Teléfono", "Dirección", "Tipo Documento", "Número Documento", "Ciudad"},
	}
	for _, c := range list {
		sheet.Rows = append(sheet.Rows, []any{
			c.ID, c.Name, c.Email, c.Phone, c.Address, c.DocumentType, c.DocumentNumber, c.City,
		})
	}
	return []Sheet{sheet}, nil
}

// Sales hoja de ventas del rango, incluidas las canceladas.
func (ex *Exporter) Sales(ctx context.Context, r repository.DateRange) ([]Sheet, error) {
	list, err := ex.reader.Sales().List(ctx, repository.SaleFilter{Range: r})
	if err != nil {
		return nil, err
	}
	sheet := Sheet{
		Name:   "Ventas",
		Header: []string{"Factura", "Fecha", "Cliente", "Método Pago", "Estado", "Subtotal", "Impuesto", "Descuento", "Total"},
	}
	names := map[int64]string{}
	for _, s := range list {
		customer := ""
		if s.CustomerID != nil {
			name, ok := names[*s.CustomerID]
			if !ok {
				c, err := ex.reader.Customers().GetByID(ctx, *s.CustomerID)
				if err != nil {
					return nil, err
				}
				if c != nil {
					name = c.Name
				}
				names[*s.CustomerID] = name
			}
			customer = name
		}
		sheet.Rows = append(sheet.Rows, []any{
			s.InvoiceNumber, s.CreatedAt.Local().Format(exportTimeLayout), customer,
			s.PaymentMethod.Label(), string(s.Status), s.Subtotal, s.Tax, s.Discount, s.Total,
		})
	}
	return []Sheet{sheet}, nil
}

// Catalog productos con su receta en la misma forma que la hoja de importación: una
// columna por materia prima con la unidad entre paréntesis.
func (ex *Exporter) Catalog(ctx context.Context) ([]Sheet, error) {
	products, err := ex.reader.Products().List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	materials, err := ex.reader.RawMaterials().List(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := ex.reader.Categories().List(ctx)
	if err != nil {
		return nil, err
	}
	categoryName := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryName[c.ID] = c.Name
	}
	column := make(map[int64]int, len(materials))
	header := []string{"CODIGO", "PRODUCTO", "VALOR UNITARIO", "CATEGORIA"}
	for _, rm := range materials {
		column[rm.ID] = len(header)
		header = append(header, rm.Name+" ("+rm.Unit+")")
	}

	sheet := Sheet{Name: "Productos", Header: header}
	for _, p := range products {
		row := make([]any, len(header))
		// Los productos con SKU libre salen sin código; la importación los omite.
		row[0] = ""
		if m := productCode.FindStringSubmatch(p.SKU); m != nil {
			n, _ := strconv.ParseInt(m[1], 10, 64)
			row[0] = n
		}
		row[1], row[2], row[3] = p.Name, p.SalePrice, ""
		if p.CategoryID != nil {
			row[3] = categoryName[*p.CategoryID]
		}
		edges, err := ex.reader.BOM().ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if i, ok := column[e.RawMaterialID]; ok {
				row[i] = e.QtyNeeded
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return []Sheet{sheet}, nil
}

var movementHeader = []string{
	"ID", "Fecha", "SKU", "Nombre", "Tipo", "Cantidad", "Stock Anterior", "Stock Nuevo",
	"Motivo", "Motivo Edición", "Nota", "Referencia",
}

// DailyMovements movimientos del día en dos hojas: "Productos" y "Materias Primas".
func (ex *Exporter) DailyMovements(ctx context.Context, day time.Time) ([]Sheet, error) {
	r := repository.Day(day)
	pms, err := ex.reader.ProductMovements().ListByRange(ctx, r)
	if err != nil {
		return nil, err
	}
	mms, err := ex.reader.MaterialMovements().ListByRange(ctx, r)
	if err != nil {
		return nil, err
	}

	products := Sheet{Name: "Productos", Header: movementHeader}
	cache := map[int64]*entity.Product{}
	for _, m := range pms {
		p, ok := cache[m.ProductID]
		if !ok {
			if p, err = ex.reader.Products().GetByID(ctx, m.ProductID); err != nil {
				return nil, err
			}
			cache[m.ProductID] = p
		}
		sku, name := "", ""
		if p != nil {
			sku, name = p.SKU, p.Name
		}
		products.Rows = append(products.Rows, []any{
			m.ID, m.CreatedAt.Local().Format(exportTimeLayout), sku, name, string(m.Kind),
			m.Quantity, m.PreviousStock, m.NewStock, m.Reason, m.EditReason, m.UserNote, m.Reference,
		})
	}

	materials := Sheet{Name: "Materias Primas", Header: movementHeader}
	rmCache := map[int64]*entity.RawMaterial{}
	for _, m := range mms {
		rm, ok := rmCache[m.RawMaterialID]
		if !ok {
			if rm, err = ex.reader.RawMaterials().GetByID(ctx, m.RawMaterialID); err != nil {
				return nil, err
			}
			rmCache[m.RawMaterialID] = rm
		}
		sku, name := "", ""
		if rm != nil {
			sku, name = rm.SKU, rm.Name
		}
		materials.Rows = append(materials.Rows, []any{
			m.ID, m.CreatedAt.Local().Format(exportTimeLayout), sku, name, string(m.Kind),
			m.Quantity, m.PreviousStock, m.NewStock, m.Reason, m.EditReason, m.UserNote, m.Reference,
		})
	}
	return []Sheet{products, materials}, nil
}
