// Package pdf genera el recibo de venta para impresora térmica de 80 mm.
//
// Layout del recibo:
//
//	┌────────────────────────────┐
//	│  Razón social / NIT        │
//	│  Dirección / Tel / Email   │
//	│  ───────────────────────── │
//	│  Factura + Fecha + Cliente │
//	│  ───────────────────────── │
//	│  Cant | Producto | Total   │
//	│  ───────────────────────── │
//	│  Subtotal / Imp / Desc     │
//	│  TOTAL                     │
//	│  ───────────────────────── │
//	│  Pie de página             │
//	└────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/linestyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-pos/internal/application/sales"
)

// Ancho útil del papel térmico en milímetros; el alto crece con el contenido.
const (
	paperWidth  = 80
	paperHeight = 297
)

var colorGray = &props.Color{Red: 90, Green: 90, Blue: 90}

var dashed = props.Line{Color: colorGray, Thickness: 0.2, Style: linestyle.Dashed}

// MarotoPDFGenerator implementa sales.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateInvoicePDF genera el recibo y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc *sales.InvoiceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithDimensions(paperWidth, paperHeight).
		WithLeftMargin(3).WithRightMargin(3).
		WithTopMargin(3).WithBottomMargin(3).
		WithDefaultFont(&props.Font{Family: "courier", Size: 8}).
		WithTitle("Factura "+doc.InvoiceNumber, true).
		WithAuthor(nonEmpty(doc.Company.Name, "Punto de venta"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(doc)...)
	m.AddRows(line.NewRow(2, dashed))
	m.AddRows(saleInfoRows(doc)...)
	m.AddRows(line.NewRow(2, dashed))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc.Lines)...)

	m.AddRows(line.NewRow(2, dashed))
	m.AddRows(totalsRows(doc)...)
	m.AddRows(line.NewRow(2, dashed))
	m.AddRows(footerRows(doc)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func centered(s string, size float64, style fontstyle.Type) core.Row {
	return row.New(size/2+1.5).Add(col.New(12).Add(
		text.New(s, props.Text{Size: size, Style: style, Align: align.Center}),
	))
}

// headerRows: datos del negocio centrados.
func headerRows(doc *sales.InvoiceDocument) []core.Row {
	c := doc.Company
	rows := []core.Row{centered(nonEmpty(c.Name, "Punto de venta"), 11, fontstyle.Bold)}
	if c.TaxID != "" {
		rows = append(rows, centered("NIT "+c.TaxID, 8, fontstyle.Normal))
	}
	if c.Address != "" {
		addr := c.Address
		if c.City != "" {
			addr += ", " + c.City
		}
		rows = append(rows, centered(addr, 7, fontstyle.Normal))
	}
	if c.Phone != "" {
		rows = append(rows, centered("Tel. "+c.Phone, 7, fontstyle.Normal))
	}
	if c.Email != "" {
		rows = append(rows, centered(c.Email, 7, fontstyle.Normal))
	}
	return rows
}

// saleInfoRows: número, fecha, cliente y medio de pago.
func saleInfoRows(doc *sales.InvoiceDocument) []core.Row {
	kv := func(k, v string) core.Row {
		return row.New(4).Add(
			col.New(4).Add(text.New(k, props.Text{Size: 7, Style: fontstyle.Bold})),
			col.New(8).Add(text.New(v, props.Text{Size: 7})),
		)
	}
	payment := doc.PaymentLabel
	if doc.TransferType != "" {
		payment += " (" + doc.TransferType + ")"
	}
	rows := []core.Row{
		kv("Factura:", doc.InvoiceNumber),
		kv("Fecha:", doc.Date),
		kv("Cliente:", nonEmpty(doc.CustomerName, "Consumidor final")),
	}
	if doc.CustomerDocument != "" {
		rows = append(rows, kv("Documento:", doc.CustomerDocument))
	}
	rows = append(rows, kv("Pago:", payment))
	if doc.Cancelled {
		rows = append(rows, centered("*** VENTA ANULADA ***", 9, fontstyle.Bold))
	}
	return rows
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Align: a}))
	}
	return row.New(4).Add(
		h("Cant", 2, align.Left),
		h("Producto", 6, align.Left),
		h("Total", 4, align.Right),
	)
}

// tableDetailRows: nombre y total en una fila, precio unitario debajo.
func tableDetailRows(lines []sales.InvoiceLine) []core.Row {
	out := make([]core.Row, 0, len(lines)*2)
	for _, l := range lines {
		out = append(out,
			row.New(4).Add(
				col.New(2).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 7})),
				col.New(6).Add(text.New(l.Name, props.Text{Size: 7})),
				col.New(4).Add(text.New(l.Subtotal, props.Text{Size: 7, Align: align.Right})),
			),
			row.New(3.5).Add(
				col.New(2),
				col.New(10).Add(text.New(l.UnitPrice+" c/u", props.Text{Size: 6, Color: colorGray})),
			),
		)
	}
	return out
}

func totalsRows(doc *sales.InvoiceDocument) []core.Row {
	kv := func(k, v string, size float64, style fontstyle.Type) core.Row {
		return row.New(size/2+1.5).Add(
			col.New(6).Add(text.New(k, props.Text{Size: size, Style: style})),
			col.New(6).Add(text.New(v, props.Text{Size: size, Style: style, Align: align.Right})),
		)
	}
	return []core.Row{
		kv("Subtotal", doc.Subtotal, 7, fontstyle.Normal),
		kv("Impuestos", doc.Tax, 7, fontstyle.Normal),
		kv("Descuento", doc.Discount, 7, fontstyle.Normal),
		kv("TOTAL", doc.Total, 10, fontstyle.Bold),
	}
}

func footerRows(doc *sales.InvoiceDocument) []core.Row {
	rows := []core.Row{}
	if doc.Notes != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(text.New(doc.Notes, props.Text{Size: 6.5}))))
	}
	rows = append(rows, centered(nonEmpty(doc.Company.InvoiceFooter, "¡Gracias por su compra!"), 7, fontstyle.Italic))
	if doc.Company.Website != "" {
		rows = append(rows, centered(doc.Company.Website, 6.5, fontstyle.Normal))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
