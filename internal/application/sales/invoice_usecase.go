package sales

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/pkg/money"
)

//go:embed templates/invoice.html
var templatesFS embed.FS

var invoiceTemplate = template.Must(template.ParseFS(templatesFS, "templates/invoice.html"))

// InvoiceLine línea lista para imprimir; los montos ya vienen formateados.
type InvoiceLine struct {
	SKU       string
	Name      string
	Quantity  int64
	UnitPrice string
	Subtotal  string
}

// InvoiceDocument datos de la factura tal como se imprimen.
type InvoiceDocument struct {
	Company          entity.CompanyInfo
	InvoiceNumber    string
	Date             string
	CustomerName     string
	CustomerDocument string
	PaymentLabel     string
	TransferType     string
	Notes            string
	Cancelled        bool
	Lines            []InvoiceLine
	Subtotal         string
	Tax              string
	Discount         string
	Total            string
}

// InvoicePDFGenerator genera el recibo térmico de 80 mm.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
}

// InvoiceUseCase arma el documento imprimible de una venta y registra su impresión.
type InvoiceUseCase struct {
	tx        repository.TxRunner
	reader    repository.UnitOfWork
	generator InvoicePDFGenerator
	log       zerolog.Logger
	now       func() time.Time
}

// NewInvoiceUseCase construye el caso de uso inyectando el generador de PDF.
func NewInvoiceUseCase(tx repository.TxRunner, reader repository.UnitOfWork, generator InvoicePDFGenerator, log zerolog.Logger) *InvoiceUseCase {
	return &InvoiceUseCase{tx: tx, reader: reader, generator: generator, log: log, now: time.Now}
}

// RenderInvoiceHTML factura en HTML para impresora térmica.
func (uc *InvoiceUseCase) RenderInvoiceHTML(ctx context.Context, saleID int64) ([]byte, error) {
	doc, err := uc.Document(ctx, saleID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderInvoicePDF factura en PDF. Devuelve los bytes y el nombre de archivo sugerido.
func (uc *InvoiceUseCase) RenderInvoicePDF(ctx context.Context, saleID int64) ([]byte, string, error) {
	doc, err := uc.Document(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, doc.InvoiceNumber + ".pdf", nil
}

// ConfirmInvoice marca la factura como impresa. Desde ese momento la venta no se puede editar.
func (uc *InvoiceUseCase) ConfirmInvoice(ctx context.Context, saleID int64) (*dto.SaleResponse, error) {
	var out *dto.SaleResponse
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		s, err := loadSale(ctx, uow, saleID)
		if err != nil {
			return err
		}
		if s.Status == entity.SaleStatusCancelled {
			return &domain.StateTransitionError{
				SaleID: s.ID, From: string(s.Status), To: "facturada",
				Reason: "una venta cancelada no se factura",
			}
		}
		if !s.HasInvoice {
			at := uc.now()
			if err := uow.Sales().MarkInvoiced(ctx, s.ID, at); err != nil {
				return err
			}
			s.HasInvoice, s.InvoiceGeneratedAt, s.UpdatedAt = true, &at, at
		}
		out, err = toSaleResponse(ctx, uow, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("sale_id", saleID).Str("invoice", out.InvoiceNumber).Msg("factura confirmada")
	return out, nil
}

// Document reúne empresa, cliente y líneas de la venta.
func (uc *InvoiceUseCase) Document(ctx context.Context, saleID int64) (*InvoiceDocument, error) {
	// 1. Venta
	s, err := loadSale(ctx, uc.reader, saleID)
	if err != nil {
		return nil, err
	}

	// 2. Empresa (puede no estar configurada)
	doc := &InvoiceDocument{
		InvoiceNumber: s.InvoiceNumber,
		Date:          s.CreatedAt.Local().Format("02/01/2006 15:04"),
		PaymentLabel:  s.PaymentMethod.Label(),
		TransferType:  s.TransferType,
		Notes:         s.Notes,
		Cancelled:     s.Status == entity.SaleStatusCancelled,
		Subtotal:      money.Format(s.Subtotal),
		Tax:           money.Format(s.Tax),
		Discount:      money.Format(s.Discount),
		Total:         money.Format(s.Total),
	}
	company, err := uc.reader.Company().Get(ctx)
	if err != nil {
		return nil, err
	}
	if company != nil {
		doc.Company = *company
	}

	// 3. Cliente
	if s.CustomerID != nil {
		c, err := uc.reader.Customers().GetByID(ctx, *s.CustomerID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			doc.CustomerName = c.Name
			if c.DocumentNumber != "" {
				doc.CustomerDocument = strings.TrimSpace(c.DocumentType + " " + c.DocumentNumber)
			}
		}
	}

	// 4. Líneas con nombre de producto
	for _, l := range s.Lines {
		line := InvoiceLine{
			Name:      fmt.Sprintf("Producto %d", l.ProductID),
			Quantity:  l.Quantity,
			UnitPrice: money.Format(l.UnitPrice),
			Subtotal:  money.Format(l.Subtotal),
		}
		if p, err := uc.reader.Products().GetByID(ctx, l.ProductID); err != nil {
			return nil, err
		} else if p != nil {
			line.SKU, line.Name = p.SKU, p.Name
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc, nil
}
