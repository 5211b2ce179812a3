package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/pkg/money"
)

// Referencias de kardex que agrupan los movimientos de una venta.
const (
	RefSale          = "SALE-%d"
	RefEditSale      = "EDIT-SALE-%d"
	RefCancelledSale = "CANCELLED-SALE-%d"
)

// SaleUseCase registra, edita y cancela ventas. Cada operación corre en una sola
// transacción: cualquier error deja stock, kardex y venta como estaban.
type SaleUseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
	engine *appinv.Engine
	log    zerolog.Logger
	now    func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(tx repository.TxRunner, reader repository.UnitOfWork, engine *appinv.Engine, log zerolog.Logger) *SaleUseCase {
	return &SaleUseCase{tx: tx, reader: reader, engine: engine, log: log, now: time.Now}
}

// saleDraft cabecera y líneas ya validadas, listas para persistir.
type saleDraft struct {
	customerID   *int64
	method       entity.PaymentMethod
	transferType string
	tax          decimal.Decimal
	discount     decimal.Decimal
	notes        string
	lines        []dto.SaleLineRequest
}

// Create registra la venta: numera la factura, descuenta producto y receta, y guarda
// la venta como completada.
func (uc *SaleUseCase) Create(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	d, err := parseDraft(in)
	if err != nil {
		return nil, err
	}
	var out *dto.SaleResponse
	err = uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		// 1. Resolver precios y totales
		lines, subtotal, err := resolveLines(ctx, uow, d.lines)
		if err != nil {
			return err
		}
		if err := checkCustomer(ctx, uow, d.customerID); err != nil {
			return err
		}
		if d.discount.GreaterThan(subtotal) {
			return domain.Invalid(domain.ErrInvalidInput, "discount", "el descuento supera el subtotal")
		}

		// 2. Numerar
		inv, err := AllocateInvoice(ctx, uow)
		if err != nil {
			return err
		}

		// 3. Cabecera
		now := uc.now()
		s := &entity.Sale{
			InvoiceNumber: inv,
			Status:        entity.SaleStatusCompleted,
			CreatedAt:     now,
		}
		d.applyTo(s, subtotal, now)
		if err := uow.Sales().Create(ctx, s); err != nil {
			return err
		}

		// 4. Líneas y descargue de inventario
		if err := uc.writeLines(ctx, uow, s, lines, "Venta "+inv, ""); err != nil {
			return err
		}
		out, err = toSaleResponse(ctx, uow, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("sale_id", out.ID).Str("invoice", out.InvoiceNumber).
		Str("total", out.Total.StringFixed(2)).Int("lines", len(out.Lines)).Msg("venta registrada")
	return out, nil
}

// Edit reemplaza cabecera y líneas. Solo para ventas sin factura impresa y en estado
// pending, completed o edited. Devuelve el inventario de las líneas anteriores, anula sus
// salidas y descuenta las nuevas.
func (uc *SaleUseCase) Edit(ctx context.Context, id int64, in dto.EditSaleRequest) (*dto.SaleResponse, error) {
	d, err := parseDraft(in.CreateSaleRequest)
	if err != nil {
		return nil, err
	}
	var out *dto.SaleResponse
	err = uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		s, err := loadSale(ctx, uow, id)
		if err != nil {
			return err
		}
		if err := checkEditable(s); err != nil {
			return err
		}
		lines, subtotal, err := resolveLines(ctx, uow, d.lines)
		if err != nil {
			return err
		}
		if err := checkCustomer(ctx, uow, d.customerID); err != nil {
			return err
		}
		if d.discount.GreaterThan(subtotal) {
			return domain.Invalid(domain.ErrInvalidInput, "discount", "el descuento supera el subtotal")
		}

		// 1. Devolver lo vendido originalmente
		if err := uc.restoreLines(ctx, uow, s, fmt.Sprintf(RefEditSale, s.ID), "Reversión por edición "+s.InvoiceNumber); err != nil {
			return err
		}
		if _, err := uc.engine.Ledger().AnnulByReference(ctx, uow, fmt.Sprintf(RefSale, s.ID), "Edición de venta "+s.InvoiceNumber); err != nil {
			return err
		}
		if err := uow.Sales().DeleteLines(ctx, s.ID); err != nil {
			return err
		}

		// 2. Descontar las líneas nuevas
		if err := uc.writeLines(ctx, uow, s, lines, "Venta editada "+s.InvoiceNumber, strings.TrimSpace(in.Reason)); err != nil {
			return err
		}

		// 3. Cabecera
		d.applyTo(s, subtotal, uc.now())
		s.Status = entity.SaleStatusEdited
		if err := uow.Sales().UpdateHeader(ctx, s); err != nil {
			return err
		}
		out, err = toSaleResponse(ctx, uow, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("sale_id", id).Str("invoice", out.InvoiceNumber).
		Str("total", out.Total.StringFixed(2)).Msg("venta editada")
	return out, nil
}

// Cancel anula la venta y devuelve al inventario todo lo vendido. Se permite aunque la
// factura ya esté impresa.
func (uc *SaleUseCase) Cancel(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	var out *dto.SaleResponse
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		s, err := loadSale(ctx, uow, id)
		if err != nil {
			return err
		}
		if s.Status == entity.SaleStatusCancelled {
			return &domain.StateTransitionError{
				SaleID: s.ID, From: string(s.Status), To: string(entity.SaleStatusCancelled),
				Reason: "la venta ya está cancelada",
			}
		}
		reason := "Cancelación de venta " + s.InvoiceNumber
		if err := uc.restoreLines(ctx, uow, s, fmt.Sprintf(RefCancelledSale, s.ID), reason); err != nil {
			return err
		}
		if _, err := uc.engine.Ledger().AnnulByReference(ctx, uow, fmt.Sprintf(RefSale, s.ID), reason); err != nil {
			return err
		}
		s.Status = entity.SaleStatusCancelled
		s.UpdatedAt = uc.now()
		if err := uow.Sales().UpdateHeader(ctx, s); err != nil {
			return err
		}
		out, err = toSaleResponse(ctx, uow, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("sale_id", id).Str("invoice", out.InvoiceNumber).Msg("venta cancelada")
	return out, nil
}

// Delete borra una venta cancelada con sus líneas. El kardex no se toca.
func (uc *SaleUseCase) Delete(ctx context.Context, id int64) error {
	var inv string
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		s, err := loadSale(ctx, uow, id)
		if err != nil {
			return err
		}
		if s.Status != entity.SaleStatusCancelled {
			return &domain.StateTransitionError{
				SaleID: s.ID, From: string(s.Status), To: "eliminada",
				Reason: "solo se eliminan ventas canceladas",
			}
		}
		inv = s.InvoiceNumber
		return uow.Sales().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Int64("sale_id", id).Str("invoice", inv).Msg("venta eliminada")
	return nil
}

// GetByID venta con sus líneas.
func (uc *SaleUseCase) GetByID(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	s, err := loadSale(ctx, uc.reader, id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(ctx, uc.reader, s)
}

// GetByInvoice busca por número de factura.
func (uc *SaleUseCase) GetByInvoice(ctx context.Context, invoice string) (*dto.SaleResponse, error) {
	s, err := uc.reader.Sales().GetByInvoice(ctx, strings.ToUpper(strings.TrimSpace(invoice)))
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("factura %s: %w", invoice, domain.ErrNotFound)
	}
	return toSaleResponse(ctx, uc.reader, s)
}

// List cabeceras filtradas por rango, estado y cliente.
func (uc *SaleUseCase) List(ctx context.Context, q dto.SaleQuery) (*dto.SaleListResponse, error) {
	r, err := repository.ParseDayRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	f := repository.SaleFilter{Range: r, ExcludeCancelled: q.ExcludeCancelled, Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st, ok := entity.ParseSaleStatus(q.Status)
		if !ok {
			return nil, domain.Invalid(domain.ErrInvalidInput, "status", "estado desconocido: "+q.Status)
		}
		f.Status = st
	}
	if q.CustomerID > 0 {
		f.CustomerID = &q.CustomerID
	}
	list, err := uc.reader.Sales().List(ctx, f)
	if err != nil {
		return nil, err
	}
	names := map[int64]string{}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		resp := toSaleHeader(s)
		if s.CustomerID != nil {
			name, ok := names[*s.CustomerID]
			if !ok {
				if c, err := uc.reader.Customers().GetByID(ctx, *s.CustomerID); err != nil {
					return nil, err
				} else if c != nil {
					name = c.Name
				}
				names[*s.CustomerID] = name
			}
			resp.CustomerName = name
		}
		items = append(items, resp)
	}
	return &dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: len(items)}}, nil
}

// writeLines inserta las líneas y descarga cada una del inventario con su receta.
func (uc *SaleUseCase) writeLines(ctx context.Context, uow repository.UnitOfWork, s *entity.Sale,
	lines []entity.SaleLine, reason, editReason string,
) error {
	ref := fmt.Sprintf(RefSale, s.ID)
	s.Lines = s.Lines[:0]
	for i := range lines {
		l := lines[i]
		l.SaleID = s.ID
		if err := uow.Sales().AddLine(ctx, &l); err != nil {
			return err
		}
		_, err := uc.engine.ApplyDelta(ctx, uow, appinv.DeltaRequest{
			Entity:      appinv.EntityProduct,
			EntityID:    l.ProductID,
			ProductKind: entity.ProductExit,
			Quantity:    decimal.NewFromInt(-l.Quantity),
			Reason:      reason,
			Reference:   ref,
			EditReason:  editReason,
			Cascade:     appinv.CascadeConsume,
		})
		if err != nil {
			return err
		}
		s.Lines = append(s.Lines, l)
	}
	return nil
}

// restoreLines devuelve al inventario las líneas vigentes de la venta, receta incluida.
func (uc *SaleUseCase) restoreLines(ctx context.Context, uow repository.UnitOfWork, s *entity.Sale, ref, reason string) error {
	for _, l := range s.Lines {
		_, err := uc.engine.ApplyDelta(ctx, uow, appinv.DeltaRequest{
			Entity:      appinv.EntityProduct,
			EntityID:    l.ProductID,
			ProductKind: entity.ProductEntry,
			Quantity:    decimal.NewFromInt(l.Quantity),
			Reason:      reason,
			Reference:   ref,
			Cascade:     appinv.CascadeRestore,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func checkEditable(s *entity.Sale) error {
	if s.HasInvoice {
		return &domain.StateTransitionError{
			SaleID: s.ID, From: string(s.Status), To: string(entity.SaleStatusEdited),
			Reason: "la factura ya fue generada",
		}
	}
	switch s.Status {
	case entity.SaleStatusPending, entity.SaleStatusCompleted, entity.SaleStatusEdited:
		return nil
	}
	return &domain.StateTransitionError{SaleID: s.ID, From: string(s.Status), To: string(entity.SaleStatusEdited)}
}

// parseDraft valida lo que no requiere consultar la base.
func parseDraft(in dto.CreateSaleRequest) (*saleDraft, error) {
	method, ok := entity.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		return nil, domain.Invalid(domain.ErrInvalidInput, "payment_method", "medio de pago desconocido: "+in.PaymentMethod)
	}
	d := &saleDraft{
		customerID: in.CustomerID,
		method:     method,
		tax:        money.Round2(in.Tax),
		discount:   money.Round2(in.Discount),
		notes:      strings.TrimSpace(in.Notes),
		lines:      in.Lines,
	}
	if method == entity.PaymentTransfer {
		tt := strings.TrimSpace(in.TransferType)
		if tt == "" {
			return nil, domain.Invalid(domain.ErrInvalidInput, "transfer_type", "obligatorio con pago por transferencia")
		}
		if strings.EqualFold(tt, entity.TransferTypeOther) {
			tt = strings.TrimSpace(in.TransferTypeOther)
			if tt == "" {
				return nil, domain.Invalid(domain.ErrInvalidInput, "transfer_type_other", "indique el tipo de transferencia")
			}
		}
		d.transferType = tt
	}
	if d.tax.IsNegative() {
		return nil, domain.Invalid(domain.ErrInvalidInput, "tax", "no puede ser negativo")
	}
	if d.discount.IsNegative() {
		return nil, domain.Invalid(domain.ErrInvalidInput, "discount", "no puede ser negativo")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid(domain.ErrInvalidInput, "lines", "la venta necesita al menos una línea")
	}
	for i, l := range in.Lines {
		if l.Quantity < 1 {
			return nil, domain.Invalid(domain.ErrInvalidQuantity, fmt.Sprintf("lines[%d].quantity", i), "debe ser al menos 1")
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return nil, domain.Invalid(domain.ErrInvalidInput, fmt.Sprintf("lines[%d].unit_price", i), "no puede ser negativo")
		}
	}
	return d, nil
}

// applyTo copia la cabecera y recalcula el total.
func (d *saleDraft) applyTo(s *entity.Sale, subtotal decimal.Decimal, now time.Time) {
	s.CustomerID = d.customerID
	s.PaymentMethod = d.method
	s.TransferType = d.transferType
	s.Tax = d.tax
	s.Discount = d.discount
	s.Notes = d.notes
	s.Subtotal = subtotal
	s.Total = money.Round2(subtotal.Add(d.tax).Sub(d.discount))
	s.UpdatedAt = now
}

// resolveLines congela el precio de cada línea (el del producto si no viene) y suma el subtotal.
func resolveLines(ctx context.Context, uow repository.UnitOfWork, in []dto.SaleLineRequest) ([]entity.SaleLine, decimal.Decimal, error) {
	lines := make([]entity.SaleLine, 0, len(in))
	subtotal := decimal.Zero
	for i, l := range in {
		p, err := uow.Products().GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if p == nil {
			return nil, decimal.Zero, domain.Invalid(domain.ErrInvalidReference,
				fmt.Sprintf("lines[%d].product_id", i), fmt.Sprintf("el producto %d no existe", l.ProductID))
		}
		price := p.SalePrice
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		price = money.Round2(price)
		line := entity.SaleLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: price,
			Subtotal:  money.Round2(price.Mul(decimal.NewFromInt(l.Quantity))),
		}
		subtotal = subtotal.Add(line.Subtotal)
		lines = append(lines, line)
	}
	return lines, subtotal, nil
}

func checkCustomer(ctx context.Context, uow repository.UnitOfWork, id *int64) error {
	if id == nil {
		return nil
	}
	c, err := uow.Customers().GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.Invalid(domain.ErrInvalidReference, "customer_id", fmt.Sprintf("el cliente %d no existe", *id))
	}
	return nil
}

func loadSale(ctx context.Context, uow repository.UnitOfWork, id int64) (*entity.Sale, error) {
	s, err := uow.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("venta %d: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

func toSaleHeader(s *entity.Sale) dto.SaleResponse {
	return dto.SaleResponse{
		ID:                 s.ID,
		InvoiceNumber:      s.InvoiceNumber,
		CustomerID:         s.CustomerID,
		Subtotal:           s.Subtotal,
		Tax:                s.Tax,
		Discount:           s.Discount,
		Total:              s.Total,
		PaymentMethod:      string(s.PaymentMethod),
		PaymentLabel:       s.PaymentMethod.Label(),
		TransferType:       s.TransferType,
		Status:             string(s.Status),
		HasInvoice:         s.HasInvoice,
		InvoiceGeneratedAt: s.InvoiceGeneratedAt,
		Notes:              s.Notes,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// toSaleResponse cabecera con nombre del cliente y líneas enriquecidas con el producto.
func toSaleResponse(ctx context.Context, uow repository.UnitOfWork, s *entity.Sale) (*dto.SaleResponse, error) {
	out := toSaleHeader(s)
	if s.CustomerID != nil {
		c, err := uow.Customers().GetByID(ctx, *s.CustomerID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out.CustomerName = c.Name
		}
	}
	out.Lines = make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lr := dto.SaleLineResponse{
			ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity,
			UnitPrice: l.UnitPrice, Subtotal: l.Subtotal,
		}
		p, err := uow.Products().GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			lr.SKU, lr.ProductName = p.SKU, p.Name
		}
		out.Lines = append(out.Lines, lr)
	}
	return &out, nil
}
