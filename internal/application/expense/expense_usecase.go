// Package expense registra salidas que no son ventas: dinero, producto o materia prima.
package expense

import (
	"context"
	"fmt"
	"sort"
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

// RefExpense referencia de kardex de los movimientos de un gasto.
const RefExpense = "EXPENSE-%d"

// UseCase casos de uso de gastos.
type UseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
	engine *appinv.Engine
	log    zerolog.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx repository.TxRunner, reader repository.UnitOfWork, engine *appinv.Engine, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, reader: reader, engine: engine, log: log, now: time.Now}
}

// Create registra el gasto. Los de producto descuentan también su receta como desperdicio;
// los de materia prima descuentan solo el insumo. Sin stock suficiente no se registra nada.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	e, err := uc.parse(in)
	if err != nil {
		return nil, err
	}
	var out *dto.ExpenseResponse
	err = uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.Expenses().Create(ctx, e); err != nil {
			return err
		}
		ref := fmt.Sprintf(RefExpense, e.ID)
		reason := "Gasto: " + e.Reason.Label()
		switch e.Kind {
		case entity.ExpenseProduct:
			if _, err := uc.engine.ApplyDelta(ctx, uow, appinv.DeltaRequest{
				Entity: appinv.EntityProduct, EntityID: *e.ProductID, ProductKind: entity.ProductExit,
				Quantity: e.Quantity.Neg(), Reason: reason, Reference: ref,
				Cascade: appinv.CascadeConsume, CascadeKind: entity.MaterialWaste,
			}); err != nil {
				return err
			}
		case entity.ExpenseRawMaterial:
			if _, err := uc.engine.ApplyDelta(ctx, uow, appinv.DeltaRequest{
				Entity: appinv.EntityRawMaterial, EntityID: *e.RawMaterialID, MaterialKind: entity.MaterialWaste,
				Quantity: e.Quantity.Neg(), Reason: reason, Reference: ref,
			}); err != nil {
				return err
			}
		}
		out, err = toResponse(ctx, uow, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("expense_id", e.ID).Str("kind", string(e.Kind)).Str("reason", string(e.Reason)).
		Str("quantity", e.Quantity.String()).Msg("gasto registrado")
	return out, nil
}

// parse valida la solicitud según el tipo de gasto.
func (uc *UseCase) parse(in dto.CreateExpenseRequest) (*entity.Expense, error) {
	kind, ok := entity.ParseExpenseKind(in.Kind)
	if !ok {
		return nil, domain.Invalid(domain.ErrInvalidInput, "kind", "tipo de gasto desconocido: "+in.Kind)
	}
	reason, ok := entity.ParseExpenseReason(in.Reason)
	if !ok {
		return nil, domain.Invalid(domain.ErrInvalidInput, "reason", "motivo desconocido: "+in.Reason)
	}
	now := uc.now()
	e := &entity.Expense{
		Kind:         kind,
		Reason:       reason,
		Recipient:    strings.TrimSpace(in.Recipient),
		IsAuthorized: in.IsAuthorized,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, domain.Invalid(domain.ErrInvalidInput, "amount", "no puede ser negativo")
		}
		amount := money.Round2(*in.Amount)
		e.Amount = &amount
	}

	switch kind {
	case entity.ExpenseCash:
		if e.Amount == nil || !e.Amount.IsPositive() {
			return nil, domain.Invalid(domain.ErrInvalidInput, "amount", "un gasto en efectivo necesita monto")
		}
		e.Quantity = decimal.Zero
		e.PaymentMethod = entity.PaymentCash
		if in.PaymentMethod != "" {
			m, ok := entity.ParsePaymentMethod(in.PaymentMethod)
			if !ok {
				return nil, domain.Invalid(domain.ErrInvalidInput, "payment_method", "medio de pago desconocido: "+in.PaymentMethod)
			}
			e.PaymentMethod = m
		}
		if e.PaymentMethod == entity.PaymentTransfer {
			e.TransferType = strings.TrimSpace(in.TransferType)
		}
	case entity.ExpenseProduct:
		if in.ProductID == nil {
			return nil, domain.Invalid(domain.ErrInvalidInput, "product_id", "obligatorio para gastos de producto")
		}
		if !in.Quantity.IsPositive() || !in.Quantity.Equal(in.Quantity.Truncate(0)) {
			return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "debe ser un entero positivo")
		}
		e.ProductID, e.Quantity = in.ProductID, in.Quantity
	case entity.ExpenseRawMaterial:
		if in.RawMaterialID == nil {
			return nil, domain.Invalid(domain.ErrInvalidInput, "raw_material_id", "obligatorio para gastos de materia prima")
		}
		if !in.Quantity.IsPositive() {
			return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "debe ser positiva")
		}
		e.RawMaterialID, e.Quantity = in.RawMaterialID, in.Quantity
	}
	return e, nil
}

// GetByID gasto por id.
func (uc *UseCase) GetByID(ctx context.Context, id int64) (*dto.ExpenseResponse, error) {
	e, err := uc.reader.Expenses().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("gasto %d: %w", id, domain.ErrNotFound)
	}
	return toResponse(ctx, uc.reader, e)
}

// List gastos del rango, más recientes primero.
func (uc *UseCase) List(ctx context.Context, q dto.RangeQuery) (*dto.ExpenseListResponse, error) {
	r, err := repository.ParseDayRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	list, err := uc.reader.Expenses().List(ctx, r)
	if err != nil {
		return nil, err
	}
	out := &dto.ExpenseListResponse{Items: make([]dto.ExpenseResponse, 0, len(list))}
	for _, e := range list {
		resp, err := toResponse(ctx, uc.reader, e)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, *resp)
	}
	return out, nil
}

// Delete borra solo el registro del gasto. El inventario descontado no se devuelve y
// sus movimientos permanecen en el kardex.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	var e *entity.Expense
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		var err error
		if e, err = uow.Expenses().GetByID(ctx, id); err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("gasto %d: %w", id, domain.ErrNotFound)
		}
		return uow.Expenses().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Warn().Int64("expense_id", id).Str("kind", string(e.Kind)).
		Msg("gasto eliminado; el inventario no se restaura")
	return nil
}

// Summary cantidad de gastos, salida de efectivo y conteo por motivo en el rango.
func (uc *UseCase) Summary(ctx context.Context, q dto.RangeQuery) (*dto.ExpenseSummaryDTO, error) {
	r, err := repository.ParseDayRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	list, err := uc.reader.Expenses().List(ctx, r)
	if err != nil {
		return nil, err
	}
	out := &dto.ExpenseSummaryDTO{Count: len(list), CashTotal: decimal.Zero}
	counts := map[entity.ExpenseReason]int{}
	for _, e := range list {
		if e.Kind == entity.ExpenseCash && e.Amount != nil {
			out.CashTotal = out.CashTotal.Add(*e.Amount)
		}
		counts[e.Reason]++
	}
	for reason, n := range counts {
		out.ByReason = append(out.ByReason, dto.ReasonCountDTO{Reason: string(reason), Count: n})
	}
	sort.Slice(out.ByReason, func(i, j int) bool {
		if out.ByReason[i].Count != out.ByReason[j].Count {
			return out.ByReason[i].Count > out.ByReason[j].Count
		}
		return out.ByReason[i].Reason < out.ByReason[j].Reason
	})
	out.CashTotal = money.Round2(out.CashTotal)
	return out, nil
}

func toResponse(ctx context.Context, uow repository.UnitOfWork, e *entity.Expense) (*dto.ExpenseResponse, error) {
	out := &dto.ExpenseResponse{
		ID:            e.ID,
		Kind:          string(e.Kind),
		Reason:        string(e.Reason),
		ProductID:     e.ProductID,
		RawMaterialID: e.RawMaterialID,
		Quantity:      e.Quantity,
		PaymentMethod: string(e.PaymentMethod),
		TransferType:  e.TransferType,
		Recipient:     e.Recipient,
		IsAuthorized:  e.IsAuthorized,
		Amount:        e.Amount,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
	}
	switch {
	case e.ProductID != nil:
		p, err := uow.Products().GetByID(ctx, *e.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out.ItemName = p.Name
		}
	case e.RawMaterialID != nil:
		rm, err := uow.RawMaterials().GetByID(ctx, *e.RawMaterialID)
		if err != nil {
			return nil, err
		}
		if rm != nil {
			out.ItemName = rm.Name
		}
	}
	return out, nil
}
