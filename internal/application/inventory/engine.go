package inventory

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// Cascade indica si un cambio de stock de producto se propaga a sus materias primas.
type Cascade int

const (
	CascadeNone    Cascade = iota
	CascadeConsume         // salida de producto: descuenta materias primas (production por defecto)
	CascadeRestore         // entrada de producto: devuelve materias primas (return por defecto)
)

// DeltaRequest cambio de stock firmado sobre un producto o una materia prima.
type DeltaRequest struct {
	Entity   EntityKind
	EntityID int64

	// Tipo del movimiento principal; se usa el que corresponda a Entity.
	ProductKind  entity.ProductMovementKind
	MaterialKind entity.MaterialMovementKind

	Quantity   decimal.Decimal // firmada; en productos debe ser entera
	Reason     string
	Reference  string
	EditReason string

	Cascade     Cascade
	CascadeKind entity.MaterialMovementKind // vacío = production (consumo) o return (restauración)
}

// DeltaResult filas emitidas por ApplyDelta, en orden de escritura.
type DeltaResult struct {
	Product   *entity.ProductMovement
	Material  *entity.MaterialMovement
	Cascaded  []*entity.MaterialMovement
	NewStock  decimal.Decimal
	PrevStock decimal.Decimal
}

// Engine aplica cambios de stock con su movimiento y, para productos, la cascada por receta.
// Siempre trabaja sobre la unidad de trabajo del llamador; no abre transacciones.
type Engine struct {
	ledger *Ledger
}

// NewEngine construye el motor sobre el libro de movimientos.
func NewEngine(ledger *Ledger) *Engine {
	return &Engine{ledger: ledger}
}

// Ledger libro usado por el motor.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// ApplyDelta carga la entidad, valida que el stock no quede negativo (incluida la cascada),
// escribe el nuevo stock y agrega los movimientos. Ante error no escribe nada.
func (e *Engine) ApplyDelta(ctx context.Context, uow repository.UnitOfWork, req DeltaRequest) (*DeltaResult, error) {
	if req.Quantity.IsZero() {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "la cantidad no puede ser cero")
	}
	switch req.Entity {
	case EntityProduct:
		return e.applyProduct(ctx, uow, req)
	case EntityRawMaterial:
		return e.applyMaterial(ctx, uow, req)
	}
	return nil, domain.Invalid(domain.ErrInvalidInput, "entity", "tipo de entidad desconocido")
}

// maxProductQty mayor cantidad entera que admite un movimiento de producto.
var maxProductQty = decimal.NewFromInt(math.MaxInt64)

// cascadeStep consumo (o devolución) planificado sobre una materia prima.
type cascadeStep struct {
	material *entity.RawMaterial
	qty      decimal.Decimal // firmada
}

func (e *Engine) applyProduct(ctx context.Context, uow repository.UnitOfWork, req DeltaRequest) (*DeltaResult, error) {
	if !req.Quantity.Equal(req.Quantity.Truncate(0)) {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "el stock de productos es entero")
	}
	if req.Quantity.Abs().GreaterThan(maxProductQty) {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "fuera del rango permitido")
	}
	qty := req.Quantity.IntPart()

	// 1. Cargar el producto en la unidad de trabajo
	p, err := uow.Products().GetByID(ctx, req.EntityID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %d: %w", req.EntityID, domain.ErrNotFound)
	}

	// 2-3. Validar el stock resultante
	prev := p.Stock
	if qty > 0 && prev > math.MaxInt64-qty {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "el stock resultante desborda")
	}
	next := prev + qty
	if next < 0 {
		return nil, &domain.InsufficientStockError{
			Entity: "producto", Name: p.Name,
			Requested: decimal.NewFromInt(-qty), Available: decimal.NewFromInt(prev),
		}
	}

	// Planificar la cascada antes de escribir para no dejar aplicaciones parciales
	steps, err := e.planCascade(ctx, uow, p.ID, qty, req.Cascade)
	if err != nil {
		return nil, err
	}

	// 4. Escribir el stock
	if err := uow.Products().UpdateStock(ctx, p.ID, next); err != nil {
		return nil, err
	}
	p.Stock = next

	// 5. Movimiento del producto
	kind := req.ProductKind
	if kind == "" {
		kind = defaultProductKind(qty)
	}
	pm := &entity.ProductMovement{
		ProductID:     p.ID,
		Kind:          kind,
		Quantity:      qty,
		PreviousStock: prev,
		NewStock:      next,
		Reason:        req.Reason,
		EditReason:    req.EditReason,
		Reference:     req.Reference,
	}
	if err := e.ledger.AppendProduct(ctx, uow, pm); err != nil {
		return nil, err
	}
	res := &DeltaResult{Product: pm, PrevStock: decimal.NewFromInt(prev), NewStock: decimal.NewFromInt(next)}

	// 6-7. Cascada por receta, ordenada por materia prima
	cascadeKind := req.CascadeKind
	if cascadeKind == "" {
		cascadeKind = entity.MaterialProduction
		if req.Cascade == CascadeRestore {
			cascadeKind = entity.MaterialReturn
		}
	}
	for _, st := range steps {
		mm, err := e.writeMaterial(ctx, uow, st.material, st.qty, cascadeKind, req.Reason, req.EditReason, req.Reference)
		if err != nil {
			return nil, err
		}
		res.Cascaded = append(res.Cascaded, mm)
	}
	return res, nil
}

// planCascade calcula las cantidades por materia prima y verifica que alcancen.
// Solo hay cascada cuando el sentido del cambio coincide con el modo pedido.
func (e *Engine) planCascade(ctx context.Context, uow repository.UnitOfWork, productID, qty int64, mode Cascade) ([]cascadeStep, error) {
	switch {
	case mode == CascadeConsume && qty < 0:
	case mode == CascadeRestore && qty > 0:
	default:
		return nil, nil
	}
	edges, err := uow.BOM().ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	inventory.SortByMaterial(edges)

	steps := make([]cascadeStep, 0, len(edges))
	for _, edge := range edges {
		rm, err := uow.RawMaterials().GetByID(ctx, edge.RawMaterialID)
		if err != nil {
			return nil, err
		}
		if rm == nil {
			return nil, domain.Invalid(domain.ErrInvalidReference, "raw_material_id",
				fmt.Sprintf("la receta del producto %d apunta a la materia prima %d inexistente", productID, edge.RawMaterialID))
		}
		needed := inventory.CascadeQuantity(edge.QtyNeeded, qty)
		if qty < 0 {
			if rm.Stock.LessThan(needed) {
				return nil, &domain.InsufficientStockError{
					Entity: "materia prima", Name: rm.Name, Requested: needed, Available: rm.Stock,
				}
			}
			needed = needed.Neg()
		}
		steps = append(steps, cascadeStep{material: rm, qty: needed})
	}
	return steps, nil
}

func (e *Engine) applyMaterial(ctx context.Context, uow repository.UnitOfWork, req DeltaRequest) (*DeltaResult, error) {
	rm, err := uow.RawMaterials().GetByID(ctx, req.EntityID)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, fmt.Errorf("materia prima %d: %w", req.EntityID, domain.ErrNotFound)
	}
	kind := req.MaterialKind
	if kind == "" {
		kind = entity.MaterialAdjustment
	}
	prev := rm.Stock
	mm, err := e.writeMaterial(ctx, uow, rm, req.Quantity, kind, req.Reason, req.EditReason, req.Reference)
	if err != nil {
		return nil, err
	}
	return &DeltaResult{Material: mm, PrevStock: prev, NewStock: mm.NewStock}, nil
}

// writeMaterial valida, escribe el stock y agrega el movimiento de una materia prima.
func (e *Engine) writeMaterial(ctx context.Context, uow repository.UnitOfWork, rm *entity.RawMaterial,
	qty decimal.Decimal, kind entity.MaterialMovementKind, reason, editReason, reference string,
) (*entity.MaterialMovement, error) {
	prev := rm.Stock
	next := prev.Add(qty)
	if next.IsNegative() {
		return nil, &domain.InsufficientStockError{
			Entity: "materia prima", Name: rm.Name, Requested: qty.Neg(), Available: prev,
		}
	}
	if err := uow.RawMaterials().UpdateStock(ctx, rm.ID, next); err != nil {
		return nil, err
	}
	rm.Stock = next
	mm := &entity.MaterialMovement{
		RawMaterialID: rm.ID,
		Kind:          kind,
		Quantity:      qty,
		PreviousStock: prev,
		NewStock:      next,
		Reason:        reason,
		EditReason:    editReason,
		Reference:     reference,
	}
	if err := e.ledger.AppendMaterial(ctx, uow, mm); err != nil {
		return nil, err
	}
	return mm, nil
}

func defaultProductKind(qty int64) entity.ProductMovementKind {
	if qty > 0 {
		return entity.ProductEntry
	}
	return entity.ProductExit
}
