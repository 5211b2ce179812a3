package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/pkg/textnorm"
)

// Referencias de las operaciones masivas.
const (
	RefBulkTopUp = "CARGA-MASIVA"
	RefMassReset = "REINICIO-MASIVO"
)

// AdjustMode tipo de ajuste manual.
type AdjustMode string

const (
	AdjustEntry AdjustMode = "entry"
	AdjustExit  AdjustMode = "exit"
	AdjustSet   AdjustMode = "set"
)

var adjustAliases = map[string]AdjustMode{
	"entry": AdjustEntry, "entrada": AdjustEntry, "agregar": AdjustEntry, "sumar": AdjustEntry,
	"exit": AdjustExit, "salida": AdjustExit, "retirar": AdjustExit, "restar": AdjustExit,
	"set": AdjustSet, "establecer": AdjustSet, "fijar": AdjustSet, "absoluto": AdjustSet, "ajuste": AdjustSet,
}

// ParseAdjustMode acepta el modo en inglés o español.
func ParseAdjustMode(s string) (AdjustMode, bool) {
	m, ok := adjustAliases[textnorm.Key(s)]
	return m, ok
}

// UseCase operaciones manuales de inventario y consultas del historial.
type UseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
	engine *Engine
	log    zerolog.Logger
}

// NewUseCase construye el caso de uso. reader atiende las consultas fuera de transacción.
func NewUseCase(tx repository.TxRunner, reader repository.UnitOfWork, engine *Engine, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, reader: reader, engine: engine, log: log}
}

// Adjust aplica un ajuste manual (entrada, salida o stock absoluto) sin cascada por receta.
// En materias primas la entrada es una compra y, con UnitCost, recalcula el costo promedio.
func (uc *UseCase) Adjust(ctx context.Context, in dto.AdjustStockRequest) (*dto.StockChangeResponse, error) {
	kind, ok := ParseEntityKind(in.Entity)
	if !ok {
		return nil, domain.Invalid(domain.ErrInvalidInput, "entity", "use product o raw_material")
	}
	mode, ok := ParseAdjustMode(in.Mode)
	if !ok {
		return nil, domain.Invalid(domain.ErrInvalidInput, "mode", "use entry, exit o set")
	}
	if mode == AdjustSet && in.Quantity.IsNegative() {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "el stock no puede ser negativo")
	}
	if mode != AdjustSet && !in.Quantity.IsPositive() {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "la cantidad debe ser mayor que cero")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.Invalid(domain.ErrInvalidInput, "unit_cost", "el costo no puede ser negativo")
	}
	reason := in.Reason
	if reason == "" {
		reason = "Ajuste manual"
	}

	var out *dto.StockChangeResponse
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		var err error
		if kind == EntityProduct {
			out, err = uc.adjustProduct(ctx, uow, in.ID, mode, in.Quantity, reason)
		} else {
			out, err = uc.adjustMaterial(ctx, uow, in.ID, mode, in.Quantity, in.UnitCost, reason)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("entity", out.Entity).Int64("id", out.ID).Str("mode", string(mode)).
		Str("previous", out.PreviousStock.String()).Str("new", out.NewStock.String()).Msg("ajuste de inventario")
	return out, nil
}

func (uc *UseCase) adjustProduct(ctx context.Context, uow repository.UnitOfWork, id int64, mode AdjustMode,
	qty decimal.Decimal, reason string,
) (*dto.StockChangeResponse, error) {
	p, err := uow.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	req := DeltaRequest{Entity: EntityProduct, EntityID: id, Reason: reason}
	switch mode {
	case AdjustEntry:
		req.ProductKind, req.Quantity = entity.ProductEntry, qty
	case AdjustExit:
		req.ProductKind, req.Quantity = entity.ProductExit, qty.Neg()
	case AdjustSet:
		req.ProductKind, req.Quantity = entity.ProductAdjustment, qty.Sub(decimal.NewFromInt(p.Stock))
		if req.Quantity.IsZero() {
			return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "el stock ya tiene ese valor")
		}
	}
	res, err := uc.engine.ApplyDelta(ctx, uow, req)
	if err != nil {
		return nil, err
	}
	return &dto.StockChangeResponse{
		Entity: string(EntityProduct), ID: p.ID, Name: p.Name,
		PreviousStock: res.PrevStock, NewStock: res.NewStock, MovementID: res.Product.ID,
	}, nil
}

func (uc *UseCase) adjustMaterial(ctx context.Context, uow repository.UnitOfWork, id int64, mode AdjustMode,
	qty decimal.Decimal, unitCost *decimal.Decimal, reason string,
) (*dto.StockChangeResponse, error) {
	rm, err := uow.RawMaterials().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, fmt.Errorf("materia prima %d: %w", id, domain.ErrNotFound)
	}
	req := DeltaRequest{Entity: EntityRawMaterial, EntityID: id, Reason: reason}
	switch mode {
	case AdjustEntry:
		req.MaterialKind, req.Quantity = entity.MaterialPurchase, qty
		if unitCost != nil {
			cost := inventory.WeightedCost(rm.Stock, rm.CostPerUnit, qty, *unitCost)
			if err := uow.RawMaterials().UpdateCost(ctx, rm.ID, cost); err != nil {
				return nil, err
			}
		}
	case AdjustExit:
		req.MaterialKind, req.Quantity = entity.MaterialAdjustment, qty.Neg()
	case AdjustSet:
		req.MaterialKind, req.Quantity = entity.MaterialAdjustment, qty.Sub(rm.Stock)
		if req.Quantity.IsZero() {
			return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "el stock ya tiene ese valor")
		}
	}
	res, err := uc.engine.ApplyDelta(ctx, uow, req)
	if err != nil {
		return nil, err
	}
	return &dto.StockChangeResponse{
		Entity: string(EntityRawMaterial), ID: rm.ID, Name: rm.Name,
		PreviousStock: res.PrevStock, NewStock: res.NewStock, MovementID: res.Material.ID,
	}, nil
}

// BulkTopUp suma la misma cantidad a todos los productos (entry) o materias primas (purchase),
// con un movimiento por entidad. Todo o nada.
func (uc *UseCase) BulkTopUp(ctx context.Context, in dto.BulkTopUpRequest) (*dto.BulkResultResponse, error) {
	kind, ok := ParseEntityKind(in.Entity)
	if !ok {
		return nil, domain.Invalid(domain.ErrInvalidInput, "entity", "use product o raw_material")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "la cantidad debe ser mayor que cero")
	}
	if kind == EntityProduct && !in.Quantity.Equal(in.Quantity.Truncate(0)) {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "quantity", "el stock de productos es entero")
	}
	reason := fmt.Sprintf("%s — carga masiva", in.Reason)

	n := 0
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		n = 0
		if kind == EntityProduct {
			products, err := uow.Products().List(ctx, repository.ProductFilter{})
			if err != nil {
				return err
			}
			for _, p := range products {
				if _, err := uc.engine.ApplyDelta(ctx, uow, DeltaRequest{
					Entity: EntityProduct, EntityID: p.ID, ProductKind: entity.ProductEntry,
					Quantity: in.Quantity, Reason: reason, Reference: RefBulkTopUp,
				}); err != nil {
					return err
				}
				n++
			}
			return nil
		}
		materials, err := uow.RawMaterials().List(ctx)
		if err != nil {
			return err
		}
		for _, rm := range materials {
			if _, err := uc.engine.ApplyDelta(ctx, uow, DeltaRequest{
				Entity: EntityRawMaterial, EntityID: rm.ID, MaterialKind: entity.MaterialPurchase,
				Quantity: in.Quantity, Reason: reason, Reference: RefBulkTopUp,
			}); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("entity", string(kind)).Int("affected", n).Str("quantity", in.Quantity.String()).Msg("carga masiva de inventario")
	return &dto.BulkResultResponse{Affected: n}, nil
}

// ResetProductsToZero lleva a cero todo producto con stock > 0. Las materias primas no se tocan.
func (uc *UseCase) ResetProductsToZero(ctx context.Context) (*dto.BulkResultResponse, error) {
	n := 0
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		n = 0
		products, err := uow.Products().List(ctx, repository.ProductFilter{})
		if err != nil {
			return err
		}
		for _, p := range products {
			if p.Stock <= 0 {
				continue
			}
			if _, err := uc.engine.ApplyDelta(ctx, uow, DeltaRequest{
				Entity: EntityProduct, EntityID: p.ID, ProductKind: entity.ProductAdjustment,
				Quantity:  decimal.NewFromInt(-p.Stock),
				Reason:    fmt.Sprintf("Reinicio masivo — stock anterior %d", p.Stock),
				Reference: RefMassReset,
			}); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Int("affected", n).Msg("reinicio masivo de stock de productos")
	return &dto.BulkResultResponse{Affected: n}, nil
}

// ProductHistory movimientos de un producto en orden de registro.
func (uc *UseCase) ProductHistory(ctx context.Context, productID int64) ([]dto.MovementResponse, error) {
	list, err := uc.reader.ProductMovements().ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ProductMovementResponse(m))
	}
	return out, nil
}

// MaterialHistory movimientos de una materia prima en orden de registro.
func (uc *UseCase) MaterialHistory(ctx context.Context, rawMaterialID int64) ([]dto.MovementResponse, error) {
	list, err := uc.reader.MaterialMovements().ListByMaterial(ctx, rawMaterialID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MaterialMovementResponse(m))
	}
	return out, nil
}

// MovementsByRange movimientos de ambos tipos dentro del rango.
func (uc *UseCase) MovementsByRange(ctx context.Context, r repository.DateRange) (*dto.MovementListResponse, error) {
	pms, err := uc.reader.ProductMovements().ListByRange(ctx, r)
	if err != nil {
		return nil, err
	}
	mms, err := uc.reader.MaterialMovements().ListByRange(ctx, r)
	if err != nil {
		return nil, err
	}
	return toMovementList(pms, mms), nil
}

// MovementsByReference movimientos ligados a una venta, gasto u operación masiva.
func (uc *UseCase) MovementsByReference(ctx context.Context, reference string) (*dto.MovementListResponse, error) {
	pms, err := uc.reader.ProductMovements().ListByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	mms, err := uc.reader.MaterialMovements().ListByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return toMovementList(pms, mms), nil
}

// Annotate guarda una nota libre sobre un movimiento. Los anulados conservan su marca.
func (uc *UseCase) Annotate(ctx context.Context, entityKind string, id int64, note string) error {
	kind, ok := ParseEntityKind(entityKind)
	if !ok {
		return domain.Invalid(domain.ErrInvalidInput, "entity", "use product o raw_material")
	}
	if entity.IsAnnulledNote(note) {
		return domain.Invalid(domain.ErrInvalidInput, "note", "la marca de anulación es reservada")
	}
	return uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		if kind == EntityProduct {
			m, err := uow.ProductMovements().GetByID(ctx, id)
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("movimiento %d: %w", id, domain.ErrNotFound)
			}
			if m.IsAnnulled() {
				return domain.Invalid(domain.ErrInvalidInput, "note", "el movimiento está anulado")
			}
			return uow.ProductMovements().SetUserNote(ctx, id, note)
		}
		m, err := uow.MaterialMovements().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("movimiento %d: %w", id, domain.ErrNotFound)
		}
		if m.IsAnnulled() {
			return domain.Invalid(domain.ErrInvalidInput, "note", "el movimiento está anulado")
		}
		return uow.MaterialMovements().SetUserNote(ctx, id, note)
	})
}

// Audit compara el stock de cada entidad con la suma de sus movimientos.
// Una lista vacía indica que el historial cuadra.
func (uc *UseCase) Audit(ctx context.Context) ([]dto.LedgerDiscrepancyDTO, error) {
	out := []dto.LedgerDiscrepancyDTO{}
	products, err := uc.reader.Products().List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		sum, err := uc.reader.ProductMovements().SumByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if sum != p.Stock {
			out = append(out, dto.LedgerDiscrepancyDTO{
				Entity: string(EntityProduct), EntityID: p.ID, Name: p.Name,
				Stock: decimal.NewFromInt(p.Stock), LedgerSum: decimal.NewFromInt(sum),
			})
		}
	}
	materials, err := uc.reader.RawMaterials().List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rm := range materials {
		sum, err := uc.reader.MaterialMovements().SumByMaterial(ctx, rm.ID)
		if err != nil {
			return nil, err
		}
		if !sum.Equal(rm.Stock) {
			out = append(out, dto.LedgerDiscrepancyDTO{
				Entity: string(EntityRawMaterial), EntityID: rm.ID, Name: rm.Name,
				Stock: rm.Stock, LedgerSum: sum,
			})
		}
	}
	return out, nil
}

// ProductMovementResponse convierte un movimiento de producto al DTO común.
func ProductMovementResponse(m *entity.ProductMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID: m.ID, Entity: string(EntityProduct), EntityID: m.ProductID, Kind: string(m.Kind),
		Quantity:      decimal.NewFromInt(m.Quantity),
		PreviousStock: decimal.NewFromInt(m.PreviousStock),
		NewStock:      decimal.NewFromInt(m.NewStock),
		Reason:        m.Reason, EditReason: m.EditReason, UserNote: m.UserNote, Reference: m.Reference,
		Annulled: m.IsAnnulled(), CreatedAt: m.CreatedAt,
	}
}

// MaterialMovementResponse convierte un movimiento de materia prima al DTO común.
func MaterialMovementResponse(m *entity.MaterialMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID: m.ID, Entity: string(EntityRawMaterial), EntityID: m.RawMaterialID, Kind: string(m.Kind),
		Quantity: m.Quantity, PreviousStock: m.PreviousStock, NewStock: m.NewStock,
		Reason: m.Reason, EditReason: m.EditReason, UserNote: m.UserNote, Reference: m.Reference,
		Annulled: m.IsAnnulled(), CreatedAt: m.CreatedAt,
	}
}

func toMovementList(pms []*entity.ProductMovement, mms []*entity.MaterialMovement) *dto.MovementListResponse {
	out := &dto.MovementListResponse{
		Products:  make([]dto.MovementResponse, 0, len(pms)),
		Materials: make([]dto.MovementResponse, 0, len(mms)),
	}
	for _, m := range pms {
		out.Products = append(out.Products, ProductMovementResponse(m))
	}
	for _, m := range mms {
		out.Materials = append(out.Materials, MaterialMovementResponse(m))
	}
	return out
}
