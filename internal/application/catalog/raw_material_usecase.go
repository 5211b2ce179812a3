package catalog

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
)

// RawMaterialUseCase casos de uso para materias primas.
type RawMaterialUseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
	engine *appinv.Engine
	log    zerolog.Logger
}

// NewRawMaterialUseCase construye el caso de uso.
func NewRawMaterialUseCase(tx repository.TxRunner, reader repository.UnitOfWork, engine *appinv.Engine, log zerolog.Logger) *RawMaterialUseCase {
	return &RawMaterialUseCase{tx: tx, reader: reader, engine: engine, log: log}
}

// Create crea la materia prima; sin SKU se asigna MAT-<NOMBRE>. Stock > 0 registra la compra de apertura.
func (uc *RawMaterialUseCase) Create(ctx context.Context, in dto.CreateRawMaterialRequest) (*dto.RawMaterialResponse, error) {
	now := time.Now()
	rm := &entity.RawMaterial{
		SKU:         strings.TrimSpace(in.SKU),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Unit:        strings.ToUpper(strings.TrimSpace(in.Unit)),
		CostPerUnit: in.CostPerUnit,
		MinStock:    in.MinStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		return CreateRawMaterial(ctx, uow, uc.engine, rm, in.Stock)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("raw_material_id", rm.ID).Str("sku", rm.SKU).Msg("materia prima creada")
	out := ToRawMaterialResponse(rm)
	return &out, nil
}

// CreateRawMaterial valida e inserta la materia prima y registra su stock inicial.
func CreateRawMaterial(ctx context.Context, uow repository.UnitOfWork, engine *appinv.Engine,
	rm *entity.RawMaterial, initialStock decimal.Decimal,
) error {
	if rm.Name == "" {
		return domain.Invalid(domain.ErrInvalidInput, "name", "obligatorio")
	}
	if rm.SKU == "" {
		rm.SKU = MaterialSKU(rm.Name)
	}
	if rm.Unit == "" {
		rm.Unit = "UND"
	}
	if rm.CostPerUnit.IsNegative() || rm.MinStock.IsNegative() || initialStock.IsNegative() {
		return domain.Invalid(domain.ErrInvalidQuantity, "stock", "costo y cantidades no pueden ser negativos")
	}
	existing, err := uow.RawMaterials().GetBySKU(ctx, rm.SKU)
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.DuplicateKeyError{Entity: "materia prima", Key: "sku", Value: rm.SKU}
	}
	rm.Stock = decimal.Zero
	if err := uow.RawMaterials().Create(ctx, rm); err != nil {
		return err
	}
	if initialStock.IsPositive() {
		_, err := engine.ApplyDelta(ctx, uow, appinv.DeltaRequest{
			Entity: appinv.EntityRawMaterial, EntityID: rm.ID, MaterialKind: entity.MaterialPurchase,
			Quantity: initialStock, Reason: "Stock inicial", Reference: fmt.Sprintf(RefInitMaterial, rm.ID),
		})
		return err
	}
	return nil
}

// Update edita los datos de la materia prima (no el stock).
func (uc *RawMaterialUseCase) Update(ctx context.Context, id int64, in dto.UpdateRawMaterialRequest) (*dto.RawMaterialResponse, error) {
	var out dto.RawMaterialResponse
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		rm, err := uow.RawMaterials().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if rm == nil {
			return fmt.Errorf("materia prima %d: %w", id, domain.ErrNotFound)
		}
		if in.SKU != nil {
			sku := strings.TrimSpace(*in.SKU)
			if other, err := uow.RawMaterials().GetBySKU(ctx, sku); err != nil {
				return err
			} else if other != nil && other.ID != id {
				return &domain.DuplicateKeyError{Entity: "materia prima", Key: "sku", Value: sku}
			}
			rm.SKU = sku
		}
		if in.Name != nil {
			rm.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			rm.Description = *in.Description
		}
		if in.Unit != nil {
			rm.Unit = strings.ToUpper(strings.TrimSpace(*in.Unit))
		}
		if in.CostPerUnit != nil {
			if in.CostPerUnit.IsNegative() {
				return domain.Invalid(domain.ErrInvalidInput, "cost_per_unit", "no puede ser negativo")
			}
			rm.CostPerUnit = *in.CostPerUnit
		}
		if in.MinStock != nil {
			if in.MinStock.IsNegative() {
				return domain.Invalid(domain.ErrInvalidQuantity, "min_stock", "no puede ser negativo")
			}
			rm.MinStock = *in.MinStock
		}
		rm.UpdatedAt = time.Now()
		if err := uow.RawMaterials().Update(ctx, rm); err != nil {
			return err
		}
		out = ToRawMaterialResponse(rm)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID obtiene una materia prima.
func (uc *RawMaterialUseCase) GetByID(ctx context.Context, id int64) (*dto.RawMaterialResponse, error) {
	rm, err := uc.reader.RawMaterials().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, fmt.Errorf("materia prima %d: %w", id, domain.ErrNotFound)
	}
	out := ToRawMaterialResponse(rm)
	return &out, nil
}

// List lista todas las materias primas por nombre.
func (uc *RawMaterialUseCase) List(ctx context.Context) ([]dto.RawMaterialResponse, error) {
	list, err := uc.reader.RawMaterials().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RawMaterialResponse, 0, len(list))
	for _, rm := range list {
		out = append(out, ToRawMaterialResponse(rm))
	}
	return out, nil
}

// Delete borra la materia prima con sus aristas de receta y su historial.
// Los gastos que la referencian impiden el borrado.
func (uc *RawMaterialUseCase) Delete(ctx context.Context, id int64) (*dto.DeleteResult, error) {
	res := &dto.DeleteResult{ID: id}
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		rm, err := uow.RawMaterials().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if rm == nil {
			return fmt.Errorf("materia prima %d: %w", id, domain.ErrNotFound)
		}
		n, err := uow.Expenses().CountByRawMaterial(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &domain.DependentRowsError{Entity: "materia prima " + rm.Name, Count: n}
		}
		if res.MovementsRemoved, err = uow.MaterialMovements().DeleteByMaterial(ctx, id); err != nil {
			return err
		}
		if res.BOMEdgesRemoved, err = uow.BOM().DeleteByMaterial(ctx, id); err != nil {
			return err
		}
		return uow.RawMaterials().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("raw_material_id", id).Int64("bom_edges", res.BOMEdgesRemoved).Msg("materia prima eliminada")
	return res, nil
}

// ToRawMaterialResponse convierte la entidad al DTO de salida.
func ToRawMaterialResponse(rm *entity.RawMaterial) dto.RawMaterialResponse {
	return dto.RawMaterialResponse{
		ID:          rm.ID,
		SKU:         rm.SKU,
		Name:        rm.Name,
		Description: rm.Description,
		Unit:        rm.Unit,
		CostPerUnit: rm.CostPerUnit,
		Stock:       rm.Stock,
		MinStock:    rm.MinStock,
		IsLowStock:  rm.IsLowStock(),
		CreatedAt:   rm.CreatedAt,
		UpdatedAt:   rm.UpdatedAt,
	}
}
