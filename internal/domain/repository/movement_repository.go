package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// ProductMovementRepository kardex de productos. Solo se agregan filas; la única
// mutación permitida es la nota de usuario (marca de anulación).
type ProductMovementRepository interface {
	Append(ctx context.Context, m *entity.ProductMovement) error
	GetByID(ctx context.Context, id int64) (*entity.ProductMovement, error)
	SetUserNote(ctx context.Context, id int64, note string) error
	ListByProduct(ctx context.Context, productID int64) ([]*entity.ProductMovement, error)
	ListByReference(ctx context.Context, reference string) ([]*entity.ProductMovement, error)
	ListByRange(ctx context.Context, r DateRange) ([]*entity.ProductMovement, error)
	SumByProduct(ctx context.Context, productID int64) (int64, error)
	DeleteByProduct(ctx context.Context, productID int64) (int64, error)
}

// MaterialMovementRepository kardex de materias primas.
type MaterialMovementRepository interface {
	Append(ctx context.Context, m *entity.MaterialMovement) error
	GetByID(ctx context.Context, id int64) (*entity.MaterialMovement, error)
	SetUserNote(ctx context.Context, id int64, note string) error
	ListByMaterial(ctx context.Context, rawMaterialID int64) ([]*entity.MaterialMovement, error)
	ListByReference(ctx context.Context, reference string) ([]*entity.MaterialMovement, error)
	ListByRange(ctx context.Context, r DateRange) ([]*entity.MaterialMovement, error)
	ListByKind(ctx context.Context, kind entity.MaterialMovementKind, r DateRange) ([]*entity.MaterialMovement, error)
	SumByMaterial(ctx context.Context, rawMaterialID int64) (decimal.Decimal, error)
	DeleteByMaterial(ctx context.Context, rawMaterialID int64) (int64, error)
}
