package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto terminado. El stock es entero y solo cambia a través del motor de stock.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	ImagePath   string
	CategoryID  *int64
	CostPrice   decimal.Decimal
	SalePrice   decimal.Decimal
	Stock       int64
	MinStock    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLowStock stock <= mínimo.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// RawMaterial materia prima (insumo). El stock admite fracciones.
type RawMaterial struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	Unit        string // ML, GR, ONZ, UND...
	CostPerUnit decimal.Decimal
	Stock       decimal.Decimal
	MinStock    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLowStock stock <= mínimo.
func (m *RawMaterial) IsLowStock() bool {
	return m.Stock.LessThanOrEqual(m.MinStock)
}

// BOMEdge una línea de la receta: cuánto de una materia prima consume una unidad del producto.
type BOMEdge struct {
	ID            int64
	ProductID     int64
	RawMaterialID int64
	QtyNeeded     decimal.Decimal
}
