package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryRequest alta o edición de una categoría.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BOMLineRequest arista de receta: cuánto de la materia prima consume una unidad.
type BOMLineRequest struct {
	RawMaterialID int64           `json:"raw_material_id" validate:"required,gt=0"`
	QtyNeeded     decimal.Decimal `json:"qty_needed"`
}

// CreateProductRequest entrada para crear un producto. Stock > 0 genera el movimiento de apertura.
type CreateProductRequest struct {
	SKU         string           `json:"sku" validate:"required,min=1,max=50"`
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Description string           `json:"description"`
	ImagePath   string           `json:"image_path"`
	CategoryID  *int64           `json:"category_id"`
	CostPrice   decimal.Decimal  `json:"cost_price"`
	SalePrice   decimal.Decimal  `json:"sale_price"`
	Stock       int64            `json:"stock" validate:"min=0"`
	MinStock    int64            `json:"min_stock" validate:"min=0"`
	BOM         []BOMLineRequest `json:"bom" validate:"omitempty,dive"`
}

// UpdateProductRequest edición parcial; el stock solo cambia vía movimientos.
// BOM nil deja la receta como está; una lista vacía la borra.
type UpdateProductRequest struct {
	SKU           *string          `json:"sku" validate:"omitempty,min=1,max=50"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	ImagePath     *string          `json:"image_path"`
	CategoryID    *int64           `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	MinStock      *int64           `json:"min_stock" validate:"omitempty,min=0"`
	BOM           []BOMLineRequest `json:"bom" validate:"omitempty,dive"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImagePath   string          `json:"image_path,omitempty"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	Stock       int64           `json:"stock"`
	MinStock    int64           `json:"min_stock"`
	IsLowStock  bool            `json:"is_low_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BOMLineResponse arista de receta con los datos de la materia prima.
type BOMLineResponse struct {
	RawMaterialID int64           `json:"raw_material_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	QtyNeeded     decimal.Decimal `json:"qty_needed"`
	CostPerUnit   decimal.Decimal `json:"cost_per_unit"`
	LineCost      decimal.Decimal `json:"line_cost"`
	MaterialStock decimal.Decimal `json:"material_stock"`
}

// ProductDetailResponse producto con su receta y los derivados de la misma.
type ProductDetailResponse struct {
	ProductResponse
	BOM      []BOMLineResponse `json:"bom"`
	RealCost decimal.Decimal   `json:"real_cost_from_bom"`
	// MaxProducible nil cuando la receta está vacía (sin límite).
	MaxProducible *int64 `json:"max_producible"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductQuery filtros del listado de productos.
type ProductQuery struct {
	CategoryID int64  `query:"category_id"`
	Search     string `query:"q"`
	Limit      int    `query:"limit" validate:"min=0,max=500"`
	Offset     int    `query:"offset" validate:"min=0"`
}

// CreateRawMaterialRequest alta de materia prima. Sin SKU se asigna MAT-<NOMBRE>.
type CreateRawMaterialRequest struct {
	SKU         string          `json:"sku" validate:"max=50"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Unit        string          `json:"unit" validate:"max=20"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
}

// UpdateRawMaterialRequest edición parcial; el stock solo cambia vía movimientos.
type UpdateRawMaterialRequest struct {
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=50"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit" validate:"omitempty,max=20"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit"`
	MinStock    *decimal.Decimal `json:"min_stock"`
}

// RawMaterialResponse salida de una materia prima.
type RawMaterialResponse struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
	IsLowStock  bool            `json:"is_low_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CustomerRequest alta o edición completa de un cliente.
type CustomerRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"max=50"`
	DocumentType   string `json:"document_type" validate:"max=20"`
	DocumentNumber string `json:"document_number" validate:"max=50"`
	Address        string `json:"address"`
	City           string `json:"city"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	DocumentType   string    `json:"document_type,omitempty"`
	DocumentNumber string    `json:"document_number,omitempty"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CompanyRequest datos de la empresa para la factura.
type CompanyRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=200"`
	TaxID         string `json:"tax_id" validate:"max=50"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	Website       string `json:"website"`
	InvoiceFooter string `json:"invoice_footer" validate:"max=500"`
}

// CompanyResponse salida de los datos de la empresa.
type CompanyResponse struct {
	Name          string    `json:"name"`
	TaxID         string    `json:"tax_id"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Website       string    `json:"website"`
	InvoiceFooter string    `json:"invoice_footer"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DeleteResult resumen de un borrado con limpieza en cascada.
type DeleteResult struct {
	ID               int64 `json:"id"`
	MovementsRemoved int64 `json:"movements_removed,omitempty"`
	BOMEdgesRemoved  int64 `json:"bom_edges_removed,omitempty"`
	Detached         int64 `json:"detached,omitempty"`
}
