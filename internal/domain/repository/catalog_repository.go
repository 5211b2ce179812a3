package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// Convención: GetBy* devuelve (nil, nil) si no existe.

// CategoryRepository persistencia de categorías.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	Update(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Delete(ctx context.Context, id int64) error
}

// ProductRepository persistencia de productos. Update no toca el stock; el stock
// solo cambia vía UpdateStock desde el motor de inventario.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	UpdateStock(ctx context.Context, id int64, stock int64) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
	ClearCategory(ctx context.Context, categoryID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// RawMaterialRepository persistencia de materias primas.
type RawMaterialRepository interface {
	Create(ctx context.Context, m *entity.RawMaterial) error
	Update(ctx context.Context, m *entity.RawMaterial) error
	UpdateStock(ctx context.Context, id int64, stock decimal.Decimal) error
	UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error
	GetByID(ctx context.Context, id int64) (*entity.RawMaterial, error)
	GetBySKU(ctx context.Context, sku string) (*entity.RawMaterial, error)
	GetByName(ctx context.Context, name string) (*entity.RawMaterial, error)
	List(ctx context.Context) ([]*entity.RawMaterial, error)
	Delete(ctx context.Context, id int64) error
}

// BOMRepository aristas producto -> materia prima.
type BOMRepository interface {
	// ListByProduct devuelve las aristas ordenadas por raw_material_id.
	ListByProduct(ctx context.Context, productID int64) ([]entity.BOMEdge, error)
	ListAll(ctx context.Context) ([]entity.BOMEdge, error)
	// Replace borra todas las aristas del producto e inserta edges.
	Replace(ctx context.Context, productID int64, edges []entity.BOMEdge) error
	DeleteByProduct(ctx context.Context, productID int64) (int64, error)
	DeleteByMaterial(ctx context.Context, rawMaterialID int64) (int64, error)
}

// CustomerRepository persistencia de clientes.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	Update(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, id int64) (*entity.Customer, error)
	GetByEmail(ctx context.Context, email string) (*entity.Customer, error)
	GetByDocument(ctx context.Context, number string) (*entity.Customer, error)
	GetByName(ctx context.Context, name string) (*entity.Customer, error)
	List(ctx context.Context, search string) ([]*entity.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// CompanyRepository fila única de datos de la empresa.
type CompanyRepository interface {
	Get(ctx context.Context) (*entity.CompanyInfo, error)
	Save(ctx context.Context, c *entity.CompanyInfo) error
}

// GateRepository fila única de la puerta de acceso.
type GateRepository interface {
	Get(ctx context.Context) (*entity.AccessGate, error)
	Save(ctx context.Context, g *entity.AccessGate) error
}
