package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// SaleRepository persistencia de ventas y sus líneas.
type SaleRepository interface {
	// Create inserta solo la cabecera y asigna ID.
	Create(ctx context.Context, s *entity.Sale) error
	UpdateHeader(ctx context.Context, s *entity.Sale) error
	MarkInvoiced(ctx context.Context, id int64, at time.Time) error
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	GetByInvoice(ctx context.Context, invoiceNumber string) (*entity.Sale, error)
	InvoiceExists(ctx context.Context, invoiceNumber string) (bool, error)
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
	Delete(ctx context.Context, id int64) error
	ClearCustomer(ctx context.Context, customerID int64) (int64, error)

	AddLine(ctx context.Context, l *entity.SaleLine) error
	ListLines(ctx context.Context, saleID int64) ([]entity.SaleLine, error)
	DeleteLines(ctx context.Context, saleID int64) error
	CountLinesByProduct(ctx context.Context, productID int64) (int, error)
	// ListLineFacts líneas de ventas no canceladas en el rango.
	ListLineFacts(ctx context.Context, r DateRange) ([]SaleLineFact, error)
}

// InvoiceSequenceRepository secuencia monotónica de números de factura.
type InvoiceSequenceRepository interface {
	// Next avanza la secuencia y devuelve el nuevo valor. Debe ejecutarse en la misma
	// transacción que inserta la venta para que un rollback libere el número.
	Next(ctx context.Context) (int64, error)
	// EnsureAtLeast adelanta la secuencia hasta n si está por debajo.
	EnsureAtLeast(ctx context.Context, n int64) error
	Current(ctx context.Context) (int64, error)
}

// ExpenseRepository persistencia de gastos.
type ExpenseRepository interface {
	Create(ctx context.Context, e *entity.Expense) error
	GetByID(ctx context.Context, id int64) (*entity.Expense, error)
	List(ctx context.Context, r DateRange) ([]*entity.Expense, error)
	Delete(ctx context.Context, id int64) error
	CountByProduct(ctx context.Context, productID int64) (int, error)
	CountByRawMaterial(ctx context.Context, rawMaterialID int64) (int, error)
}
