package repository

import "context"

// UnitOfWork expone todos los repositorios atados a una misma conexión o transacción.
// Dentro de una transacción, Products() y RawMaterials() comparten un mapa de identidad:
// cargar dos veces la misma fila devuelve el mismo puntero y ve las escrituras previas.
type UnitOfWork interface {
	Categories() CategoryRepository
	Products() ProductRepository
	RawMaterials() RawMaterialRepository
	BOM() BOMRepository
	Customers() CustomerRepository
	Sales() SaleRepository
	Expenses() ExpenseRepository
	ProductMovements() ProductMovementRepository
	MaterialMovements() MaterialMovementRepository
	Company() CompanyRepository
	InvoiceSequence() InvoiceSequenceRepository
	Gate() GateRepository

	// Savepoint ejecuta fn en un punto de guardado: si fn falla solo se deshace su trabajo.
	Savepoint(ctx context.Context, fn func() error) error
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil,
// Rollback ante cualquier error o panic.
type TxRunner interface {
	Run(ctx context.Context, fn func(uow UnitOfWork) error) error
}
