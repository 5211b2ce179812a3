package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense salida que no es venta: dinero, producto o materia prima.
// ProductID y RawMaterialID son excluyentes y obligatorios según Kind.
type Expense struct {
	ID            int64
	Kind          ExpenseKind
	Reason        ExpenseReason
	ProductID     *int64
	RawMaterialID *int64
	Quantity      decimal.Decimal // 0 para gastos en efectivo
	PaymentMethod PaymentMethod
	TransferType  string
	Recipient     string
	IsAuthorized  bool
	Amount        *decimal.Decimal
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
