package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateExpenseRequest salida no asociada a una venta.
// Kind cash: sin efecto en inventario. Kind product/raw_material: exige el id y Quantity > 0.
type CreateExpenseRequest struct {
	Kind          string           `json:"kind" validate:"required"`
	Reason        string           `json:"reason" validate:"required"`
	ProductID     *int64           `json:"product_id"`
	RawMaterialID *int64           `json:"raw_material_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PaymentMethod string           `json:"payment_method"`
	TransferType  string           `json:"transfer_type" validate:"max=100"`
	Recipient     string           `json:"recipient" validate:"max=200"`
	IsAuthorized  bool             `json:"is_authorized"`
	Amount        *decimal.Decimal `json:"amount"`
	Notes         string           `json:"notes" validate:"max=1000"`
}

// ExpenseResponse salida de un gasto.
type ExpenseResponse struct {
	ID            int64            `json:"id"`
	Kind          string           `json:"kind"`
	Reason        string           `json:"reason"`
	ProductID     *int64           `json:"product_id,omitempty"`
	RawMaterialID *int64           `json:"raw_material_id,omitempty"`
	ItemName      string           `json:"item_name,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	TransferType  string           `json:"transfer_type,omitempty"`
	Recipient     string           `json:"recipient,omitempty"`
	IsAuthorized  bool             `json:"is_authorized"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ExpenseListResponse lista de gastos de un periodo.
type ExpenseListResponse struct {
	Items []ExpenseResponse `json:"items"`
}
