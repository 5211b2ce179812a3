package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de venta. UnitPrice nil toma el precio de venta actual del producto.
type SaleLineRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Quantity  int64            `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSaleRequest entrada para registrar una venta.
// TransferType es obligatorio con pago por transferencia; "Otro" exige TransferTypeOther.
type CreateSaleRequest struct {
	CustomerID        *int64            `json:"customer_id"`
	PaymentMethod     string            `json:"payment_method" validate:"required"`
	TransferType      string            `json:"transfer_type" validate:"max=100"`
	TransferTypeOther string            `json:"transfer_type_other" validate:"max=100"`
	Tax               decimal.Decimal   `json:"tax"`
	Discount          decimal.Decimal   `json:"discount"`
	Notes             string            `json:"notes" validate:"max=1000"`
	Lines             []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// EditSaleRequest reemplaza cabecera y líneas de una venta sin facturar.
type EditSaleRequest struct {
	CreateSaleRequest
	Reason string `json:"reason" validate:"max=500"`
}

// SaleLineResponse línea de venta con los datos del producto.
type SaleLineResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID                 int64              `json:"id"`
	InvoiceNumber      string             `json:"invoice_number"`
	CustomerID         *int64             `json:"customer_id,omitempty"`
	CustomerName       string             `json:"customer_name,omitempty"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	Tax                decimal.Decimal    `json:"tax"`
	Discount           decimal.Decimal    `json:"discount"`
	Total              decimal.Decimal    `json:"total"`
	PaymentMethod      string             `json:"payment_method"`
	PaymentLabel       string             `json:"payment_label"`
	TransferType       string             `json:"transfer_type,omitempty"`
	Status             string             `json:"status"`
	HasInvoice         bool               `json:"has_invoice"`
	InvoiceGeneratedAt *time.Time         `json:"invoice_generated_at,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Lines              []SaleLineResponse `json:"lines,omitempty"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// SaleQuery filtros del listado de ventas.
type SaleQuery struct {
	From             string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To               string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Status           string `query:"status"`
	CustomerID       int64  `query:"customer_id"`
	ExcludeCancelled bool   `query:"exclude_cancelled"`
	Limit            int    `query:"limit" validate:"min=0,max=500"`
	Offset           int    `query:"offset" validate:"min=0"`
}
