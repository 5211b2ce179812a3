package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferTypeOther literal con el que la caja indica que enviará una etiqueta libre.
const TransferTypeOther = "Otro"

// Sale cabecera de venta. Total = Subtotal + Tax - Discount.
type Sale struct {
	ID                 int64
	InvoiceNumber      string
	CustomerID         *int64
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	Discount           decimal.Decimal
	Total              decimal.Decimal
	PaymentMethod      PaymentMethod
	TransferType       string
	Status             SaleStatus
	HasInvoice         bool
	InvoiceGeneratedAt *time.Time
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Lines []SaleLine
}

// SaleLine línea de venta con el precio congelado al momento de vender.
type SaleLine struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// IsLive la venta cuenta para reportes e inventario.
func (s *Sale) IsLive() bool {
	return s.Status != SaleStatusCancelled
}
