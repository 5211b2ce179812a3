package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopProductDTO producto más vendido en el periodo.
type TopProductDTO struct {
	ProductID int64           `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// TopCustomerDTO cliente con mayor monto comprado en el periodo.
type TopCustomerDTO struct {
	CustomerID int64           `json:"customer_id"`
	Name       string          `json:"name"`
	SalesCount int             `json:"sales_count"`
	Total      decimal.Decimal `json:"total"`
}

// LowStockProductDTO producto con stock <= mínimo.
type LowStockProductDTO struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Stock     int64  `json:"stock"`
	MinStock  int64  `json:"min_stock"`
}

// LowStockMaterialDTO materia prima con stock <= mínimo.
type LowStockMaterialDTO struct {
	RawMaterialID int64           `json:"raw_material_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Stock         decimal.Decimal `json:"stock"`
	MinStock      decimal.Decimal `json:"min_stock"`
}

// MaterialConsumptionDTO consumo por producción de una materia prima en el periodo.
type MaterialConsumptionDTO struct {
	RawMaterialID int64           `json:"raw_material_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	Cost          decimal.Decimal `json:"cost"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
}

// ProductionProjectionDTO capacidad de producción de un producto con receta.
type ProductionProjectionDTO struct {
	ProductID     int64           `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	MaxProducible int64           `json:"max_producible"`
	RealCost      decimal.Decimal `json:"real_cost"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	UnitMargin    decimal.Decimal `json:"unit_margin"`
}

// PaymentBreakdownDTO ventas por medio de pago.
type PaymentBreakdownDTO struct {
	Method string          `json:"method"`
	Label  string          `json:"label"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// SalesSummaryDTO totales de ventas del periodo, sin canceladas.
type SalesSummaryDTO struct {
	From           time.Time             `json:"from"`
	To             time.Time             `json:"to"`
	Count          int                   `json:"count"`
	CancelledCount int                   `json:"cancelled_count"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	Tax            decimal.Decimal       `json:"tax"`
	Discount       decimal.Decimal       `json:"discount"`
	Total          decimal.Decimal       `json:"total"`
	ByPayment      []PaymentBreakdownDTO `json:"by_payment"`
}

// ReasonCountDTO gastos por motivo.
type ReasonCountDTO struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// ExpenseSummaryDTO totales de gastos del periodo.
type ExpenseSummaryDTO struct {
	Count     int              `json:"count"`
	CashTotal decimal.Decimal  `json:"cash_total"`
	ByReason  []ReasonCountDTO `json:"by_reason"`
}

// DashboardDTO resumen del día y del mes en curso.
type DashboardDTO struct {
	Today         SalesSummaryDTO `json:"today"`
	Month         SalesSummaryDTO `json:"month"`
	TopProducts   []TopProductDTO `json:"top_products"`
	LowStockCount int             `json:"low_stock_count"`
	DateLabel     string          `json:"date_label"`
}

// TopQuery rango y cantidad de filas para los rankings.
type TopQuery struct {
	From  string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit int    `query:"limit" validate:"min=0,max=100"`
}
