package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest ajuste manual sobre un producto o una materia prima.
// Mode: entry (+qty), exit (-qty) o set (stock absoluto).
type AdjustStockRequest struct {
	Entity   string           `json:"entity" validate:"required"`
	ID       int64            `json:"id" validate:"required,gt=0"`
	Mode     string           `json:"mode" validate:"required"`
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"` // compras de materia prima
	Reason   string           `json:"reason" validate:"max=500"`
}

// BulkTopUpRequest suma la misma cantidad a todos los productos o materias primas.
type BulkTopUpRequest struct {
	Entity   string          `json:"entity" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason" validate:"required,max=300"`
}

// StockChangeResponse resultado de un ajuste.
type StockChangeResponse struct {
	Entity        string          `json:"entity"`
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	MovementID    int64           `json:"movement_id"`
}

// BulkResultResponse cantidad de entidades afectadas por una operación masiva.
type BulkResultResponse struct {
	Affected int `json:"affected"`
}

// MovementResponse fila del historial (producto o materia prima).
type MovementResponse struct {
	ID            int64           `json:"id"`
	Entity        string          `json:"entity"`
	EntityID      int64           `json:"entity_id"`
	Kind          string          `json:"kind"`
	Quantity      decimal.Decimal `json:"quantity"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	Reason        string          `json:"reason"`
	EditReason    string          `json:"edit_reason,omitempty"`
	UserNote      string          `json:"user_note,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Annulled      bool            `json:"annulled"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementListResponse movimientos de productos y de materias primas.
type MovementListResponse struct {
	Products  []MovementResponse `json:"products"`
	Materials []MovementResponse `json:"materials"`
}

// AnnotateMovementRequest nota libre sobre un movimiento.
type AnnotateMovementRequest struct {
	Note string `json:"note" validate:"required,max=500"`
}

// LedgerDiscrepancyDTO entidad cuyo stock no coincide con la suma de sus movimientos.
type LedgerDiscrepancyDTO struct {
	Entity    string          `json:"entity"`
	EntityID  int64           `json:"entity_id"`
	Name      string          `json:"name"`
	Stock     decimal.Decimal `json:"stock"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto en o bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID           int64           `json:"product_id"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	CurrentStock        int64           `json:"current_stock"`
	MinStock            int64           `json:"min_stock"`
	IdealStock          int64           `json:"ideal_stock"`         // MinStock * 1.5, redondeado hacia arriba
	SuggestedQty        int64           `json:"suggested_qty"`       // IdealStock - CurrentStock
	MaxProducible       *int64          `json:"max_producible"`      // nil sin receta
	UnitCost            decimal.Decimal `json:"unit_cost"`           // costo real por receta o costo registrado
	EstimatedCost       decimal.Decimal `json:"estimated_cost"`      // SuggestedQty * UnitCost
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`    // (precio - costo) / precio
	UnitsSoldLast90Days int64           `json:"units_sold_last_90d"` // volumen de ventas reciente
	Priority            int             `json:"priority"`            // 1 = más urgente
}
