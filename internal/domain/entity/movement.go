package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AnnulledPrefix marca textual de un movimiento sustituido por una compensación.
const AnnulledPrefix = "[ANULADO] "

// IsAnnulledNote indica si la nota ya lleva la marca de anulación.
func IsAnnulledNote(note string) bool {
	return strings.HasPrefix(note, strings.TrimSpace(AnnulledPrefix))
}

// AnnulledNote antepone la marca a reason salvo que ya la tenga.
func AnnulledNote(reason string) string {
	if IsAnnulledNote(reason) {
		return reason
	}
	return AnnulledPrefix + reason
}

// ProductMovement fila inmutable del kardex de productos. PreviousStock + Quantity == NewStock.
type ProductMovement struct {
	ID            int64
	ProductID     int64
	Kind          ProductMovementKind
	Quantity      int64
	PreviousStock int64
	NewStock      int64
	Reason        string
	EditReason    string
	UserNote      string
	Reference     string
	CreatedAt     time.Time
}

// IsAnnulled el movimiento fue sustituido por una compensación.
func (m *ProductMovement) IsAnnulled() bool { return IsAnnulledNote(m.UserNote) }

// MaterialMovement fila inmutable del kardex de materias primas.
type MaterialMovement struct {
	ID            int64
	RawMaterialID int64
	Kind          MaterialMovementKind
	Quantity      decimal.Decimal
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	Reason        string
	EditReason    string
	UserNote      string
	Reference     string
	CreatedAt     time.Time
}

// IsAnnulled el movimiento fue sustituido por una compensación.
func (m *MaterialMovement) IsAnnulled() bool { return IsAnnulledNote(m.UserNote) }
