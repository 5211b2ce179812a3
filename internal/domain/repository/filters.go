package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// DateRange intervalo semiabierto [From, To). Un extremo en cero no acota.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains indica si t cae dentro del rango.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// Day rango de un día calendario en la zona de t.
func Day(t time.Time) DateRange {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return DateRange{From: start, To: start.AddDate(0, 0, 1)}
}

// ParseDayRange interpreta fechas YYYY-MM-DD en hora local; to es inclusivo.
// Cadenas vacías dejan el extremo abierto.
func ParseDayRange(from, to string) (DateRange, error) {
	var r DateRange
	if from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return r, fmt.Errorf("fecha inicial %q: %w", from, domain.ErrInvalidInput)
		}
		r.From = t
	}
	if to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return r, fmt.Errorf("fecha final %q: %w", to, domain.ErrInvalidInput)
		}
		r.To = t.AddDate(0, 0, 1)
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		return r, domain.Invalid(domain.ErrInvalidInput, "from", "la fecha inicial es posterior a la final")
	}
	return r, nil
}

// ProductFilter filtros para listar productos.
type ProductFilter struct {
	CategoryID *int64
	Search     string // por nombre o SKU
	Limit      int
	Offset     int
}

// SaleFilter filtros para listar ventas.
type SaleFilter struct {
	Range            DateRange
	Status           entity.SaleStatus
	CustomerID       *int64
	ExcludeCancelled bool
	Limit            int
	Offset           int
}

// SaleLineFact línea vendida con datos de cabecera y producto, base de los reportes.
type SaleLineFact struct {
	SaleID      int64
	CustomerID  *int64
	ProductID   int64
	SKU         string
	ProductName string
	Quantity    int64
	Subtotal    decimal.Decimal
	SoldAt      time.Time
}
