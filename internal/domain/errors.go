package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrInvalidQuantity            = errors.New("cantidad inválida")
	ErrInvalidReference           = errors.New("referencia inválida")
	ErrInvalidHeader              = errors.New("encabezados de archivo inválidos")
	ErrDuplicate                  = errors.New("recurso duplicado")
	ErrDependentRowsExist         = errors.New("existen registros dependientes")
	ErrInsufficientStock          = errors.New("stock insuficiente")
	ErrInvoiceAllocationExhausted = errors.New("no fue posible asignar un número de factura, intente de nuevo")
	ErrStateTransitionForbidden   = errors.New("transición de estado no permitida")
	ErrImportInProgress           = errors.New("ya hay una importación en curso")
	ErrUnauthorized               = errors.New("no autorizado")
)

// InsufficientStockError detalla qué entidad no alcanzó y por cuánto.
type InsufficientStockError struct {
	Entity    string // "producto" o "materia prima"
	Name      string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente de %s %q: solicitado %s, disponible %s",
		e.Entity, e.Name, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// DuplicateKeyError violación de unicidad sobre una clave natural.
type DuplicateKeyError struct {
	Entity string
	Key    string
	Value  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s con %s %q ya existe", e.Entity, e.Key, e.Value)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicate }

// DependentRowsError la entidad no se puede borrar porque otros registros la referencian.
type DependentRowsError struct {
	Entity string
	Count  int
}

func (e *DependentRowsError) Error() string {
	return fmt.Sprintf("no se puede eliminar %s: %d registros dependientes", e.Entity, e.Count)
}

func (e *DependentRowsError) Unwrap() error { return ErrDependentRowsExist }

// InvalidHeaderError el archivo importado no corresponde a la entidad esperada.
type InvalidHeaderError struct {
	Expected string
	Found    []string
	Detail   string
}

func (e *InvalidHeaderError) Error() string {
	msg := fmt.Sprintf("el archivo no parece de %s (encabezados: %s)", e.Expected, strings.Join(e.Found, ", "))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *InvalidHeaderError) Unwrap() error { return ErrInvalidHeader }

// StateTransitionError una venta no puede pasar de From a To.
type StateTransitionError struct {
	SaleID int64
	From   string
	To     string
	Reason string
}

func (e *StateTransitionError) Error() string {
	msg := fmt.Sprintf("venta %d: no se permite pasar de %s a %s", e.SaleID, e.From, e.To)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *StateTransitionError) Unwrap() error { return ErrStateTransitionForbidden }

// ValidationError envuelve un sentinel de validación con el detalle por campo.
type ValidationError struct {
	Err     error
	Details map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Err.Error()
	}
	parts := make([]string, 0, len(e.Details))
	for k, v := range e.Details {
		parts = append(parts, k+": "+v)
	}
	return e.Err.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid construye un ValidationError de un solo campo.
func Invalid(sentinel error, field, detail string) error {
	return &ValidationError{Err: sentinel, Details: map[string]string{field: detail}}
}
