// Package portation importa y exporta el catálogo, los clientes, las ventas y los
// movimientos del día en libros de hoja de cálculo. Las importaciones validan los
// encabezados antes de tocar la base y procesan cada fila en su propio punto de guardado.
package portation

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/pkg/money"
	"github.com/jhoicas/inventario-pos/pkg/textnorm"
)

// Kind tipo de archivo que se importa o exporta.
type Kind string

const (
	KindCustomers Kind = "customers"
	KindSales     Kind = "sales"
	KindCatalog   Kind = "catalog"
	KindMovements Kind = "movements" // solo exportación
)

var kindAliases = map[string]Kind{
	"customers": KindCustomers, "clientes": KindCustomers,
	"sales": KindSales, "ventas": KindSales,
	"catalog": KindCatalog, "catalogo": KindCatalog, "productos": KindCatalog,
	"movements": KindMovements, "movimientos": KindMovements, "kardex": KindMovements,
}

// ParseKind interpreta el tipo sin importar mayúsculas ni tildes.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[textnorm.Key(s)]
	return k, ok
}

// Label nombre de la entidad en mensajes al usuario.
func (k Kind) Label() string {
	switch k {
	case KindCustomers:
		return "clientes"
	case KindSales:
		return "ventas"
	case KindCatalog:
		return "productos y recetas"
	default:
		return "movimientos"
	}
}

// Row fila de datos con su número en la hoja (base 1; la fila 1 es el encabezado).
// Numeric marca las celdas que el libro guarda como número; una fila armada a mano
// puede dejarlo en nil y todas sus celdas se tratan como texto.
type Row struct {
	Number  int
	Cells   []string
	Numeric []bool
}

// Get celda en la columna idx, sin espacios. Columnas ausentes devuelven "".
func (r Row) Get(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[idx])
}

// Amount monto de la columna idx. Una celda numérica trae el valor crudo con punto
// decimal y no pasa por la interpretación de separadores de miles.
func (r Row) Amount(idx int) (decimal.Decimal, error) {
	raw := r.Get(idx)
	if idx >= 0 && idx < len(r.Numeric) && r.Numeric[idx] {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", money.ErrInvalidAmount, raw)
		}
		return d, nil
	}
	return money.ParseAmount(raw)
}

// Blank la fila no tiene ningún valor.
func (r Row) Blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Table primera hoja de un libro: encabezados y filas de datos.
type Table struct {
	Header []string
	Rows   []Row
}

// Sheet hoja a escribir en un libro exportado.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Spreadsheet lectura y escritura de libros.
type Spreadsheet interface {
	ReadTable(r io.Reader) (*Table, error)
	WriteWorkbook(w io.Writer, sheets []Sheet) error
}
