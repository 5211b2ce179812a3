// Package money concentra el manejo de valores monetarios en punto fijo
// (dos decimales) y el parseo tolerante de montos escritos a mano en hojas
// de cálculo: "$ 5.000", "5.000,50" o "5,000.50".
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount se devuelve cuando el texto no representa un número.
var ErrInvalidAmount = errors.New("monto inválido")

// Round2 redondea a dos decimales (half away from zero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format devuelve el monto con separador de miles "." y decimal ",": "$ 12.500,00".
func Format(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := Round2(d.Abs()).StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}

// ParseAmount interpreta un monto con separadores locales.
// Si aparecen "." y "," el último en aparecer es el decimal. Con un solo tipo
// de separador: repetido es de miles; único seguido de exactamente tres dígitos
// también es de miles; en cualquier otro caso es decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", " ", "", "\u00a0", "", "COP", "", "cop", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: vacío", ErrInvalidAmount)
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case lastDot >= 0:
		clean = normalizeSingleSeparator(clean, ".")
	case lastComma >= 0:
		clean = normalizeSingleSeparator(clean, ",")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

func normalizeSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.Index(s, sep)
	if len(s)-idx-1 == 3 && idx > 0 {
		return strings.Replace(s, sep, "", 1)
	}
	return strings.Replace(s, sep, ".", 1)
}

// ParseQuantity interpreta cantidades de receta: "," o "." como separador decimal.
// Una celda vacía equivale a cero.
func ParseQuantity(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if clean == "" {
		return decimal.Zero, nil
	}
	clean = strings.ReplaceAll(clean, ",", ".")
	if strings.Count(clean, ".") > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
