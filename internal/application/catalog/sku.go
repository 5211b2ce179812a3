// Package catalog contiene los casos de uso del catálogo: categorías, productos con su
// receta, materias primas, clientes y datos de la empresa.
package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Referencias de los movimientos de apertura.
const (
	RefInitProduct  = "INIT-PRODUCT-%d"
	RefInitMaterial = "INIT-MATERIAL-%d"
)

// ProductSKU SKU asignado a partir del código de la hoja: PROD-001.
func ProductSKU(code int64) string {
	return fmt.Sprintf("PROD-%03d", code)
}

// MaterialSKU SKU asignado a una materia prima creada sin código: MAT-<primeros 10 caracteres>.
func MaterialSKU(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > 10 {
		name = string([]rune(name)[:10])
	}
	return "MAT-" + strings.ToUpper(strings.TrimSpace(name))
}
