package portation

import (
	"regexp"
	"slices"
	"strings"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/pkg/textnorm"
)

// headerRule palabras que identifican la hoja de una entidad. Cada grupo de required
// debe aparecer en algún encabezado; ninguna palabra de forbidden puede aparecer.
type headerRule struct {
	required  [][]string
	forbidden []string
}

var headerRules = map[Kind]headerRule{
	KindCustomers: {
		required: [][]string{{"nombre", "name", "cliente", "customer"}},
		forbidden: []string{"factura", "venta", "ventas", "metodo pago", "metodo de pago",
			"medio de pago", "forma de pago", "subtotal", "valor unitario"},
	},
	KindSales: {
		required: [][]string{{"factura", "invoice"}, {"total"}},
		forbidden: []string{"email", "correo", "telefono", "celular", "direccion",
			"valor unitario"},
	},
	KindCatalog: {
		required: [][]string{{"codigo"}, {"producto"}, {"valor unitario"}},
		forbidden: []string{"factura", "email", "correo", "metodo pago", "metodo de pago",
			"subtotal"},
	},
}

// validateHeader rechaza la hoja si le falta una palabra propia de la entidad o si
// trae encabezados de otra entidad.
func validateHeader(kind Kind, header []string) error {
	rule, ok := headerRules[kind]
	if !ok {
		return &domain.InvalidHeaderError{Expected: kind.Label(), Found: header, Detail: "este tipo no se importa"}
	}
	if len(nonBlank(header)) == 0 {
		return &domain.InvalidHeaderError{Expected: kind.Label(), Found: header, Detail: "la hoja está vacía"}
	}
	for _, h := range header {
		if tok, bad := textnorm.ContainsAny(h, rule.forbidden...); bad {
			return &domain.InvalidHeaderError{
				Expected: kind.Label(), Found: nonBlank(header),
				Detail: "la columna " + quote(h) + " corresponde a otra entidad (" + tok + ")",
			}
		}
	}
	for _, group := range rule.required {
		if !anyHeaderHas(header, group) {
			return &domain.InvalidHeaderError{
				Expected: kind.Label(), Found: nonBlank(header),
				Detail: "falta una columna " + strings.ToUpper(group[0]),
			}
		}
	}
	return nil
}

func anyHeaderHas(header []string, tokens []string) bool {
	for _, h := range header {
		if _, ok := textnorm.ContainsAny(h, tokens...); ok {
			return true
		}
	}
	return false
}

// field columna lógica con sus nombres aceptados (ya normalizados).
type field struct {
	name    string
	aliases []string
}

// columns índice de columna por campo; -1 si la hoja no la trae.
type columns map[string]int

func (c columns) idx(name string) int {
	if i, ok := c[name]; ok {
		return i
	}
	return -1
}

// used columnas asignadas a algún campo.
func (c columns) used() map[int]bool {
	out := make(map[int]bool, len(c))
	for _, i := range c {
		if i >= 0 {
			out[i] = true
		}
	}
	return out
}

// mapColumns asigna cada campo a una columna. Primero por coincidencia exacta y luego
// por contenido, sin repetir columnas.
func mapColumns(header []string, fields []field) columns {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = textnorm.Key(h)
	}
	out := make(columns, len(fields))
	taken := map[int]bool{}

	for _, f := range fields {
		out[f.name] = -1
		for i, k := range keys {
			if !taken[i] && slices.Contains(f.aliases, k) {
				out[f.name] = i
				taken[i] = true
				break
			}
		}
	}
	for _, f := range fields {
		if out[f.name] >= 0 {
			continue
		}
		for i, h := range header {
			if taken[i] {
				continue
			}
			if _, ok := textnorm.ContainsAny(h, f.aliases...); ok {
				out[f.name] = i
				taken[i] = true
				break
			}
		}
	}
	return out
}

var unitTag = regexp.MustCompile(`^(.*?)\s*\(\s*([A-Za-z]{1,5})\s*\)\s*$`)

// materialHeader separa el nombre de la materia prima y su unidad: "Esencia lavanda (ML)".
// Sin etiqueta la unidad es UND.
func materialHeader(h string) (name, unit string) {
	h = strings.TrimSpace(h)
	if m := unitTag.FindStringSubmatch(h); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), strings.ToUpper(m[2])
	}
	return h, "UND"
}

func nonBlank(header []string) []string {
	out := make([]string, 0, len(header))
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			out = append(out, strings.TrimSpace(h))
		}
	}
	return out
}

func quote(s string) string { return `"` + strings.TrimSpace(s) + `"` }
