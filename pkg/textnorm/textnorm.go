// Package textnorm normaliza texto libre (encabezados de hojas de cálculo,
// valores de enumeraciones) para compararlo sin importar mayúsculas,
// tildes ni espacios repetidos.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita tildes, pasa a minúsculas y colapsa espacios: "  Método  PAGO " -> "metodo pago".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Key es como Fold pero además trata la puntuación como espacio, útil para
// comparar encabezados como "Nº Factura" o "Valor_Unitario".
func Key(s string) string {
	folded := Fold(s)
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(mapped), " ")
}

// ContainsAny indica si alguno de los tokens (ya normalizados con Key) aparece en s.
func ContainsAny(s string, tokens ...string) (string, bool) {
	k := " " + Key(s) + " "
	for _, tok := range tokens {
		if strings.Contains(k, " "+tok+" ") {
			return tok, true
		}
	}
	return "", false
}
