package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "metodo pago", Fold("  Método  PAGO "))
	assert.Equal(t, "cancelacion", Fold("CANCELACIÓN"))
	assert.Equal(t, "uso personal", Fold("Uso Personal"))
	assert.Equal(t, "nandu", Fold("Ñandú"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "valor unitario", Key("Valor_Unitario"))
	assert.Equal(t, "n factura", Key("N° Factura"))
	assert.Equal(t, "esencia ml", Key("ESENCIA (ML)"))
}

func TestContainsAny_PalabraCompleta(t *testing.T) {
	tok, ok := ContainsAny("Método Pago", "metodo pago", "subtotal")
	assert.True(t, ok)
	assert.Equal(t, "metodo pago", tok)

	_, ok = ContainsAny("Ventana", "venta")
	assert.False(t, ok, "venta no debe coincidir dentro de otra palabra")

	_, ok = ContainsAny("Nombre", "factura")
	assert.False(t, ok)
}
