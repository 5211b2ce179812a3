package portation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/domain"
)

func TestValidateHeader_RechazaOtraEntidad(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		header []string
		ok     bool
	}{
		{"clientes válidos", KindCustomers, []string{"ID", "Nombre", "Email", "Teléfono"}, true},
		{"ventas como clientes", KindCustomers, []string{"Factura", "Fecha", "Cliente", "Método Pago", "Total"}, false},
		{"clientes con subtotal", KindCustomers, []string{"Nombre", "SUBTOTAL"}, false},
		{"ventas válidas", KindSales, []string{"Nº Factura", "Fecha", "Cliente", "Método de Pago", "Estado", "Total"}, true},
		{"ventas sin total", KindSales, []string{"Factura", "Fecha"}, false},
		{"clientes como ventas", KindSales, []string{"Nombre", "Correo", "Total Factura"}, false},
		{"catálogo válido", KindCatalog, []string{"CÓDIGO", "PRODUCTO", "VALOR UNITARIO", "Esencia (ML)"}, true},
		{"catálogo sin precio", KindCatalog, []string{"CODIGO", "PRODUCTO"}, false},
		{"hoja vacía", KindCatalog, []string{"", " "}, false},
		{"movimientos no se importan", KindMovements, []string{"ID"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateHeader(tc.kind, tc.header)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrInvalidHeader)
			var herr *domain.InvalidHeaderError
			require.True(t, errors.As(err, &herr))
			assert.Equal(t, tc.kind.Label(), herr.Expected)
		})
	}
}

func TestMapColumns_ExactoAntesQueContenido(t *testing.T) {
	header := []string{"Número Documento", "Tipo Documento", "Nombre del cliente", "Correo"}
	cols := mapColumns(header, customerFields)
	assert.Equal(t, 0, cols.idx("doc_number"))
	assert.Equal(t, 1, cols.idx("doc_type"))
	assert.Equal(t, 2, cols.idx("name"))
	assert.Equal(t, 3, cols.idx("email"))
	assert.Equal(t, -1, cols.idx("phone"))
	assert.Equal(t, -1, cols.idx("no existe"))
}

func TestMaterialHeader_Unidad(t *testing.T) {
	cases := map[string][2]string{
		"Esencia lavanda (ML)":  {"Esencia lavanda", "ML"},
		"Cera de soya ( gr )":   {"Cera de soya", "GR"},
		"Frasco vidrio (UND)":   {"Frasco vidrio", "UND"},
		"Aceite de coco (ONZ) ": {"Aceite de coco", "ONZ"},
		"Etiqueta":              {"Etiqueta", "UND"},
	}
	for in, want := range cases {
		name, unit := materialHeader(in)
		assert.Equal(t, want[0], name, in)
		assert.Equal(t, want[1], unit, in)
	}
}

func TestParseKind_Alias(t *testing.T) {
	for in, want := range map[string]Kind{
		"Clientes": KindCustomers, "VENTAS": KindSales, "catálogo": KindCatalog, "movimientos": KindMovements,
	} {
		got, ok := ParseKind(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseKind("facturas")
	assert.False(t, ok)
}

func TestParseSaleDate_Formatos(t *testing.T) {
	for _, in := range []string{"15/03/2025 14:30:00", "15/03/2025 14:30", "15/03/2025", "2025-03-15 14:30:00", "2025-03-15"} {
		got, err := parseSaleDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, 2025, got.Year(), in)
		assert.Equal(t, 15, got.Day(), in)
	}
	got, err := parseSaleDate("45731.5")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15 12:00", got.Format("2006-01-02 15:04"))

	_, err = parseSaleDate("ayer")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
