// Package testutil arma el almacenamiento real (SQLite en un directorio temporal)
// para las pruebas de servicios y adaptadores.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/infrastructure/persistence"
)

// NewStore abre una base SQLite vacía con el esquema aplicado. Se cierra al terminar el test.
func NewStore(t testing.TB) *persistence.Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "inventario.db")
	store, err := persistence.OpenSQLite(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

// D atajo para literales decimales en tablas de prueba.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// RequireDecimal compara por valor (2.0 == 2).
func RequireDecimal(t testing.TB, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, D(want).Equal(got), "esperado %s, obtenido %s %v", want, got.String(), msgAndArgs)
}
