package expense_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/expense"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/persistence"
	"github.com/jhoicas/inventario-pos/internal/testutil"
)

func newUseCase(t *testing.T) (*expense.UseCase, *persistence.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	return expense.NewUseCase(store, store, appinv.NewEngine(appinv.NewLedger()), zerolog.Nop()), store
}

func TestDelete_NoRestauraStock(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(t)
	a := testutil.SeedMaterial(t, store, "RM-A", "10", "5")

	e, err := uc.Create(ctx, dto.CreateExpenseRequest{
		Kind: "materia prima", Reason: "Dañado", RawMaterialID: &a.ID, Quantity: testutil.D("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "RM-A", e.ItemName)
	testutil.RequireDecimal(t, "8", testutil.MaterialStock(t, store, a.ID))

	require.NoError(t, uc.Delete(ctx, e.ID))

	testutil.RequireDecimal(t, "8", testutil.MaterialStock(t, store, a.ID))
	_, err = uc.GetByID(ctx, e.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	ms, err := store.MaterialMovements().ListByReference(ctx, fmt.Sprintf("EXPENSE-%d", e.ID))
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, entity.MaterialWaste, ms[0].Kind)
	testutil.RequireDecimal(t, "-2", ms[0].Quantity)
	assert.Equal(t, "Gasto: Dañado", ms[0].Reason)
	testutil.AssertLedgerIdentity(t, store)

	require.ErrorIs(t, uc.Delete(ctx, e.ID), domain.ErrNotFound)
}

func TestCreate_ProductoDescuentaRecetaComoDesperdicio(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(t)
	a := testutil.SeedMaterial(t, store, "RM-A", "10", "5")
	p := testutil.SeedProduct(t, store, "PROD-001", "1000", 5, testutil.Edge{Material: a, Qty: "1.5"})

	e, err := uc.Create(ctx, dto.CreateExpenseRequest{
		Kind: "producto", Reason: "muestra", ProductID: &p.ID, Quantity: testutil.D("2"), Recipient: "Feria",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ReasonSample), e.Reason)

	assert.EqualValues(t, 3, testutil.ProductStock(t, store, p.ID))
	testutil.RequireDecimal(t, "7", testutil.MaterialStock(t, store, a.ID))

	ref := fmt.Sprintf("EXPENSE-%d", e.ID)
	pms, err := store.ProductMovements().ListByReference(ctx, ref)
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.Equal(t, entity.ProductExit, pms[0].Kind)
	mms, err := store.MaterialMovements().ListByReference(ctx, ref)
	require.NoError(t, err)
	require.Len(t, mms, 1)
	assert.Equal(t, entity.MaterialWaste, mms[0].Kind)
	testutil.AssertLedgerIdentity(t, store)
}

func TestCreate_StockInsuficienteNoRegistra(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(t)
	a := testutil.SeedMaterial(t, store, "RM-A", "1", "5")

	_, err := uc.Create(ctx, dto.CreateExpenseRequest{
		Kind: "raw_material", Reason: "waste", RawMaterialID: &a.ID, Quantity: testutil.D("1.5"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := uc.List(ctx, dto.RangeQuery{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	testutil.RequireDecimal(t, "1", testutil.MaterialStock(t, store, a.ID))
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(t)
	p := testutil.SeedProduct(t, store, "PROD-001", "1000", 5)

	cases := []struct {
		name string
		in   dto.CreateExpenseRequest
		want error
	}{
		{"tipo desconocido", dto.CreateExpenseRequest{Kind: "servicio", Reason: "otro"}, domain.ErrInvalidInput},
		{"motivo desconocido", dto.CreateExpenseRequest{Kind: "cash", Reason: "capricho", Amount: ptr(testutil.D("1"))}, domain.ErrInvalidInput},
		{"efectivo sin monto", dto.CreateExpenseRequest{Kind: "cash", Reason: "otro"}, domain.ErrInvalidInput},
		{"monto negativo", dto.CreateExpenseRequest{Kind: "cash", Reason: "otro", Amount: ptr(testutil.D("-1"))}, domain.ErrInvalidInput},
		{"producto sin id", dto.CreateExpenseRequest{Kind: "product", Reason: "otro", Quantity: testutil.D("1")}, domain.ErrInvalidInput},
		{"producto fraccionario", dto.CreateExpenseRequest{Kind: "product", Reason: "otro", ProductID: &p.ID, Quantity: testutil.D("0.5")}, domain.ErrInvalidQuantity},
		{"materia prima sin cantidad", dto.CreateExpenseRequest{Kind: "raw_material", Reason: "otro", RawMaterialID: ptr(int64(1))}, domain.ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
	assert.EqualValues(t, 5, testutil.ProductStock(t, store, p.ID))
}

func TestSummary_EfectivoYMotivos(t *testing.T) {
	ctx := context.Background()
	uc, store := newUseCase(t)
	a := testutil.SeedMaterial(t, store, "RM-A", "10", "5")

	for _, in := range []dto.CreateExpenseRequest{
		{Kind: "efectivo", Reason: "otro", Amount: ptr(testutil.D("15000")), PaymentMethod: "transferencia", TransferType: "Nequi", IsAuthorized: true},
		{Kind: "cash", Reason: "donacion", Amount: ptr(testutil.D("2500.555"))},
		{Kind: "insumo", Reason: "Donación", RawMaterialID: &a.ID, Quantity: testutil.D("1")},
	} {
		_, err := uc.Create(ctx, in)
		require.NoError(t, err)
	}

	sum, err := uc.Summary(ctx, dto.RangeQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	testutil.RequireDecimal(t, "17500.56", sum.CashTotal)
	require.Len(t, sum.ByReason, 2)
	assert.Equal(t, dto.ReasonCountDTO{Reason: "donation", Count: 2}, sum.ByReason[0])
	assert.Equal(t, dto.ReasonCountDTO{Reason: "other", Count: 1}, sum.ByReason[1])

	list, err := uc.List(ctx, dto.RangeQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	var transfer *dto.ExpenseResponse
	for i := range list.Items {
		if list.Items[i].TransferType != "" {
			transfer = &list.Items[i]
		}
	}
	require.NotNil(t, transfer)
	assert.Equal(t, "Nequi", transfer.TransferType)
	assert.Equal(t, string(entity.PaymentTransfer), transfer.PaymentMethod)
	assert.True(t, transfer.IsAuthorized)

	_, err = uc.Summary(ctx, dto.RangeQuery{From: "2026-13-01"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func ptr[T any](v T) *T { return &v }
