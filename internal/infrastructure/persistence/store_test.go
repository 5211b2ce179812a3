package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/internal/testutil"
)

var d = testutil.D

func newProduct(sku string, stock int64) *entity.Product {
	now := time.Now()
	return &entity.Product{SKU: sku, Name: "Producto " + sku, CostPrice: d("400"), SalePrice: d("1000.50"),
		Stock: stock, MinStock: 2, CreatedAt: now, UpdatedAt: now}
}

func TestMigrate_Idempotente(t *testing.T) {
	store := testutil.NewStore(t)
	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, "sqlite", store.Driver())
	require.NoError(t, store.Ping(context.Background()))
}

func TestRun_RollbackAnteError(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	boom := errors.New("boom")

	err := store.Run(ctx, func(uow repository.UnitOfWork) error {
		require.NoError(t, uow.Products().Create(ctx, newProduct("PROD-001", 5)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := store.Products().GetBySKU(ctx, "PROD-001")
	require.NoError(t, err)
	assert.Nil(t, p, "la transacción debió deshacerse")
}

func TestIdentityMap_MismaInstanciaEnTransaccion(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	p := newProduct("PROD-001", 10)
	require.NoError(t, store.Products().Create(ctx, p))

	err := store.Run(ctx, func(uow repository.UnitOfWork) error {
		a, err := uow.Products().GetByID(ctx, p.ID)
		require.NoError(t, err)
		b, err := uow.Products().GetBySKU(ctx, "PROD-001")
		require.NoError(t, err)
		assert.Same(t, a, b)

		require.NoError(t, uow.Products().UpdateStock(ctx, p.ID, 7))
		assert.EqualValues(t, 7, a.Stock, "la escritura es visible en la instancia cargada")
		return nil
	})
	require.NoError(t, err)

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 7, got.Stock)
	assert.True(t, d("1000.50").Equal(got.SalePrice))
}

func TestSavepoint_DeshaceSoloLaFila(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	boom := errors.New("fila inválida")

	err := store.Run(ctx, func(uow repository.UnitOfWork) error {
		require.NoError(t, uow.Savepoint(ctx, func() error {
			return uow.Categories().Create(ctx, &entity.Category{Name: "Velas", CreatedAt: time.Now(), UpdatedAt: time.Now()})
		}))
		err := uow.Savepoint(ctx, func() error {
			if err := uow.Categories().Create(ctx, &entity.Category{Name: "Jabones", CreatedAt: time.Now(), UpdatedAt: time.Now()}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		return nil
	})
	require.NoError(t, err)

	list, err := store.Categories().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Velas", list[0].Name)
}

func TestProductCreate_SKUDuplicado(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	require.NoError(t, store.Products().Create(ctx, newProduct("PROD-001", 0)))

	err := store.Products().Create(ctx, newProduct("PROD-001", 0))
	var dup *domain.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "PROD-001", dup.Value)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestInvoiceSequence_Monotonica(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	seq := store.InvoiceSequence()

	n, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, seq.EnsureAtLeast(ctx, 41))
	require.NoError(t, seq.EnsureAtLeast(ctx, 3), "nunca retrocede")
	n, err = seq.Next(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)

	cur, err := seq.Current(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, cur)
}

func TestSaleRepo_GuardaCabeceraYLineas(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	p := newProduct("PROD-001", 10)
	require.NoError(t, store.Products().Create(ctx, p))

	now := time.Now()
	s := &entity.Sale{InvoiceNumber: "INV-000001", Subtotal: d("2001"), Tax: d("0"), Discount: d("1"), Total: d("2000"),
		PaymentMethod: entity.PaymentCash, Status: entity.SaleStatusCompleted, CreatedAt: now, UpdatedAt: now}
	err := store.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.Sales().Create(ctx, s); err != nil {
			return err
		}
		return uow.Sales().AddLine(ctx, &entity.SaleLine{SaleID: s.ID, ProductID: p.ID, Quantity: 2,
			UnitPrice: d("1000.50"), Subtotal: d("2001")})
	})
	require.NoError(t, err)

	got, err := store.Sales().GetByInvoice(ctx, "INV-000001")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Lines, 1)
	assert.True(t, d("2000").Equal(got.Total))
	assert.EqualValues(t, 2, got.Lines[0].Quantity)
	assert.False(t, got.HasInvoice)

	exists, err := store.Sales().InvoiceExists(ctx, "INV-000001")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Sales().MarkInvoiced(ctx, s.ID, now))
	got, err = store.Sales().GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.HasInvoice)
	require.NotNil(t, got.InvoiceGeneratedAt)
}

func TestMovements_RangoYSuma(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	now := time.Now()
	rm := &entity.RawMaterial{SKU: "MAT-CERA", Name: "Cera", Unit: "GR", CostPerUnit: d("12.5"),
		Stock: d("10"), MinStock: d("1"), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.RawMaterials().Create(ctx, rm))

	yesterday := now.AddDate(0, 0, -1)
	movs := []*entity.MaterialMovement{
		{RawMaterialID: rm.ID, Kind: entity.MaterialPurchase, Quantity: d("10"), PreviousStock: d("0"), NewStock: d("10"), CreatedAt: yesterday},
		{RawMaterialID: rm.ID, Kind: entity.MaterialProduction, Quantity: d("-2.5"), PreviousStock: d("10"), NewStock: d("7.5"),
			Reference: "SALE-1", CreatedAt: now},
	}
	for _, m := range movs {
		require.NoError(t, store.MaterialMovements().Append(ctx, m))
	}

	sum, err := store.MaterialMovements().SumByMaterial(ctx, rm.ID)
	require.NoError(t, err)
	assert.True(t, d("7.5").Equal(sum))

	today, err := store.MaterialMovements().ListByRange(ctx, repository.Day(now))
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, entity.MaterialProduction, today[0].Kind)

	byRef, err := store.MaterialMovements().ListByReference(ctx, "SALE-1")
	require.NoError(t, err)
	require.Len(t, byRef, 1)

	require.NoError(t, store.MaterialMovements().SetUserNote(ctx, byRef[0].ID, entity.AnnulledNote("Cancelación de venta INV-000001")))
	m, err := store.MaterialMovements().GetByID(ctx, byRef[0].ID)
	require.NoError(t, err)
	assert.True(t, m.IsAnnulled())
}

func TestExpenseRepo_MontoOpcional(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	now := time.Now()
	amount := d("15000")
	cash := &entity.Expense{Kind: entity.ExpenseCash, Reason: entity.ReasonOther, PaymentMethod: entity.PaymentCash,
		Recipient: "Proveedor", IsAuthorized: true, Amount: &amount, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Expenses().Create(ctx, cash))

	got, err := store.Expenses().GetByID(ctx, cash.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Amount)
	assert.True(t, amount.Equal(*got.Amount))
	assert.True(t, got.IsAuthorized)
	assert.Nil(t, got.ProductID)

	require.NoError(t, store.Expenses().Delete(ctx, cash.ID))
	assert.ErrorIs(t, store.Expenses().Delete(ctx, cash.ID), domain.ErrNotFound)
}
