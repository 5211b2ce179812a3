package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/persistence"
)

// Edge arista de receta para SeedProduct.
type Edge struct {
	Material *entity.RawMaterial
	Qty      string
}

// SeedMaterial crea una materia prima con su compra de apertura.
func SeedMaterial(t testing.TB, store *persistence.Store, name, stock, cost string) *entity.RawMaterial {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	rm := &entity.RawMaterial{
		SKU: "MAT-" + name, Name: name, Unit: "ML",
		CostPerUnit: D(cost), MinStock: decimal.Zero, CreatedAt: now, UpdatedAt: now,
	}
	err := store.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.RawMaterials().Create(ctx, rm); err != nil {
			return err
		}
		qty := D(stock)
		if !qty.IsPositive() {
			return nil
		}
		if err := uow.RawMaterials().UpdateStock(ctx, rm.ID, qty); err != nil {
			return err
		}
		return uow.MaterialMovements().Append(ctx, &entity.MaterialMovement{
			RawMaterialID: rm.ID, Kind: entity.MaterialPurchase, Quantity: qty,
			PreviousStock: decimal.Zero, NewStock: qty, Reason: "Stock inicial",
			Reference: fmt.Sprintf("INIT-MATERIAL-%d", rm.ID), CreatedAt: now,
		})
	})
	require.NoError(t, err)
	return rm
}

// SeedProduct crea un producto con receta y entrada de apertura.
func SeedProduct(t testing.TB, store *persistence.Store, sku, price string, stock int64, edges ...Edge) *entity.Product {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	p := &entity.Product{
		SKU: sku, Name: "Producto " + sku, SalePrice: D(price), CostPrice: decimal.Zero,
		CreatedAt: now, UpdatedAt: now,
	}
	err := store.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.Products().Create(ctx, p); err != nil {
			return err
		}
		bom := make([]entity.BOMEdge, 0, len(edges))
		for _, e := range edges {
			bom = append(bom, entity.BOMEdge{ProductID: p.ID, RawMaterialID: e.Material.ID, QtyNeeded: D(e.Qty)})
		}
		if err := uow.BOM().Replace(ctx, p.ID, bom); err != nil {
			return err
		}
		if stock <= 0 {
			return nil
		}
		if err := uow.Products().UpdateStock(ctx, p.ID, stock); err != nil {
			return err
		}
		return uow.ProductMovements().Append(ctx, &entity.ProductMovement{
			ProductID: p.ID, Kind: entity.ProductEntry, Quantity: stock,
			PreviousStock: 0, NewStock: stock, Reason: "Stock inicial",
			Reference: fmt.Sprintf("INIT-PRODUCT-%d", p.ID), CreatedAt: now,
		})
	})
	require.NoError(t, err)
	return p
}

// SeedCustomer crea un cliente.
func SeedCustomer(t testing.TB, store *persistence.Store, name string) *entity.Customer {
	t.Helper()
	now := time.Now()
	c := &entity.Customer{Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Customers().Create(context.Background(), c))
	return c
}

// ProductStock stock actual leído de la base.
func ProductStock(t testing.TB, store *persistence.Store, id int64) int64 {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

// MaterialStock stock actual leído de la base.
func MaterialStock(t testing.TB, store *persistence.Store, id int64) decimal.Decimal {
	t.Helper()
	rm, err := store.RawMaterials().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rm)
	return rm.Stock
}

// AssertLedgerIdentity comprueba que el stock de cada entidad es la suma de su kardex y no es negativo.
func AssertLedgerIdentity(t testing.TB, store *persistence.Store) {
	t.Helper()
	ctx := context.Background()
	products, err := store.Products().List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	for _, p := range products {
		sum, err := store.ProductMovements().SumByProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Stock, sum, "kardex de %s", p.SKU)
		assert.GreaterOrEqual(t, p.Stock, int64(0), "stock de %s", p.SKU)
	}
	materials, err := store.RawMaterials().List(ctx)
	require.NoError(t, err)
	for _, rm := range materials {
		sum, err := store.MaterialMovements().SumByMaterial(ctx, rm.ID)
		require.NoError(t, err)
		assert.Truef(t, rm.Stock.Equal(sum), "kardex de %s: stock %s, suma %s", rm.Name, rm.Stock, sum)
		assert.False(t, rm.Stock.IsNegative(), "stock de %s", rm.Name)
	}
}
