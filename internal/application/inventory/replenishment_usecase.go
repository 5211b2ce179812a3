package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de productos terminados.
// Combina el stock mínimo con el volumen vendido y el margen para priorizar.
type ReplenishmentUseCase struct {
	reader repository.UnitOfWork
	now    func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(reader repository.UnitOfWork) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{reader: reader, now: time.Now}
}

// GenerateReplenishmentList devuelve los productos en o bajo su stock mínimo con la cantidad
// sugerida a producir y un ranking de prioridad.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	// 1. Productos en o bajo el mínimo
	low, err := uc.reader.Products().ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if len(low) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// 2. Unidades vendidas en los últimos 90 días (sin canceladas)
	end := uc.now()
	facts, err := uc.reader.Sales().ListLineFacts(ctx, repository.DateRange{From: end.AddDate(0, 0, -90), To: end})
	if err != nil {
		return nil, err
	}
	sold := make(map[int64]int64, len(facts))
	for _, f := range facts {
		sold[f.ProductID] += f.Quantity
	}

	// 3. Construir las sugerencias; el costo sale de la receta cuando existe
	hundred := decimal.NewFromInt(100)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(low))
	for _, p := range low {
		lines, err := LoadBOMLines(ctx, uc.reader, p.ID)
		if err != nil {
			return nil, err
		}
		unitCost := p.CostPrice
		var maxProducible *int64
		if len(lines) > 0 {
			unitCost = inventory.RealCost(lines)
			if n, limited := inventory.MaxProducible(lines); limited {
				maxProducible = &n
			}
		}

		ideal := decimal.NewFromInt(p.MinStock).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart()
		suggested := ideal - p.Stock
		if suggested < 0 {
			suggested = 0
		}
		var margin decimal.Decimal
		if p.SalePrice.IsPositive() {
			margin = p.SalePrice.Sub(unitCost).Div(p.SalePrice).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:           p.ID,
			SKU:                 p.SKU,
			ProductName:         p.Name,
			CurrentStock:        p.Stock,
			MinStock:            p.MinStock,
			IdealStock:          ideal,
			SuggestedQty:        suggested,
			MaxProducible:       maxProducible,
			UnitCost:            unitCost,
			EstimatedCost:       unitCost.Mul(decimal.NewFromInt(suggested)).Round(2),
			GrossMarginPct:      margin,
			UnitsSoldLast90Days: sold[p.ID],
		})
	}

	// 4. Ordenar: mayor volumen de ventas, luego mayor margen, luego mayor déficit
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.UnitsSoldLast90Days != b.UnitsSoldLast90Days {
			return a.UnitsSoldLast90Days > b.UnitsSoldLast90Days
		}
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		return a.MinStock-a.CurrentStock > b.MinStock-b.CurrentStock
	})

	// 5. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// LoadBOMLines receta de un producto con sus materias primas, ordenada por materia prima.
func LoadBOMLines(ctx context.Context, uow repository.UnitOfWork, productID int64) ([]inventory.BOMLine, error) {
	edges, err := uow.BOM().ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	inventory.SortByMaterial(edges)
	lines := make([]inventory.BOMLine, 0, len(edges))
	for _, e := range edges {
		rm, err := uow.RawMaterials().GetByID(ctx, e.RawMaterialID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, inventory.BOMLine{Edge: e, Material: rm})
	}
	return lines, nil
}
