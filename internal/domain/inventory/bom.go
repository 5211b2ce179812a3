// Package inventory contiene la aritmética pura de recetas (BOM): costo real,
// capacidad de producción y cantidades de cascada.
package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

// BOMLine arista de receta con su materia prima ya cargada.
type BOMLine struct {
	Edge     entity.BOMEdge
	Material *entity.RawMaterial
}

// SortByMaterial ordena por id de materia prima para que la cascada sea determinista.
func SortByMaterial(edges []entity.BOMEdge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].RawMaterialID < edges[j].RawMaterialID })
}

// RealCost Σ qty_needed × cost_per_unit.
func RealCost(lines []BOMLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Material == nil {
			continue
		}
		total = total.Add(l.Edge.QtyNeeded.Mul(l.Material.CostPerUnit))
	}
	return total.Round(2)
}

// MaxProducible ⌊min(stock / qty_needed)⌋. limited=false cuando la receta está vacía
// (el producto no está restringido por materias primas).
func MaxProducible(lines []BOMLine) (units int64, limited bool) {
	first := true
	for _, l := range lines {
		if l.Material == nil || !l.Edge.QtyNeeded.IsPositive() {
			continue
		}
		stock := l.Material.Stock
		if stock.IsNegative() {
			stock = decimal.Zero
		}
		n := stock.Div(l.Edge.QtyNeeded).Floor().IntPart()
		if first || n < units {
			units = n
			first = false
		}
	}
	return units, !first
}

// CascadeQuantity materia prima requerida para mover units unidades del producto.
func CascadeQuantity(qtyNeeded decimal.Decimal, units int64) decimal.Decimal {
	if units < 0 {
		units = -units
	}
	return qtyNeeded.Mul(decimal.NewFromInt(units))
}
