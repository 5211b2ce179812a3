package inventory

import "github.com/shopspring/decimal"

// WeightedCost costo promedio ponderado de una materia prima tras una compra.
// nuevo = (stock*costo + cantidad*costoCompra) / (stock + cantidad)
// Con stock resultante <= 0 conserva el costo de la compra.
func WeightedCost(stock, cost, purchased, purchaseCost decimal.Decimal) decimal.Decimal {
	total := stock.Add(purchased)
	if !total.IsPositive() {
		return purchaseCost
	}
	if stock.IsNegative() {
		stock = decimal.Zero
	}
	num := stock.Mul(cost).Add(purchased.Mul(purchaseCost))
	return num.DivRound(total, 4)
}
