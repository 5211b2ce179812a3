// Package reporting contiene los reportes de solo lectura: rankings, stock bajo,
// consumo de materias primas, proyección de producción y resúmenes de ventas.
// Las ventas canceladas nunca suman.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/pkg/money"
)

const (
	defaultTop       = 10
	dashboardTopSKUs = 5 // productos en el widget del tablero
)

// UseCase reportes sobre la conexión de lectura.
type UseCase struct {
	reader repository.UnitOfWork
	now    func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(reader repository.UnitOfWork) *UseCase {
	return &UseCase{reader: reader, now: time.Now}
}

// TopProducts productos más vendidos por cantidad en el rango.
func (uc *UseCase) TopProducts(ctx context.Context, q dto.TopQuery) ([]dto.TopProductDTO, error) {
	r, err := repository.ParseDayRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	return uc.topProducts(ctx, r, limitOr(q.Limit))
}

func (uc *UseCase) topProducts(ctx context.Context, r repository.DateRange, n int) ([]dto.TopProductDTO, error) {
	facts, err := uc.reader.Sales().ListLineFacts(ctx, r)
	if err != nil {
		return nil, err
	}
	byProduct := map[int64]*dto.TopProductDTO{}
	for _, f := range facts {
		row, ok := byProduct[f.ProductID]
		if !ok {
			row = &dto.TopProductDTO{ProductID: f.ProductID, SKU: f.SKU, Name: f.ProductName, Total: decimal.Zero}
			byProduct[f.ProductID] = row
		}
		row.Quantity += f.Quantity
		row.Total = row.Total.Add(f.Subtotal)
	}
	out := make([]dto.TopProductDTO, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// TopCustomers clientes con mayor monto comprado en el rango.
func (uc *UseCase) TopCustomers(ctx context.Context, q dto.TopQuery) ([]dto.TopCustomerDTO, error) {
	r, err := repository.ParseDayRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	list, err := uc.reader.Sales().List(ctx, repository.SaleFilter{Range: r, ExcludeCancelled: true})
	if err != nil {
		return nil, err
	}
	byCustomer := map[int64]*dto.TopCustomerDTO{}
	for _, s := range list {
		if s.CustomerID == nil {
			continue
		}
		row, ok := byCustomer[*s.CustomerID]
		if !ok {
			row = &dto.TopCustomerDTO{CustomerID: *s.CustomerID, Total: decimal.Zero}
			byCustomer[*s.CustomerID] = row
		}
		row.SalesCount++
		row.Total = row.Total.Add(s.Total)
	}
	out := make([]dto.TopCustomerDTO, 0, len(byCustomer))
	for _, row := range byCustomer {
		c, err := uc.reader.Customers().GetByID(ctx, row.CustomerID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			row.Name = c.Name
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if n := limitOr(q.Limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// LowStockProducts productos con stock <= mínimo.
func (uc *UseCase) LowStockProducts(ctx context.Context) ([]dto.LowStockProductDTO, error) {
	list, err := uc.reader.Products().ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, dto.LowStockProductDTO{
			ProductID: p.ID, SKU: p.SKU, Name: p.Name, Stock: p.Stock, MinStock: p.MinStock,
		})
	}
	return out, nil
}

// LowStockMaterials materias primas con stock <= mínimo, de menor a mayor stock.
func (uc *UseCase) LowStockMaterials(ctx context.Context) ([]dto.LowStockMaterialDTO, error) {
	list, err := uc.reader.RawMaterials().List(ctx)
	if err != nil {
		return nil, err
	}
	out := []dto.LowStockMaterialDTO{}
	for _, rm := range list {
		if !rm.IsLowStock() {
			continue
		}
		out = append(out, dto.LowStockMaterialDTO{
			RawMaterialID: rm.ID, SKU: rm.SKU, Name: rm.Name, Unit: rm.Unit, Stock: rm.Stock, MinStock: rm.MinStock,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock.LessThan(out[j].Stock) })
	return out, nil
}

// MaterialConsumption consumo por producción en el rango, agrupado por materia prima.
// Los consumos anulados por ediciones o cancelaciones no cuentan.
func (uc *UseCase) MaterialConsumption(ctx context.Context, q dto.RangeQuery) ([]dto.MaterialConsumptionDTO, error) {
	r, err := repository.ParseDayRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	moves, err := uc.reader.MaterialMovements().ListByKind(ctx, entity.MaterialProduction, r)
	if err != nil {
		return nil, err
	}
	totals := map[int64]decimal.Decimal{}
	for _, m := range moves {
		if m.IsAnnulled() {
			continue
		}
		totals[m.RawMaterialID] = totals[m.RawMaterialID].Add(m.Quantity.Abs())
	}
	out := make([]dto.MaterialConsumptionDTO, 0, len(totals))
	for id, qty := range totals {
		row := dto.MaterialConsumptionDTO{RawMaterialID: id, Quantity: qty, Cost: decimal.Zero, CurrentStock: decimal.Zero}
		rm, err := uc.reader.RawMaterials().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rm != nil {
			row.SKU, row.Name, row.Unit = rm.SKU, rm.Name, rm.Unit
			row.Cost = money.Round2(qty.Mul(rm.CostPerUnit))
			row.CurrentStock = rm.Stock
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].RawMaterialID < out[j].RawMaterialID
	})
	return out, nil
}

// ProductionProjection para cada producto con receta: unidades fabricables con el stock
// actual de materias primas, costo real y margen unitario.
func (uc *UseCase) ProductionProjection(ctx context.Context) ([]dto.ProductionProjectionDTO, error) {
	edges, err := uc.reader.BOM().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := []int64{}
	seen := map[int64]bool{}
	for _, e := range edges {
		if !seen[e.ProductID] {
			seen[e.ProductID] = true
			ids = append(ids, e.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]dto.ProductionProjectionDTO, 0, len(ids))
	for _, id := range ids {
		p, err := uc.reader.Products().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		lines, err := appinv.LoadBOMLines(ctx, uc.reader, id)
		if err != nil {
			return nil, err
		}
		units, _ := inventory.MaxProducible(lines)
		cost := inventory.RealCost(lines)
		out = append(out, dto.ProductionProjectionDTO{
			ProductID: p.ID, SKU: p.SKU, Name: p.Name,
			MaxProducible: units, RealCost: cost, SalePrice: p.SalePrice,
			UnitMargin: money.Round2(p.SalePrice.Sub(cost)),
		})
	}
	return out, nil
}

// SalesSummary totales del rango por medio de pago. Las canceladas solo se cuentan aparte.
func (uc *UseCase) SalesSummary(ctx context.Context, q dto.RangeQuery) (*dto.SalesSummaryDTO, error) {
	r, err := repository.ParseDayRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	return uc.salesSummary(ctx, r)
}

func (uc *UseCase) salesSummary(ctx context.Context, r repository.DateRange) (*dto.SalesSummaryDTO, error) {
	list, err := uc.reader.Sales().List(ctx, repository.SaleFilter{Range: r})
	if err != nil {
		return nil, err
	}
	out := &dto.SalesSummaryDTO{
		From: r.From, To: r.To,
		Subtotal: decimal.Zero, Tax: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero,
	}
	byMethod := map[entity.PaymentMethod]*dto.PaymentBreakdownDTO{}
	for _, s := range list {
		if !s.IsLive() {
			out.CancelledCount++
			continue
		}
		out.Count++
		out.Subtotal = out.Subtotal.Add(s.Subtotal)
		out.Tax = out.Tax.Add(s.Tax)
		out.Discount = out.Discount.Add(s.Discount)
		out.Total = out.Total.Add(s.Total)
		row, ok := byMethod[s.PaymentMethod]
		if !ok {
			row = &dto.PaymentBreakdownDTO{Method: string(s.PaymentMethod), Label: s.PaymentMethod.Label(), Total: decimal.Zero}
			byMethod[s.PaymentMethod] = row
		}
		row.Count++
		row.Total = row.Total.Add(s.Total)
	}
	for _, row := range byMethod {
		out.ByPayment = append(out.ByPayment, *row)
	}
	sort.Slice(out.ByPayment, func(i, j int) bool {
		if !out.ByPayment[i].Total.Equal(out.ByPayment[j].Total) {
			return out.ByPayment[i].Total.GreaterThan(out.ByPayment[j].Total)
		}
		return out.ByPayment[i].Method < out.ByPayment[j].Method
	})
	return out, nil
}

// Dashboard resumen de hoy, del mes en curso y top de productos del mes.
//
// Tres consultas en paralelo:
//  1. salesSummary(hoy)
//  2. salesSummary(mes)
//  3. topProducts(mes, top 5)
func (uc *UseCase) Dashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	today := repository.Day(now)
	month := repository.DateRange{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		To:   today.To,
	}

	// ── Goroutines para paralelizar las consultas ──────────────────────────────
	type summaryResult struct {
		summary *dto.SalesSummaryDTO
		err     error
	}
	type topResult struct {
		top []dto.TopProductDTO
		err error
	}
	todayCh := make(chan summaryResult, 1)
	monthCh := make(chan summaryResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		s, err := uc.salesSummary(ctx, today)
		todayCh <- summaryResult{s, err}
	}()
	go func() {
		s, err := uc.salesSummary(ctx, month)
		monthCh <- summaryResult{s, err}
	}()
	go func() {
		top, err := uc.topProducts(ctx, month, dashboardTopSKUs)
		topCh <- topResult{top, err}
	}()

	t, m, top := <-todayCh, <-monthCh, <-topCh
	if t.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", t.err)
	}
	if m.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del mes: %w", m.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top productos: %w", top.err)
	}
	low, err := uc.reader.Products().ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", err)
	}

	return &dto.DashboardDTO{
		Today:         *t.summary,
		Month:         *m.summary,
		TopProducts:   top.top,
		LowStockCount: len(low),
		DateLabel:     monthLabel(now),
	}, nil
}

// monthLabel etiqueta legible del mes, ej: "Octubre 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

func limitOr(n int) int {
	if n <= 0 {
		return defaultTop
	}
	return n
}
