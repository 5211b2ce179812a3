package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/reporting"
)

// ReportHandler reportes de solo lectura.
type ReportHandler struct {
	uc *reporting.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// TopProducts GET /api/reports/top-products?from=&to=&limit=
func (h *ReportHandler) TopProducts(c *fiber.Ctx) error {
	var q dto.TopQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.TopProducts(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// TopCustomers GET /api/reports/top-customers?from=&to=&limit=
func (h *ReportHandler) TopCustomers(c *fiber.Ctx) error {
	var q dto.TopQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.TopCustomers(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// LowStock productos y materias primas en o bajo su mínimo.
// GET /api/reports/low-stock
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	ctx := c.UserContext()
	products, err := h.uc.LowStockProducts(ctx)
	if err != nil {
		return err
	}
	materials, err := h.uc.LowStockMaterials(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products, "materials": materials})
}

// MaterialConsumption GET /api/reports/material-consumption?from=&to=
func (h *ReportHandler) MaterialConsumption(c *fiber.Ctx) error {
	var q dto.RangeQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.MaterialConsumption(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Production unidades fabricables con el stock actual de insumos.
// GET /api/reports/production
func (h *ReportHandler) Production(c *fiber.Ctx) error {
	out, err := h.uc.ProductionProjection(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SalesSummary GET /api/reports/sales-summary?from=&to=
func (h *ReportHandler) SalesSummary(c *fiber.Ctx) error {
	var q dto.RangeQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.SalesSummary(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Dashboard GET /api/reports/dashboard
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}
