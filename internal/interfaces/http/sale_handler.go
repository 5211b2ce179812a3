package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
)

// SaleHandler maneja las peticiones HTTP de ventas.
type SaleHandler struct {
	uc *sales.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create registra la venta, asigna factura y descuenta inventario.
// POST /api/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/sales?from=&to=&status=&customer_id=&exclude_cancelled=&limit=&offset=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var q dto.SaleQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByInvoice GET /api/sales/invoice/:number
func (h *SaleHandler) GetByInvoice(c *fiber.Ctx) error {
	out, err := h.uc.GetByInvoice(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Edit reemplaza las líneas de una venta sin facturar.
// PUT /api/sales/:id
func (h *SaleHandler) Edit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.EditSaleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Edit(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Cancel POST /api/sales/:id/cancel
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Cancel(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete DELETE /api/sales/:id
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
