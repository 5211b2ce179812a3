package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/sales"
)

// InvoiceHandler representación imprimible de una venta.
type InvoiceHandler struct {
	uc *sales.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *sales.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// HTML recibo térmico en HTML.
// GET /api/sales/:id/invoice.html
func (h *InvoiceHandler) HTML(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	body, err := h.uc.RenderInvoiceHTML(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(body)
}

// PDF descarga el recibo en PDF.
// GET /api/sales/:id/invoice.pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	pdf, filename, err := h.uc.RenderInvoicePDF(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Confirm marca la factura como impresa; la venta deja de ser editable.
// POST /api/sales/:id/invoice/confirm
func (h *InvoiceHandler) Confirm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.ConfirmInvoice(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
