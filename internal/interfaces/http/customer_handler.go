package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/catalog"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
)

// CustomerHandler maneja las peticiones HTTP de clientes.
type CustomerHandler struct {
	uc *catalog.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *catalog.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// Create POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
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

// List busca por nombre, documento o email.
// GET /api/customers?q=
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.CustomerRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete desvincula las ventas del cliente antes de borrarlo.
// DELETE /api/customers/:id
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
