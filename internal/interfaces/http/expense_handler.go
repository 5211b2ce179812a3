package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/expense"
)

// ExpenseHandler maneja las peticiones HTTP de gastos.
type ExpenseHandler struct {
	uc *expense.UseCase
}

// NewExpenseHandler construye el handler.
func NewExpenseHandler(uc *expense.UseCase) *ExpenseHandler {
	return &ExpenseHandler{uc: uc}
}

// Create POST /api/expenses
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExpenseRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/expenses?from=&to=
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	var q dto.RangeQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Summary totales por motivo en el rango.
// GET /api/expenses/summary?from=&to=
func (h *ExpenseHandler) Summary(c *fiber.Ctx) error {
	var q dto.RangeQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.Summary(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID GET /api/expenses/:id
func (h *ExpenseHandler) GetByID(c *fiber.Ctx) error {
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

// Delete devuelve al inventario lo que el gasto había descontado.
// DELETE /api/expenses/:id
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
