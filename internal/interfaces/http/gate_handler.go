package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/gate"
)

// GateHandler contraseña de la vista de inventario.
type GateHandler struct {
	uc *gate.UseCase
}

// NewGateHandler construye el handler.
func NewGateHandler(uc *gate.UseCase) *GateHandler {
	return &GateHandler{uc: uc}
}

// Status GET /api/gate
func (h *GateHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SetPassword PUT /api/gate/password
func (h *GateHandler) SetPassword(c *fiber.Ctx) error {
	var in dto.SetGatePasswordRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if err := h.uc.SetPassword(c.UserContext(), in); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Unlock POST /api/gate/unlock
func (h *GateHandler) Unlock(c *fiber.Ctx) error {
	var in dto.UnlockRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Unlock(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
