package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/catalog"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
)

// RawMaterialHandler maneja las peticiones HTTP de materias primas.
type RawMaterialHandler struct {
	uc *catalog.RawMaterialUseCase
}

// NewRawMaterialHandler construye el handler.
func NewRawMaterialHandler(uc *catalog.RawMaterialUseCase) *RawMaterialHandler {
	return &RawMaterialHandler{uc: uc}
}

// Create POST /api/raw-materials
func (h *RawMaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRawMaterialRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/raw-materials/:id
func (h *RawMaterialHandler) GetByID(c *fiber.Ctx) error {
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

// List GET /api/raw-materials
func (h *RawMaterialHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update PUT /api/raw-materials/:id
func (h *RawMaterialHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateRawMaterialRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete DELETE /api/raw-materials/:id
func (h *RawMaterialHandler) Delete(c *fiber.Ctx) error {
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
