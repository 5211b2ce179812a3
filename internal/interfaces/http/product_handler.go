package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/catalog"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
)

// ProductHandler maneja las peticiones HTTP de productos terminados.
type ProductHandler struct {
	uc *catalog.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create crea el producto con su stock inicial y su receta.
// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/products/:id
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
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

// List filtra por categoría o texto, paginado.
// GET /api/products?category_id=&q=&limit=&offset=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var q dto.ProductQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateProductRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete borra el producto junto con su historial y su receta.
// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
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
