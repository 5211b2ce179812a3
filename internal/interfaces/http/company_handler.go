package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/catalog"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
)

// CompanyHandler datos de la empresa (encabezado de la factura) y categorías.
type CompanyHandler struct {
	company    *catalog.CompanyUseCase
	categories *catalog.CategoryUseCase
}

// NewCompanyHandler construye el handler.
func NewCompanyHandler(company *catalog.CompanyUseCase, categories *catalog.CategoryUseCase) *CompanyHandler {
	return &CompanyHandler{company: company, categories: categories}
}

// Get GET /api/company
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	out, err := h.company.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Save PUT /api/company
func (h *CompanyHandler) Save(c *fiber.Ctx) error {
	var in dto.CompanyRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.company.Save(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CreateCategory POST /api/categories
func (h *CompanyHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.categories.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCategories GET /api/categories
func (h *CompanyHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetCategory GET /api/categories/:id
func (h *CompanyHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.categories.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateCategory PUT /api/categories/:id
func (h *CompanyHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.CategoryRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.categories.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteCategory DELETE /api/categories/:id
func (h *CompanyHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.categories.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
