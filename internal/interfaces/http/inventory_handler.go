package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// InventoryHandler ajustes manuales, operaciones masivas e historial (rutas protegidas por la puerta).
type InventoryHandler struct {
	uc            *inventory.UseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment}
}

// Adjust POST /api/inventory/adjust
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Adjust(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// TopUp suma la misma cantidad a todos los productos o materias primas.
// POST /api/inventory/top-up
func (h *InventoryHandler) TopUp(c *fiber.Ctx) error {
	var in dto.BulkTopUpRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.BulkTopUp(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Reset lleva a cero el stock de todos los productos.
// POST /api/inventory/reset
func (h *InventoryHandler) Reset(c *fiber.Ctx) error {
	out, err := h.uc.ResetProductsToZero(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ProductHistory GET /api/inventory/products/:id/movements
func (h *InventoryHandler) ProductHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.ProductHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// MaterialHistory GET /api/inventory/raw-materials/:id/movements
func (h *InventoryHandler) MaterialHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.MaterialHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Movements por rango (?from=&to=) o por referencia (?reference=SALE-12).
// GET /api/inventory/movements
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	if ref := c.Query("reference"); ref != "" {
		out, err := h.uc.MovementsByReference(c.UserContext(), ref)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
	var q dto.RangeQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	r, err := repository.ParseDayRange(q.From, q.To)
	if err != nil {
		return err
	}
	out, err := h.uc.MovementsByRange(c.UserContext(), r)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Annotate PUT /api/inventory/movements/:entity/:id/note
func (h *InventoryHandler) Annotate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.AnnotateMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if err := h.uc.Annotate(c.UserContext(), c.Params("entity"), id, in.Note); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Audit GET /api/inventory/audit
func (h *InventoryHandler) Audit(c *fiber.Ctx) error {
	out, err := h.uc.Audit(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Replenishment GET /api/inventory/replenishment
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}
