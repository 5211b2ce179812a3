package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	appinv "github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// ProductUseCase casos de uso para productos y su receta. El stock cambia solo vía movimientos.
type ProductUseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
	engine *appinv.Engine
	log    zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx repository.TxRunner, reader repository.UnitOfWork, engine *appinv.Engine, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{tx: tx, reader: reader, engine: engine, log: log}
}

// Create crea el producto con su receta. Si trae stock inicial registra la entrada de apertura.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductDetailResponse, error) {
	if err := validatePrices(in.CostPrice, in.SalePrice); err != nil {
		return nil, err
	}
	if in.Stock < 0 || in.MinStock < 0 {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "stock", "no puede ser negativo")
	}
	edges, err := toEdges(in.BOM)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p := &entity.Product{
		SKU:         strings.TrimSpace(in.SKU),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ImagePath:   in.ImagePath,
		CategoryID:  in.CategoryID,
		CostPrice:   in.CostPrice,
		SalePrice:   in.SalePrice,
		MinStock:    in.MinStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var out *dto.ProductDetailResponse
	err = uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		if err := CreateProduct(ctx, uow, uc.engine, p, in.Stock, edges); err != nil {
			return err
		}
		out, err = productDetail(ctx, uow, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("product_id", p.ID).Str("sku", p.SKU).Int("bom_edges", len(edges)).Msg("producto creado")
	return out, nil
}

// CreateProduct valida unicidad y referencias, inserta el producto, guarda la receta y
// registra el stock inicial. Lo usan el alta manual y la importación.
func CreateProduct(ctx context.Context, uow repository.UnitOfWork, engine *appinv.Engine,
	p *entity.Product, initialStock int64, edges []entity.BOMEdge,
) error {
	if p.SKU == "" || p.Name == "" {
		return domain.Invalid(domain.ErrInvalidInput, "sku", "SKU y nombre son obligatorios")
	}
	existing, err := uow.Products().GetBySKU(ctx, p.SKU)
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.DuplicateKeyError{Entity: "producto", Key: "sku", Value: p.SKU}
	}
	if err := checkCategory(ctx, uow, p.CategoryID); err != nil {
		return err
	}
	if err := checkMaterials(ctx, uow, edges); err != nil {
		return err
	}
	p.Stock = 0
	if err := uow.Products().Create(ctx, p); err != nil {
		return err
	}
	if err := uow.BOM().Replace(ctx, p.ID, edges); err != nil {
		return err
	}
	if initialStock > 0 {
		_, err := engine.ApplyDelta(ctx, uow, appinv.DeltaRequest{
			Entity: appinv.EntityProduct, EntityID: p.ID, ProductKind: entity.ProductEntry,
			Quantity: decimal.NewFromInt(initialStock), Reason: "Stock inicial",
			Reference: fmt.Sprintf(RefInitProduct, p.ID),
		})
		return err
	}
	return nil
}

// Update edita los datos del producto y, si BOM no es nil, reemplaza la receta completa.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductDetailResponse, error) {
	if in.SKU != nil && strings.TrimSpace(*in.SKU) == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "sku", "SKU y nombre son obligatorios")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "name", "SKU y nombre son obligatorios")
	}
	if in.MinStock != nil && *in.MinStock < 0 {
		return nil, domain.Invalid(domain.ErrInvalidQuantity, "min_stock", "no puede ser negativo")
	}
	var edges []entity.BOMEdge
	if in.BOM != nil {
		var err error
		if edges, err = toEdges(in.BOM); err != nil {
			return nil, err
		}
	}
	var out *dto.ProductDetailResponse
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		p, err := uow.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
		}
		if in.SKU != nil {
			sku := strings.TrimSpace(*in.SKU)
			if other, err := uow.Products().GetBySKU(ctx, sku); err != nil {
				return err
			} else if other != nil && other.ID != id {
				return &domain.DuplicateKeyError{Entity: "producto", Key: "sku", Value: sku}
			}
			p.SKU = sku
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.ImagePath != nil {
			p.ImagePath = *in.ImagePath
		}
		if in.ClearCategory {
			p.CategoryID = nil
		} else if in.CategoryID != nil {
			if err := checkCategory(ctx, uow, in.CategoryID); err != nil {
				return err
			}
			p.CategoryID = in.CategoryID
		}
		if in.CostPrice != nil {
			p.CostPrice = *in.CostPrice
		}
		if in.SalePrice != nil {
			p.SalePrice = *in.SalePrice
		}
		if in.MinStock != nil {
			p.MinStock = *in.MinStock
		}
		if err := validatePrices(p.CostPrice, p.SalePrice); err != nil {
			return err
		}
		p.UpdatedAt = time.Now()
		if err := uow.Products().Update(ctx, p); err != nil {
			return err
		}
		if in.BOM != nil {
			if err := checkMaterials(ctx, uow, edges); err != nil {
				return err
			}
			if err := uow.BOM().Replace(ctx, p.ID, edges); err != nil {
				return err
			}
		}
		out, err = productDetail(ctx, uow, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID producto con su receta, costo real y capacidad de producción.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductDetailResponse, error) {
	p, err := uc.reader.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	return productDetail(ctx, uc.reader, p)
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	f := repository.ProductFilter{Search: strings.TrimSpace(q.Search), Limit: q.Limit, Offset: q.Offset}
	if q.CategoryID > 0 {
		f.CategoryID = &q.CategoryID
	}
	list, err := uc.reader.Products().List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, ToProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: len(items)}}, nil
}

// Delete borra el producto con su historial y su receta. Falla con DependentRowsError si
// hay ventas o gastos que lo referencian.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) (*dto.DeleteResult, error) {
	res := &dto.DeleteResult{ID: id}
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		p, err := uow.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
		}
		lines, err := uow.Sales().CountLinesByProduct(ctx, id)
		if err != nil {
			return err
		}
		expenses, err := uow.Expenses().CountByProduct(ctx, id)
		if err != nil {
			return err
		}
		if n := lines + expenses; n > 0 {
			return &domain.DependentRowsError{Entity: "producto " + p.Name, Count: n}
		}
		if res.MovementsRemoved, err = uow.ProductMovements().DeleteByProduct(ctx, id); err != nil {
			return err
		}
		if res.BOMEdgesRemoved, err = uow.BOM().DeleteByProduct(ctx, id); err != nil {
			return err
		}
		return uow.Products().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("product_id", id).Int64("movements", res.MovementsRemoved).Msg("producto eliminado")
	return res, nil
}

func validatePrices(cost, sale decimal.Decimal) error {
	if cost.IsNegative() {
		return domain.Invalid(domain.ErrInvalidInput, "cost_price", "no puede ser negativo")
	}
	if sale.IsNegative() {
		return domain.Invalid(domain.ErrInvalidInput, "sale_price", "no puede ser negativo")
	}
	return nil
}

// toEdges valida cantidades y materias primas repetidas.
func toEdges(lines []dto.BOMLineRequest) ([]entity.BOMEdge, error) {
	seen := make(map[int64]bool, len(lines))
	edges := make([]entity.BOMEdge, 0, len(lines))
	for _, l := range lines {
		if !l.QtyNeeded.IsPositive() {
			return nil, domain.Invalid(domain.ErrInvalidQuantity, "qty_needed",
				fmt.Sprintf("la cantidad de la materia prima %d debe ser mayor que cero", l.RawMaterialID))
		}
		if seen[l.RawMaterialID] {
			return nil, &domain.DuplicateKeyError{Entity: "receta", Key: "materia prima", Value: fmt.Sprint(l.RawMaterialID)}
		}
		seen[l.RawMaterialID] = true
		edges = append(edges, entity.BOMEdge{RawMaterialID: l.RawMaterialID, QtyNeeded: l.QtyNeeded})
	}
	inventory.SortByMaterial(edges)
	return edges, nil
}

func checkCategory(ctx context.Context, uow repository.UnitOfWork, id *int64) error {
	if id == nil {
		return nil
	}
	c, err := uow.Categories().GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.Invalid(domain.ErrInvalidReference, "category_id", fmt.Sprintf("la categoría %d no existe", *id))
	}
	return nil
}

func checkMaterials(ctx context.Context, uow repository.UnitOfWork, edges []entity.BOMEdge) error {
	for _, e := range edges {
		rm, err := uow.RawMaterials().GetByID(ctx, e.RawMaterialID)
		if err != nil {
			return err
		}
		if rm == nil {
			return domain.Invalid(domain.ErrInvalidReference, "raw_material_id",
				fmt.Sprintf("la materia prima %d no existe", e.RawMaterialID))
		}
	}
	return nil
}

func productDetail(ctx context.Context, uow repository.UnitOfWork, p *entity.Product) (*dto.ProductDetailResponse, error) {
	lines, err := appinv.LoadBOMLines(ctx, uow, p.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductDetailResponse{
		ProductResponse: ToProductResponse(p),
		BOM:             make([]dto.BOMLineResponse, 0, len(lines)),
		RealCost:        inventory.RealCost(lines),
	}
	for _, l := range lines {
		if l.Material == nil {
			continue
		}
		out.BOM = append(out.BOM, dto.BOMLineResponse{
			RawMaterialID: l.Material.ID,
			SKU:           l.Material.SKU,
			Name:          l.Material.Name,
			Unit:          l.Material.Unit,
			QtyNeeded:     l.Edge.QtyNeeded,
			CostPerUnit:   l.Material.CostPerUnit,
			LineCost:      l.Edge.QtyNeeded.Mul(l.Material.CostPerUnit).Round(2),
			MaterialStock: l.Material.Stock,
		})
	}
	if n, limited := inventory.MaxProducible(lines); limited {
		out.MaxProducible = &n
	}
	return out, nil
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		ImagePath:   p.ImagePath,
		CategoryID:  p.CategoryID,
		CostPrice:   p.CostPrice,
		SalePrice:   p.SalePrice,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		IsLowStock:  p.IsLowStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
