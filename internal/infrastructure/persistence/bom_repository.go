package persistence

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.BOMRepository = (*bomRepo)(nil)

// bomRepo tabla product_materials.
type bomRepo struct {
	c conn
}

func (r *bomRepo) ListByProduct(ctx context.Context, productID int64) ([]entity.BOMEdge, error) {
	return r.list(ctx, `SELECT id, product_id, raw_material_id, qty_needed FROM product_materials
		WHERE product_id = ? ORDER BY raw_material_id`, productID)
}

func (r *bomRepo) ListAll(ctx context.Context) ([]entity.BOMEdge, error) {
	return r.list(ctx, `SELECT id, product_id, raw_material_id, qty_needed FROM product_materials
		ORDER BY product_id, raw_material_id`)
}

func (r *bomRepo) list(ctx context.Context, query string, args ...any) ([]entity.BOMEdge, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bom: %w", err)
	}
	defer rows.Close()
	var edges []entity.BOMEdge
	for rows.Next() {
		var e entity.BOMEdge
		if err := rows.Scan(&e.ID, &e.ProductID, &e.RawMaterialID, &e.QtyNeeded); err != nil {
			return nil, fmt.Errorf("scan bom: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Replace debe llamarse dentro de la unidad de trabajo del guardado del producto.
func (r *bomRepo) Replace(ctx context.Context, productID int64, edges []entity.BOMEdge) error {
	if _, err := r.DeleteByProduct(ctx, productID); err != nil {
		return err
	}
	for i := range edges {
		e := &edges[i]
		e.ProductID = productID
		id, err := r.c.insert(ctx,
			`INSERT INTO product_materials (product_id, raw_material_id, qty_needed) VALUES (?, ?, ?)`,
			productID, e.RawMaterialID, e.QtyNeeded)
		if err != nil {
			if isUniqueViolation(err) {
				return &domain.DuplicateKeyError{Entity: "receta", Key: "materia prima", Value: fmt.Sprint(e.RawMaterialID)}
			}
			if isForeignKeyViolation(err) {
				return domain.Invalid(domain.ErrInvalidReference, "raw_material_id", fmt.Sprintf("materia prima %d no existe", e.RawMaterialID))
			}
			return fmt.Errorf("insert bom edge: %w", err)
		}
		e.ID = id
	}
	return nil
}

func (r *bomRepo) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM product_materials WHERE product_id = ?`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete bom by product: %w", err)
	}
	return affected(res), nil
}

func (r *bomRepo) DeleteByMaterial(ctx context.Context, rawMaterialID int64) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM product_materials WHERE raw_material_id = ?`, rawMaterialID)
	if err != nil {
		return 0, fmt.Errorf("delete bom by material: %w", err)
	}
	return affected(res), nil
}
