package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)

// productRepo usable con pool o tx; dentro de tx comparte el mapa de identidad.
type productRepo struct {
	c   conn
	ids *identityMap
}

const productColumns = `id, sku, name, description, image_path, category_id, cost_price, sale_price, stock, min_stock, created_at, updated_at`

func scanProduct(r rowScanner) (*entity.Product, error) {
	var (
		p   entity.Product
		img sql.NullString
		cat sql.NullInt64
	)
	err := r.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &img, &cat,
		&p.CostPrice, &p.SalePrice, &p.Stock, &p.MinStock,
		timeScanner{&p.CreatedAt}, timeScanner{&p.UpdatedAt})
	if err != nil {
		return nil, err
	}
	p.ImagePath = img.String
	p.CategoryID = idPtr(cat)
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	id, err := r.c.insert(ctx, `
		INSERT INTO products (sku, name, description, image_path, category_id, cost_price, sale_price, stock, min_stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.SKU, p.Name, p.Description, nullStr(p.ImagePath), nullID(p.CategoryID),
		p.CostPrice, p.SalePrice, p.Stock, p.MinStock, tsArg(p.CreatedAt), tsArg(p.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Entity: "producto", Key: "sku", Value: p.SKU}
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid(domain.ErrInvalidReference, "category_id", "la categoría no existe")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	r.ids.putProduct(p)
	return nil
}

// Update actualiza los datos de catálogo. No modifica el stock.
func (r *productRepo) Update(ctx context.Context, p *entity.Product) error {
	res, err := r.c.exec(ctx, `
		UPDATE products SET sku = ?, name = ?, description = ?, image_path = ?, category_id = ?,
			cost_price = ?, sale_price = ?, min_stock = ?, updated_at = ?
		WHERE id = ?`,
		p.SKU, p.Name, p.Description, nullStr(p.ImagePath), nullID(p.CategoryID),
		p.CostPrice, p.SalePrice, p.MinStock, tsArg(p.UpdatedAt), p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Entity: "producto", Key: "sku", Value: p.SKU}
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid(domain.ErrInvalidReference, "category_id", "la categoría no existe")
		}
		return fmt.Errorf("update product: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if cur := r.ids.product(p.ID); cur != nil && cur != p {
		stock := cur.Stock
		*cur = *p
		cur.Stock = stock
	}
	return nil
}

func (r *productRepo) UpdateStock(ctx context.Context, id int64, stock int64) error {
	now := time.Now()
	res, err := r.c.exec(ctx, `UPDATE products SET stock = ?, updated_at = ? WHERE id = ?`, stock, tsArg(now), id)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if cur := r.ids.product(id); cur != nil {
		cur.Stock = stock
		cur.UpdatedAt = now.UTC()
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	if p := r.ids.product(id); p != nil {
		return p, nil
	}
	p, err := scanProduct(r.c.queryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return r.ids.putProduct(p), nil
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.c.queryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku = ?`, sku))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return r.ids.putProduct(p), nil
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	var args []any
	if f.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *f.CategoryID)
	}
	if f.Search != "" {
		query += ` AND (LOWER(name) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?))`
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY name, id`
	lim, args := limitClause(f.Limit, f.Offset, args)
	return r.list(ctx, query+lim, args...)
}

func (r *productRepo) ListLowStock(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE stock <= min_stock ORDER BY stock, name`)
}

func (r *productRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, r.ids.putProduct(p))
	}
	return list, rows.Err()
}

func (r *productRepo) ClearCategory(ctx context.Context, categoryID int64) (int64, error) {
	res, err := r.c.exec(ctx, `UPDATE products SET category_id = NULL, updated_at = ? WHERE category_id = ?`,
		tsArg(time.Now()), categoryID)
	if err != nil {
		return 0, fmt.Errorf("clear product category: %w", err)
	}
	for _, p := range r.idsProducts() {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
		}
	}
	return affected(res), nil
}

func (r *productRepo) idsProducts() map[int64]*entity.Product {
	if r.ids == nil {
		return nil
	}
	return r.ids.products
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.c.exec(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.DependentRowsError{Entity: "producto"}
		}
		return fmt.Errorf("delete product: %w", err)
	}
	r.ids.dropProduct(id)
	return requireAffected(res)
}
