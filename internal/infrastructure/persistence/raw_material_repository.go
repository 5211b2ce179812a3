package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.RawMaterialRepository = (*rawMaterialRepo)(nil)

type rawMaterialRepo struct {
	c   conn
	ids *identityMap
}

const rawMaterialColumns = `id, sku, name, description, unit, cost_per_unit, stock, min_stock, created_at, updated_at`

func scanRawMaterial(r rowScanner) (*entity.RawMaterial, error) {
	var m entity.RawMaterial
	err := r.Scan(&m.ID, &m.SKU, &m.Name, &m.Description, &m.Unit,
		&m.CostPerUnit, &m.Stock, &m.MinStock,
		timeScanner{&m.CreatedAt}, timeScanner{&m.UpdatedAt})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *rawMaterialRepo) Create(ctx context.Context, m *entity.RawMaterial) error {
	id, err := r.c.insert(ctx, `
		INSERT INTO raw_materials (sku, name, description, unit, cost_per_unit, stock, min_stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SKU, m.Name, m.Description, m.Unit, m.CostPerUnit, m.Stock, m.MinStock,
		tsArg(m.CreatedAt), tsArg(m.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Entity: "materia prima", Key: "sku", Value: m.SKU}
		}
		return fmt.Errorf("insert raw material: %w", err)
	}
	m.ID = id
	r.ids.putMaterial(m)
	return nil
}

// Update actualiza datos de catálogo; no toca stock.
func (r *rawMaterialRepo) Update(ctx context.Context, m *entity.RawMaterial) error {
	res, err := r.c.exec(ctx, `
		UPDATE raw_materials SET sku = ?, name = ?, description = ?, unit = ?, cost_per_unit = ?, min_stock = ?, updated_at = ?
		WHERE id = ?`,
		m.SKU, m.Name, m.Description, m.Unit, m.CostPerUnit, m.MinStock, tsArg(m.UpdatedAt), m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Entity: "materia prima", Key: "sku", Value: m.SKU}
		}
		return fmt.Errorf("update raw material: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if cur := r.ids.material(m.ID); cur != nil && cur != m {
		stock := cur.Stock
		*cur = *m
		cur.Stock = stock
	}
	return nil
}

func (r *rawMaterialRepo) UpdateStock(ctx context.Context, id int64, stock decimal.Decimal) error {
	now := time.Now()
	res, err := r.c.exec(ctx, `UPDATE raw_materials SET stock = ?, updated_at = ? WHERE id = ?`, stock, tsArg(now), id)
	if err != nil {
		return fmt.Errorf("update raw material stock: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if cur := r.ids.material(id); cur != nil {
		cur.Stock = stock
		cur.UpdatedAt = now.UTC()
	}
	return nil
}

func (r *rawMaterialRepo) UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error {
	now := time.Now()
	res, err := r.c.exec(ctx, `UPDATE raw_materials SET cost_per_unit = ?, updated_at = ? WHERE id = ?`, cost, tsArg(now), id)
	if err != nil {
		return fmt.Errorf("update raw material cost: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if cur := r.ids.material(id); cur != nil {
		cur.CostPerUnit = cost
		cur.UpdatedAt = now.UTC()
	}
	return nil
}

func (r *rawMaterialRepo) GetByID(ctx context.Context, id int64) (*entity.RawMaterial, error) {
	if m := r.ids.material(id); m != nil {
		return m, nil
	}
	return r.get(ctx, `SELECT `+rawMaterialColumns+` FROM raw_materials WHERE id = ?`, id)
}

func (r *rawMaterialRepo) GetBySKU(ctx context.Context, sku string) (*entity.RawMaterial, error) {
	return r.get(ctx, `SELECT `+rawMaterialColumns+` FROM raw_materials WHERE sku = ?`, sku)
}

func (r *rawMaterialRepo) GetByName(ctx context.Context, name string) (*entity.RawMaterial, error) {
	return r.get(ctx, `SELECT `+rawMaterialColumns+` FROM raw_materials WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1`, name)
}

func (r *rawMaterialRepo) get(ctx context.Context, query string, args ...any) (*entity.RawMaterial, error) {
	m, err := scanRawMaterial(r.c.queryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get raw material: %w", err)
	}
	return r.ids.putMaterial(m), nil
}

func (r *rawMaterialRepo) List(ctx context.Context) ([]*entity.RawMaterial, error) {
	rows, err := r.c.query(ctx, `SELECT `+rawMaterialColumns+` FROM raw_materials ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.RawMaterial
	for rows.Next() {
		m, err := scanRawMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		list = append(list, r.ids.putMaterial(m))
	}
	return list, rows.Err()
}

func (r *rawMaterialRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.c.exec(ctx, `DELETE FROM raw_materials WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.DependentRowsError{Entity: "materia prima"}
		}
		return fmt.Errorf("delete raw material: %w", err)
	}
	r.ids.dropMaterial(id)
	return requireAffected(res)
}
