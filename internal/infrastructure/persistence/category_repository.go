package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.CategoryRepository = (*categoryRepo)(nil)

type categoryRepo struct {
	c conn
}

const categoryColumns = `id, name, description, created_at, updated_at`

func scanCategory(r rowScanner) (*entity.Category, error) {
	var c entity.Category
	if err := r.Scan(&c.ID, &c.Name, &c.Description, timeScanner{&c.CreatedAt}, timeScanner{&c.UpdatedAt}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) Create(ctx context.Context, c *entity.Category) error {
	id, err := r.c.insert(ctx,
		`INSERT INTO categories (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.Name, c.Description, tsArg(c.CreatedAt), tsArg(c.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Entity: "categoría", Key: "nombre", Value: c.Name}
		}
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID = id
	return nil
}

func (r *categoryRepo) Update(ctx context.Context, c *entity.Category) error {
	res, err := r.c.exec(ctx,
		`UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Description, tsArg(c.UpdatedAt), c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Entity: "categoría", Key: "nombre", Value: c.Name}
		}
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res)
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	c, err := scanCategory(r.c.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	c, err := scanCategory(r.c.queryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE LOWER(name) = LOWER(?)`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.c.query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.c.exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.DependentRowsError{Entity: "categoría"}
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}

// requireAffected convierte "0 filas afectadas" en ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func affected(res sql.Result) int64 {
	n, _ := res.RowsAffected()
	return n
}
