package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var (
	_ repository.ProductMovementRepository  = (*productMovementRepo)(nil)
	_ repository.MaterialMovementRepository = (*materialMovementRepo)(nil)
)

// ── Productos ─────────────────────────────────────────────────────────────────

type productMovementRepo struct {
	c conn
}

const productMovementColumns = `id, product_id, movement_type, quantity, previous_stock, new_stock,
	reason, edit_reason, user_note, reference, created_at`

func scanProductMovement(r rowScanner) (*entity.ProductMovement, error) {
	var (
		m                     entity.ProductMovement
		kind                  string
		editReason, note, ref sql.NullString
	)
	err := r.Scan(&m.ID, &m.ProductID, &kind, &m.Quantity, &m.PreviousStock, &m.NewStock,
		&m.Reason, &editReason, &note, &ref, timeScanner{&m.CreatedAt})
	if err != nil {
		return nil, err
	}
	m.Kind = entity.ProductMovementKind(kind)
	m.EditReason, m.UserNote, m.Reference = editReason.String, note.String, ref.String
	return &m, nil
}

func (r *productMovementRepo) Append(ctx context.Context, m *entity.ProductMovement) error {
	id, err := r.c.insert(ctx, `
		INSERT INTO product_movements (product_id, movement_type, quantity, previous_stock, new_stock,
			reason, edit_reason, user_note, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ProductID, string(m.Kind), m.Quantity, m.PreviousStock, m.NewStock,
		m.Reason, nullStr(m.EditReason), nullStr(m.UserNote), nullStr(m.Reference), tsArg(m.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid(domain.ErrInvalidReference, "product_id", "el producto no existe")
		}
		return fmt.Errorf("insert product movement: %w", err)
	}
	m.ID = id
	return nil
}

func (r *productMovementRepo) GetByID(ctx context.Context, id int64) (*entity.ProductMovement, error) {
	m, err := scanProductMovement(r.c.queryRow(ctx,
		`SELECT `+productMovementColumns+` FROM product_movements WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product movement: %w", err)
	}
	return m, nil
}

func (r *productMovementRepo) SetUserNote(ctx context.Context, id int64, note string) error {
	res, err := r.c.exec(ctx, `UPDATE product_movements SET user_note = ? WHERE id = ?`, nullStr(note), id)
	if err != nil {
		return fmt.Errorf("set product movement note: %w", err)
	}
	return requireAffected(res)
}

func (r *productMovementRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.ProductMovement, error) {
	return r.list(ctx, `SELECT `+productMovementColumns+` FROM product_movements WHERE product_id = ? ORDER BY id`, productID)
}

func (r *productMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.ProductMovement, error) {
	return r.list(ctx, `SELECT `+productMovementColumns+` FROM product_movements WHERE reference = ? ORDER BY id`, reference)
}

func (r *productMovementRepo) ListByRange(ctx context.Context, rg repository.DateRange) ([]*entity.ProductMovement, error) {
	rng, args := rangeClause("created_at", rg, nil)
	return r.list(ctx, `SELECT `+productMovementColumns+` FROM product_movements WHERE 1=1`+rng+` ORDER BY created_at, id`, args...)
}

func (r *productMovementRepo) SumByProduct(ctx context.Context, productID int64) (int64, error) {
	var sum int64
	err := r.c.queryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM product_movements WHERE product_id = ?`, productID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum product movements: %w", err)
	}
	return sum, nil
}

func (r *productMovementRepo) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM product_movements WHERE product_id = ?`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete product movements: %w", err)
	}
	return affected(res), nil
}

func (r *productMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ProductMovement, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list product movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductMovement
	for rows.Next() {
		m, err := scanProductMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ── Materias primas ───────────────────────────────────────────────────────────

type materialMovementRepo struct {
	c conn
}

const materialMovementColumns = `id, raw_material_id, movement_type, quantity, previous_stock, new_stock,
	reason, edit_reason, user_note, reference, created_at`

func scanMaterialMovement(r rowScanner) (*entity.MaterialMovement, error) {
	var (
		m                     entity.MaterialMovement
		kind                  string
		editReason, note, ref sql.NullString
	)
	err := r.Scan(&m.ID, &m.RawMaterialID, &kind, &m.Quantity, &m.PreviousStock, &m.NewStock,
		&m.Reason, &editReason, &note, &ref, timeScanner{&m.CreatedAt})
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MaterialMovementKind(kind)
	m.EditReason, m.UserNote, m.Reference = editReason.String, note.String, ref.String
	return &m, nil
}

func (r *materialMovementRepo) Append(ctx context.Context, m *entity.MaterialMovement) error {
	id, err := r.c.insert(ctx, `
		INSERT INTO raw_material_movements (raw_material_id, movement_type, quantity, previous_stock, new_stock,
			reason, edit_reason, user_note, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RawMaterialID, string(m.Kind), m.Quantity, m.PreviousStock, m.NewStock,
		m.Reason, nullStr(m.EditReason), nullStr(m.UserNote), nullStr(m.Reference), tsArg(m.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid(domain.ErrInvalidReference, "raw_material_id", "la materia prima no existe")
		}
		return fmt.Errorf("insert raw material movement: %w", err)
	}
	m.ID = id
	return nil
}

func (r *materialMovementRepo) GetByID(ctx context.Context, id int64) (*entity.MaterialMovement, error) {
	m, err := scanMaterialMovement(r.c.queryRow(ctx,
		`SELECT `+materialMovementColumns+` FROM raw_material_movements WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get raw material movement: %w", err)
	}
	return m, nil
}

func (r *materialMovementRepo) SetUserNote(ctx context.Context, id int64, note string) error {
	res, err := r.c.exec(ctx, `UPDATE raw_material_movements SET user_note = ? WHERE id = ?`, nullStr(note), id)
	if err != nil {
		return fmt.Errorf("set raw material movement note: %w", err)
	}
	return requireAffected(res)
}

func (r *materialMovementRepo) ListByMaterial(ctx context.Context, rawMaterialID int64) ([]*entity.MaterialMovement, error) {
	return r.list(ctx, `SELECT `+materialMovementColumns+` FROM raw_material_movements WHERE raw_material_id = ? ORDER BY id`, rawMaterialID)
}

func (r *materialMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.MaterialMovement, error) {
	return r.list(ctx, `SELECT `+materialMovementColumns+` FROM raw_material_movements WHERE reference = ? ORDER BY id`, reference)
}

func (r *materialMovementRepo) ListByRange(ctx context.Context, rg repository.DateRange) ([]*entity.MaterialMovement, error) {
	rng, args := rangeClause("created_at", rg, nil)
	return r.list(ctx, `SELECT `+materialMovementColumns+` FROM raw_material_movements WHERE 1=1`+rng+` ORDER BY created_at, id`, args...)
}

func (r *materialMovementRepo) ListByKind(ctx context.Context, kind entity.MaterialMovementKind, rg repository.DateRange) ([]*entity.MaterialMovement, error) {
	rng, args := rangeClause("created_at", rg, []any{string(kind)})
	return r.list(ctx, `SELECT `+materialMovementColumns+` FROM raw_material_movements WHERE movement_type = ?`+rng+` ORDER BY created_at, id`, args...)
}

// SumByMaterial suma en Go: en SQLite las cantidades son texto decimal.
func (r *materialMovementRepo) SumByMaterial(ctx context.Context, rawMaterialID int64) (decimal.Decimal, error) {
	rows, err := r.c.query(ctx, `SELECT quantity FROM raw_material_movements WHERE raw_material_id = ?`, rawMaterialID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum raw material movements: %w", err)
	}
	defer rows.Close()
	sum := decimal.Zero
	for rows.Next() {
		var q decimal.Decimal
		if err := rows.Scan(&q); err != nil {
			return decimal.Zero, fmt.Errorf("scan quantity: %w", err)
		}
		sum = sum.Add(q)
	}
	return sum, rows.Err()
}

func (r *materialMovementRepo) DeleteByMaterial(ctx context.Context, rawMaterialID int64) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM raw_material_movements WHERE raw_material_id = ?`, rawMaterialID)
	if err != nil {
		return 0, fmt.Errorf("delete raw material movements: %w", err)
	}
	return affected(res), nil
}

func (r *materialMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.MaterialMovement, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list raw material movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MaterialMovement
	for rows.Next() {
		m, err := scanMaterialMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw material movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
