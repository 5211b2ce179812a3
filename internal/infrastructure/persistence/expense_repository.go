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

var _ repository.ExpenseRepository = (*expenseRepo)(nil)

type expenseRepo struct {
	c conn
}

const expenseColumns = `id, expense_type, reason, product_id, raw_material_id, quantity, payment_method,
	transfer_type, recipient, is_authorized, amount, notes, created_at, updated_at`

func scanExpense(r rowScanner) (*entity.Expense, error) {
	var (
		e                    entity.Expense
		kind, reason         string
		product, material    sql.NullInt64
		method, transferType sql.NullString
		amount               decimal.NullDecimal
	)
	err := r.Scan(&e.ID, &kind, &reason, &product, &material, &e.Quantity, &method, &transferType,
		&e.Recipient, &e.IsAuthorized, &amount, &e.Notes, timeScanner{&e.CreatedAt}, timeScanner{&e.UpdatedAt})
	if err != nil {
		return nil, err
	}
	e.Kind = entity.ExpenseKind(kind)
	e.Reason = entity.ExpenseReason(reason)
	e.ProductID = idPtr(product)
	e.RawMaterialID = idPtr(material)
	e.PaymentMethod = entity.PaymentMethod(method.String)
	e.TransferType = transferType.String
	if amount.Valid {
		v := amount.Decimal
		e.Amount = &v
	}
	return &e, nil
}

func (r *expenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	var amount any
	if e.Amount != nil {
		amount = *e.Amount
	}
	id, err := r.c.insert(ctx, `
		INSERT INTO expenses (expense_type, reason, product_id, raw_material_id, quantity, payment_method,
			transfer_type, recipient, is_authorized, amount, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Kind), string(e.Reason), nullID(e.ProductID), nullID(e.RawMaterialID), e.Quantity,
		nullStr(string(e.PaymentMethod)), nullStr(e.TransferType), e.Recipient, e.IsAuthorized, amount,
		e.Notes, tsArg(e.CreatedAt), tsArg(e.UpdatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid(domain.ErrInvalidReference, "expense", "producto o materia prima inexistente")
		}
		return fmt.Errorf("insert expense: %w", err)
	}
	e.ID = id
	return nil
}

func (r *expenseRepo) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	e, err := scanExpense(r.c.queryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *expenseRepo) List(ctx context.Context, rg repository.DateRange) ([]*entity.Expense, error) {
	rng, args := rangeClause("created_at", rg, nil)
	rows, err := r.c.query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE 1=1`+rng+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *expenseRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.c.exec(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res)
}

func (r *expenseRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	n, err := r.c.count(ctx, `SELECT COUNT(*) FROM expenses WHERE product_id = ?`, productID)
	if err != nil {
		return 0, fmt.Errorf("count expenses by product: %w", err)
	}
	return n, nil
}

func (r *expenseRepo) CountByRawMaterial(ctx context.Context, rawMaterialID int64) (int, error) {
	n, err := r.c.count(ctx, `SELECT COUNT(*) FROM expenses WHERE raw_material_id = ?`, rawMaterialID)
	if err != nil {
		return 0, fmt.Errorf("count expenses by raw material: %w", err)
	}
	return n, nil
}
