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

var _ repository.SaleRepository = (*saleRepo)(nil)

type saleRepo struct {
	c conn
}

const saleColumns = `id, invoice_number, customer_id, subtotal, tax, discount, total, payment_method,
	transfer_type, status, has_invoice, invoice_generated_at, notes, created_at, updated_at`

func scanSale(r rowScanner) (*entity.Sale, error) {
	var (
		s        entity.Sale
		customer sql.NullInt64
		transfer sql.NullString
		method   string
		status   string
	)
	err := r.Scan(&s.ID, &s.InvoiceNumber, &customer, &s.Subtotal, &s.Tax, &s.Discount, &s.Total,
		&method, &transfer, &status, &s.HasInvoice, nullTimeScanner{&s.InvoiceGeneratedAt}, &s.Notes,
		timeScanner{&s.CreatedAt}, timeScanner{&s.UpdatedAt})
	if err != nil {
		return nil, err
	}
	s.CustomerID = idPtr(customer)
	s.TransferType = transfer.String
	s.PaymentMethod = entity.PaymentMethod(method)
	s.Status = entity.SaleStatus(status)
	return &s, nil
}

func (r *saleRepo) Create(ctx context.Context, s *entity.Sale) error {
	id, err := r.c.insert(ctx, `
		INSERT INTO sales (invoice_number, customer_id, subtotal, tax, discount, total, payment_method,
			transfer_type, status, has_invoice, invoice_generated_at, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.InvoiceNumber, nullID(s.CustomerID), s.Subtotal, s.Tax, s.Discount, s.Total, string(s.PaymentMethod),
		nullStr(s.TransferType), string(s.Status), s.HasInvoice, nullTsArg(s.InvoiceGeneratedAt), s.Notes,
		tsArg(s.CreatedAt), tsArg(s.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Entity: "venta", Key: "número de factura", Value: s.InvoiceNumber}
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid(domain.ErrInvalidReference, "customer_id", "el cliente no existe")
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	s.ID = id
	return nil
}

func (r *saleRepo) UpdateHeader(ctx context.Context, s *entity.Sale) error {
	res, err := r.c.exec(ctx, `
		UPDATE sales SET customer_id = ?, subtotal = ?, tax = ?, discount = ?, total = ?, payment_method = ?,
			transfer_type = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		nullID(s.CustomerID), s.Subtotal, s.Tax, s.Discount, s.Total, string(s.PaymentMethod),
		nullStr(s.TransferType), string(s.Status), s.Notes, tsArg(s.UpdatedAt), s.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid(domain.ErrInvalidReference, "customer_id", "el cliente no existe")
		}
		return fmt.Errorf("update sale: %w", err)
	}
	return requireAffected(res)
}

func (r *saleRepo) MarkInvoiced(ctx context.Context, id int64, at time.Time) error {
	res, err := r.c.exec(ctx,
		`UPDATE sales SET has_invoice = ?, invoice_generated_at = ?, updated_at = ? WHERE id = ?`,
		true, tsArg(at), tsArg(at), id)
	if err != nil {
		return fmt.Errorf("mark sale invoiced: %w", err)
	}
	return requireAffected(res)
}

func (r *saleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
}

func (r *saleRepo) GetByInvoice(ctx context.Context, invoiceNumber string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE invoice_number = ?`, invoiceNumber)
}

// get carga la cabecera y sus líneas.
func (r *saleRepo) get(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.c.queryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if s.Lines, err = r.ListLines(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *saleRepo) InvoiceExists(ctx context.Context, invoiceNumber string) (bool, error) {
	n, err := r.c.count(ctx, `SELECT COUNT(*) FROM sales WHERE invoice_number = ?`, invoiceNumber)
	if err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return n > 0, nil
}

// List devuelve cabeceras sin líneas, más recientes primero.
func (r *saleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	var args []any
	var rng string
	rng, args = rangeClause("created_at", f.Range, args)
	query += rng
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.ExcludeCancelled {
		query += ` AND status <> ?`
		args = append(args, string(entity.SaleStatusCancelled))
	}
	if f.CustomerID != nil {
		query += ` AND customer_id = ?`
		args = append(args, *f.CustomerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	lim, args := limitClause(f.Limit, f.Offset, args)

	rows, err := r.c.query(ctx, query+lim, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Delete elimina la venta y sus líneas. El kardex no se toca.
func (r *saleRepo) Delete(ctx context.Context, id int64) error {
	if err := r.DeleteLines(ctx, id); err != nil {
		return err
	}
	res, err := r.c.exec(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return requireAffected(res)
}

func (r *saleRepo) ClearCustomer(ctx context.Context, customerID int64) (int64, error) {
	res, err := r.c.exec(ctx, `UPDATE sales SET customer_id = NULL WHERE customer_id = ?`, customerID)
	if err != nil {
		return 0, fmt.Errorf("clear sale customer: %w", err)
	}
	return affected(res), nil
}

func (r *saleRepo) AddLine(ctx context.Context, l *entity.SaleLine) error {
	id, err := r.c.insert(ctx,
		`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal) VALUES (?, ?, ?, ?, ?)`,
		l.SaleID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid(domain.ErrInvalidReference, "product_id", fmt.Sprintf("producto %d no existe", l.ProductID))
		}
		return fmt.Errorf("insert sale line: %w", err)
	}
	l.ID = id
	return nil
}

func (r *saleRepo) ListLines(ctx context.Context, saleID int64) ([]entity.SaleLine, error) {
	rows, err := r.c.query(ctx,
		`SELECT id, sale_id, product_id, quantity, unit_price, subtotal FROM sale_items WHERE sale_id = ? ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *saleRepo) DeleteLines(ctx context.Context, saleID int64) error {
	if _, err := r.c.exec(ctx, `DELETE FROM sale_items WHERE sale_id = ?`, saleID); err != nil {
		return fmt.Errorf("delete sale lines: %w", err)
	}
	return nil
}

func (r *saleRepo) CountLinesByProduct(ctx context.Context, productID int64) (int, error) {
	n, err := r.c.count(ctx, `SELECT COUNT(*) FROM sale_items WHERE product_id = ?`, productID)
	if err != nil {
		return 0, fmt.Errorf("count sale lines: %w", err)
	}
	return n, nil
}

func (r *saleRepo) ListLineFacts(ctx context.Context, rg repository.DateRange) ([]repository.SaleLineFact, error) {
	query := `
		SELECT s.id, s.customer_id, p.id, p.sku, p.name, si.quantity, si.subtotal, s.created_at
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.status <> ?`
	args := []any{string(entity.SaleStatusCancelled)}
	var rng string
	rng, args = rangeClause("s.created_at", rg, args)
	query += rng + ` ORDER BY s.created_at, si.id`

	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sale facts: %w", err)
	}
	defer rows.Close()
	var facts []repository.SaleLineFact
	for rows.Next() {
		var (
			f        repository.SaleLineFact
			customer sql.NullInt64
		)
		if err := rows.Scan(&f.SaleID, &customer, &f.ProductID, &f.SKU, &f.ProductName, &f.Quantity,
			&f.Subtotal, timeScanner{&f.SoldAt}); err != nil {
			return nil, fmt.Errorf("scan sale fact: %w", err)
		}
		f.CustomerID = idPtr(customer)
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
