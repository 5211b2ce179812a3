package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.CustomerRepository = (*customerRepo)(nil)

type customerRepo struct {
	c conn
}

const customerColumns = `id, name, email, phone, document_type, document_number, address, city, created_at, updated_at`

func scanCustomer(r rowScanner) (*entity.Customer, error) {
	var (
		c          entity.Customer
		email, doc sql.NullString
	)
	err := r.Scan(&c.ID, &c.Name, &email, &c.Phone, &c.DocumentType, &doc, &c.Address, &c.City,
		timeScanner{&c.CreatedAt}, timeScanner{&c.UpdatedAt})
	if err != nil {
		return nil, err
	}
	c.Email = email.String
	c.DocumentNumber = doc.String
	return &c, nil
}

// duplicateCustomer identifica qué clave única violó el insert o update.
func duplicateCustomer(err error, c *entity.Customer) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "document") {
		return &domain.DuplicateKeyError{Entity: "cliente", Key: "documento", Value: c.DocumentNumber}
	}
	return &domain.DuplicateKeyError{Entity: "cliente", Key: "email", Value: c.Email}
}

func (r *customerRepo) Create(ctx context.Context, c *entity.Customer) error {
	id, err := r.c.insert(ctx, `
		INSERT INTO customers (name, email, phone, document_type, document_number, address, city, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, nullStr(c.Email), c.Phone, c.DocumentType, nullStr(c.DocumentNumber), c.Address, c.City,
		tsArg(c.CreatedAt), tsArg(c.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateCustomer(err, c)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID = id
	return nil
}

func (r *customerRepo) Update(ctx context.Context, c *entity.Customer) error {
	res, err := r.c.exec(ctx, `
		UPDATE customers SET name = ?, email = ?, phone = ?, document_type = ?, document_number = ?,
			address = ?, city = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, nullStr(c.Email), c.Phone, c.DocumentType, nullStr(c.DocumentNumber), c.Address, c.City,
		tsArg(c.UpdatedAt), c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateCustomer(err, c)
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return requireAffected(res)
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
}

func (r *customerRepo) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE LOWER(email) = LOWER(?)`, email)
}

func (r *customerRepo) GetByDocument(ctx context.Context, number string) (*entity.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE document_number = ?`, number)
}

func (r *customerRepo) GetByName(ctx context.Context, name string) (*entity.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE LOWER(name) = LOWER(?) ORDER BY id LIMIT 1`, name)
}

func (r *customerRepo) get(ctx context.Context, query string, args ...any) (*entity.Customer, error) {
	c, err := scanCustomer(r.c.queryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *customerRepo) List(ctx context.Context, search string) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []any
	if search != "" {
		query += ` WHERE LOWER(name) LIKE LOWER(?) OR LOWER(COALESCE(email, '')) LIKE LOWER(?) OR COALESCE(document_number, '') LIKE ?`
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY name, id`
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *customerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.c.exec(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.DependentRowsError{Entity: "cliente"}
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return requireAffected(res)
}
