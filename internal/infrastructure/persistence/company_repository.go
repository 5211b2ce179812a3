package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*companyRepo)(nil)
	_ repository.GateRepository    = (*gateRepo)(nil)
)

type companyRepo struct {
	c conn
}

// Get devuelve nil si aún no se han configurado los datos de la empresa.
func (r *companyRepo) Get(ctx context.Context) (*entity.CompanyInfo, error) {
	var c entity.CompanyInfo
	err := r.c.queryRow(ctx, `
		SELECT id, name, tax_id, address, city, phone, email, website, invoice_footer, updated_at
		FROM company_info WHERE id = 1`).
		Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.City, &c.Phone, &c.Email, &c.Website,
			&c.InvoiceFooter, timeScanner{&c.UpdatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company info: %w", err)
	}
	return &c, nil
}

// Save inserta o reemplaza la fila única.
func (r *companyRepo) Save(ctx context.Context, c *entity.CompanyInfo) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO company_info (id, name, tax_id, address, city, phone, email, website, invoice_footer, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, tax_id = excluded.tax_id,
			address = excluded.address, city = excluded.city, phone = excluded.phone,
			email = excluded.email, website = excluded.website,
			invoice_footer = excluded.invoice_footer, updated_at = excluded.updated_at`,
		c.Name, c.TaxID, c.Address, c.City, c.Phone, c.Email, c.Website, c.InvoiceFooter, tsArg(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save company info: %w", err)
	}
	c.ID = 1
	return nil
}

type gateRepo struct {
	c conn
}

func (r *gateRepo) Get(ctx context.Context) (*entity.AccessGate, error) {
	var g entity.AccessGate
	err := r.c.queryRow(ctx, `SELECT password_hash, hint, updated_at FROM access_gate WHERE id = 1`).
		Scan(&g.PasswordHash, &g.Hint, timeScanner{&g.UpdatedAt})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get access gate: %w", err)
	}
	return &g, nil
}

func (r *gateRepo) Save(ctx context.Context, g *entity.AccessGate) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO access_gate (id, password_hash, hint, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET password_hash = excluded.password_hash, hint = excluded.hint,
			updated_at = excluded.updated_at`,
		g.PasswordHash, g.Hint, tsArg(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save access gate: %w", err)
	}
	return nil
}
