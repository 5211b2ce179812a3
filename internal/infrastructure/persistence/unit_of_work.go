package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.UnitOfWork = (*unitOfWork)(nil)

// unitOfWork agrupa los repositorios sobre una misma conexión o transacción.
type unitOfWork struct {
	c     conn
	tx    *sql.Tx
	ids   *identityMap // nil fuera de transacción
	spSeq int
}

func newUnitOfWork(c conn, tx *sql.Tx) *unitOfWork {
	u := &unitOfWork{c: c, tx: tx}
	if tx != nil {
		u.ids = newIdentityMap()
	}
	return u
}

func (u *unitOfWork) Categories() repository.CategoryRepository { return &categoryRepo{c: u.c} }
func (u *unitOfWork) Products() repository.ProductRepository {
	return &productRepo{c: u.c, ids: u.ids}
}
func (u *unitOfWork) RawMaterials() repository.RawMaterialRepository {
	return &rawMaterialRepo{c: u.c, ids: u.ids}
}
func (u *unitOfWork) BOM() repository.BOMRepository             { return &bomRepo{c: u.c} }
func (u *unitOfWork) Customers() repository.CustomerRepository { return &customerRepo{c: u.c} }
func (u *unitOfWork) Sales() repository.SaleRepository         { return &saleRepo{c: u.c} }
func (u *unitOfWork) Expenses() repository.ExpenseRepository   { return &expenseRepo{c: u.c} }
func (u *unitOfWork) ProductMovements() repository.ProductMovementRepository {
	return &productMovementRepo{c: u.c}
}
func (u *unitOfWork) MaterialMovements() repository.MaterialMovementRepository {
	return &materialMovementRepo{c: u.c}
}
func (u *unitOfWork) Company() repository.CompanyRepository { return &companyRepo{c: u.c} }
func (u *unitOfWork) InvoiceSequence() repository.InvoiceSequenceRepository {
	return &invoiceSequenceRepo{c: u.c}
}
func (u *unitOfWork) Gate() repository.GateRepository { return &gateRepo{c: u.c} }

// Savepoint aísla fn dentro de la transacción. Fuera de transacción solo ejecuta fn.
func (u *unitOfWork) Savepoint(ctx context.Context, fn func() error) error {
	if u.tx == nil {
		return fn()
	}
	u.spSeq++
	name := fmt.Sprintf("sp_%d", u.spSeq)
	if _, err := u.c.exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(); err != nil {
		if _, rbErr := u.c.exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback savepoint: %w", rbErr))
		}
		_, _ = u.c.exec(ctx, "RELEASE SAVEPOINT "+name)
		// Las entidades en memoria pueden reflejar escrituras deshechas.
		u.ids.reset()
		return err
	}
	if _, err := u.c.exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// identityMap garantiza una sola instancia por fila dentro de una transacción.
type identityMap struct {
	products  map[int64]*entity.Product
	materials map[int64]*entity.RawMaterial
}

func newIdentityMap() *identityMap {
	m := &identityMap{}
	m.reset()
	return m
}

func (m *identityMap) reset() {
	if m == nil {
		return
	}
	m.products = make(map[int64]*entity.Product)
	m.materials = make(map[int64]*entity.RawMaterial)
}

func (m *identityMap) product(id int64) *entity.Product {
	if m == nil {
		return nil
	}
	return m.products[id]
}

// putProduct registra p salvo que ya haya una instancia; devuelve la instancia vigente.
func (m *identityMap) putProduct(p *entity.Product) *entity.Product {
	if m == nil {
		return p
	}
	if cur, ok := m.products[p.ID]; ok {
		return cur
	}
	m.products[p.ID] = p
	return p
}

func (m *identityMap) dropProduct(id int64) {
	if m != nil {
		delete(m.products, id)
	}
}

func (m *identityMap) material(id int64) *entity.RawMaterial {
	if m == nil {
		return nil
	}
	return m.materials[id]
}

func (m *identityMap) putMaterial(rm *entity.RawMaterial) *entity.RawMaterial {
	if m == nil {
		return rm
	}
	if cur, ok := m.materials[rm.ID]; ok {
		return cur
	}
	m.materials[rm.ID] = rm
	return rm
}

func (m *identityMap) dropMaterial(id int64) {
	if m != nil {
		delete(m.materials, id)
	}
}
