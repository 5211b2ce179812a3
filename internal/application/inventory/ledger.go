package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/pkg/textnorm"
)

// EntityKind distingue las dos tablas de movimientos.
type EntityKind string

const (
	EntityProduct     EntityKind = "product"
	EntityRawMaterial EntityKind = "raw_material"
)

var entityAliases = map[string]EntityKind{
	"product": EntityProduct, "producto": EntityProduct, "productos": EntityProduct,
	"raw material": EntityRawMaterial, "material": EntityRawMaterial, "materia prima": EntityRawMaterial,
	"materias primas": EntityRawMaterial, "insumo": EntityRawMaterial,
}

// ParseEntityKind acepta el nombre en inglés o en español sin importar tildes ni mayúsculas.
func ParseEntityKind(s string) (EntityKind, bool) {
	k, ok := entityAliases[textnorm.Key(s)]
	return k, ok
}

// Ledger es el historial de movimientos: solo agrega filas y marca anulaciones.
type Ledger struct {
	now func() time.Time
}

// NewLedger construye el libro de movimientos con el reloj del sistema.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// AppendProduct registra un movimiento de producto. Exige previous + quantity == new.
func (l *Ledger) AppendProduct(ctx context.Context, uow repository.UnitOfWork, m *entity.ProductMovement) error {
	if m.PreviousStock+m.Quantity != m.NewStock {
		return domain.Invalid(domain.ErrInvalidQuantity, "quantity",
			fmt.Sprintf("%d + %d no cuadra con %d", m.PreviousStock, m.Quantity, m.NewStock))
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = l.now()
	}
	return uow.ProductMovements().Append(ctx, m)
}

// AppendMaterial registra un movimiento de materia prima. Exige previous + quantity == new.
func (l *Ledger) AppendMaterial(ctx context.Context, uow repository.UnitOfWork, m *entity.MaterialMovement) error {
	if !m.PreviousStock.Add(m.Quantity).Equal(m.NewStock) {
		return domain.Invalid(domain.ErrInvalidQuantity, "quantity",
			fmt.Sprintf("%s + %s no cuadra con %s", m.PreviousStock, m.Quantity, m.NewStock))
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = l.now()
	}
	return uow.MaterialMovements().Append(ctx, m)
}

// MarkAnnulled deja la nota "[ANULADO] reason" sobre el movimiento. Si ya estaba anulado no cambia nada.
func (l *Ledger) MarkAnnulled(ctx context.Context, uow repository.UnitOfWork, kind EntityKind, id int64, reason string) error {
	switch kind {
	case EntityProduct:
		m, err := uow.ProductMovements().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("movimiento de producto %d: %w", id, domain.ErrNotFound)
		}
		if m.IsAnnulled() {
			return nil
		}
		return uow.ProductMovements().SetUserNote(ctx, id, entity.AnnulledNote(reason))
	case EntityRawMaterial:
		m, err := uow.MaterialMovements().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("movimiento de materia prima %d: %w", id, domain.ErrNotFound)
		}
		if m.IsAnnulled() {
			return nil
		}
		return uow.MaterialMovements().SetUserNote(ctx, id, entity.AnnulledNote(reason))
	}
	return domain.Invalid(domain.ErrInvalidInput, "entity", "tipo de entidad desconocido")
}

// AnnulByReference anula las salidas de producto y los consumos de materia prima
// vigentes con la referencia dada. Devuelve cuántas filas marcó.
func (l *Ledger) AnnulByReference(ctx context.Context, uow repository.UnitOfWork, reference, reason string) (int, error) {
	n := 0
	pms, err := uow.ProductMovements().ListByReference(ctx, reference)
	if err != nil {
		return 0, err
	}
	for _, m := range pms {
		if m.Kind != entity.ProductExit || m.IsAnnulled() {
			continue
		}
		if err := uow.ProductMovements().SetUserNote(ctx, m.ID, entity.AnnulledNote(reason)); err != nil {
			return n, err
		}
		n++
	}
	mms, err := uow.MaterialMovements().ListByReference(ctx, reference)
	if err != nil {
		return n, err
	}
	for _, m := range mms {
		if m.Quantity.IsPositive() || m.IsAnnulled() {
			continue
		}
		if err := uow.MaterialMovements().SetUserNote(ctx, m.ID, entity.AnnulledNote(reason)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
