package persistence

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

var _ repository.InvoiceSequenceRepository = (*invoiceSequenceRepo)(nil)

const salesSequence = "sales"

// invoiceSequenceRepo contador en la tabla invoice_sequence. El UPDATE toma el bloqueo
// de escritura de la fila, por lo que dos transacciones no obtienen el mismo valor.
type invoiceSequenceRepo struct {
	c conn
}

func (r *invoiceSequenceRepo) Next(ctx context.Context) (int64, error) {
	var v int64
	err := r.c.queryRow(ctx,
		`UPDATE invoice_sequence SET last_value = last_value + 1 WHERE name = ? RETURNING last_value`,
		salesSequence).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return v, nil
}

func (r *invoiceSequenceRepo) EnsureAtLeast(ctx context.Context, n int64) error {
	_, err := r.c.exec(ctx,
		`UPDATE invoice_sequence SET last_value = ? WHERE name = ? AND last_value < ?`,
		n, salesSequence, n)
	if err != nil {
		return fmt.Errorf("advance invoice sequence: %w", err)
	}
	return nil
}

func (r *invoiceSequenceRepo) Current(ctx context.Context) (int64, error) {
	var v int64
	if err := r.c.queryRow(ctx, `SELECT last_value FROM invoice_sequence WHERE name = ?`, salesSequence).Scan(&v); err != nil {
		return 0, fmt.Errorf("current invoice number: %w", err)
	}
	return v, nil
}
