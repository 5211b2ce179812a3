// Package sales implementa el ciclo de vida de la venta: alta, edición, cancelación,
// numeración de facturas y el documento imprimible.
package sales

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

const (
	invoicePrefix = "INV-"
	// maxInvoiceProbes candidatos que se prueban antes de rendirse.
	maxInvoiceProbes = 10
)

var invoicePattern = regexp.MustCompile(`^INV-(\d{6,})$`)

// FormatInvoice número de factura visible: INV-000042.
func FormatInvoice(n int64) string {
	return fmt.Sprintf("%s%06d", invoicePrefix, n)
}

// ParseInvoiceNumber devuelve el consecutivo de un número con formato INV-NNNNNN.
func ParseInvoiceNumber(s string) (int64, bool) {
	m := invoicePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AllocateInvoice toma el siguiente número de la secuencia dentro de la transacción de la venta.
// Salta los números ya ocupados por ventas importadas; tras maxInvoiceProbes intentos falla.
func AllocateInvoice(ctx context.Context, uow repository.UnitOfWork) (string, error) {
	for i := 0; i < maxInvoiceProbes; i++ {
		n, err := uow.InvoiceSequence().Next(ctx)
		if err != nil {
			return "", fmt.Errorf("invoice sequence: %w", err)
		}
		candidate := FormatInvoice(n)
		taken, err := uow.Sales().InvoiceExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", domain.ErrInvoiceAllocationExhausted
}
