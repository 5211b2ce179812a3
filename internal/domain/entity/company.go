package entity

import "time"

// CompanyInfo datos legales del negocio usados al imprimir facturas. Fila única.
type CompanyInfo struct {
	ID            int64
	Name          string
	TaxID         string // NIT
	Address       string
	City          string
	Phone         string
	Email         string
	Website       string
	InvoiceFooter string
	UpdatedAt     time.Time
}
