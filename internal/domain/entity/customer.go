package entity

import "time"

// Customer cliente del punto de venta. Email y número de documento son únicos cuando vienen informados.
type Customer struct {
	ID             int64
	Name           string
	Email          string
	Phone          string
	DocumentType   string // CC, NIT, CE, ...
	DocumentNumber string
	Address        string
	City           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
