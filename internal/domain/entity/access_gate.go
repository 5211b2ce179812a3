package entity

import "time"

// AccessGate contraseña (hash) y pista que protegen la vista de inventario. Fila única.
type AccessGate struct {
	PasswordHash string
	Hint         string
	UpdatedAt    time.Time
}
