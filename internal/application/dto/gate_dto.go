package dto

// UnlockRequest contraseña de la vista de inventario.
type UnlockRequest struct {
	Password string `json:"password" validate:"required"`
}

// SetGatePasswordRequest define o cambia la contraseña. Current se exige si ya había una.
type SetGatePasswordRequest struct {
	Current string `json:"current"`
	New     string `json:"new" validate:"required,min=4,max=128"`
	Hint    string `json:"hint" validate:"max=200"`
}

// GateStatusResponse estado del acceso.
type GateStatusResponse struct {
	Configured bool   `json:"configured"`
	Hint       string `json:"hint,omitempty"`
}

// TokenResponse token de sesión para las rutas de inventario.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
