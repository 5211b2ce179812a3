// Package gate protege la vista de inventario con una contraseña local.
// Es una barrera de presentación: el núcleo no depende de ella.
package gate

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
	"github.com/jhoicas/inventario-pos/pkg/jwt"
)

// ScopeInventory scope de los tokens que abren las rutas de inventario.
const ScopeInventory = "inventory"

const subject = "inventario"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase casos de uso de la puerta de acceso.
type UseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
	jwtCfg JWTConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx repository.TxRunner, reader repository.UnitOfWork, jwtCfg JWTConfig, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, reader: reader, jwtCfg: jwtCfg, log: log, now: time.Now}
}

// Status indica si hay contraseña y devuelve la pista.
func (uc *UseCase) Status(ctx context.Context) (*dto.GateStatusResponse, error) {
	g, err := uc.reader.Gate().Get(ctx)
	if err != nil {
		return nil, err
	}
	if g == nil || g.PasswordHash == "" {
		return &dto.GateStatusResponse{}, nil
	}
	return &dto.GateStatusResponse{Configured: true, Hint: g.Hint}, nil
}

// SetPassword define la contraseña. Si ya existía, exige la actual.
func (uc *UseCase) SetPassword(ctx context.Context, in dto.SetGatePasswordRequest) error {
	if strings.TrimSpace(in.New) == "" {
		return domain.Invalid(domain.ErrInvalidInput, "new", "la contraseña no puede estar vacía")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	err = uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		g, err := uow.Gate().Get(ctx)
		if err != nil {
			return err
		}
		if g != nil && g.PasswordHash != "" {
			ok, _ := matches(g.PasswordHash, in.Current)
			if !ok {
				return domain.ErrUnauthorized
			}
		}
		return uow.Gate().Save(ctx, &entity.AccessGate{
			PasswordHash: string(hash),
			Hint:         strings.TrimSpace(in.Hint),
			UpdatedAt:    uc.now(),
		})
	})
	if err != nil {
		return err
	}
	uc.log.Info().Msg("contraseña de inventario actualizada")
	return nil
}

// Unlock verifica la contraseña y emite un token de sesión. Un hash heredado
// (SHA-256 en hex) se reemplaza por bcrypt en el mismo paso.
func (uc *UseCase) Unlock(ctx context.Context, in dto.UnlockRequest) (*dto.TokenResponse, error) {
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		g, err := uow.Gate().Get(ctx)
		if err != nil {
			return err
		}
		if g == nil || g.PasswordHash == "" {
			return fmt.Errorf("no hay contraseña de inventario configurada: %w", domain.ErrNotFound)
		}
		ok, legacy := matches(g.PasswordHash, in.Password)
		if !ok {
			return domain.ErrUnauthorized
		}
		if !legacy {
			return nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		g.PasswordHash = string(hash)
		g.UpdatedAt = uc.now()
		if err := uow.Gate().Save(ctx, g); err != nil {
			return err
		}
		uc.log.Info().Msg("hash heredado de inventario migrado a bcrypt")
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			uc.log.Warn().Msg("intento fallido de abrir inventario")
		}
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, subject, ScopeInventory, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{Token: token, ExpiresIn: uc.jwtCfg.ExpMinutes * 60}, nil
}

// Verify valida un token emitido por Unlock.
func (uc *UseCase) Verify(token string) error {
	_, scope, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil || scope != ScopeInventory {
		return domain.ErrUnauthorized
	}
	return nil
}

// matches compara password con el hash guardado. legacy es true cuando el hash es SHA-256 hex.
func matches(stored, password string) (ok, legacy bool) {
	if isLegacy(stored) {
		sum := sha256.Sum256([]byte(password))
		got := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(got)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
}

func isLegacy(stored string) bool {
	if len(stored) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}
