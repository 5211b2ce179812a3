package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes.
type CustomerUseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
	log    zerolog.Logger
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(tx repository.TxRunner, reader repository.UnitOfWork, log zerolog.Logger) *CustomerUseCase {
	return &CustomerUseCase{tx: tx, reader: reader, log: log}
}

// Create crea un cliente. Email y documento son únicos cuando vienen informados.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c := customerFromRequest(in)
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		return CreateCustomer(ctx, uow, c)
	})
	if err != nil {
		return nil, err
	}
	out := ToCustomerResponse(c)
	return &out, nil
}

// CreateCustomer verifica las claves naturales e inserta. Lo usa también la importación.
func CreateCustomer(ctx context.Context, uow repository.UnitOfWork, c *entity.Customer) error {
	if c.Name == "" {
		return domain.Invalid(domain.ErrInvalidInput, "name", "obligatorio")
	}
	if err := checkCustomerKeys(ctx, uow, c); err != nil {
		return err
	}
	return uow.Customers().Create(ctx, c)
}

func checkCustomerKeys(ctx context.Context, uow repository.UnitOfWork, c *entity.Customer) error {
	if c.Email != "" {
		other, err := uow.Customers().GetByEmail(ctx, c.Email)
		if err != nil {
			return err
		}
		if other != nil && other.ID != c.ID {
			return &domain.DuplicateKeyError{Entity: "cliente", Key: "email", Value: c.Email}
		}
	}
	if c.DocumentNumber != "" {
		other, err := uow.Customers().GetByDocument(ctx, c.DocumentNumber)
		if err != nil {
			return err
		}
		if other != nil && other.ID != c.ID {
			return &domain.DuplicateKeyError{Entity: "cliente", Key: "documento", Value: c.DocumentNumber}
		}
	}
	return nil
}

// Update reemplaza los datos del cliente.
func (uc *CustomerUseCase) Update(ctx context.Context, id int64, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	var out dto.CustomerResponse
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		cur, err := uow.Customers().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("cliente %d: %w", id, domain.ErrNotFound)
		}
		c := customerFromRequest(in)
		c.ID, c.CreatedAt, c.UpdatedAt = id, cur.CreatedAt, time.Now()
		if c.Name == "" {
			return domain.Invalid(domain.ErrInvalidInput, "name", "obligatorio")
		}
		if err := checkCustomerKeys(ctx, uow, c); err != nil {
			return err
		}
		if err := uow.Customers().Update(ctx, c); err != nil {
			return err
		}
		out = ToCustomerResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID obtiene un cliente.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id int64) (*dto.CustomerResponse, error) {
	c, err := uc.reader.Customers().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cliente %d: %w", id, domain.ErrNotFound)
	}
	out := ToCustomerResponse(c)
	return &out, nil
}

// List lista clientes; search filtra por nombre, email o documento.
func (uc *CustomerUseCase) List(ctx context.Context, search string) ([]dto.CustomerResponse, error) {
	list, err := uc.reader.Customers().List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToCustomerResponse(c))
	}
	return out, nil
}

// Delete elimina el cliente; sus ventas quedan sin cliente asociado.
func (uc *CustomerUseCase) Delete(ctx context.Context, id int64) (*dto.DeleteResult, error) {
	res := &dto.DeleteResult{ID: id}
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		n, err := uow.Sales().ClearCustomer(ctx, id)
		if err != nil {
			return err
		}
		res.Detached = n
		return uow.Customers().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("customer_id", id).Int64("sales_detached", res.Detached).Msg("cliente eliminado")
	return res, nil
}

func customerFromRequest(in dto.CustomerRequest) *entity.Customer {
	return &entity.Customer{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          strings.TrimSpace(in.Phone),
		DocumentType:   strings.TrimSpace(in.DocumentType),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		Address:        strings.TrimSpace(in.Address),
		City:           strings.TrimSpace(in.City),
	}
}

// ToCustomerResponse convierte la entidad al DTO de salida.
func ToCustomerResponse(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:             c.ID,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		DocumentType:   c.DocumentType,
		DocumentNumber: c.DocumentNumber,
		Address:        c.Address,
		City:           c.City,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
