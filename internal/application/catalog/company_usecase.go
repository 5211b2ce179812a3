package catalog

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

// CompanyUseCase datos de la empresa usados en la factura (fila única).
type CompanyUseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(tx repository.TxRunner, reader repository.UnitOfWork) *CompanyUseCase {
	return &CompanyUseCase{tx: tx, reader: reader}
}

// Get devuelve los datos guardados o un registro vacío si aún no se configuraron.
func (uc *CompanyUseCase) Get(ctx context.Context) (*dto.CompanyResponse, error) {
	c, err := uc.reader.Company().Get(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &dto.CompanyResponse{}, nil
	}
	return toCompanyResponse(c), nil
}

// Save crea o reemplaza los datos de la empresa.
func (uc *CompanyUseCase) Save(ctx context.Context, in dto.CompanyRequest) (*dto.CompanyResponse, error) {
	c := &entity.CompanyInfo{
		ID:            1,
		Name:          in.Name,
		TaxID:         in.TaxID,
		Address:       in.Address,
		City:          in.City,
		Phone:         in.Phone,
		Email:         in.Email,
		Website:       in.Website,
		InvoiceFooter: in.InvoiceFooter,
		UpdatedAt:     time.Now(),
	}
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		return uow.Company().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(c), nil
}

func toCompanyResponse(c *entity.CompanyInfo) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		Name:          c.Name,
		TaxID:         c.TaxID,
		Address:       c.Address,
		City:          c.City,
		Phone:         c.Phone,
		Email:         c.Email,
		Website:       c.Website,
		InvoiceFooter: c.InvoiceFooter,
		UpdatedAt:     c.UpdatedAt,
	}
}
