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

// CategoryUseCase casos de uso para categorías.
type CategoryUseCase struct {
	tx     repository.TxRunner
	reader repository.UnitOfWork
	log    zerolog.Logger
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(tx repository.TxRunner, reader repository.UnitOfWork, log zerolog.Logger) *CategoryUseCase {
	return &CategoryUseCase{tx: tx, reader: reader, log: log}
}

// Create crea una categoría. El nombre es único.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "name", "obligatorio")
	}
	now := time.Now()
	c := &entity.Category{Name: name, Description: in.Description, CreatedAt: now, UpdatedAt: now}
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		existing, err := uow.Categories().GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.DuplicateKeyError{Entity: "categoría", Key: "nombre", Value: name}
		}
		return uow.Categories().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// Update renombra o describe una categoría.
func (uc *CategoryUseCase) Update(ctx context.Context, id int64, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "name", "obligatorio")
	}
	var out *entity.Category
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		c, err := uow.Categories().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("categoría %d: %w", id, domain.ErrNotFound)
		}
		if other, err := uow.Categories().GetByName(ctx, name); err != nil {
			return err
		} else if other != nil && other.ID != id {
			return &domain.DuplicateKeyError{Entity: "categoría", Key: "nombre", Value: name}
		}
		c.Name, c.Description, c.UpdatedAt = name, in.Description, time.Now()
		out = c
		return uow.Categories().Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(out), nil
}

// GetByID obtiene una categoría.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id int64) (*dto.CategoryResponse, error) {
	c, err := uc.reader.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("categoría %d: %w", id, domain.ErrNotFound)
	}
	return toCategoryResponse(c), nil
}

// List lista las categorías por nombre.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.reader.Categories().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Delete elimina la categoría; sus productos quedan sin categoría.
func (uc *CategoryUseCase) Delete(ctx context.Context, id int64) (*dto.DeleteResult, error) {
	res := &dto.DeleteResult{ID: id}
	err := uc.tx.Run(ctx, func(uow repository.UnitOfWork) error {
		n, err := uow.Products().ClearCategory(ctx, id)
		if err != nil {
			return err
		}
		res.Detached = n
		return uow.Categories().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("category_id", id).Int64("detached", res.Detached).Msg("categoría eliminada")
	return res, nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}
