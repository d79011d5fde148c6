package salespeople

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
)

// SalespersonDTO is the API-facing salesperson shape.
type SalespersonDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateSalespersonInput holds the validated payload to create a salesperson.
type CreateSalespersonInput struct {
	Name     string
	Phone    *string
	IsActive bool
}

// UpdateSalespersonInput holds optional mutation values for a salesperson.
type UpdateSalespersonInput struct {
	Name     *string
	Phone    *string
	IsActive *bool
}

// Service exposes the salesperson roster for checkout and the back office.
type Service interface {
	List(ctx context.Context, includeInactive bool) ([]SalespersonDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*SalespersonDTO, error)
	Create(ctx context.Context, input CreateSalespersonInput) (*SalespersonDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateSalespersonInput) (*SalespersonDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService constructs a salesperson service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("salesperson repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]SalespersonDTO, error) {
	rows, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list salespeople")
	}
	out := make([]SalespersonDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SalespersonDTO, error) {
	salesperson, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(salesperson), nil
}

func (s *service) Create(ctx context.Context, input CreateSalespersonInput) (*SalespersonDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "salesperson name is required")
	}

	salesperson := &models.Salesperson{
		ID:       uuid.New(),
		Name:     name,
		Phone:    input.Phone,
		IsActive: input.IsActive,
	}
	created, err := s.repo.Create(ctx, salesperson)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create salesperson")
	}
	return toDTO(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateSalespersonInput) (*SalespersonDTO, error) {
	salesperson, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "salesperson name cannot be empty")
		}
		salesperson.Name = name
	}
	if input.Phone != nil {
		salesperson.Phone = input.Phone
	}
	if input.IsActive != nil {
		salesperson.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, salesperson)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update salesperson")
	}
	return toDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "salesperson id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "salesperson not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete salesperson")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Salesperson, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "salesperson id is required")
	}
	salesperson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "salesperson not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load salesperson")
	}
	return salesperson, nil
}

func toDTO(salesperson *models.Salesperson) *SalespersonDTO {
	return &SalespersonDTO{
		ID:        salesperson.ID,
		Name:      salesperson.Name,
		Phone:     salesperson.Phone,
		IsActive:  salesperson.IsActive,
		CreatedAt: salesperson.CreatedAt,
		UpdatedAt: salesperson.UpdatedAt,
	}
}
