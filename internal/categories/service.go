package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bancadosucesso/storefront-backend/pkg/db"
	"github.com/bancadosucesso/storefront-backend/pkg/db/models"
	pkgerrors "github.com/bancadosucesso/storefront-backend/pkg/errors"
)

// Service exposes storefront navigation reads and back-office category management.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	GetBySlug(ctx context.Context, slug string) (*CategoryDTO, error)
	Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddSubcategory(ctx context.Context, categoryID uuid.UUID, name string) (*CategoryDTO, error)
	RemoveSubcategory(ctx context.Context, categoryID, subcategoryID uuid.UUID) error
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name     string
	Position int
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name     *string
	Position *int
}

type service struct {
	repo *Repository
}

// NewService constructs a category service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return ToDTOs(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(category), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*CategoryDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}
	category, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return ToDTO(category), nil
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     Slugify(name),
		Position: input.Position,
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return ToDTO(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
		}
		category.Name = name
		category.Slug = Slugify(name)
	}
	if input.Position != nil {
		category.Position = *input.Position
	}

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return ToDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) AddSubcategory(ctx context.Context, categoryID uuid.UUID, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcategory name is required")
	}

	category, err := s.load(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	subcategory := &models.Subcategory{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Name:       name,
		Slug:       Slugify(name),
	}
	if _, err := s.repo.CreateSubcategory(ctx, subcategory); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a subcategory with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subcategory")
	}
	return s.Get(ctx, category.ID)
}

func (s *service) RemoveSubcategory(ctx context.Context, categoryID, subcategoryID uuid.UUID) error {
	if categoryID == uuid.Nil || subcategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category and subcategory ids are required")
	}
	if err := s.repo.DeleteSubcategory(ctx, categoryID, subcategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete subcategory")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}
