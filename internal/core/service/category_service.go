package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

const resourceCategory = "category"

var _ ports.CategoryService = (*CategoryService)(nil)

// CategoryService manages the category lifecycle: unique names across live
// and deleted records, merge-patch updates and soft-delete.
type CategoryService struct {
	repo   ports.CategoryRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewCategoryService(repo ports.CategoryRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger, now: time.Now}
}

// Create inserts a new category. A name already held by any category, deleted
// or not, fails with domain.ErrAlreadyExists and nothing is written.
func (s *CategoryService) Create(ctx context.Context, in domain.NewCategory) (created *domain.Category, err error) {
	defer func() { observe(resourceCategory, "create", err) }()

	name := domain.NormalizeName(in.Name)
	if name != "" {
		if err := s.ensureNameFree(ctx, name, domain.NoID); err != nil {
			return nil, err
		}
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	created, err = s.repo.Insert(ctx, &domain.Category{
		Name:        name,
		Description: in.Description,
		IsActive:    active,
	})
	if err != nil {
		return nil, s.wrap(err, "create category", name)
	}

	s.logger.Info().Int64("category_id", created.ID).Str("name", created.Name).Msg("category created")
	return created, nil
}

// List returns live categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// Get returns a live category. Soft-deleted categories are reported as not found.
func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.repo.FindByID(ctx, id, domain.LiveOnly)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", id, err)
	}
	return c, nil
}

// GetByName returns the live category holding name. A deleted holder still
// reserves the name but is reported as not found here.
func (s *CategoryService) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	name = domain.NormalizeName(name)
	c, err := s.repo.FindByName(ctx, name, domain.LiveOnly)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", name, err)
	}
	return c, nil
}

// Update applies only the fields present in patch. A new name is checked
// against every other category, including deleted ones.
func (s *CategoryService) Update(ctx context.Context, id int64, patch domain.CategoryPatch) (updated *domain.Category, err error) {
	defer func() { observe(resourceCategory, "update", err) }()

	if patch.Name != nil {
		name := domain.NormalizeName(*patch.Name)
		patch.Name = &name
		if name != "" {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
		}
	}

	current, err := s.repo.FindByID(ctx, id, domain.LiveOnly)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", id, err)
	}

	patch.Apply(current)

	updated, err = s.repo.Update(ctx, current)
	if err != nil {
		return nil, s.wrap(err, "update category", current.Name)
	}

	s.logger.Info().Int64("category_id", id).Msg("category updated")
	return updated, nil
}

// SoftDelete stamps the deletion time. The row stays, and so does its claim on the name.
func (s *CategoryService) SoftDelete(ctx context.Context, id int64) (err error) {
	defer func() { observe(resourceCategory, "soft_delete", err) }()

	if _, err := s.repo.FindByID(ctx, id, domain.LiveOnly); err != nil {
		return fmt.Errorf("category %d: %w", id, err)
	}
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return fmt.Errorf("category %d: %w", id, err)
	}

	s.logger.Info().Int64("category_id", id).Msg("category soft-deleted")
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, excludeID int64) error {
	taken, err := checkUnique(ctx, s.repo.CountByName, name, excludeID)
	if err != nil {
		s.logger.Error().Err(err).Msg("category uniqueness check failed")
		return fmt.Errorf("check category name: %w", err)
	}
	if taken {
		s.logger.Debug().Str("name", name).Int64("exclude_id", excludeID).Msg("category name taken")
		return fmt.Errorf("category %q: %w", name, domain.ErrAlreadyExists)
	}
	return nil
}

// wrap keeps the caller-facing shape of a storage-level unique violation
// identical to the one raised by the pre-check.
func (s *CategoryService) wrap(err error, op, name string) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("category %q: %w", name, domain.ErrAlreadyExists)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Error().Err(err).Str("op", op).Msg("category storage failure")
	return fmt.Errorf("%s: %w", op, err)
}
