package ports

import (
	"context"
	"time"

	"github.com/storefront/backoffice/internal/core/domain"
)

// CategoryRepository defines persistence operations for categories.
// Every lookup takes an explicit Scope; nothing relies on a hidden default.
type CategoryRepository interface {
	// FindByID returns domain.ErrNotFound when no record matches in scope.
	FindByID(ctx context.Context, id int64, scope domain.Scope) (*domain.Category, error)
	// FindByName returns domain.ErrNotFound when no record matches in scope.
	FindByName(ctx context.Context, name string, scope domain.Scope) (*domain.Category, error)
	// CountByName counts records holding name, skipping excludeID unless it is domain.NoID.
	CountByName(ctx context.Context, name string, excludeID int64, scope domain.Scope) (int64, error)
	// List returns live categories ordered by name ascending.
	List(ctx context.Context) ([]*domain.Category, error)
	// Insert assigns the identity and timestamps. A unique index violation
	// is returned as domain.ErrAlreadyExists.
	Insert(ctx context.Context, c *domain.Category) (*domain.Category, error)
	// Update persists the mutable fields of a live record and bumps UpdatedAt.
	Update(ctx context.Context, c *domain.Category) (*domain.Category, error)
	// SoftDelete stamps DeletedAt on a live record.
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}
