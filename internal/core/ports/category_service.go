package ports

import (
	"context"

	"github.com/storefront/backoffice/internal/core/domain"
)

// CategoryService defines the category lifecycle operations.
type CategoryService interface {
	Create(ctx context.Context, in domain.NewCategory) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id int64) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, id int64, patch domain.CategoryPatch) (*domain.Category, error)
	SoftDelete(ctx context.Context, id int64) error
}
