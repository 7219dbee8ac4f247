package ports

import (
	"context"
	"time"

	"github.com/storefront/backoffice/internal/core/domain"
)

// EmployeeRepository defines persistence operations for employees.
// The credential hash is only read when a lookup asks for domain.WithCredential.
type EmployeeRepository interface {
	FindByID(ctx context.Context, id int64, scope domain.Scope, proj domain.Projection) (*domain.Employee, error)
	// FindByEmail expects an already normalized email.
	FindByEmail(ctx context.Context, email string, scope domain.Scope, proj domain.Projection) (*domain.Employee, error)
	CountByEmail(ctx context.Context, email string, excludeID int64, scope domain.Scope) (int64, error)
	// List returns live employees ordered by name ascending.
	List(ctx context.Context) ([]*domain.Employee, error)
	Insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	// Update persists the mutable fields of a live record. PasswordHash is
	// written only when non-empty, since default lookups never load it.
	Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	// UpdateCredential replaces the stored hash of a live record.
	UpdateCredential(ctx context.Context, id int64, hash string) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}
