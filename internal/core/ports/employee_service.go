package ports

import (
	"context"

	"github.com/storefront/backoffice/internal/core/domain"
)

// Confirmation is returned by operations whose result is an acknowledgement
// rather than a record.
type Confirmation struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// EmployeeService defines the employee lifecycle and credential operations.
type EmployeeService interface {
	Create(ctx context.Context, in domain.NewEmployee) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	Update(ctx context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error)
	SoftDelete(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) (*Confirmation, error)
	// Authenticate reports ok=false for both unknown emails and wrong
	// passwords; err is reserved for infrastructure and throttling failures.
	Authenticate(ctx context.Context, email, password string) (emp *domain.Employee, ok bool, err error)
	ChangePassword(ctx context.Context, id int64, current, next string) (*Confirmation, error)
}
