package domain

import (
	"strings"
	"time"
)

const (
	PositionManager = "manager"
	PositionCashier = "cashier"
	PositionStock   = "stock"
)

// Employee is a back-office account. Email is stored lower-cased and is unique
// across live and soft-deleted employees. PasswordHash is only populated by
// lookups that ask for WithCredential.
type Employee struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Position     string     `json:"position,omitempty"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the employee has been soft-deleted.
func (e *Employee) IsDeleted() bool { return e.DeletedAt != nil }

// WithoutCredential returns a copy of e with the hash cleared.
func (e *Employee) WithoutCredential() *Employee {
	clone := *e
	clone.PasswordHash = ""
	return &clone
}

// NewEmployee carries the fields accepted on create. Password is plaintext.
type NewEmployee struct {
	Name     string
	Email    string
	Phone    string
	Position string
	Password string
	IsActive *bool
}

// EmployeePatch is a merge-patch over Employee. Password may hold either a new
// plaintext or the existing digest re-sent unchanged.
type EmployeePatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Position *string
	Password *string
	IsActive *bool
}

// Apply copies the present non-credential fields of p onto e. The credential
// is handled by the caller since it needs the hashing decision.
func (p EmployeePatch) Apply(e *Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Phone != nil {
		e.Phone = *p.Phone
	}
	if p.Position != nil {
		e.Position = *p.Position
	}
	if p.IsActive != nil {
		e.IsActive = *p.IsActive
	}
}

// NormalizeEmail trims and lower-cases an email so comparisons and storage agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
