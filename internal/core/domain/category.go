package domain

import (
	"strings"
	"time"
)

// Category groups storefront products. Name is unique across live and
// soft-deleted categories.
type Category struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the category has been soft-deleted.
func (c *Category) IsDeleted() bool { return c.DeletedAt != nil }

// NewCategory carries the fields accepted on create. A nil IsActive defaults to true.
type NewCategory struct {
	Name        string
	Description string
	IsActive    *bool
}

// CategoryPatch is a merge-patch: nil fields are left untouched, a pointer to
// an empty string sets the field to "".
type CategoryPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Apply copies the present fields of p onto c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}

// NormalizeName trims surrounding whitespace from a category name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
