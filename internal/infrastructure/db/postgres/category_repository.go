package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

const categoryColumns = "id, name, description, is_active, created_at, updated_at, deleted_at"

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

type CategoryRepository struct {
	db DB
}

func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64, scope domain.Scope) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c, err := scanCategory(r.db.QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1"+scopeClause(scope), id))
	if err != nil {
		return nil, translate(err, "find category")
	}
	return c, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string, scope domain.Scope) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	c, err := scanCategory(r.db.QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE name = $1"+scopeClause(scope), name))
	if err != nil {
		return nil, translate(err, "find category")
	}
	return c, nil
}

func (r *CategoryRepository) CountByName(ctx context.Context, name string, excludeID int64, scope domain.Scope) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err := r.db.QueryRow(ctx,
		"SELECT count(*) FROM categories WHERE name = $1 AND ($2::bigint = 0 OR id <> $2)"+scopeClause(scope),
		name, excludeID,
	).Scan(&n)
	if err != nil {
		return 0, translate(err, "count categories")
	}
	return n, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE TRUE"+scopeClause(domain.LiveOnly)+" ORDER BY name ASC")
	if err != nil {
		return nil, translate(err, "list categories")
	}
	defer rows.Close()

	out := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, translate(err, "scan category")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list categories")
	}
	return out, nil
}

func (r *CategoryRepository) Insert(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created, err := scanCategory(r.db.QueryRow(ctx,
		`INSERT INTO categories (name, description, is_active)
		 VALUES ($1, $2, $3)
		 RETURNING `+categoryColumns,
		c.Name, c.Description, c.IsActive))
	if err != nil {
		return nil, translate(err, "insert category")
	}
	return created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	updated, err := scanCategory(r.db.QueryRow(ctx,
		`UPDATE categories
		    SET name = $2, description = $3, is_active = $4, updated_at = now()
		  WHERE id = $1`+scopeClause(domain.LiveOnly)+`
		  RETURNING `+categoryColumns,
		c.ID, c.Name, c.Description, c.IsActive))
	if err != nil {
		return nil, translate(err, "update category")
	}
	return updated, nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		"UPDATE categories SET deleted_at = $2 WHERE id = $1"+scopeClause(domain.LiveOnly), id, at.UTC())
	if err != nil {
		return translate(err, "soft delete category")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
