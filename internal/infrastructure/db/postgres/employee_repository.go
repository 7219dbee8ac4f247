package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

const employeeColumns = "id, name, email, phone, position, is_active, created_at, updated_at, deleted_at"

var _ ports.EmployeeRepository = (*EmployeeRepository)(nil)

type EmployeeRepository struct {
	db DB
}

func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// selectEmployee returns the column list for proj; the credential column is
// appended last so scanEmployee can read it conditionally.
func selectEmployee(proj domain.Projection) string {
	if proj == domain.WithCredential {
		return employeeColumns + ", password_hash"
	}
	return employeeColumns
}

func scanEmployee(row pgx.Row, proj domain.Projection) (*domain.Employee, error) {
	var e domain.Employee
	dest := []any{&e.ID, &e.Name, &e.Email, &e.Phone, &e.Position, &e.IsActive, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt}
	if proj == domain.WithCredential {
		dest = append(dest, &e.PasswordHash)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64, scope domain.Scope, proj domain.Projection) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e, err := scanEmployee(r.db.QueryRow(ctx,
		"SELECT "+selectEmployee(proj)+" FROM employees WHERE id = $1"+scopeClause(scope), id), proj)
	if err != nil {
		return nil, translate(err, "find employee")
	}
	return e, nil
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string, scope domain.Scope, proj domain.Projection) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	e, err := scanEmployee(r.db.QueryRow(ctx,
		"SELECT "+selectEmployee(proj)+" FROM employees WHERE email = $1"+scopeClause(scope), email), proj)
	if err != nil {
		return nil, translate(err, "find employee")
	}
	return e, nil
}

func (r *EmployeeRepository) CountByEmail(ctx context.Context, email string, excludeID int64, scope domain.Scope) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err := r.db.QueryRow(ctx,
		"SELECT count(*) FROM employees WHERE email = $1 AND ($2::bigint = 0 OR id <> $2)"+scopeClause(scope),
		email, excludeID,
	).Scan(&n)
	if err != nil {
		return 0, translate(err, "count employees")
	}
	return n, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE TRUE"+scopeClause(domain.LiveOnly)+" ORDER BY name ASC")
	if err != nil {
		return nil, translate(err, "list employees")
	}
	defer rows.Close()

	out := []*domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows, domain.DefaultFields)
		if err != nil {
			return nil, translate(err, "scan employee")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list employees")
	}
	return out, nil
}

func (r *EmployeeRepository) Insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created, err := scanEmployee(r.db.QueryRow(ctx,
		`INSERT INTO employees (name, email, phone, position, password_hash, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+employeeColumns,
		e.Name, e.Email, e.Phone, e.Position, e.PasswordHash, e.IsActive), domain.DefaultFields)
	if err != nil {
		return nil, translate(err, "insert employee")
	}
	return created, nil
}

// Update keeps the stored hash when e.PasswordHash is empty.
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	updated, err := scanEmployee(r.db.QueryRow(ctx,
		`UPDATE employees
		    SET name = $2, email = $3, phone = $4, position = $5, is_active = $6,
		        password_hash = COALESCE(NULLIF($7::text, ''), password_hash),
		        updated_at = now()
		  WHERE id = $1`+scopeClause(domain.LiveOnly)+`
		  RETURNING `+employeeColumns,
		e.ID, e.Name, e.Email, e.Phone, e.Position, e.IsActive, e.PasswordHash), domain.DefaultFields)
	if err != nil {
		return nil, translate(err, "update employee")
	}
	return updated, nil
}

func (r *EmployeeRepository) UpdateCredential(ctx context.Context, id int64, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		"UPDATE employees SET password_hash = $2, updated_at = now() WHERE id = $1"+scopeClause(domain.LiveOnly), id, hash)
	if err != nil {
		return translate(err, "update employee credential")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		"UPDATE employees SET deleted_at = $2 WHERE id = $1"+scopeClause(domain.LiveOnly), id, at.UTC())
	if err != nil {
		return translate(err, "soft delete employee")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
