package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/security/password"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories. They mirror the storage contract: identities
// start at 1 and are never reused, the constrained field has a unique index
// over live and deleted rows, and reads return clones.
// ---------------------------------------------------------------------------

type stubCategoryRepo struct {
	rows      map[int64]*domain.Category
	nextID    int64
	countErr  error
	insertErr error
	updates   int
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{rows: make(map[int64]*domain.Category)}
}

func cloneCategory(c *domain.Category) *domain.Category {
	clone := *c
	if c.DeletedAt != nil {
		at := *c.DeletedAt
		clone.DeletedAt = &at
	}
	return &clone
}

func visible(deletedAt *time.Time, scope domain.Scope) bool {
	return scope == domain.IncludeDeleted || deletedAt == nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id int64, scope domain.Scope) (*domain.Category, error) {
	c, ok := r.rows[id]
	if !ok || !visible(c.DeletedAt, scope) {
		return nil, domain.ErrNotFound
	}
	return cloneCategory(c), nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string, scope domain.Scope) (*domain.Category, error) {
	for _, c := range r.rows {
		if c.Name == name && visible(c.DeletedAt, scope) {
			return cloneCategory(c), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubCategoryRepo) CountByName(_ context.Context, name string, excludeID int64, scope domain.Scope) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for id, c := range r.rows {
		if id == excludeID || c.Name != name || !visible(c.DeletedAt, scope) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *stubCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range r.rows {
		if c.DeletedAt == nil {
			out = append(out, cloneCategory(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCategoryRepo) Insert(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	for _, existing := range r.rows {
		if existing.Name == c.Name {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.nextID++
	row := cloneCategory(c)
	row.ID = r.nextID
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt
	r.rows[row.ID] = row
	return cloneCategory(row), nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	row, ok := r.rows[c.ID]
	if !ok || row.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	r.updates++
	row.Name = c.Name
	row.Description = c.Description
	row.IsActive = c.IsActive
	row.UpdatedAt = time.Now().UTC()
	return cloneCategory(row), nil
}

func (r *stubCategoryRepo) SoftDelete(_ context.Context, id int64, at time.Time) error {
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return domain.ErrNotFound
	}
	row.DeletedAt = &at
	return nil
}

type stubEmployeeRepo struct {
	rows       map[int64]*domain.Employee
	nextID     int64
	findErr    error
	credWrites int
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{rows: make(map[int64]*domain.Employee)}
}

func cloneEmployee(e *domain.Employee, proj domain.Projection) *domain.Employee {
	clone := *e
	if e.DeletedAt != nil {
		at := *e.DeletedAt
		clone.DeletedAt = &at
	}
	if proj != domain.WithCredential {
		clone.PasswordHash = ""
	}
	return &clone
}

// storedHash peeks at the persisted digest, bypassing the projection.
func (r *stubEmployeeRepo) storedHash(id int64) string {
	if e, ok := r.rows[id]; ok {
		return e.PasswordHash
	}
	return ""
}

func (r *stubEmployeeRepo) FindByID(_ context.Context, id int64, scope domain.Scope, proj domain.Projection) (*domain.Employee, error) {
	e, ok := r.rows[id]
	if !ok || !visible(e.DeletedAt, scope) {
		return nil, domain.ErrNotFound
	}
	return cloneEmployee(e, proj), nil
}

func (r *stubEmployeeRepo) FindByEmail(_ context.Context, email string, scope domain.Scope, proj domain.Projection) (*domain.Employee, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, e := range r.rows {
		if e.Email == email && visible(e.DeletedAt, scope) {
			return cloneEmployee(e, proj), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubEmployeeRepo) CountByEmail(_ context.Context, email string, excludeID int64, scope domain.Scope) (int64, error) {
	var n int64
	for id, e := range r.rows {
		if id == excludeID || e.Email != email || !visible(e.DeletedAt, scope) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *stubEmployeeRepo) List(_ context.Context) ([]*domain.Employee, error) {
	out := []*domain.Employee{}
	for _, e := range r.rows {
		if e.DeletedAt == nil {
			out = append(out, cloneEmployee(e, domain.DefaultFields))
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Name, out[j].Name) < 0 })
	return out, nil
}

func (r *stubEmployeeRepo) Insert(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	for _, existing := range r.rows {
		if existing.Email == e.Email {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.nextID++
	row := cloneEmployee(e, domain.WithCredential)
	row.ID = r.nextID
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt
	r.rows[row.ID] = row
	return cloneEmployee(row, domain.WithCredential), nil
}

func (r *stubEmployeeRepo) Update(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	row, ok := r.rows[e.ID]
	if !ok || row.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	row.Name = e.Name
	row.Email = e.Email
	row.Phone = e.Phone
	row.Position = e.Position
	row.IsActive = e.IsActive
	if e.PasswordHash != "" {
		row.PasswordHash = e.PasswordHash
		r.credWrites++
	}
	row.UpdatedAt = time.Now().UTC()
	return cloneEmployee(row, domain.DefaultFields), nil
}

func (r *stubEmployeeRepo) UpdateCredential(_ context.Context, id int64, hash string) error {
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return domain.ErrNotFound
	}
	row.PasswordHash = hash
	r.credWrites++
	return nil
}

func (r *stubEmployeeRepo) SoftDelete(_ context.Context, id int64, at time.Time) error {
	row, ok := r.rows[id]
	if !ok || row.DeletedAt != nil {
		return domain.ErrNotFound
	}
	row.DeletedAt = &at
	return nil
}

// stubThrottle allows max attempts per key until Reset.
type stubThrottle struct {
	max    int
	hits   map[string]int
	resets int
	err    error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{max: max, hits: make(map[string]int)}
}

func (t *stubThrottle) Allow(_ context.Context, key string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	t.hits[key]++
	return t.hits[key] <= t.max, nil
}

func (t *stubThrottle) Reset(_ context.Context, key string) error {
	delete(t.hits, key)
	t.resets++
	return nil
}

func newTestHasher() *password.Hasher {
	h, err := password.New(password.Bcrypt, password.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		panic(err)
	}
	return h
}

func ptr[T any](v T) *T { return &v }
