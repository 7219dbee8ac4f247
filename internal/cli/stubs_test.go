package cli

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

type stubCategories struct {
	created *domain.NewCategory
	patched *domain.CategoryPatch
	deleted int64
	byName  string
	items   []*domain.Category
	err     error
}

func (s *stubCategories) Create(_ context.Context, in domain.NewCategory) (*domain.Category, error) {
	s.created = &in
	if s.err != nil {
		return nil, s.err
	}
	active := in.IsActive == nil || *in.IsActive
	return &domain.Category{ID: 1, Name: in.Name, Description: in.Description, IsActive: active}, nil
}

func (s *stubCategories) List(context.Context) ([]*domain.Category, error) {
	return s.items, s.err
}

func (s *stubCategories) Get(_ context.Context, id int64) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Category{ID: id, Name: "Beverages", IsActive: true}, nil
}

func (s *stubCategories) GetByName(_ context.Context, name string) (*domain.Category, error) {
	s.byName = name
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Category{ID: 4, Name: name, IsActive: true}, nil
}

func (s *stubCategories) Update(_ context.Context, id int64, patch domain.CategoryPatch) (*domain.Category, error) {
	s.patched = &patch
	if s.err != nil {
		return nil, s.err
	}
	c := &domain.Category{ID: id, Name: "Beverages", IsActive: true}
	patch.Apply(c)
	return c, nil
}

func (s *stubCategories) SoftDelete(_ context.Context, id int64) error {
	s.deleted = id
	return s.err
}

type stubEmployees struct {
	created  *domain.NewEmployee
	patched  *domain.EmployeePatch
	authOK   bool
	authArgs [2]string
	passwd   [2]string
	err      error
}

func (s *stubEmployees) Create(_ context.Context, in domain.NewEmployee) (*domain.Employee, error) {
	s.created = &in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Employee{ID: 7, Name: in.Name, Email: domain.NormalizeEmail(in.Email), Position: in.Position, IsActive: true}, nil
}

func (s *stubEmployees) List(context.Context) ([]*domain.Employee, error) { return nil, s.err }

func (s *stubEmployees) Get(_ context.Context, id int64) (*domain.Employee, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Employee{ID: id, Name: "Ana", Email: "ana@shop.test", IsActive: true}, nil
}

func (s *stubEmployees) Update(_ context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error) {
	s.patched = &patch
	if s.err != nil {
		return nil, s.err
	}
	e := &domain.Employee{ID: id, Name: "Ana", Email: "ana@shop.test", IsActive: true}
	patch.Apply(e)
	return e, nil
}

func (s *stubEmployees) SoftDelete(context.Context, int64) error { return s.err }

func (s *stubEmployees) Deactivate(_ context.Context, id int64) (*ports.Confirmation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.Confirmation{ID: id, Message: "employee deactivated"}, nil
}

func (s *stubEmployees) Authenticate(_ context.Context, email, password string) (*domain.Employee, bool, error) {
	s.authArgs = [2]string{email, password}
	if s.err != nil || !s.authOK {
		return nil, false, s.err
	}
	return &domain.Employee{ID: 7, Email: email, IsActive: true}, true, nil
}

func (s *stubEmployees) ChangePassword(_ context.Context, id int64, current, next string) (*ports.Confirmation, error) {
	s.passwd = [2]string{current, next}
	if s.err != nil {
		return nil, s.err
	}
	return &ports.Confirmation{ID: id, Message: "password changed"}, nil
}

type result struct {
	code     int
	stdout   string
	stderr   string
	released bool
}

// run executes args against the stubs with stdin as the input stream.
func run(cats *stubCategories, emps *stubEmployees, stdin string, args ...string) result {
	var out, errOut bytes.Buffer
	res := result{}
	factory := func(context.Context, zerolog.Logger) (*Services, func(), error) {
		return &Services{Categories: cats, Employees: emps}, func() { res.released = true }, nil
	}
	res.code = Execute(context.Background(), args, factory, zerolog.Nop(), strings.NewReader(stdin), &out, &errOut)
	res.stdout, res.stderr = out.String(), errOut.String()
	return res
}
