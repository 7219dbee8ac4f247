package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/health"
	"github.com/storefront/backoffice/internal/security/password"
)

func TestCategoryCreate_DefaultsActiveWhenFlagAbsent(t *testing.T) {
	cats := &stubCategories{}
	res := run(cats, &stubEmployees{}, "", "category", "create", "--name", "Beverages")

	require.Equal(t, ExitOK, res.code, res.stderr)
	require.NotNil(t, cats.created)
	assert.Nil(t, cats.created.IsActive)
	assert.True(t, res.released)

	var got domain.Category
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.True(t, got.IsActive)
}

func TestCategoryCreate_ExplicitInactive(t *testing.T) {
	cats := &stubCategories{}
	res := run(cats, &stubEmployees{}, "", "category", "create", "--name", "Snacks", "--active=false")

	require.Equal(t, ExitOK, res.code, res.stderr)
	require.NotNil(t, cats.created.IsActive)
	assert.False(t, *cats.created.IsActive)
}

func TestCategoryCreate_MissingNameIsInvalidInput(t *testing.T) {
	cats := &stubCategories{}
	res := run(cats, &stubEmployees{}, "", "category", "create")

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Contains(t, res.stderr, "name is required")
	assert.Nil(t, cats.created, "service must not be called")
}

func TestCategoryCreate_DuplicateMapsToConflict(t *testing.T) {
	cats := &stubCategories{err: fmt.Errorf("create category: %w", domain.ErrAlreadyExists)}
	res := run(cats, &stubEmployees{}, "", "category", "create", "--name", "Beverages")

	assert.Equal(t, ExitConflict, res.code)
	assert.Equal(t, "error: already exists\n", res.stderr)
	assert.Empty(t, res.stdout)
}

func TestCategoryUpdate_OnlyChangedFlagsArePatched(t *testing.T) {
	cats := &stubCategories{}
	res := run(cats, &stubEmployees{}, "", "category", "update", "3", "--description", "")

	require.Equal(t, ExitOK, res.code, res.stderr)
	require.NotNil(t, cats.patched)
	assert.Nil(t, cats.patched.Name)
	assert.Nil(t, cats.patched.IsActive)
	require.NotNil(t, cats.patched.Description)
	assert.Equal(t, "", *cats.patched.Description)
}

func TestCategoryUpdate_NoFlagsRejected(t *testing.T) {
	cats := &stubCategories{}
	res := run(cats, &stubEmployees{}, "", "category", "update", "3")

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Contains(t, res.stderr, "nothing to update")
	assert.Nil(t, cats.patched)
}

func TestCategoryGet_BadID(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-4"} {
		res := run(&stubCategories{}, &stubEmployees{}, "", "category", "get", "--", arg)
		assert.Equal(t, ExitInvalidInput, res.code, arg)
	}
}

func TestCategoryGet_NotFound(t *testing.T) {
	cats := &stubCategories{err: fmt.Errorf("get category 9: %w", domain.ErrNotFound)}
	res := run(cats, &stubEmployees{}, "", "category", "get", "9")

	assert.Equal(t, ExitNotFound, res.code)
	assert.Equal(t, "error: not found\n", res.stderr)
}

func TestCategoryList_EmptyPrintsArray(t *testing.T) {
	res := run(&stubCategories{}, &stubEmployees{}, "", "category", "list")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.JSONEq(t, "[]", res.stdout)
}

func TestCategoryDelete_PrintsConfirmation(t *testing.T) {
	cats := &stubCategories{}
	res := run(cats, &stubEmployees{}, "", "category", "delete", "5")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, int64(5), cats.deleted)
	assert.JSONEq(t, `{"id":5,"message":"category deleted"}`, res.stdout)
}

func TestEmployeeCreate_PasswordFromStdin(t *testing.T) {
	emps := &stubEmployees{}
	res := run(&stubCategories{}, emps, "s3cret-pass\n",
		"employee", "create", "--name", "Ana", "--email", "Ana@Shop.test",
		"--position", "cashier", "--password-stdin")

	require.Equal(t, ExitOK, res.code, res.stderr)
	require.NotNil(t, emps.created)
	assert.Equal(t, "s3cret-pass", emps.created.Password)
	assert.NotContains(t, res.stdout, "s3cret-pass")
	assert.NotContains(t, res.stdout, "password")
}

func TestEmployeeCreate_ValidationMessages(t *testing.T) {
	emps := &stubEmployees{}
	res := run(&stubCategories{}, emps, "",
		"employee", "create", "--name", "Ana", "--email", "not-an-email",
		"--position", "janitor", "--password", "short")

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Contains(t, res.stderr, "email must be a valid email")
	assert.Contains(t, res.stderr, "position must be one of: manager cashier stock")
	assert.Contains(t, res.stderr, "password must be at least 8 characters")
	assert.Nil(t, emps.created)
}

func TestEmployeeUpdate_EmptyPasswordIsPassedThrough(t *testing.T) {
	emps := &stubEmployees{}
	res := run(&stubCategories{}, emps, "", "employee", "update", "7", "--password", "")

	require.Equal(t, ExitOK, res.code, res.stderr)
	require.NotNil(t, emps.patched.Password)
	assert.Equal(t, "", *emps.patched.Password)
	assert.Nil(t, emps.patched.Email)
}

func TestEmployeeUpdate_Reactivate(t *testing.T) {
	emps := &stubEmployees{}
	res := run(&stubCategories{}, emps, "", "employee", "update", "7", "--active")

	require.Equal(t, ExitOK, res.code, res.stderr)
	require.NotNil(t, emps.patched.IsActive)
	assert.True(t, *emps.patched.IsActive)
}

func TestEmployeeDeactivate(t *testing.T) {
	res := run(&stubCategories{}, &stubEmployees{}, "", "employee", "deactivate", "7")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.JSONEq(t, `{"id":7,"message":"employee deactivated"}`, res.stdout)
}

func TestEmployeeLogin_FailureIsUnauthorized(t *testing.T) {
	emps := &stubEmployees{authOK: false}
	res := run(&stubCategories{}, emps, "", "employee", "login", "--email", "ana@shop.test", "--password", "nope")

	assert.Equal(t, ExitUnauthorized, res.code)
	assert.Equal(t, "error: invalid credentials\n", res.stderr)
	assert.Equal(t, [2]string{"ana@shop.test", "nope"}, emps.authArgs)
}

func TestEmployeeLogin_Success(t *testing.T) {
	emps := &stubEmployees{authOK: true}
	res := run(&stubCategories{}, emps, "", "employee", "login", "--email", "ana@shop.test", "--password", "right")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"email": "ana@shop.test"`)
}

func TestEmployeeLogin_Throttled(t *testing.T) {
	emps := &stubEmployees{err: fmt.Errorf("authenticate: %w", domain.ErrTooManyAttempts)}
	res := run(&stubCategories{}, emps, "", "employee", "login", "--email", "a@b.c", "--password", "x")

	assert.Equal(t, ExitTooManyAttempts, res.code)
}

func TestEmployeePasswd_WrongCurrent(t *testing.T) {
	emps := &stubEmployees{err: fmt.Errorf("change password: %w", domain.ErrUnauthorized)}
	res := run(&stubCategories{}, emps, "", "employee", "passwd", "7", "--current", "old", "--new", "n3w-password")

	assert.Equal(t, ExitUnauthorized, res.code)
	assert.Equal(t, [2]string{"old", "n3w-password"}, emps.passwd)
}

func TestUnknownInputIsInvalid(t *testing.T) {
	cases := [][]string{
		{"category", "create", "--bogus"},
		{"category", "list", "extra"},
		{"nope"},
	}
	for _, args := range cases {
		res := run(&stubCategories{}, &stubEmployees{}, "", args...)
		assert.Equal(t, ExitInvalidInput, res.code, args)
	}
}

func TestFactoryFailureIsInternal(t *testing.T) {
	factory := func(context.Context, zerolog.Logger) (*Services, func(), error) {
		return nil, nil, errors.New("dial tcp: connection refused")
	}
	code := Execute(context.Background(), []string{"category", "list"}, factory, zerolog.Nop(), nil, &discard{}, &discard{})
	assert.Equal(t, ExitInternal, code)
}

func TestResolveError(t *testing.T) {
	log := zerolog.Nop()
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{nil, ExitOK, ""},
		{fmt.Errorf("x: %w", domain.ErrAlreadyExists), ExitConflict, "already exists"},
		{fmt.Errorf("x: %w", domain.ErrNotFound), ExitNotFound, "not found"},
		{domain.ErrUnauthorized, ExitUnauthorized, "invalid credentials"},
		{errors.New("boom"), ExitInternal, "internal error"},
	}
	for _, tc := range cases {
		code, msg := ResolveError(tc.err, log)
		assert.Equal(t, tc.code, code)
		assert.Equal(t, tc.msg, msg)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestHealth_DegradedExitCode(t *testing.T) {
	checker := health.NewChecker(0)
	checker.Register("mongodb", func(context.Context) error { return errors.New("no reachable servers") })

	var out, errOut bytes.Buffer
	factory := func(context.Context, zerolog.Logger) (*Services, func(), error) {
		return &Services{Health: checker}, func() {}, nil
	}
	code := Execute(context.Background(), []string{"health"}, factory, zerolog.Nop(), nil, &out, &errOut)

	assert.Equal(t, ExitUnavailable, code)
	assert.Contains(t, out.String(), `"status": "degraded"`)
	assert.Contains(t, out.String(), "no reachable servers")
}

func TestHealth_NoProbesIsOK(t *testing.T) {
	res := run(&stubCategories{}, &stubEmployees{}, "", "health")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.JSONEq(t, `{"status":"ok","dependencies":{}}`, res.stdout)
}

func TestEmployeeCreate_PasswordTooLong(t *testing.T) {
	emps := &stubEmployees{}
	res := run(&stubCategories{}, emps, "",
		"employee", "create", "--name", "Ana", "--email", "ana@shop.test",
		"--position", "cashier", "--password", strings.Repeat("a", 73))

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Contains(t, res.stderr, "password must be at most 72 characters")
	assert.Nil(t, emps.created)
}

func TestEmployeePasswd_NewPasswordTooLong(t *testing.T) {
	emps := &stubEmployees{}
	res := run(&stubCategories{}, emps, "", "employee", "passwd", "7", "--current", "old", "--new", strings.Repeat("b", 73))

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Equal(t, [2]string{}, emps.passwd, "service must not be called")
}

func TestEmployeeUpdate_HasherLengthErrorIsInvalidInput(t *testing.T) {
	// 30 three-byte runes pass the rune-counting validator but exceed 72 bytes.
	emps := &stubEmployees{err: fmt.Errorf("hash password: %w", password.ErrTooLong)}
	res := run(&stubCategories{}, emps, "", "employee", "update", "7", "--password", strings.Repeat("€", 30))

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Contains(t, res.stderr, "password must be at most 72 bytes")
}

func TestEmployeePasswd_FromStdin(t *testing.T) {
	emps := &stubEmployees{}
	res := run(&stubCategories{}, emps, "old-password\nn3w-password\n", "employee", "passwd", "7", "--password-stdin")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, [2]string{"old-password", "n3w-password"}, emps.passwd)
	assert.JSONEq(t, `{"id":7,"message":"password changed"}`, res.stdout)
}

func TestEmployeePasswd_StdinExcludesFlags(t *testing.T) {
	emps := &stubEmployees{}
	res := run(&stubCategories{}, emps, "a\nb\n", "employee", "passwd", "7", "--password-stdin", "--new", "n3w-password")

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Equal(t, [2]string{}, emps.passwd)
}

func TestCategoryGet_ByName(t *testing.T) {
	cats := &stubCategories{}
	res := run(cats, &stubEmployees{}, "", "category", "get", "--name", "Dairy")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "Dairy", cats.byName)
	assert.Contains(t, res.stdout, `"name": "Dairy"`)
}

func TestCategoryGet_NameAndIDRejected(t *testing.T) {
	cats := &stubCategories{}
	res := run(cats, &stubEmployees{}, "", "category", "get", "3", "--name", "Dairy")

	assert.Equal(t, ExitInvalidInput, res.code)
	assert.Empty(t, cats.byName)
}

func TestHealth_RunsWhenFactoryReportsUnreachableBackend(t *testing.T) {
	checker := health.NewChecker(0)
	connErr := errors.New("pg: ping: connection refused")
	checker.Register("postgres", func(context.Context) error { return connErr })

	var out, errOut bytes.Buffer
	factory := func(context.Context, zerolog.Logger) (*Services, func(), error) {
		return &Services{Health: checker}, func() {}, connErr
	}
	code := Execute(context.Background(), []string{"health"}, factory, zerolog.Nop(), nil, &out, &errOut)
	assert.Equal(t, ExitUnavailable, code)
	assert.Contains(t, out.String(), "connection refused")

	code = Execute(context.Background(), []string{"category", "list"}, factory, zerolog.Nop(), nil, &out, &errOut)
	assert.Equal(t, ExitInternal, code)
}
