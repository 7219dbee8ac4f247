package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
	"github.com/storefront/backoffice/internal/metrics"
)

const resourceEmployee = "employee"

var _ ports.EmployeeService = (*EmployeeService)(nil)

const (
	msgDeactivated     = "employee deactivated"
	msgPasswordChanged = "password changed"
)

// PasswordHasher abstracts the credential digest (internal/security/password).
type PasswordHasher interface {
	Hash(plain string) (string, error)
	IsHashed(value string) bool
	Verify(plain, digest string) bool
}

// LoginThrottle abstracts the per-identifier attempt window (Redis).
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// EmployeeService manages the employee lifecycle and credential checks.
type EmployeeService struct {
	repo     ports.EmployeeRepository
	hasher   PasswordHasher
	throttle LoginThrottle
	logger   zerolog.Logger
	now      func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

// NewEmployeeService wires the service. throttle may be nil to disable login throttling.
func NewEmployeeService(repo ports.EmployeeRepository, hasher PasswordHasher, throttle LoginThrottle, logger zerolog.Logger) *EmployeeService {
	return &EmployeeService{
		repo:     repo,
		hasher:   hasher,
		throttle: throttle,
		logger:   logger,
		now:      time.Now,
	}
}

// Create inserts a new employee with a lower-cased email and a hashed password.
func (s *EmployeeService) Create(ctx context.Context, in domain.NewEmployee) (created *domain.Employee, err error) {
	defer func() { observe(resourceEmployee, "create", err) }()

	email := domain.NormalizeEmail(in.Email)
	if email != "" {
		if err := s.ensureEmailFree(ctx, email, domain.NoID); err != nil {
			return nil, err
		}
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	emp := &domain.Employee{
		Name:     in.Name,
		Email:    email,
		Phone:    in.Phone,
		Position: in.Position,
		IsActive: active,
	}
	// Insert path always hashes.
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		emp.PasswordHash = hash
	}

	created, err = s.repo.Insert(ctx, emp)
	if err != nil {
		return nil, s.wrap(err, "create employee", email)
	}

	s.logger.Info().Int64("employee_id", created.ID).Str("email", created.Email).Msg("employee created")
	return created.WithoutCredential(), nil
}

// List returns live employees ordered by name, including deactivated ones.
func (s *EmployeeService) List(ctx context.Context) ([]*domain.Employee, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return items, nil
}

// Get returns a live employee without its credential.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	e, err := s.repo.FindByID(ctx, id, domain.LiveOnly, domain.DefaultFields)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}
	return e, nil
}

// Update applies only the fields present in patch. A password in the patch is
// hashed unless it already is a digest, so re-sending the stored digest is a
// no-op instead of a double hash. An empty password leaves the credential as is.
func (s *EmployeeService) Update(ctx context.Context, id int64, patch domain.EmployeePatch) (updated *domain.Employee, err error) {
	defer func() { observe(resourceEmployee, "update", err) }()

	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		patch.Email = &email
		if email != "" {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
		}
	}

	current, err := s.repo.FindByID(ctx, id, domain.LiveOnly, domain.DefaultFields)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}

	patch.Apply(current)
	current.PasswordHash = ""
	if patch.Password != nil && *patch.Password != "" {
		digest, err := s.credentialForUpdate(*patch.Password)
		if err != nil {
			return nil, err
		}
		current.PasswordHash = digest
	}

	updated, err = s.repo.Update(ctx, current)
	if err != nil {
		return nil, s.wrap(err, "update employee", current.Email)
	}

	s.logger.Info().Int64("employee_id", id).Bool("credential_changed", current.PasswordHash != "").Msg("employee updated")
	return updated.WithoutCredential(), nil
}

// SoftDelete stamps the deletion time; the email stays reserved.
func (s *EmployeeService) SoftDelete(ctx context.Context, id int64) (err error) {
	defer func() { observe(resourceEmployee, "soft_delete", err) }()

	if _, err := s.repo.FindByID(ctx, id, domain.LiveOnly, domain.DefaultFields); err != nil {
		return fmt.Errorf("employee %d: %w", id, err)
	}
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return fmt.Errorf("employee %d: %w", id, err)
	}

	s.logger.Info().Int64("employee_id", id).Msg("employee soft-deleted")
	return nil
}

// Deactivate clears the active flag. Unlike SoftDelete the employee stays in
// listings and identity lookups; Update with IsActive=true reverses it.
func (s *EmployeeService) Deactivate(ctx context.Context, id int64) (conf *ports.Confirmation, err error) {
	defer func() { observe(resourceEmployee, "deactivate", err) }()

	current, err := s.repo.FindByID(ctx, id, domain.LiveOnly, domain.DefaultFields)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}

	current.IsActive = false
	current.PasswordHash = ""
	if _, err := s.repo.Update(ctx, current); err != nil {
		return nil, s.wrap(err, "deactivate employee", current.Email)
	}

	s.logger.Info().Int64("employee_id", id).Msg("employee deactivated")
	return &ports.Confirmation{ID: id, Message: msgDeactivated}, nil
}

// Authenticate checks an email/password pair. Unknown emails, wrong passwords
// and inactive employees all return (nil, false, nil) after one digest
// comparison each, so callers cannot tell them apart.
func (s *EmployeeService) Authenticate(ctx context.Context, email, password string) (*domain.Employee, bool, error) {
	email = domain.NormalizeEmail(email)

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable, continuing")
		} else if !allowed {
			metrics.AuthAttemptsTotal.WithLabelValues("throttled").Inc()
			return nil, false, domain.ErrTooManyAttempts
		}
	}

	emp, err := s.repo.FindByEmail(ctx, email, domain.LiveOnly, domain.WithCredential)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error().Err(err).Msg("employee lookup failed")
		return nil, false, fmt.Errorf("authenticate: %w", err)
	}

	if emp == nil {
		s.hasher.Verify(password, s.timingDigest())
		metrics.AuthAttemptsTotal.WithLabelValues("rejected").Inc()
		return nil, false, nil
	}

	if !s.hasher.Verify(password, emp.PasswordHash) || !emp.IsActive {
		metrics.AuthAttemptsTotal.WithLabelValues("rejected").Inc()
		return nil, false, nil
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Int64("employee_id", emp.ID).Msg("employee authenticated")
	return emp.WithoutCredential(), true, nil
}

// ChangePassword replaces the credential after re-verifying the current one.
// Nothing is written unless verification and hashing both succeed.
func (s *EmployeeService) ChangePassword(ctx context.Context, id int64, current, next string) (conf *ports.Confirmation, err error) {
	defer func() { observe(resourceEmployee, "change_password", err) }()

	emp, err := s.repo.FindByID(ctx, id, domain.LiveOnly, domain.WithCredential)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}

	if !s.hasher.Verify(current, emp.PasswordHash) {
		s.logger.Debug().Int64("employee_id", id).Msg("current password mismatch")
		return nil, fmt.Errorf("employee %d: current password: %w", id, domain.ErrUnauthorized)
	}

	// This path only ever receives plaintext, so hash unconditionally.
	digest, err := s.hasher.Hash(next)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdateCredential(ctx, id, digest); err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}

	s.logger.Info().Int64("employee_id", id).Msg("employee password changed")
	return &ports.Confirmation{ID: id, Message: msgPasswordChanged}, nil
}

// credentialForUpdate is the update branch of the credential state machine.
func (s *EmployeeService) credentialForUpdate(value string) (string, error) {
	if s.hasher.IsHashed(value) {
		return value, nil
	}
	digest, err := s.hasher.Hash(value)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return digest, nil
}

// timingDigest is compared against when the email is unknown.
func (s *EmployeeService) timingDigest() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash("timing-equalizer")
		if err != nil {
			s.logger.Warn().Err(err).Msg("could not build timing digest")
			return
		}
		s.dummyDigest = d
	})
	return s.dummyDigest
}

func (s *EmployeeService) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	taken, err := checkUnique(ctx, s.repo.CountByEmail, email, excludeID)
	if err != nil {
		s.logger.Error().Err(err).Msg("employee uniqueness check failed")
		return fmt.Errorf("check employee email: %w", err)
	}
	if taken {
		s.logger.Debug().Int64("exclude_id", excludeID).Msg("employee email taken")
		return fmt.Errorf("employee %q: %w", email, domain.ErrAlreadyExists)
	}
	return nil
}

func (s *EmployeeService) wrap(err error, op, email string) error {
	if errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("employee %q: %w", email, domain.ErrAlreadyExists)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Error().Err(err).Str("op", op).Msg("employee storage failure")
	return fmt.Errorf("%s: %w", op, err)
}
