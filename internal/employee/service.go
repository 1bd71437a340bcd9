package employee

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/timeclock/internal"
)

// Service handles employee administration and PIN verification.
type Service struct {
	repo       Repository
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
}

func NewService(repo Repository, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create inserts a new employee. The PIN uniqueness scan and the insert run
// in the same transaction so two concurrent creates cannot both pass the
// check.
func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("employee validation failed", "error", err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Pin), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash pin", err)
	}

	emp := &Employee{
		Name:      dto.Name,
		Pin:       dto.Pin,
		PinHash:   string(hash),
		IsAdmin:   dto.IsAdmin,
		Version:   1,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}

	err = s.repo.InTransaction(ctx, func(r Repository) error {
		exists, err := r.PinExists(ctx, dto.Pin, 0)
		if err != nil {
			return err
		}
		if exists {
			return ErrPinAlreadyExists
		}
		return r.Create(ctx, emp)
	})
	if err != nil {
		s.logger.Error("failed to create employee", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", emp.ID, "name", emp.Name, "is_admin", emp.IsAdmin)
	return emp, nil
}

// Update applies a partial edit under the optimistic-concurrency check: the
// stored version must still match dto.Version or the edit is rejected with
// ErrConcurrentModification and the caller must re-fetch.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("employee update validation failed", "error", err, "employee_id", id)
		return nil, err
	}

	var updated *Employee
	err := s.repo.InTransaction(ctx, func(r Repository) error {
		emp, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if dto.Name != nil {
			emp.Name = *dto.Name
		}
		if dto.Pin != nil && *dto.Pin != emp.Pin {
			exists, err := r.PinExists(ctx, *dto.Pin, id)
			if err != nil {
				return err
			}
			if exists {
				return ErrPinAlreadyExists
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Pin), s.bcryptCost)
			if err != nil {
				return internal.NewInternalError("failed to hash pin", err)
			}
			emp.Pin = *dto.Pin
			emp.PinHash = string(hash)
		}
		if dto.IsAdmin != nil {
			emp.IsAdmin = *dto.IsAdmin
		}
		emp.UpdatedAt = s.now()

		ok, err := r.UpdateVersioned(ctx, emp, dto.Version)
		if err != nil {
			return err
		}
		if !ok {
			return internal.ErrConcurrentModification
		}
		updated = emp
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	s.logger.Info("employee updated", "employee_id", id, "version", updated.Version)
	return updated, nil
}

// Delete removes an employee. Deleting the last admin is blocked so the
// system always keeps at least one admin; time entries are never deleted
// with the employee.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.InTransaction(ctx, func(r Repository) error {
		emp, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if emp.IsAdmin {
			admins, err := r.CountAdmins(ctx)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrCannotDeleteLastAdmin
			}
		}

		return r.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return err
	}

	s.logger.Info("employee deleted", "employee_id", id)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Employee, error) {
	return s.repo.List(ctx, limit, offset)
}

// VerifyPin resolves a PIN to an employee for login. The lookup goes through
// the plaintext column and the hash is compared afterwards, so a stale hash
// still rejects.
func (s *Service) VerifyPin(ctx context.Context, pin string) (*Employee, error) {
	if !isValidPin(pin) {
		return nil, internal.NewValidationError("pin must be exactly 4 digits", internal.ErrCodeInvalidPin)
	}

	emp, err := s.repo.GetByPin(ctx, pin)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PinHash), []byte(pin)); err != nil {
		s.logger.Warn("pin hash mismatch for employee", "employee_id", emp.ID)
		return nil, ErrInvalidCredentials
	}

	return emp, nil
}

// IsAdmin reports whether the employee exists and carries the admin flag.
func (s *Service) IsAdmin(ctx context.Context, id int64) (bool, error) {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return emp.IsAdmin, nil
}

// BootstrapAdmin creates the first admin when no admin exists yet. Used by
// the seed command; a no-op when an admin is already present.
func (s *Service) BootstrapAdmin(ctx context.Context, name, pin string) (*Employee, bool, error) {
	admins, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return nil, false, err
	}
	if admins > 0 {
		return nil, false, nil
	}

	emp, err := s.Create(ctx, CreateEmployeeDTO{Name: name, Pin: pin, IsAdmin: true})
	if err != nil {
		return nil, false, err
	}
	return emp, true, nil
}
