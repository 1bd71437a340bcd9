package timeentry

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/timeclock/internal"
)

// Service owns the clock-in/clock-out state machine per employee.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ClockIn opens a new session. The employee lookup, the active-entry probe
// and the insert run in one transaction: without that, two concurrent
// clock-ins could both observe "no active entry" and both insert.
func (s *Service) ClockIn(ctx context.Context, employeeID int64) (*TimeEntry, error) {
	var entry *TimeEntry
	err := s.repo.InTransaction(ctx, func(r Repository) error {
		exists, err := r.EmployeeExists(ctx, employeeID)
		if err != nil {
			return err
		}
		if !exists {
			return internal.ErrEmployeeNotFound
		}

		open, err := r.GetOpenEntryForUpdate(ctx, employeeID)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrAlreadyClockedIn
		}

		at := s.now()
		entry = &TimeEntry{
			EmployeeID: employeeID,
			ClockIn:    at,
			CreatedAt:  at,
			UpdatedAt:  at,
		}
		return r.Create(ctx, entry)
	})
	if err != nil {
		s.logger.Error("clock-in failed", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("employee clocked in", "employee_id", employeeID, "entry_id", entry.ID, "clock_in", entry.ClockIn)
	return entry, nil
}

// ClockOut closes the active session and computes worked hours. The lookup
// and the write share a transaction so two concurrent clock-outs cannot both
// succeed against a stale read.
func (s *Service) ClockOut(ctx context.Context, employeeID int64) (*TimeEntry, error) {
	var entry *TimeEntry
	err := s.repo.InTransaction(ctx, func(r Repository) error {
		exists, err := r.EmployeeExists(ctx, employeeID)
		if err != nil {
			return err
		}
		if !exists {
			return internal.ErrEmployeeNotFound
		}

		open, err := r.GetOpenEntryForUpdate(ctx, employeeID)
		if err != nil {
			return err
		}
		if open == nil {
			return ErrNoActiveClockIn
		}

		at := s.now()
		open.Close(at)
		open.UpdatedAt = at
		if err := r.Update(ctx, open); err != nil {
			return err
		}
		entry = open
		return nil
	})
	if err != nil {
		s.logger.Error("clock-out failed", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("employee clocked out",
		"employee_id", employeeID,
		"entry_id", entry.ID,
		"hours_worked", *entry.HoursWorked)
	return entry, nil
}

// GetActiveEntry returns the open entry for the employee, or nil. A
// point-in-time read is acceptable here; races are informational only.
func (s *Service) GetActiveEntry(ctx context.Context, employeeID int64) (*TimeEntry, error) {
	exists, err := s.repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, internal.ErrEmployeeNotFound
	}
	return s.repo.GetOpenEntry(ctx, employeeID)
}

// ListEntries returns an employee's entries within a window, newest first.
func (s *Service) ListEntries(ctx context.Context, employeeID int64, from, to time.Time, limit, offset int) ([]*TimeEntry, error) {
	exists, err := s.repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, internal.ErrEmployeeNotFound
	}

	entries, err := s.repo.ListByEmployee(ctx, employeeID, from, to, limit, offset)
	if err != nil {
		s.logger.Error("failed to list entries", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return entries, nil
}
