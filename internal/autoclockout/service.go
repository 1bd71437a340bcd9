package autoclockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// Service enforces the no-overtime policy by bulk-closing open sessions at
// closing time.
type Service struct {
	repo     Repository
	schedule Schedule
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, schedule Schedule, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Schedule() Schedule {
	return s.schedule
}

// Run closes every open entry at targetTime. The open-entry scan is a single
// snapshot read; each entry is then written independently so one bad record
// cannot abort the batch. An entry closed manually between the snapshot and
// its write is skipped, not overwritten.
func (s *Service) Run(ctx context.Context, targetTime time.Time, dryRun bool) (*Result, error) {
	var open []OpenEntry
	err := s.repo.InTransaction(ctx, func(r Repository) error {
		var err error
		open, err = r.ListOpenEntries(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("auto-clockout scan failed", "error", err)
		return nil, err
	}

	reason := noOvertimeReason(targetTime)
	result := &Result{Success: true, Closed: make([]ClosedEntry, 0, len(open))}

	for _, entry := range open {
		if !targetTime.After(entry.ClockIn) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("entry %d for employee %d: clock-in %s is not before target time %s",
					entry.EntryID, entry.EmployeeID, entry.ClockIn.Format(time.RFC3339), targetTime.Format(time.RFC3339)))
			continue
		}

		hours := timeentry.HoursBetween(entry.ClockIn, targetTime)
		closed := ClosedEntry{
			EmployeeID:  entry.EmployeeID,
			Name:        entry.EmployeeName,
			ClockIn:     entry.ClockIn,
			ClockOut:    targetTime,
			HoursWorked: hours,
		}

		if dryRun {
			result.Closed = append(result.Closed, closed)
			result.ClosedCount++
			continue
		}

		ok, err := s.repo.CloseIfOpen(ctx, entry.EntryID, CloseUpdate{
			ClockOut:    targetTime,
			HoursWorked: hours,
			Reason:      reason,
			NeedsReview: true,
			UpdatedAt:   s.now(),
		})
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("entry %d for employee %d: %v", entry.EntryID, entry.EmployeeID, err))
			continue
		}
		if !ok {
			// closed manually in the window between snapshot and write
			result.SkippedOpen++
			s.logger.Info("skipping entry already closed", "entry_id", entry.EntryID, "employee_id", entry.EmployeeID)
			continue
		}

		result.Closed = append(result.Closed, closed)
		result.ClosedCount++
	}

	result.Success = len(result.Errors) == 0

	s.logger.Info("auto-clockout run finished",
		"target_time", targetTime,
		"dry_run", dryRun,
		"closed", result.ClosedCount,
		"skipped", result.SkippedOpen,
		"errors", len(result.Errors))
	return result, nil
}

// RunSelective closes an administrator-chosen subset at per-employee times.
// The admin explicitly set each time, so the entries come out already
// reviewed (needsReview=false, adminCorrected stamped). Partial success is
// still success; only total failure of every item is reported unsuccessful.
func (s *Service) RunSelective(ctx context.Context, items []SelectiveItem, adminID int64) (*Result, error) {
	isAdmin, err := s.repo.IsAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, internal.ErrAdminPrivilegesRequired
	}

	result := &Result{Closed: make([]ClosedEntry, 0, len(items))}

	for _, item := range items {
		closed, err := s.closeSelective(ctx, item, adminID)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("employee %d: %v", item.EmployeeID, err))
			continue
		}
		result.Closed = append(result.Closed, *closed)
		result.ClosedCount++
	}

	result.Success = len(result.Errors) == 0 || result.ClosedCount > 0

	s.logger.Info("selective auto-clockout finished",
		"admin_id", adminID,
		"requested", len(items),
		"closed", result.ClosedCount,
		"errors", len(result.Errors))
	return result, nil
}

func (s *Service) closeSelective(ctx context.Context, item SelectiveItem, adminID int64) (*ClosedEntry, error) {
	var closed *ClosedEntry
	err := s.repo.InTransaction(ctx, func(r Repository) error {
		entry, err := r.GetOpenEntryForUpdate(ctx, item.EmployeeID)
		if err != nil {
			return err
		}
		if entry == nil {
			return ErrNoActiveEntry
		}
		if !item.ClockOutTime.After(entry.ClockIn) {
			return internal.NewValidationError("clock-out time must be after clock-in", internal.ErrCodeClockOutBeforeClockIn)
		}

		name, err := r.GetEmployeeName(ctx, item.EmployeeID)
		if err != nil {
			return err
		}

		at := s.now()
		admin := adminID
		hours := timeentry.HoursBetween(entry.ClockIn, item.ClockOutTime)
		ok, err := r.CloseIfOpen(ctx, entry.ID, CloseUpdate{
			ClockOut:    item.ClockOutTime,
			HoursWorked: hours,
			Reason:      "manual auto-clockout by admin",
			NeedsReview: false,
			CorrectedBy: &admin,
			CorrectedAt: &at,
			UpdatedAt:   at,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoActiveEntry
		}

		closed = &ClosedEntry{
			EmployeeID:  item.EmployeeID,
			Name:        name,
			ClockIn:     entry.ClockIn,
			ClockOut:    item.ClockOutTime,
			HoursWorked: hours,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// CheckAndRun runs the enforcer only once past closing time. Safe to invoke
// on a cadence finer than the policy's granularity: a second invocation
// finds no open entries and performs no work.
func (s *Service) CheckAndRun(ctx context.Context) (*Result, error) {
	now := s.now()
	if !s.schedule.ShouldRun(now) {
		return &Result{Success: true, Closed: []ClosedEntry{}}, nil
	}
	return s.Run(ctx, now, false)
}

// EnforceNow runs the enforcer at today's computed closing time regardless
// of the current wall clock, for the manual "enforce now" admin override.
func (s *Service) EnforceNow(ctx context.Context) (*Result, error) {
	return s.Run(ctx, s.schedule.ClosingTime(s.now()), false)
}

// ListOpen reports the currently open sessions, for the admin dashboard.
func (s *Service) ListOpen(ctx context.Context) ([]OpenEntry, error) {
	return s.repo.ListOpenEntries(ctx)
}

func noOvertimeReason(t time.Time) string {
	return fmt.Sprintf("no overtime: automatically clocked out at %s on %s", t.Format("15:04"), t.Weekday())
}
