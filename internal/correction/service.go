package correction

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// Service owns the correction and review workflow for closed entries.
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

// CorrectEntry alters a closed entry's clock-out time or accepts it as-is.
// On the first correction of an auto-clockout entry the original value is
// preserved in originalClockOut and never overwritten afterwards. Both modes
// clear the review flag and stamp the corrector.
func (s *Service) CorrectEntry(ctx context.Context, entryID, adminID int64, dto CorrectionDTO) (*timeentry.TimeEntry, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("correction validation failed", "error", err, "entry_id", entryID)
		return nil, err
	}

	var corrected *timeentry.TimeEntry
	err := s.repo.InTransaction(ctx, func(r Repository) error {
		isAdmin, err := r.IsAdmin(ctx, adminID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return internal.ErrAdminPrivilegesRequired
		}

		entry, err := r.GetEntryForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.IsOpen() {
			return ErrEntryStillActive
		}

		if dto.NewClockOut != nil {
			newOut := *dto.NewClockOut
			if !newOut.After(entry.ClockIn) {
				return ErrClockOutBeforeIn
			}
			if newOut.After(s.now()) {
				return ErrFutureClockOut
			}

			// preserve the auto-assigned value exactly once
			if entry.IsAutoClockOut && entry.OriginalClockOut == nil {
				entry.OriginalClockOut = entry.ClockOut
			}
			entry.Close(newOut)
		}

		at := s.now()
		admin := adminID
		entry.AdminCorrected = true
		entry.NeedsReview = false
		entry.CorrectedBy = &admin
		entry.CorrectedAt = &at
		if dto.Notes != nil {
			entry.AdminNotes = *dto.Notes
		}
		entry.UpdatedAt = at

		if err := r.UpdateEntry(ctx, entry); err != nil {
			return err
		}
		corrected = entry
		return nil
	})
	if err != nil {
		s.logger.Error("failed to correct entry", "error", err, "entry_id", entryID, "admin_id", adminID)
		return nil, err
	}

	s.logger.Info("entry corrected",
		"entry_id", entryID,
		"admin_id", adminID,
		"mark_as_correct", dto.MarkAsCorrect)
	return corrected, nil
}

// BatchCorrect applies one action across many entries. Only entries that are
// actually closed participate; for batch-correct, entries whose clock-in is
// not before the uniform time are silently excluded rather than failing the
// batch. Returns the number of entries actually modified.
func (s *Service) BatchCorrect(ctx context.Context, adminID int64, dto BatchCorrectionDTO) (int, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("batch correction validation failed", "error", err)
		return 0, err
	}
	if dto.Action == ActionBatchCorrect && dto.ClockOutTime.After(s.now()) {
		return 0, ErrFutureClockOut
	}

	modified := 0
	err := s.repo.InTransaction(ctx, func(r Repository) error {
		isAdmin, err := r.IsAdmin(ctx, adminID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return internal.ErrAdminPrivilegesRequired
		}

		entries, err := r.ListClosedByIDs(ctx, dto.EntryIDs)
		if err != nil {
			return err
		}

		at := s.now()
		admin := adminID
		for _, entry := range entries {
			if dto.Action == ActionBatchCorrect {
				if !dto.ClockOutTime.After(entry.ClockIn) {
					// would become logically inconsistent; excluded, not failed
					continue
				}
				if entry.IsAutoClockOut && entry.OriginalClockOut == nil {
					entry.OriginalClockOut = entry.ClockOut
				}
				entry.Close(*dto.ClockOutTime)
			}

			entry.AdminCorrected = true
			entry.NeedsReview = false
			entry.CorrectedBy = &admin
			entry.CorrectedAt = &at
			if dto.Notes != nil {
				entry.AdminNotes = *dto.Notes
			}
			entry.UpdatedAt = at

			if err := r.UpdateEntry(ctx, entry); err != nil {
				return err
			}
			modified++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("batch correction failed", "error", err, "admin_id", adminID, "action", dto.Action)
		return 0, err
	}

	s.logger.Info("batch correction applied",
		"admin_id", adminID,
		"action", dto.Action,
		"requested", len(dto.EntryIDs),
		"modified", modified)
	return modified, nil
}

// GroupNeedingReview aggregates all flagged entries by employee and derives
// a priority from how long the oldest one has been waiting. Employees with
// the oldest pending entry come first; ties break by entry count descending.
func (s *Service) GroupNeedingReview(ctx context.Context, employeeID *int64) (*ReviewSummary, error) {
	entries, err := s.repo.ListNeedingReview(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to list entries needing review", "error", err)
		return nil, err
	}

	byEmployee := make(map[int64][]*timeentry.TimeEntry)
	ids := make([]int64, 0)
	for _, entry := range entries {
		if _, seen := byEmployee[entry.EmployeeID]; !seen {
			ids = append(ids, entry.EmployeeID)
		}
		byEmployee[entry.EmployeeID] = append(byEmployee[entry.EmployeeID], entry)
	}

	names, err := s.repo.EmployeeNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &ReviewSummary{Groups: make([]EmployeeReviewGroup, 0, len(ids))}

	for _, id := range ids {
		group := EmployeeReviewGroup{
			EmployeeID:   id,
			EmployeeName: names[id],
		}

		flagged := byEmployee[id]
		sort.Slice(flagged, func(i, j int) bool {
			return flaggedAt(flagged[i]).Before(flaggedAt(flagged[j]))
		})

		for _, entry := range flagged {
			group.Entries = append(group.Entries, ReviewEntry{
				EntryID:     entry.ID,
				ClockIn:     entry.ClockIn,
				ClockOut:    entry.ClockOut,
				HoursWorked: entry.HoursWorked,
				Reason:      entry.AutoClockOutReason,
				FlaggedAt:   flaggedAt(entry),
			})
			if entry.HoursWorked != nil {
				group.TotalHours += *entry.HoursWorked
			}
		}
		group.TotalEntries = len(group.Entries)
		group.OldestFlag = group.Entries[0].FlaggedAt
		group.Priority = priorityForAge(now.Sub(group.OldestFlag))

		summary.Groups = append(summary.Groups, group)
		summary.TotalEntries += group.TotalEntries
		summary.TotalHours += group.TotalHours
	}

	sort.Slice(summary.Groups, func(i, j int) bool {
		gi, gj := summary.Groups[i], summary.Groups[j]
		if !gi.OldestFlag.Equal(gj.OldestFlag) {
			return gi.OldestFlag.Before(gj.OldestFlag)
		}
		return gi.TotalEntries > gj.TotalEntries
	})

	return summary, nil
}

// flaggedAt is the instant the entry entered review: the auto-assigned
// clock-out for auto-clockout entries, else the last update.
func flaggedAt(entry *timeentry.TimeEntry) time.Time {
	if entry.ClockOut != nil {
		return *entry.ClockOut
	}
	return entry.UpdatedAt
}

func priorityForAge(age time.Duration) string {
	switch {
	case age >= 72*time.Hour:
		return PriorityHigh
	case age >= 24*time.Hour:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
