package correction

import (
	"context"
	"time"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// Batch actions
const (
	ActionMarkCorrect  = "mark-correct"
	ActionBatchCorrect = "batch-correct"
)

// Review priorities derived from the age of the oldest flagged entry.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Domain errors
var (
	ErrEntryStillActive = internal.NewValidationError("cannot correct an entry that is still active", internal.ErrCodeEntryStillActive)
	ErrClockOutBeforeIn = internal.NewValidationError("clock-out must be after clock-in", internal.ErrCodeClockOutBeforeClockIn)
	ErrFutureClockOut   = internal.NewValidationError("clock-out cannot be in the future", internal.ErrCodeFutureClockOut)
	ErrInvalidRequest   = internal.NewValidationError("exactly one of mark_as_correct or new_clock_out must be provided", internal.ErrCodeInvalidCorrectionRequest)
)

// CorrectionDTO is the payload for correcting a single entry. Exactly one
// mode applies: mark the stored time as correct, or replace it.
type CorrectionDTO struct {
	NewClockOut   *time.Time `json:"new_clock_out,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	MarkAsCorrect bool       `json:"mark_as_correct,omitempty"`
}

func (dto CorrectionDTO) Validate() error {
	if dto.MarkAsCorrect == (dto.NewClockOut != nil) {
		return ErrInvalidRequest
	}
	if dto.Notes != nil && len(*dto.Notes) > timeentry.MaxNotesLength {
		return internal.NewValidationError("notes must be at most 500 characters", internal.ErrCodeInvalidNotes)
	}
	return nil
}

// BatchCorrectionDTO is the payload for a bulk action across many entries.
type BatchCorrectionDTO struct {
	Action       string     `json:"action"`
	EntryIDs     []int64    `json:"entry_ids"`
	ClockOutTime *time.Time `json:"clock_out_time,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

func (dto BatchCorrectionDTO) Validate() error {
	if dto.Action != ActionMarkCorrect && dto.Action != ActionBatchCorrect {
		return internal.NewValidationError("action must be mark-correct or batch-correct", internal.ErrCodeValidationFailed)
	}
	if len(dto.EntryIDs) == 0 {
		return internal.NewValidationError("entry_ids is required", internal.ErrCodeValidationFailed)
	}
	if dto.Action == ActionBatchCorrect && dto.ClockOutTime == nil {
		return internal.NewValidationError("clock_out_time is required for batch-correct", internal.ErrCodeInvalidTime)
	}
	if dto.Notes != nil && len(*dto.Notes) > timeentry.MaxNotesLength {
		return internal.NewValidationError("notes must be at most 500 characters", internal.ErrCodeInvalidNotes)
	}
	return nil
}

// ReviewEntry is one flagged entry inside an employee's review group.
type ReviewEntry struct {
	EntryID     int64      `json:"entry_id"`
	ClockIn     time.Time  `json:"clock_in"`
	ClockOut    *time.Time `json:"clock_out,omitempty"`
	HoursWorked *float64   `json:"hours_worked,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	FlaggedAt   time.Time  `json:"flagged_at"`
}

// EmployeeReviewGroup aggregates an employee's entries pending review.
type EmployeeReviewGroup struct {
	EmployeeID   int64         `json:"employee_id"`
	EmployeeName string        `json:"employee_name"`
	TotalEntries int           `json:"total_entries"`
	TotalHours   float64       `json:"total_hours"`
	Priority     string        `json:"priority"`
	OldestFlag   time.Time     `json:"oldest_flagged_at"`
	Entries      []ReviewEntry `json:"entries"`
}

// ReviewSummary is the full grouping plus overall stats.
type ReviewSummary struct {
	Groups       []EmployeeReviewGroup `json:"groups"`
	TotalEntries int                   `json:"total_entries"`
	TotalHours   float64               `json:"total_hours"`
}

// Repository defines the workflow's data access. The admin check, the entry
// lookup and the write compose inside InTransaction so privilege revocation
// or a concurrent mutation cannot race with a correction.
type Repository interface {
	InTransaction(ctx context.Context, fn func(Repository) error) error
	GetEntryForUpdate(ctx context.Context, entryID int64) (*timeentry.TimeEntry, error)
	UpdateEntry(ctx context.Context, entry *timeentry.TimeEntry) error
	ListClosedByIDs(ctx context.Context, entryIDs []int64) ([]*timeentry.TimeEntry, error)
	ListNeedingReview(ctx context.Context, employeeID *int64) ([]*timeentry.TimeEntry, error)
	EmployeeNames(ctx context.Context, employeeIDs []int64) (map[int64]string, error)
	IsAdmin(ctx context.Context, employeeID int64) (bool, error)
}
