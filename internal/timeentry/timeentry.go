package timeentry

import (
	"context"
	"time"

	"github.com/frahmantamala/timeclock/internal"
)

// TimeEntry is one work session. A nil ClockOut means the session is open;
// at most one open entry may exist per employee at any instant.
type TimeEntry struct {
	ID                 int64      `json:"id" gorm:"primaryKey"`
	EmployeeID         int64      `json:"employee_id" gorm:"column:employee_id;not null"`
	ClockIn            time.Time  `json:"clock_in" gorm:"column:clock_in;not null"`
	ClockOut           *time.Time `json:"clock_out,omitempty" gorm:"column:clock_out"`
	HoursWorked        *float64   `json:"hours_worked,omitempty" gorm:"column:hours_worked"`
	IsAutoClockOut     bool       `json:"is_auto_clock_out" gorm:"column:is_auto_clock_out;default:false"`
	AutoClockOutReason string     `json:"auto_clock_out_reason,omitempty" gorm:"column:auto_clock_out_reason"`
	NeedsReview        bool       `json:"needs_review" gorm:"column:needs_review;default:false"`
	OriginalClockOut   *time.Time `json:"original_clock_out,omitempty" gorm:"column:original_clock_out"`
	AdminCorrected     bool       `json:"admin_corrected" gorm:"column:admin_corrected;default:false"`
	CorrectedBy        *int64     `json:"corrected_by,omitempty" gorm:"column:corrected_by"`
	CorrectedAt        *time.Time `json:"corrected_at,omitempty" gorm:"column:corrected_at"`
	AdminNotes         string     `json:"admin_notes,omitempty" gorm:"column:admin_notes"`
	CreatedAt          time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt          time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

func (e *TimeEntry) IsOpen() bool {
	return e.ClockOut == nil
}

// Close sets the clock-out time and recomputes worked hours.
func (e *TimeEntry) Close(at time.Time) {
	out := at
	hours := HoursBetween(e.ClockIn, at)
	e.ClockOut = &out
	e.HoursWorked = &hours
}

// HoursBetween returns the worked-hours value for a clock-in/out pair.
func HoursBetween(in, out time.Time) float64 {
	return out.Sub(in).Hours()
}

const MaxNotesLength = 500

// Repository defines data access for time entries. Transactional callers
// compose reads and writes through InTransaction so the active-entry
// invariant cannot be violated by interleaved requests.
type Repository interface {
	InTransaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, entry *TimeEntry) error
	GetByID(ctx context.Context, id int64) (*TimeEntry, error)
	// GetOpenEntry returns the open entry for an employee, or nil when none.
	GetOpenEntry(ctx context.Context, employeeID int64) (*TimeEntry, error)
	// GetOpenEntryForUpdate is GetOpenEntry with a row lock, for use inside
	// a transaction.
	GetOpenEntryForUpdate(ctx context.Context, employeeID int64) (*TimeEntry, error)
	Update(ctx context.Context, entry *TimeEntry) error
	ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time, limit, offset int) ([]*TimeEntry, error)
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)
}

// Domain errors
var (
	ErrAlreadyClockedIn = internal.NewConflictError("employee is already clocked in", internal.ErrCodeAlreadyClockedIn)
	ErrNoActiveClockIn  = internal.NewValidationError("employee has no active clock-in", internal.ErrCodeNoActiveClockIn)
)
