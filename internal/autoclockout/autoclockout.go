package autoclockout

import (
	"context"
	"time"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// OpenEntry is an open session joined with the owning employee's name, as
// read by the enforcer's snapshot scan.
type OpenEntry struct {
	EntryID      int64     `json:"entry_id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	ClockIn      time.Time `json:"clock_in"`
}

// ClosedEntry describes one entry the enforcer closed, or would close in a
// dry run.
type ClosedEntry struct {
	EmployeeID  int64     `json:"employee_id"`
	Name        string    `json:"name"`
	ClockIn     time.Time `json:"clock_in"`
	ClockOut    time.Time `json:"clock_out"`
	HoursWorked float64   `json:"hours_worked"`
}

// Result is the aggregate outcome of a bulk or selective run. Per-entry
// failures never abort the batch; they land in Errors while the rest of the
// batch proceeds.
type Result struct {
	Success     bool          `json:"success"`
	ClosedCount int           `json:"closed_count"`
	SkippedOpen int           `json:"skipped,omitempty"`
	Errors      []string      `json:"errors,omitempty"`
	Closed      []ClosedEntry `json:"closed"`
}

// SelectiveItem is one administrator-chosen employee/time pair for a
// selective run.
type SelectiveItem struct {
	EmployeeID   int64     `json:"employee_id"`
	ClockOutTime time.Time `json:"clock_out_time"`
}

// Repository defines the enforcer's data access. Close operations carry a
// clock_out IS NULL guard so an entry closed manually between the snapshot
// read and the write becomes a skip, never an overwrite.
type Repository interface {
	InTransaction(ctx context.Context, fn func(Repository) error) error
	ListOpenEntries(ctx context.Context) ([]OpenEntry, error)
	GetOpenEntryForUpdate(ctx context.Context, employeeID int64) (*timeentry.TimeEntry, error)
	// CloseIfOpen closes the entry only when it is still open. Returns false
	// without error when another writer closed it first.
	CloseIfOpen(ctx context.Context, entryID int64, update CloseUpdate) (bool, error)
	GetEmployeeName(ctx context.Context, employeeID int64) (string, error)
	IsAdmin(ctx context.Context, employeeID int64) (bool, error)
}

// CloseUpdate is the field set written when force-closing an entry.
type CloseUpdate struct {
	ClockOut    time.Time
	HoursWorked float64
	Reason      string
	NeedsReview bool
	CorrectedBy *int64
	CorrectedAt *time.Time
	UpdatedAt   time.Time
}

var ErrNoActiveEntry = internal.NewValidationError("no active entry for employee", internal.ErrCodeNoActiveClockIn)
