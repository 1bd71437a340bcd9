package report

import (
	"context"
	"time"

	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// DayTotal aggregates all sessions whose clock-in falls on one local
// calendar date.
type DayTotal struct {
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	Entries int     `json:"entries"`
}

// WeekTotal is a 7-day window anchored to the 1st of the month: week 1 is
// days 1-7, week 2 days 8-14, and so on. The final week of a month may be
// shorter. Independent of ISO week numbering.
type WeekTotal struct {
	Week  int        `json:"week"`
	Hours float64    `json:"hours"`
	Days  []DayTotal `json:"days"`
}

type MonthTotal struct {
	Month int         `json:"month"`
	Hours float64     `json:"hours"`
	Weeks []WeekTotal `json:"weeks"`
}

// Report is the hierarchical day/week/month/year aggregation for one
// employee and period.
type Report struct {
	EmployeeID   int64        `json:"employee_id"`
	Year         int          `json:"year"`
	Month        *int         `json:"month,omitempty"`
	Months       []MonthTotal `json:"months"`
	TotalHours   float64      `json:"total_hours"`
	TotalEntries int          `json:"total_entries"`
	AverageHours float64      `json:"average_hours_per_entry"`
	ActiveDays   int          `json:"active_days"`
}

// Repository is the read-side access the engine needs; it never writes.
type Repository interface {
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)
	// ListClosedEntries returns closed entries with clock_in in [from, to),
	// ordered by clock_in ascending.
	ListClosedEntries(ctx context.Context, employeeID int64, from, to time.Time) ([]*timeentry.TimeEntry, error)
}
