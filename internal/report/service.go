package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/timeclock/internal"
)

// Service folds raw closed entries into daily, weekly, monthly and yearly
// hour totals. Pure read-side consumer; it tolerates entries still flagged
// for review.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// BuildReport aggregates the employee's closed entries over a full year, or
// a single month when month is given. A month with zero hours is included
// only when it was explicitly requested.
func (s *Service) BuildReport(ctx context.Context, employeeID int64, year int, month *int) (*Report, error) {
	if month != nil && (*month < 1 || *month > 12) {
		return nil, internal.NewValidationError("month must be between 1 and 12", internal.ErrCodeValidationFailed)
	}

	exists, err := s.repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, internal.ErrEmployeeNotFound
	}

	from, to := reportWindow(year, month)
	entries, err := s.repo.ListClosedEntries(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("failed to read entries for report", "error", err, "employee_id", employeeID, "year", year)
		return nil, err
	}

	report := &Report{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
		Months:     make([]MonthTotal, 0, 12),
	}

	// bucket hours and entry counts by (month, day-of-month)
	dayHours := make(map[dayKey]float64)
	dayEntries := make(map[dayKey]int)
	for _, entry := range entries {
		if entry.HoursWorked == nil {
			continue
		}
		local := entry.ClockIn
		key := dayKey{int(local.Month()), local.Day()}
		dayHours[key] += *entry.HoursWorked
		dayEntries[key]++
		report.TotalHours += *entry.HoursWorked
		report.TotalEntries++
	}
	report.ActiveDays = len(dayHours)
	if report.TotalEntries > 0 {
		report.AverageHours = report.TotalHours / float64(report.TotalEntries)
	}

	firstMonth, lastMonth := 1, 12
	if month != nil {
		firstMonth, lastMonth = *month, *month
	}

	for m := firstMonth; m <= lastMonth; m++ {
		monthTotal := buildMonth(year, m, dayHours, dayEntries)
		// months without activity appear only when explicitly requested
		if monthTotal.Hours == 0 && month == nil {
			continue
		}
		report.Months = append(report.Months, monthTotal)
	}

	return report, nil
}

type dayKey struct{ month, day int }

func buildMonth(year, month int, dayHours map[dayKey]float64, dayEntries map[dayKey]int) MonthTotal {
	monthTotal := MonthTotal{Month: month, Weeks: make([]WeekTotal, 0, 5)}
	days := daysInMonth(year, month)

	for weekStart := 1; weekStart <= days; weekStart += 7 {
		week := WeekTotal{Week: (weekStart-1)/7 + 1}
		weekEnd := weekStart + 6
		if weekEnd > days {
			weekEnd = days
		}

		for d := weekStart; d <= weekEnd; d++ {
			key := dayKey{month, d}
			hours, ok := dayHours[key]
			if !ok {
				continue
			}
			week.Days = append(week.Days, DayTotal{
				Date:    time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.Local).Format("2006-01-02"),
				Hours:   hours,
				Entries: dayEntries[key],
			})
			week.Hours += hours
		}

		if len(week.Days) > 0 {
			monthTotal.Weeks = append(monthTotal.Weeks, week)
			monthTotal.Hours += week.Hours
		}
	}

	return monthTotal
}

func reportWindow(year int, month *int) (time.Time, time.Time) {
	if month != nil {
		from := time.Date(year, time.Month(*month), 1, 0, 0, 0, 0, time.Local)
		return from, from.AddDate(0, 1, 0)
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	return from, from.AddDate(1, 0, 0)
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
