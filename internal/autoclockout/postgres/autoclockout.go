package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/autoclockout"
	"github.com/frahmantamala/timeclock/internal/database"
	"github.com/frahmantamala/timeclock/internal/employee"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// AutoClockoutRepository implements the autoclockout.Repository interface
// using GORM
type AutoClockoutRepository struct {
	db *gorm.DB
}

func NewAutoClockoutRepository(db *gorm.DB) autoclockout.Repository {
	return &AutoClockoutRepository{db: db}
}

func (r *AutoClockoutRepository) InTransaction(ctx context.Context, fn func(autoclockout.Repository) error) error {
	return database.RunInTransaction(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&AutoClockoutRepository{db: tx})
	})
}

func (r *AutoClockoutRepository) ListOpenEntries(ctx context.Context) ([]autoclockout.OpenEntry, error) {
	var rows []autoclockout.OpenEntry
	err := r.db.WithContext(ctx).
		Table("time_entries").
		Select("time_entries.id AS entry_id, time_entries.employee_id, employees.name AS employee_name, time_entries.clock_in").
		Joins("LEFT JOIN employees ON employees.id = time_entries.employee_id").
		Where("time_entries.clock_out IS NULL").
		Order("time_entries.clock_in ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *AutoClockoutRepository) GetOpenEntryForUpdate(ctx context.Context, employeeID int64) (*timeentry.TimeEntry, error) {
	var entry timeentry.TimeEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND clock_out IS NULL", employeeID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// CloseIfOpen force-closes an entry with a clock_out IS NULL guard in the
// WHERE clause: zero rows affected means another writer closed it first.
func (r *AutoClockoutRepository) CloseIfOpen(ctx context.Context, entryID int64, update autoclockout.CloseUpdate) (bool, error) {
	fields := map[string]interface{}{
		"clock_out":             update.ClockOut,
		"hours_worked":          update.HoursWorked,
		"is_auto_clock_out":     true,
		"auto_clock_out_reason": update.Reason,
		"needs_review":          update.NeedsReview,
		"updated_at":            update.UpdatedAt,
	}
	if update.CorrectedBy != nil {
		fields["admin_corrected"] = true
		fields["corrected_by"] = *update.CorrectedBy
		fields["corrected_at"] = update.CorrectedAt
	}

	res := r.db.WithContext(ctx).
		Model(&timeentry.TimeEntry{}).
		Where("id = ? AND clock_out IS NULL", entryID).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AutoClockoutRepository) GetEmployeeName(ctx context.Context, employeeID int64) (string, error) {
	var emp employee.Employee
	err := r.db.WithContext(ctx).
		Select("name").
		Where("id = ?", employeeID).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", internal.ErrEmployeeNotFound
		}
		return "", err
	}
	return emp.Name, nil
}

func (r *AutoClockoutRepository) IsAdmin(ctx context.Context, employeeID int64) (bool, error) {
	var emp employee.Employee
	err := r.db.WithContext(ctx).
		Select("is_admin").
		Where("id = ?", employeeID).
		First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, internal.ErrEmployeeNotFound
		}
		return false, err
	}
	return emp.IsAdmin, nil
}
