package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/database"
	"github.com/frahmantamala/timeclock/internal/employee"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// TimeEntryRepository implements the timeentry.Repository interface using GORM
type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) timeentry.Repository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) InTransaction(ctx context.Context, fn func(timeentry.Repository) error) error {
	return database.RunInTransaction(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&TimeEntryRepository{db: tx})
	})
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *timeentry.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id int64) (*timeentry.TimeEntry, error) {
	var entry timeentry.TimeEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) GetOpenEntry(ctx context.Context, employeeID int64) (*timeentry.TimeEntry, error) {
	return r.getOpen(ctx, employeeID, false)
}

func (r *TimeEntryRepository) GetOpenEntryForUpdate(ctx context.Context, employeeID int64) (*timeentry.TimeEntry, error) {
	return r.getOpen(ctx, employeeID, true)
}

func (r *TimeEntryRepository) getOpen(ctx context.Context, employeeID int64, forUpdate bool) (*timeentry.TimeEntry, error) {
	var entry timeentry.TimeEntry
	q := r.db.WithContext(ctx).Where("employee_id = ? AND clock_out IS NULL", employeeID)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) Update(ctx context.Context, entry *timeentry.TimeEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *TimeEntryRepository) ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time, limit, offset int) ([]*timeentry.TimeEntry, error) {
	var entries []*timeentry.TimeEntry
	q := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if !from.IsZero() {
		q = q.Where("clock_in >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("clock_in < ?", to)
	}
	err := q.Order("clock_in DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *TimeEntryRepository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&employee.Employee{}).
		Where("id = ?", employeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
