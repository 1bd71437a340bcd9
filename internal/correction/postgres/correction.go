package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/correction"
	"github.com/frahmantamala/timeclock/internal/database"
	"github.com/frahmantamala/timeclock/internal/employee"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// CorrectionRepository implements the correction.Repository interface using
// GORM
type CorrectionRepository struct {
	db *gorm.DB
}

func NewCorrectionRepository(db *gorm.DB) correction.Repository {
	return &CorrectionRepository{db: db}
}

func (r *CorrectionRepository) InTransaction(ctx context.Context, fn func(correction.Repository) error) error {
	return database.RunInTransaction(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&CorrectionRepository{db: tx})
	})
}

func (r *CorrectionRepository) GetEntryForUpdate(ctx context.Context, entryID int64) (*timeentry.TimeEntry, error) {
	var entry timeentry.TimeEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", entryID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *CorrectionRepository) UpdateEntry(ctx context.Context, entry *timeentry.TimeEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *CorrectionRepository) ListClosedByIDs(ctx context.Context, entryIDs []int64) ([]*timeentry.TimeEntry, error) {
	var entries []*timeentry.TimeEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND clock_out IS NOT NULL", entryIDs).
		Order("clock_in ASC").
		Find(&entries).Error
	return entries, err
}

func (r *CorrectionRepository) ListNeedingReview(ctx context.Context, employeeID *int64) ([]*timeentry.TimeEntry, error) {
	var entries []*timeentry.TimeEntry
	q := r.db.WithContext(ctx).Where("needs_review = ?", true)
	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	err := q.Order("clock_out ASC").Find(&entries).Error
	return entries, err
}

func (r *CorrectionRepository) EmployeeNames(ctx context.Context, employeeIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return names, nil
	}

	var employees []*employee.Employee
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("id IN ?", employeeIDs).
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	for _, emp := range employees {
		names[emp.ID] = emp.Name
	}
	return names, nil
}

func (r *CorrectionRepository) IsAdmin(ctx context.Context, employeeID int64) (bool, error) {
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
