package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/timeclock/internal/employee"
	"github.com/frahmantamala/timeclock/internal/report"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

// ReportRepository implements the report.Repository interface using GORM
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) report.Repository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
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

func (r *ReportRepository) ListClosedEntries(ctx context.Context, employeeID int64, from, to time.Time) ([]*timeentry.TimeEntry, error) {
	var entries []*timeentry.TimeEntry
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND clock_out IS NOT NULL AND clock_in >= ? AND clock_in < ?", employeeID, from, to).
		Order("clock_in ASC").
		Find(&entries).Error
	return entries, err
}
