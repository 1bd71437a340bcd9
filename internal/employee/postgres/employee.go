package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/database"
	"github.com/frahmantamala/timeclock/internal/employee"
)

// EmployeeRepository implements the employee.Repository interface using GORM
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) InTransaction(ctx context.Context, fn func(employee.Repository) error) error {
	return database.RunInTransaction(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&EmployeeRepository{db: tx})
	})
}

func (r *EmployeeRepository) Create(ctx context.Context, emp *employee.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) GetByPin(ctx context.Context, pin string) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.WithContext(ctx).Where("pin = ?", pin).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) List(ctx context.Context, limit, offset int) ([]*employee.Employee, error) {
	var employees []*employee.Employee
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) PinExists(ctx context.Context, pin string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&employee.Employee{}).Where("pin = ?", pin)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateVersioned writes the record only when the stored version still
// matches expectedVersion, incrementing the version in the same statement.
// Returns false when another writer won the race.
func (r *EmployeeRepository) UpdateVersioned(ctx context.Context, emp *employee.Employee, expectedVersion int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&employee.Employee{}).
		Where("id = ? AND version = ?", emp.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":       emp.Name,
			"pin":        emp.Pin,
			"pin_hash":   emp.PinHash,
			"is_admin":   emp.IsAdmin,
			"version":    expectedVersion + 1,
			"updated_at": emp.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	emp.Version = expectedVersion + 1
	return true, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&employee.Employee{}, id).Error
}

func (r *EmployeeRepository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&employee.Employee{}).
		Where("is_admin = ?", true).
		Count(&count).Error
	return count, err
}
