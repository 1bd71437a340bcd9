package employee

import (
	"context"
	"time"

	"github.com/frahmantamala/timeclock/internal"
)

// Employee is an identity record. The PIN is stored twice on purpose: a
// bcrypt hash used for verification, and the admin-viewable plaintext value
// used for uniqueness checks and display on the admin console.
type Employee struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Pin       string    `json:"pin" gorm:"column:pin;not null"`
	PinHash   string    `json:"-" gorm:"column:pin_hash;not null"`
	IsAdmin   bool      `json:"is_admin" gorm:"column:is_admin;default:false"`
	Version   int64     `json:"version" gorm:"column:version;default:1"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// Repository defines data access for employees. InTransaction yields a
// repository bound to the transaction so checks and writes stay atomic.
type Repository interface {
	InTransaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, emp *Employee) error
	GetByID(ctx context.Context, id int64) (*Employee, error)
	GetByPin(ctx context.Context, pin string) (*Employee, error)
	List(ctx context.Context, limit, offset int) ([]*Employee, error)
	PinExists(ctx context.Context, pin string, excludeID int64) (bool, error)
	UpdateVersioned(ctx context.Context, emp *Employee, expectedVersion int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	CountAdmins(ctx context.Context) (int64, error)
}

const (
	MaxNameLength = 50
	PinLength     = 4
)

// Domain errors
var (
	ErrPinAlreadyExists      = internal.NewConflictError("an employee with this PIN already exists", internal.ErrCodePinAlreadyExists)
	ErrCannotDeleteLastAdmin = internal.NewValidationError("cannot delete the last remaining admin", internal.ErrCodeCannotDeleteLastAdmin)
	ErrInvalidCredentials    = internal.NewUnauthorizedError("invalid PIN", internal.ErrCodeInvalidCredentials)
)

// CreateEmployeeDTO is the payload for creating an employee.
type CreateEmployeeDTO struct {
	Name    string `json:"name"`
	Pin     string `json:"pin"`
	IsAdmin bool   `json:"is_admin"`
}

func (dto CreateEmployeeDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeInvalidName)
	}
	if len(dto.Name) > MaxNameLength {
		return internal.NewValidationError("name must be at most 50 characters", internal.ErrCodeInvalidName)
	}
	if !isValidPin(dto.Pin) {
		return internal.NewValidationError("pin must be exactly 4 digits", internal.ErrCodeInvalidPin)
	}
	return nil
}

// UpdateEmployeeDTO carries a partial update plus the version the caller
// read, for the optimistic-concurrency check.
type UpdateEmployeeDTO struct {
	Name    *string `json:"name,omitempty"`
	Pin     *string `json:"pin,omitempty"`
	IsAdmin *bool   `json:"is_admin,omitempty"`
	Version int64   `json:"version"`
}

func (dto UpdateEmployeeDTO) Validate() error {
	if dto.Name == nil && dto.Pin == nil && dto.IsAdmin == nil {
		return internal.NewValidationError("no fields to update", internal.ErrCodeValidationFailed)
	}
	if dto.Name != nil {
		if *dto.Name == "" {
			return internal.NewValidationError("name cannot be empty", internal.ErrCodeInvalidName)
		}
		if len(*dto.Name) > MaxNameLength {
			return internal.NewValidationError("name must be at most 50 characters", internal.ErrCodeInvalidName)
		}
	}
	if dto.Pin != nil && !isValidPin(*dto.Pin) {
		return internal.NewValidationError("pin must be exactly 4 digits", internal.ErrCodeInvalidPin)
	}
	if dto.Version <= 0 {
		return internal.NewValidationError("version is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

func isValidPin(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
