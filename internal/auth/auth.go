package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/employee"
)

// EmployeeVerifier resolves a PIN to an employee. Implemented by the
// employee service.
type EmployeeVerifier interface {
	VerifyPin(ctx context.Context, pin string) (*employee.Employee, error)
	GetByID(ctx context.Context, id int64) (*employee.Employee, error)
}

type TokenGeneratorAPI interface {
	GenerateToken(employeeID int64, isAdmin bool) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Claims struct {
	EmployeeID int64 `json:"employee_id"`
	IsAdmin    bool  `json:"is_admin"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret   []byte
	TokenTTL time.Duration
}

type LoginDTO struct {
	Pin string `json:"pin"`
}

func (dto LoginDTO) Validate() error {
	if len(dto.Pin) != employee.PinLength {
		return internal.NewValidationError("pin must be exactly 4 digits", internal.ErrCodeInvalidPin)
	}
	for _, r := range dto.Pin {
		if r < '0' || r > '9' {
			return internal.NewValidationError("pin must be exactly 4 digits", internal.ErrCodeInvalidPin)
		}
	}
	return nil
}

type LoginResponse struct {
	Token    string             `json:"token"`
	Employee *employee.Employee `json:"employee"`
}

// Domain errors
var (
	ErrInvalidToken = internal.NewUnauthorizedError("invalid token", internal.ErrCodeInvalidToken)
	ErrTokenExpired = internal.NewUnauthorizedError("token has expired", internal.ErrCodeTokenExpired)
)

type ctxKey string

const contextEmployeeKey ctxKey = "authEmployee"

// AuthenticatedEmployee is what the middleware stores in the request context.
type AuthenticatedEmployee struct {
	ID      int64
	Name    string
	IsAdmin bool
}

func ContextWithEmployee(ctx context.Context, emp *AuthenticatedEmployee) context.Context {
	return context.WithValue(ctx, contextEmployeeKey, emp)
}

func EmployeeFromContext(ctx context.Context) (*AuthenticatedEmployee, bool) {
	emp, ok := ctx.Value(contextEmployeeKey).(*AuthenticatedEmployee)
	return emp, ok
}
