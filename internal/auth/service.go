package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service authenticates employees by PIN and issues access tokens.
type Service struct {
	employees EmployeeVerifier
	tokens    TokenGeneratorAPI
}

func NewService(employees EmployeeVerifier, tokens TokenGeneratorAPI) *Service {
	return &Service{
		employees: employees,
		tokens:    tokens,
	}
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		TokenTTL: ttl,
	}
}

// Login verifies the PIN and returns a signed token plus the employee record.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.employees.VerifyPin(ctx, dto.Pin)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(emp.ID, emp.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{Token: token, Employee: emp}, nil
}

// ValidateToken parses and validates an access token.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// GetEmployee re-reads the employee behind a token so revoked admin flags
// take effect without waiting for token expiry.
func (s *Service) GetEmployee(ctx context.Context, id int64) (*AuthenticatedEmployee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AuthenticatedEmployee{ID: emp.ID, Name: emp.Name, IsAdmin: emp.IsAdmin}, nil
}

func (j *JWTTokenGenerator) GenerateToken(employeeID int64, isAdmin bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		EmployeeID: employeeID,
		IsAdmin:    isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(employeeID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
