package auth_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/auth"
	"github.com/frahmantamala/timeclock/internal/employee"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Module Suite")
}

// Mock employee verifier for testing
type mockEmployeeVerifier struct {
	byPin map[string]*employee.Employee
	byID  map[int64]*employee.Employee
}

func newMockEmployeeVerifier() *mockEmployeeVerifier {
	return &mockEmployeeVerifier{
		byPin: make(map[string]*employee.Employee),
		byID:  make(map[int64]*employee.Employee),
	}
}

func (m *mockEmployeeVerifier) add(emp *employee.Employee) {
	m.byPin[emp.Pin] = emp
	m.byID[emp.ID] = emp
}

func (m *mockEmployeeVerifier) VerifyPin(ctx context.Context, pin string) (*employee.Employee, error) {
	emp, exists := m.byPin[pin]
	if !exists {
		return nil, employee.ErrInvalidCredentials
	}
	return emp, nil
}

func (m *mockEmployeeVerifier) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	emp, exists := m.byID[id]
	if !exists {
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

var _ = Describe("AuthService", func() {
	const secret = "test-secret-at-least-32-characters-long"

	var (
		service  *auth.Service
		verifier *mockEmployeeVerifier
		tokens   *auth.JWTTokenGenerator
		ctx      context.Context
	)

	BeforeEach(func() {
		verifier = newMockEmployeeVerifier()
		tokens = auth.NewJWTTokenGenerator(secret, time.Hour)
		service = auth.NewService(verifier, tokens)
		ctx = context.Background()

		verifier.add(&employee.Employee{ID: 1, Name: "Alice", Pin: "1234"})
		verifier.add(&employee.Employee{ID: 2, Name: "Root", Pin: "0000", IsAdmin: true})
	})

	Describe("Login", func() {
		It("should issue a token for a valid PIN", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Pin: "1234"})

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Token).ToNot(BeEmpty())
			Expect(resp.Employee.ID).To(Equal(int64(1)))
		})

		It("should embed the employee ID and admin flag in the token", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Pin: "0000"})
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ValidateToken(resp.Token)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.EmployeeID).To(Equal(int64(2)))
			Expect(claims.IsAdmin).To(BeTrue())
		})

		It("should reject an unknown PIN", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Pin: "9999"})
			Expect(err).To(MatchError(employee.ErrInvalidCredentials))
		})

		It("should reject a malformed PIN without hitting the verifier", func() {
			_, err := service.Login(ctx, auth.LoginDTO{Pin: "12"})
			Expect(err).To(HaveOccurred())
			Expect(err).ToNot(MatchError(employee.ErrInvalidCredentials))
		})
	})

	Describe("ValidateToken", func() {
		It("should reject garbage tokens", func() {
			_, err := service.ValidateToken("not-a-token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject a token signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator("a-completely-different-32-char-secret!!", time.Hour)
			token, err := other.GenerateToken(1, false)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateToken(token)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject an expired token", func() {
			shortLived := auth.NewJWTTokenGenerator(secret, -time.Minute)
			token, err := shortLived.GenerateToken(1, false)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateToken(token)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})
	})

	Describe("GetEmployee", func() {
		It("should reflect the current admin flag, not the token's", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Pin: "0000"})
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ValidateToken(resp.Token)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.IsAdmin).To(BeTrue())

			// admin privileges revoked after the token was issued
			verifier.byID[2].IsAdmin = false

			current, err := service.GetEmployee(ctx, claims.EmployeeID)
			Expect(err).ToNot(HaveOccurred())
			Expect(current.IsAdmin).To(BeFalse())
		})

		It("should fail for a deleted employee", func() {
			delete(verifier.byID, 1)
			_, err := service.GetEmployee(ctx, 1)
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})
	})
})
