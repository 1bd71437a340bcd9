package employee_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/employee"
)

func TestEmployeeService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Service Suite")
}

// Mock repository for testing
type mockEmployeeRepository struct {
	employees   map[int64]*employee.Employee
	createError error
	getError    error
	nextID      int64
}

func newMockEmployeeRepository() *mockEmployeeRepository {
	return &mockEmployeeRepository{
		employees: make(map[int64]*employee.Employee),
		nextID:    1,
	}
}

func (m *mockEmployeeRepository) InTransaction(ctx context.Context, fn func(employee.Repository) error) error {
	return fn(m)
}

func (m *mockEmployeeRepository) Create(ctx context.Context, emp *employee.Employee) error {
	if m.createError != nil {
		return m.createError
	}
	emp.ID = m.nextID
	m.nextID++
	m.employees[emp.ID] = emp
	return nil
}

func (m *mockEmployeeRepository) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	emp, exists := m.employees[id]
	if !exists {
		return nil, internal.ErrEmployeeNotFound
	}
	copied := *emp
	return &copied, nil
}

func (m *mockEmployeeRepository) GetByPin(ctx context.Context, pin string) (*employee.Employee, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, emp := range m.employees {
		if emp.Pin == pin {
			copied := *emp
			return &copied, nil
		}
	}
	return nil, internal.ErrEmployeeNotFound
}

func (m *mockEmployeeRepository) List(ctx context.Context, limit, offset int) ([]*employee.Employee, error) {
	result := make([]*employee.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		result = append(result, emp)
	}
	return result, nil
}

func (m *mockEmployeeRepository) PinExists(ctx context.Context, pin string, excludeID int64) (bool, error) {
	for _, emp := range m.employees {
		if emp.Pin == pin && emp.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEmployeeRepository) UpdateVersioned(ctx context.Context, emp *employee.Employee, expectedVersion int64) (bool, error) {
	stored, exists := m.employees[emp.ID]
	if !exists || stored.Version != expectedVersion {
		return false, nil
	}
	emp.Version = expectedVersion + 1
	copied := *emp
	m.employees[emp.ID] = &copied
	return true, nil
}

func (m *mockEmployeeRepository) Delete(ctx context.Context, id int64) error {
	delete(m.employees, id)
	return nil
}

func (m *mockEmployeeRepository) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	for _, emp := range m.employees {
		if emp.IsAdmin {
			count++
		}
	}
	return count, nil
}

var _ = Describe("EmployeeService", func() {
	var (
		service  *employee.Service
		mockRepo *mockEmployeeRepository
		logger   *slog.Logger
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockEmployeeRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = employee.NewService(mockRepo, logger, bcrypt.MinCost)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should create an employee with a hashed PIN", func() {
			emp, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Alice", Pin: "1234"})

			Expect(err).ToNot(HaveOccurred())
			Expect(emp.ID).To(BeNumerically(">", 0))
			Expect(emp.Name).To(Equal("Alice"))
			Expect(emp.Pin).To(Equal("1234"))
			Expect(emp.Version).To(Equal(int64(1)))
			Expect(bcrypt.CompareHashAndPassword([]byte(emp.PinHash), []byte("1234"))).To(Succeed())
		})

		It("should reject a duplicate PIN", func() {
			_, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Alice", Pin: "1234"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Create(ctx, employee.CreateEmployeeDTO{Name: "Bob", Pin: "1234"})
			Expect(err).To(MatchError(employee.ErrPinAlreadyExists))
		})

		It("should reject a non-numeric PIN", func() {
			_, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Alice", Pin: "12ab"})
			Expect(err).To(HaveOccurred())
		})

		It("should reject a PIN of the wrong length", func() {
			_, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Alice", Pin: "123"})
			Expect(err).To(HaveOccurred())

			_, err = service.Create(ctx, employee.CreateEmployeeDTO{Name: "Alice", Pin: "12345"})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an empty name", func() {
			_, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "", Pin: "1234"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		var created *employee.Employee

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, employee.CreateEmployeeDTO{Name: "Alice", Pin: "1234"})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should update the name and bump the version", func() {
			name := "Alicia"
			updated, err := service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Name: &name, Version: created.Version})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Name).To(Equal("Alicia"))
			Expect(updated.Version).To(Equal(created.Version + 1))
		})

		It("should reject a stale version", func() {
			name := "Alicia"
			_, err := service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Name: &name, Version: created.Version + 5})

			Expect(err).To(MatchError(internal.ErrConcurrentModification))
		})

		It("should reject a second update with the first update's version", func() {
			name := "Alicia"
			_, err := service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Name: &name, Version: created.Version})
			Expect(err).ToNot(HaveOccurred())

			other := "Alice B"
			_, err = service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Name: &other, Version: created.Version})
			Expect(err).To(MatchError(internal.ErrConcurrentModification))
		})

		It("should reject a PIN already held by another employee", func() {
			_, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Bob", Pin: "5678"})
			Expect(err).ToNot(HaveOccurred())

			pin := "5678"
			_, err = service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Pin: &pin, Version: created.Version})
			Expect(err).To(MatchError(employee.ErrPinAlreadyExists))
		})

		It("should allow re-submitting the employee's own PIN", func() {
			pin := "1234"
			name := "Alicia"
			_, err := service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Name: &name, Pin: &pin, Version: created.Version})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should rehash the PIN when it changes", func() {
			pin := "9999"
			updated, err := service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Pin: &pin, Version: created.Version})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Pin).To(Equal("9999"))
			Expect(bcrypt.CompareHashAndPassword([]byte(updated.PinHash), []byte("9999"))).To(Succeed())
		})

		It("should reject an empty update", func() {
			_, err := service.Update(ctx, created.ID, employee.UpdateEmployeeDTO{Version: created.Version})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("should delete a regular employee", func() {
			emp, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Alice", Pin: "1234"})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.Delete(ctx, emp.ID)).To(Succeed())

			_, err = service.GetByID(ctx, emp.ID)
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("should refuse to delete the last admin", func() {
			admin, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Admin", Pin: "0000", IsAdmin: true})
			Expect(err).ToNot(HaveOccurred())

			err = service.Delete(ctx, admin.ID)
			Expect(err).To(MatchError(employee.ErrCannotDeleteLastAdmin))
		})

		It("should delete an admin when another admin remains", func() {
			first, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Admin A", Pin: "0000", IsAdmin: true})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Create(ctx, employee.CreateEmployeeDTO{Name: "Admin B", Pin: "1111", IsAdmin: true})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.Delete(ctx, first.ID)).To(Succeed())
		})
	})

	Describe("VerifyPin", func() {
		BeforeEach(func() {
			_, err := service.Create(ctx, employee.CreateEmployeeDTO{Name: "Alice", Pin: "1234"})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should resolve a valid PIN to its employee", func() {
			emp, err := service.VerifyPin(ctx, "1234")
			Expect(err).ToNot(HaveOccurred())
			Expect(emp.Name).To(Equal("Alice"))
		})

		It("should reject an unknown PIN", func() {
			_, err := service.VerifyPin(ctx, "9999")
			Expect(err).To(MatchError(employee.ErrInvalidCredentials))
		})

		It("should reject a malformed PIN", func() {
			_, err := service.VerifyPin(ctx, "12")
			Expect(err).To(HaveOccurred())
			Expect(err).ToNot(MatchError(employee.ErrInvalidCredentials))
		})
	})

	Describe("BootstrapAdmin", func() {
		It("should create the first admin", func() {
			emp, created, err := service.BootstrapAdmin(ctx, "Root", "0000")

			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(emp.IsAdmin).To(BeTrue())
		})

		It("should be a no-op when an admin already exists", func() {
			_, _, err := service.BootstrapAdmin(ctx, "Root", "0000")
			Expect(err).ToNot(HaveOccurred())

			emp, created, err := service.BootstrapAdmin(ctx, "Root", "1111")
			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(emp).To(BeNil())
		})
	})
})
