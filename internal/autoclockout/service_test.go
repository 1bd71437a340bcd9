package autoclockout_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/autoclockout"
	"github.com/frahmantamala/timeclock/internal/timeentry"
)

func TestAutoClockout(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AutoClockout Suite")
}

// Mock repository for testing
type mockAutoClockoutRepository struct {
	entries    map[int64]*timeentry.TimeEntry
	names      map[int64]string
	admins     map[int64]bool
	listError  error
	closeError map[int64]error
	// when set, ListOpenEntries returns this snapshot instead of scanning,
	// to simulate a writer racing ahead of the enforcer
	staleOpen []autoclockout.OpenEntry
	nextID    int64
}

func newMockAutoClockoutRepository() *mockAutoClockoutRepository {
	return &mockAutoClockoutRepository{
		entries:    make(map[int64]*timeentry.TimeEntry),
		names:      make(map[int64]string),
		admins:     make(map[int64]bool),
		closeError: make(map[int64]error),
		nextID:     1,
	}
}

func (m *mockAutoClockoutRepository) addOpenEntry(employeeID int64, clockIn time.Time) *timeentry.TimeEntry {
	entry := &timeentry.TimeEntry{
		ID:         m.nextID,
		EmployeeID: employeeID,
		ClockIn:    clockIn,
	}
	m.nextID++
	m.entries[entry.ID] = entry
	return entry
}

func (m *mockAutoClockoutRepository) InTransaction(ctx context.Context, fn func(autoclockout.Repository) error) error {
	return fn(m)
}

func (m *mockAutoClockoutRepository) ListOpenEntries(ctx context.Context) ([]autoclockout.OpenEntry, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	if m.staleOpen != nil {
		return m.staleOpen, nil
	}
	open := make([]autoclockout.OpenEntry, 0)
	for _, e := range m.entries {
		if e.IsOpen() {
			open = append(open, autoclockout.OpenEntry{
				EntryID:      e.ID,
				EmployeeID:   e.EmployeeID,
				EmployeeName: m.names[e.EmployeeID],
				ClockIn:      e.ClockIn,
			})
		}
	}
	return open, nil
}

func (m *mockAutoClockoutRepository) GetOpenEntryForUpdate(ctx context.Context, employeeID int64) (*timeentry.TimeEntry, error) {
	for _, e := range m.entries {
		if e.EmployeeID == employeeID && e.IsOpen() {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockAutoClockoutRepository) CloseIfOpen(ctx context.Context, entryID int64, update autoclockout.CloseUpdate) (bool, error) {
	if err := m.closeError[entryID]; err != nil {
		return false, err
	}
	entry, exists := m.entries[entryID]
	if !exists || !entry.IsOpen() {
		return false, nil
	}
	out := update.ClockOut
	hours := update.HoursWorked
	entry.ClockOut = &out
	entry.HoursWorked = &hours
	entry.IsAutoClockOut = true
	entry.AutoClockOutReason = update.Reason
	entry.NeedsReview = update.NeedsReview
	entry.AdminCorrected = update.CorrectedBy != nil
	entry.CorrectedBy = update.CorrectedBy
	entry.CorrectedAt = update.CorrectedAt
	entry.UpdatedAt = update.UpdatedAt
	return true, nil
}

func (m *mockAutoClockoutRepository) GetEmployeeName(ctx context.Context, employeeID int64) (string, error) {
	name, exists := m.names[employeeID]
	if !exists {
		return "", internal.ErrEmployeeNotFound
	}
	return name, nil
}

func (m *mockAutoClockoutRepository) IsAdmin(ctx context.Context, employeeID int64) (bool, error) {
	return m.admins[employeeID], nil
}

var _ = Describe("AutoClockoutService", func() {
	var (
		service  *autoclockout.Service
		mockRepo *mockAutoClockoutRepository
		logger   *slog.Logger
		ctx      context.Context
		target   time.Time
	)

	BeforeEach(func() {
		mockRepo = newMockAutoClockoutRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = autoclockout.NewService(mockRepo, autoclockout.DefaultSchedule(), logger)
		ctx = context.Background()
		// a Monday
		target = time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

		mockRepo.names[1] = "Alice"
		mockRepo.names[2] = "Bob"
		mockRepo.names[3] = "Carol"
	})

	Describe("Run", func() {
		Context("with several open entries", func() {
			It("should close all of them at the target time and flag them for review", func() {
				mockRepo.addOpenEntry(1, target.Add(-8*time.Hour))
				mockRepo.addOpenEntry(2, target.Add(-4*time.Hour))

				result, err := service.Run(ctx, target, false)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Success).To(BeTrue())
				Expect(result.ClosedCount).To(Equal(2))
				for _, e := range mockRepo.entries {
					Expect(e.IsOpen()).To(BeFalse())
					Expect(*e.ClockOut).To(Equal(target))
					Expect(e.IsAutoClockOut).To(BeTrue())
					Expect(e.NeedsReview).To(BeTrue())
					Expect(e.AutoClockOutReason).To(ContainSubstring("no overtime"))
				}
			})

			It("should compute worked hours from each entry's own clock-in", func() {
				mockRepo.addOpenEntry(1, target.Add(-8*time.Hour))

				result, err := service.Run(ctx, target, false)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Closed).To(HaveLen(1))
				Expect(result.Closed[0].HoursWorked).To(BeNumerically("~", 8.0, 1e-9))
			})
		})

		Context("with no open entries", func() {
			It("should succeed with nothing closed", func() {
				result, err := service.Run(ctx, target, false)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Success).To(BeTrue())
				Expect(result.ClosedCount).To(Equal(0))
				Expect(result.Closed).To(BeEmpty())
			})
		})

		Context("when run twice", func() {
			It("should find nothing to close on the second run", func() {
				mockRepo.addOpenEntry(1, target.Add(-8*time.Hour))

				first, err := service.Run(ctx, target, false)
				Expect(err).ToNot(HaveOccurred())
				Expect(first.ClosedCount).To(Equal(1))

				second, err := service.Run(ctx, target, false)
				Expect(err).ToNot(HaveOccurred())
				Expect(second.Success).To(BeTrue())
				Expect(second.ClosedCount).To(Equal(0))
			})
		})

		Context("in dry-run mode", func() {
			It("should report candidates without writing", func() {
				entry := mockRepo.addOpenEntry(1, target.Add(-8*time.Hour))

				result, err := service.Run(ctx, target, true)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.ClosedCount).To(Equal(1))
				Expect(result.Closed).To(HaveLen(1))
				Expect(entry.IsOpen()).To(BeTrue())
			})
		})

		Context("when one entry has a clock-in at or after the target time", func() {
			It("should record an error for it and still close the others", func() {
				bad := mockRepo.addOpenEntry(1, target.Add(time.Hour))
				good := mockRepo.addOpenEntry(2, target.Add(-4*time.Hour))

				result, err := service.Run(ctx, target, false)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Success).To(BeFalse())
				Expect(result.Errors).To(HaveLen(1))
				Expect(result.ClosedCount).To(Equal(1))
				Expect(bad.IsOpen()).To(BeTrue())
				Expect(good.IsOpen()).To(BeFalse())
			})
		})

		Context("when a close fails for one entry", func() {
			It("should isolate the failure", func() {
				failing := mockRepo.addOpenEntry(1, target.Add(-8*time.Hour))
				mockRepo.addOpenEntry(2, target.Add(-4*time.Hour))
				mockRepo.closeError[failing.ID] = fmt.Errorf("deadlock detected")

				result, err := service.Run(ctx, target, false)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Success).To(BeFalse())
				Expect(result.ClosedCount).To(Equal(1))
				Expect(result.Errors).To(HaveLen(1))
			})
		})

		Context("when an entry is closed manually between snapshot and write", func() {
			It("should skip it without overwriting the manual clock-out", func() {
				entry := mockRepo.addOpenEntry(1, target.Add(-8*time.Hour))
				other := mockRepo.addOpenEntry(2, target.Add(-4*time.Hour))

				// snapshot taken while both were still open
				mockRepo.staleOpen = []autoclockout.OpenEntry{
					{EntryID: entry.ID, EmployeeID: 1, EmployeeName: "Alice", ClockIn: entry.ClockIn},
					{EntryID: other.ID, EmployeeID: 2, EmployeeName: "Bob", ClockIn: other.ClockIn},
				}

				// manual close races ahead of the enforcer's write
				manual := target.Add(-time.Hour)
				entry.ClockOut = &manual

				result, err := service.Run(ctx, target, false)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Success).To(BeTrue())
				Expect(result.ClosedCount).To(Equal(1))
				Expect(result.SkippedOpen).To(Equal(1))
				Expect(*entry.ClockOut).To(Equal(manual))
				Expect(entry.IsAutoClockOut).To(BeFalse())
			})
		})
	})

	Describe("RunSelective", func() {
		BeforeEach(func() {
			mockRepo.admins[99] = true
		})

		It("should reject non-admin callers", func() {
			_, err := service.RunSelective(ctx, []autoclockout.SelectiveItem{{EmployeeID: 1, ClockOutTime: target}}, 1)
			Expect(err).To(MatchError(internal.ErrAdminPrivilegesRequired))
		})

		It("should close the chosen employees at their chosen times without review flags", func() {
			entry := mockRepo.addOpenEntry(1, target.Add(-8*time.Hour))
			out := target.Add(-time.Hour)

			result, err := service.RunSelective(ctx, []autoclockout.SelectiveItem{{EmployeeID: 1, ClockOutTime: out}}, 99)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Success).To(BeTrue())
			Expect(result.ClosedCount).To(Equal(1))
			Expect(entry.IsOpen()).To(BeFalse())
			Expect(*entry.ClockOut).To(Equal(out))
			Expect(entry.NeedsReview).To(BeFalse())
			Expect(entry.AdminCorrected).To(BeTrue())
			Expect(*entry.CorrectedBy).To(Equal(int64(99)))
		})

		It("should report an error for an employee with no open entry", func() {
			result, err := service.RunSelective(ctx, []autoclockout.SelectiveItem{{EmployeeID: 1, ClockOutTime: target}}, 99)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Success).To(BeFalse())
			Expect(result.ClosedCount).To(Equal(0))
			Expect(result.Errors).To(HaveLen(1))
		})

		It("should reject a clock-out before the entry's clock-in", func() {
			entry := mockRepo.addOpenEntry(1, target.Add(-2*time.Hour))

			result, err := service.RunSelective(ctx, []autoclockout.SelectiveItem{
				{EmployeeID: 1, ClockOutTime: target.Add(-3 * time.Hour)},
			}, 99)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Errors).To(HaveLen(1))
			Expect(entry.IsOpen()).To(BeTrue())
		})

		It("should count a partially failed batch as success when anything closed", func() {
			mockRepo.addOpenEntry(1, target.Add(-8*time.Hour))

			result, err := service.RunSelective(ctx, []autoclockout.SelectiveItem{
				{EmployeeID: 1, ClockOutTime: target},
				{EmployeeID: 2, ClockOutTime: target},
			}, 99)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Success).To(BeTrue())
			Expect(result.ClosedCount).To(Equal(1))
			Expect(result.Errors).To(HaveLen(1))
		})
	})

	Describe("CheckAndRun", func() {
		It("should do nothing before closing time", func() {
			mockRepo.addOpenEntry(1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
			service.SetClock(func() time.Time { return time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) })

			result, err := service.CheckAndRun(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ClosedCount).To(Equal(0))
			for _, e := range mockRepo.entries {
				Expect(e.IsOpen()).To(BeTrue())
			}
		})

		It("should run once past closing time", func() {
			mockRepo.addOpenEntry(1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
			service.SetClock(func() time.Time { return time.Date(2025, 3, 10, 20, 5, 0, 0, time.UTC) })

			result, err := service.CheckAndRun(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ClosedCount).To(Equal(1))
		})
	})

	Describe("EnforceNow", func() {
		It("should close entries at the scheduled closing time, not the wall clock", func() {
			mockRepo.addOpenEntry(1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
			service.SetClock(func() time.Time { return time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC) })

			result, err := service.EnforceNow(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ClosedCount).To(Equal(1))
			for _, e := range mockRepo.entries {
				Expect(e.ClockOut.Hour()).To(Equal(20))
			}
		})
	})
})
