package autoclockout_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timeclock/internal"
	"github.com/frahmantamala/timeclock/internal/autoclockout"
)

var _ = Describe("Schedule", func() {
	var schedule autoclockout.Schedule

	BeforeEach(func() {
		schedule = autoclockout.DefaultSchedule()
	})

	Describe("ClosingTime", func() {
		It("should close at 20:00 on weekdays", func() {
			monday := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
			Expect(monday.Weekday()).To(Equal(time.Monday))

			closing := schedule.ClosingTime(monday)
			Expect(closing).To(Equal(time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)))
		})

		It("should close at 20:00 on Saturday", func() {
			saturday := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
			Expect(saturday.Weekday()).To(Equal(time.Saturday))

			closing := schedule.ClosingTime(saturday)
			Expect(closing.Hour()).To(Equal(20))
		})

		It("should close at 18:00 on Sunday", func() {
			sunday := time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)
			Expect(sunday.Weekday()).To(Equal(time.Sunday))

			closing := schedule.ClosingTime(sunday)
			Expect(closing).To(Equal(time.Date(2025, 3, 16, 18, 0, 0, 0, time.UTC)))
		})

		It("should preserve the input location", func() {
			loc := time.FixedZone("UTC+7", 7*3600)
			monday := time.Date(2025, 3, 10, 12, 0, 0, 0, loc)

			closing := schedule.ClosingTime(monday)
			Expect(closing.Location()).To(Equal(loc))
		})
	})

	Describe("ShouldRun", func() {
		It("should not run before closing time", func() {
			Expect(schedule.ShouldRun(time.Date(2025, 3, 10, 19, 59, 59, 0, time.UTC))).To(BeFalse())
		})

		It("should run exactly at closing time", func() {
			Expect(schedule.ShouldRun(time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))).To(BeTrue())
		})

		It("should run after closing time", func() {
			Expect(schedule.ShouldRun(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))).To(BeTrue())
		})

		It("should use the Sunday hour on Sundays", func() {
			sunday := time.Date(2025, 3, 16, 19, 0, 0, 0, time.UTC)
			Expect(schedule.ShouldRun(sunday)).To(BeTrue())

			earlier := time.Date(2025, 3, 16, 17, 0, 0, 0, time.UTC)
			Expect(schedule.ShouldRun(earlier)).To(BeFalse())
		})
	})

	Describe("NewSchedule", func() {
		It("should fall back to defaults for zero config", func() {
			s := autoclockout.NewSchedule(internal.ScheduleConfig{})
			Expect(s.WeekdayClosingHour).To(Equal(20))
			Expect(s.SundayClosingHour).To(Equal(18))
		})

		It("should honor configured hours", func() {
			s := autoclockout.NewSchedule(internal.ScheduleConfig{WeekdayClosingHour: 22, SundayClosingHour: 17})
			Expect(s.WeekdayClosingHour).To(Equal(22))
			Expect(s.SundayClosingHour).To(Equal(17))
		})
	})
})
