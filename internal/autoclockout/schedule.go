package autoclockout

import (
	"time"

	"github.com/frahmantamala/timeclock/internal"
)

// Schedule is the business-hours closing policy: one closing hour for
// Monday through Saturday and an earlier one for Sunday.
type Schedule struct {
	WeekdayClosingHour int
	SundayClosingHour  int
}

func NewSchedule(cfg internal.ScheduleConfig) Schedule {
	cfg.ApplyDefaults()
	return Schedule{
		WeekdayClosingHour: cfg.WeekdayClosingHour,
		SundayClosingHour:  cfg.SundayClosingHour,
	}
}

// DefaultSchedule is the no-overtime policy: 20:00 Mon-Sat, 18:00 Sunday.
func DefaultSchedule() Schedule {
	return Schedule{WeekdayClosingHour: 20, SundayClosingHour: 18}
}

// ClosingTime returns the closing instant for the calendar day of date, in
// date's own location. A pure function of the date's weekday.
func (s Schedule) ClosingTime(date time.Time) time.Time {
	hour := s.WeekdayClosingHour
	if date.Weekday() == time.Sunday {
		hour = s.SundayClosingHour
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
}

// ShouldRun reports whether now is at or past today's closing time.
func (s Schedule) ShouldRun(now time.Time) bool {
	return !now.Before(s.ClosingTime(now))
}
