// Package schedule answers whether a habit is scheduled on a given
// calendar date. Pure functions, no I/O.
package schedule

import (
	"time"

	"streaks-service/internal/domain/entity"
)

// IsScheduled reports whether the habit is scheduled on the given date.
// The date must already be in the habit owner's local timezone; only its
// calendar components are consulted. Returns false for inactive habits
// and dates outside the habit's active window.
//
// Count-based schedules (times_per_week, times_per_month) cannot be
// decided from the calendar alone: every day of the active window is
// eligible, and the streak engine settles the count against the period.
func IsScheduled(habit *entity.Habit, date time.Time) bool {
	if habit == nil || !habit.IsActive {
		return false
	}
	if !inActiveWindow(habit, date) {
		return false
	}

	switch habit.RecurrenceType {
	case entity.RecurrenceDaily:
		return true
	case entity.RecurrenceWeekdays:
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case entity.RecurrenceWeekends:
		wd := date.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	case entity.RecurrenceSpecificDays:
		return habit.HasWeekday(date.Weekday())
	case entity.RecurrenceInterval:
		if habit.IntervalDays == nil || *habit.IntervalDays <= 0 {
			return false
		}
		days := daysBetween(habit.StartDate, date)
		return days >= 0 && days%int(*habit.IntervalDays) == 0
	case entity.RecurrenceTimesPerWeek, entity.RecurrenceTimesPerMonth:
		// Eligible every day; the count goal is settled elsewhere.
		return true
	default:
		return false
	}
}

// PeriodBounds returns the first and last calendar dates of the count
// period containing the given date: the Monday-started week for
// times_per_week, the calendar month for times_per_month. For any other
// recurrence type the single date itself is returned.
func PeriodBounds(habit *entity.Habit, date time.Time) (time.Time, time.Time) {
	day := truncateToDay(date)

	switch habit.RecurrenceType {
	case entity.RecurrenceTimesPerWeek:
		// Week starts on Monday
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case entity.RecurrenceTimesPerMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1)
	default:
		return day, day
	}
}

// inActiveWindow checks the date against [start_date, end_date].
func inActiveWindow(habit *entity.Habit, date time.Time) bool {
	day := truncateToDay(date)
	if day.Before(truncateToDay(habit.StartDate)) {
		return false
	}
	if habit.EndDate != nil && day.After(truncateToDay(*habit.EndDate)) {
		return false
	}
	return true
}

// daysBetween returns whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(truncateToDay(b).Sub(truncateToDay(a)).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
