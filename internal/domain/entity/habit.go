package entity

import (
	"time"

	"github.com/google/uuid"
)

// RecurrenceType represents the type of habit schedule
type RecurrenceType string

const (
	RecurrenceDaily         RecurrenceType = "daily"           // Every day
	RecurrenceWeekdays      RecurrenceType = "weekdays"        // Monday through Friday
	RecurrenceWeekends      RecurrenceType = "weekends"        // Saturday and Sunday
	RecurrenceSpecificDays  RecurrenceType = "specific_days"   // Configured weekday set
	RecurrenceInterval      RecurrenceType = "interval"        // Every N days from start date
	RecurrenceTimesPerWeek  RecurrenceType = "times_per_week"  // N completions per calendar week
	RecurrenceTimesPerMonth RecurrenceType = "times_per_month" // N completions per calendar month
)

// Habit represents a user's habit
type Habit struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Basic info
	Name        string
	Description *string

	// Schedule configuration
	RecurrenceType RecurrenceType
	WeeklyDays     []int32 // Required for specific_days (0=Sunday, 1=Monday, ..., 6=Saturday)
	IntervalDays   *int32  // Required for interval type
	TimesPerPeriod *int32  // Required for times_per_week / times_per_month

	// Reminder configuration ("HH:MM" in the owner's local time)
	ReminderTime *string

	// Streak behavior
	GracePeriodEnabled bool
	GracePeriodHours   int32
	SkipOnVacation     bool

	// Active window (dates in the owner's local timezone)
	StartDate time.Time
	EndDate   *time.Time

	// Metadata
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCountBased returns true for schedules defined by a completion count
// per period rather than by fixed days.
func (h *Habit) IsCountBased() bool {
	return h.RecurrenceType == RecurrenceTimesPerWeek || h.RecurrenceType == RecurrenceTimesPerMonth
}

// CountGoal returns the per-period completion goal for count-based habits.
func (h *Habit) CountGoal() int32 {
	if h.TimesPerPeriod == nil {
		return 0
	}
	return *h.TimesPerPeriod
}

// HasWeekday checks whether the given weekday is in the configured set.
func (h *Habit) HasWeekday(weekday time.Weekday) bool {
	for _, d := range h.WeeklyDays {
		if d == int32(weekday) {
			return true
		}
	}
	return false
}
