package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User holds the core-relevant slice of a user's profile: delivery
// preferences, vacation window, timezone, goals.
type User struct {
	ID    uuid.UUID
	Email string
	Name  string

	NotificationsEnabled bool
	WeeklyDigestEnabled  bool

	OnVacation    bool
	VacationStart *time.Time
	VacationEnd   *time.Time

	// Quiet hours ("HH:MM" local, start may be later than end for
	// windows that cross midnight)
	QuietHoursStart *string
	QuietHoursEnd   *string

	// Timezone offset in hours from UTC (-12 to +14)
	TimezoneOffsetHours int32

	DailyGoal *int32 // Completions per day to count as goal achieved

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetLocalTime converts a UTC time to the user's local timezone
func (u *User) GetLocalTime(utcTime time.Time) time.Time {
	offset := time.Duration(u.TimezoneOffsetHours) * time.Hour
	return utcTime.Add(offset)
}

// GetLocalDate returns the date string in the user's timezone (YYYY-MM-DD)
func (u *User) GetLocalDate(utcTime time.Time) string {
	return u.GetLocalTime(utcTime).Format("2006-01-02")
}

// InQuietHours reports whether the given UTC instant falls inside the
// user's configured quiet-hours window.
func (u *User) InQuietHours(utcTime time.Time) bool {
	if u.QuietHoursStart == nil || u.QuietHoursEnd == nil {
		return false
	}

	local := u.GetLocalTime(utcTime)
	minuteOfDay := local.Hour()*60 + local.Minute()

	start, err := parseClock(*u.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseClock(*u.QuietHoursEnd)
	if err != nil {
		return false
	}

	if start <= end {
		return minuteOfDay >= start && minuteOfDay < end
	}
	// Window crosses midnight, e.g. 22:00 -> 07:00
	return minuteOfDay >= start || minuteOfDay < end
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hour*60 + minute, nil
}
