package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReminderType tags what kind of reminder an instance is
type ReminderType string

const (
	ReminderTypeDaily        ReminderType = "daily_reminder"
	ReminderTypeStreakRisk   ReminderType = "streak_warning"
	ReminderTypePreservation ReminderType = "streak_preservation"
)

// ReminderStatus represents the lifecycle state of a scheduled reminder.
// Transitions are monotonic: prepared -> {sent, skipped, failed}.
type ReminderStatus string

const (
	ReminderStatusPrepared ReminderStatus = "prepared"
	ReminderStatusSent     ReminderStatus = "sent"
	ReminderStatusSkipped  ReminderStatus = "skipped"
	ReminderStatusFailed   ReminderStatus = "failed"
)

// ScheduledReminder is a planned, time-stamped notification instance
// tied to a habit and user.
type ScheduledReminder struct {
	ID      uuid.UUID
	HabitID uuid.UUID
	UserID  uuid.UUID

	Type         ReminderType
	Status       ReminderStatus
	ScheduledFor time.Time // UTC instant the reminder becomes due
	ForDate      string    // Calendar date ("YYYY-MM-DD", owner-local) the reminder is about

	// Display content and metadata
	Title          string
	Body           string
	Priority       int32
	StreakSnapshot int32

	StatusReason *string // Skip or failure reason
	SentAt       *time.Time
	CreatedAt    time.Time
}

// IsTerminal reports whether the reminder already reached a final state.
func (r *ScheduledReminder) IsTerminal() bool {
	return r.Status != ReminderStatusPrepared
}
