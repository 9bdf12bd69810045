package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

// DueReminder joins a due reminder with its habit and owner preferences,
// the shape the dispatch step reads.
type DueReminder struct {
	Reminder *entity.ScheduledReminder
	Habit    *entity.Habit
	Owner    *entity.User
}

// ReminderRepository defines the interface for scheduled reminder persistence.
//
// The Mark* methods are compare-and-swap transitions: they only apply
// when the row is still in the prepared state and report whether this
// caller won the transition, so a reminder reaches a terminal state at
// most once even if two jobs race on it.
type ReminderRepository interface {
	// Create creates a new scheduled reminder in the prepared state
	Create(ctx context.Context, reminder *entity.ScheduledReminder) error

	// ExistsForDate checks for any reminder of the given type for a
	// habit on a calendar date, regardless of state
	ExistsForDate(ctx context.Context, habitID uuid.UUID, reminderType entity.ReminderType, forDate string) (bool, error)

	// ExistsSince checks for any reminder of the given type for a habit
	// created at or after the given instant
	ExistsSince(ctx context.Context, habitID uuid.UUID, reminderType entity.ReminderType, since time.Time) (bool, error)

	// ListDue retrieves prepared reminders whose scheduled time has
	// passed, joined with habit and owner preferences
	ListDue(ctx context.Context, now time.Time) ([]*DueReminder, error)

	// MarkSent transitions a prepared reminder to sent
	MarkSent(ctx context.Context, reminderID uuid.UUID, sentAt time.Time) (bool, error)

	// MarkSkipped transitions a prepared reminder to skipped with a reason
	MarkSkipped(ctx context.Context, reminderID uuid.UUID, reason string) (bool, error)

	// MarkFailed transitions a reminder to failed with a reason. Applies
	// to prepared rows and to claimed (sent) rows whose delivery failed
	// after the claim; skipped and failed rows stay terminal.
	MarkFailed(ctx context.Context, reminderID uuid.UUID, reason string) (bool, error)
}
