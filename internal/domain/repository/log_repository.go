package repository

import (
	"context"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

// CompletionCount is a per-habit completion tally over a date range
type CompletionCount struct {
	UserID    uuid.UUID
	HabitID   uuid.UUID
	HabitName string
	Count     int32
}

// HabitLogRepository defines the interface for the completion/skip fact ledger
type HabitLogRepository interface {
	// Create appends a log entry. The ledger is append-only.
	Create(ctx context.Context, log *entity.HabitLog) error

	// HasStatusForDate checks whether a log with the given status exists
	// for a habit on a specific date
	HasStatusForDate(ctx context.Context, habitID uuid.UUID, date string, status entity.LogStatus) (bool, error)

	// CountCompletedInRange counts completions for a habit over
	// [fromDate, toDate] inclusive
	CountCompletedInRange(ctx context.Context, habitID uuid.UUID, fromDate, toDate string) (int32, error)

	// CountCompletedForUserOnDate counts a user's completions across all
	// habits on a specific date
	CountCompletedForUserOnDate(ctx context.Context, userID uuid.UUID, date string) (int32, error)

	// CompletionCountsForUser tallies a user's completions per habit
	// over [fromDate, toDate] inclusive, dates in the user's calendar
	CompletionCountsForUser(ctx context.Context, userID uuid.UUID, fromDate, toDate string) ([]*CompletionCount, error)
}
