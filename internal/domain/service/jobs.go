package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

// RolloverResult summarizes one daily rollover run
type RolloverResult struct {
	Processed  int
	Completed  int
	GraceUsed  int
	Resets     int
	RowErrors  int
	Milestones int
}

// DispatchResult summarizes one reminder dispatch run
type DispatchResult struct {
	Processed int
	Sent      int
	Skipped   int
	Failed    int
}

// StreakService owns streak state: the daily rollover, the milestone
// scan, and immediate settlement on manual completion or skip.
type StreakService interface {
	// RolloverDay settles yesterday for every active habit
	RolloverDay(ctx context.Context, now time.Time) (*RolloverResult, error)

	// ScanMilestones emits one notification per exactly-attained milestone
	ScanMilestones(ctx context.Context, now time.Time) (int, error)

	// RecordCompletion appends a completion log and settles the streak immediately
	RecordCompletion(ctx context.Context, habitID, userID uuid.UUID, now time.Time, notes *string) (*entity.HabitStreak, error)

	// RecordSkip appends a skip log for today
	RecordSkip(ctx context.Context, habitID, userID uuid.UUID, now time.Time, notes *string) error
}

// ReminderScheduler prepares, scans for, and dispatches scheduled reminders
type ReminderScheduler interface {
	// PrepareNextDay synthesizes tomorrow's standard reminders. Idempotent.
	PrepareNextDay(ctx context.Context, now time.Time) (int, error)

	// ScanAtRisk emits warning reminders for streaks above the threshold
	// that are scheduled today and not yet completed
	ScanAtRisk(ctx context.Context, now time.Time, threshold int32, reminderType entity.ReminderType) (int, error)

	// Dispatch delivers all due, unsent, prepared reminders
	Dispatch(ctx context.Context, now time.Time) (*DispatchResult, error)
}

// EngagementService drives the periodic summary notifications
type EngagementService interface {
	// WeeklyDigest emits one per-user summary of the trailing 7 days
	WeeklyDigest(ctx context.Context, now time.Time) (int, error)

	// DailyGoalScan congratulates users who met their daily goal today
	DailyGoalScan(ctx context.Context, now time.Time) (int, error)
}
