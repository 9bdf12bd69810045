package entity

import (
	"time"

	"github.com/google/uuid"
)

// ResetReason records why a streak was last reset to zero
type ResetReason string

const (
	ResetReasonNone       ResetReason = "none"
	ResetReasonMissed     ResetReason = "missed_completion"
	ResetReasonVacation   ResetReason = "vacation_recompute"
	ResetReasonUserAction ResetReason = "user_reset"
)

// HabitStreak holds the streak state for a single habit.
// Mutated only by the streak engine during the daily rollover job
// and immediately on manual completion or skip.
type HabitStreak struct {
	ID      uuid.UUID
	HabitID uuid.UUID
	UserID  uuid.UUID

	CurrentStreak   int32
	LongestStreak   int32
	LastCompletedAt *time.Time
	MissedDaysCount int32
	GracePeriodUsed bool
	PreviousStreak  int32 // Snapshot taken at the last reset
	LastMilestone   int32 // Last milestone value a notification was emitted for
	LastResetReason ResetReason

	UpdatedAt time.Time
}
