// Package streak computes streak state transitions. Deterministic, no
// I/O, no clock reads: the settlement instant is part of the input.
package streak

import (
	"fmt"
	"time"

	"streaks-service/internal/domain/entity"
)

// Event describes what happened to a streak when a day was settled
type Event string

const (
	EventNone      Event = ""
	EventMilestone Event = "milestone"
	EventGraceUsed Event = "grace_period_used"
	EventReset     Event = "streak_reset"
)

// Milestones are the exact streak lengths that trigger a milestone event.
var Milestones = []int32{7, 14, 21, 30, 60, 90, 100, 180, 365}

// IsMilestone reports whether the value is an exact milestone length.
func IsMilestone(n int32) bool {
	for _, m := range Milestones {
		if n == m {
			return true
		}
	}
	return false
}

// Facts are the inputs the engine needs to settle one day for one habit.
type Facts struct {
	Day        string    // Calendar date being settled ("YYYY-MM-DD", owner-local)
	SettledAt  time.Time // The instant settlement runs, used for the grace deadline
	Scheduled  bool
	Completed  bool
	Skipped    bool
	OnVacation bool

	// Count-based schedules only: completions so far in the current
	// period and eligible days remaining in the period after Day.
	PeriodCompleted int32
	PeriodDaysLeft  int32
}

// SettleDay computes the next streak state for one habit day. The input
// state is not mutated. The returned error only signals a corrupted
// input state (longest < current), which is a bug upstream, never a
// runtime condition of valid inputs.
func SettleDay(state entity.HabitStreak, habit *entity.Habit, facts Facts) (entity.HabitStreak, Event, error) {
	if state.LongestStreak < state.CurrentStreak {
		return state, EventNone, fmt.Errorf(
			"corrupt streak state for habit %s: longest %d < current %d",
			state.HabitID, state.LongestStreak, state.CurrentStreak)
	}

	next := state

	// Not scheduled: the day does not exist for this habit.
	if !facts.Scheduled {
		return next, EventNone, nil
	}

	// Vacation days are excluded from continuity entirely.
	if facts.OnVacation && habit.SkipOnVacation {
		return next, EventNone, nil
	}

	if facts.Completed {
		next.CurrentStreak++
		if next.CurrentStreak > next.LongestStreak {
			next.LongestStreak = next.CurrentStreak
		}
		completedAt := facts.SettledAt
		next.LastCompletedAt = &completedAt
		next.GracePeriodUsed = false

		if IsMilestone(next.CurrentStreak) {
			return next, EventMilestone, nil
		}
		return next, EventNone, nil
	}

	// An explicit skip preserves the streak without extending it.
	if facts.Skipped {
		return next, EventNone, nil
	}

	// Count-based habits only miss when the period's remaining days can
	// no longer reach the goal.
	if habit.IsCountBased() && facts.PeriodCompleted+facts.PeriodDaysLeft >= habit.CountGoal() {
		return next, EventNone, nil
	}

	if graceAvailable(state, habit, facts.SettledAt) {
		next.GracePeriodUsed = true
		return next, EventGraceUsed, nil
	}

	previous := next.CurrentStreak
	next.PreviousStreak = previous
	next.CurrentStreak = 0
	next.MissedDaysCount++
	next.GracePeriodUsed = false
	next.LastMilestone = 0
	next.LastResetReason = entity.ResetReasonMissed

	if previous > 0 {
		return next, EventReset, nil
	}
	return next, EventNone, nil
}

// graceAvailable reports whether the grace window still covers the miss:
// grace must be enabled, not already consumed for this break, and the
// deadline last_completed + grace_hours must not have elapsed.
func graceAvailable(state entity.HabitStreak, habit *entity.Habit, settledAt time.Time) bool {
	if !habit.GracePeriodEnabled || habit.GracePeriodHours <= 0 {
		return false
	}
	if state.GracePeriodUsed {
		return false
	}
	if state.LastCompletedAt == nil {
		return false
	}
	deadline := state.LastCompletedAt.Add(time.Duration(habit.GracePeriodHours) * time.Hour)
	return settledAt.Before(deadline)
}
