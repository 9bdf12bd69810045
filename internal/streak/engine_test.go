package streak

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

func testHabit() *entity.Habit {
	return &entity.Habit{
		ID:             uuid.New(),
		Name:           "meditate",
		RecurrenceType: entity.RecurrenceDaily,
		IsActive:       true,
	}
}

func settledAt() time.Time {
	return time.Date(2025, time.March, 10, 0, 15, 0, 0, time.UTC)
}

func TestSettleDay_CompletionIncrementsAndLongestFollows(t *testing.T) {
	state := entity.HabitStreak{CurrentStreak: 4, LongestStreak: 4}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true, Completed: true}

	next, event, err := SettleDay(state, testHabit(), facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if next.CurrentStreak != 5 {
		t.Errorf("expected current streak 5, got %d", next.CurrentStreak)
	}
	if next.LongestStreak < next.CurrentStreak {
		t.Errorf("longest %d fell behind current %d", next.LongestStreak, next.CurrentStreak)
	}
	if next.LastCompletedAt == nil {
		t.Error("expected last completed timestamp to be set")
	}
	if next.GracePeriodUsed {
		t.Error("expected grace flag cleared after completion")
	}
	if event != EventNone {
		t.Errorf("expected no event at streak 5, got %q", event)
	}
}

func TestSettleDay_LongestStreakPreservedWhenHigher(t *testing.T) {
	state := entity.HabitStreak{CurrentStreak: 2, LongestStreak: 30}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true, Completed: true}

	next, _, err := SettleDay(state, testHabit(), facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if next.LongestStreak != 30 {
		t.Errorf("expected longest streak to stay 30, got %d", next.LongestStreak)
	}
}

func TestSettleDay_MilestoneOnExactMatch(t *testing.T) {
	state := entity.HabitStreak{CurrentStreak: 6, LongestStreak: 6}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true, Completed: true}

	next, event, err := SettleDay(state, testHabit(), facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}
	if event != EventMilestone {
		t.Errorf("expected milestone event at streak 7, got %q", event)
	}

	// 7 -> 8 is not a milestone
	facts.Day = "2025-03-10"
	_, event, err = SettleDay(next, testHabit(), facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}
	if event != EventNone {
		t.Errorf("expected no event at streak 8, got %q", event)
	}
}

func TestSettleDay_NotScheduledLeavesStateUntouched(t *testing.T) {
	state := entity.HabitStreak{CurrentStreak: 12, LongestStreak: 12}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: false}

	next, event, err := SettleDay(state, testHabit(), facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if next != state {
		t.Errorf("expected state unchanged, got %+v", next)
	}
	if event != EventNone {
		t.Errorf("expected no event, got %q", event)
	}
}

func TestSettleDay_VacationSkipExcludesDayEntirely(t *testing.T) {
	habit := testHabit()
	habit.SkipOnVacation = true

	state := entity.HabitStreak{CurrentStreak: 9, LongestStreak: 9}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true, OnVacation: true}

	next, event, err := SettleDay(state, habit, facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if next != state {
		t.Errorf("expected state unchanged on vacation day, got %+v", next)
	}
	if event != EventNone {
		t.Errorf("expected no event on vacation day, got %q", event)
	}
}

func TestSettleDay_GracePeriodHoldsTheStreak(t *testing.T) {
	habit := testHabit()
	habit.GracePeriodEnabled = true
	habit.GracePeriodHours = 28

	// Completed March 8 at 9pm; the miss on March 9 is settled at
	// March 10 00:15, 27h15m later, inside the 28h grace window.
	lastCompleted := time.Date(2025, time.March, 8, 21, 0, 0, 0, time.UTC)
	state := entity.HabitStreak{CurrentStreak: 10, LongestStreak: 10, LastCompletedAt: &lastCompleted}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true}

	next, event, err := SettleDay(state, habit, facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if next.CurrentStreak != 10 {
		t.Errorf("expected streak held at 10, got %d", next.CurrentStreak)
	}
	if !next.GracePeriodUsed {
		t.Error("expected grace flag set")
	}
	if event != EventGraceUsed {
		t.Errorf("expected grace event, got %q", event)
	}
}

func TestSettleDay_GraceNotReusedForSameBreak(t *testing.T) {
	habit := testHabit()
	habit.GracePeriodEnabled = true
	habit.GracePeriodHours = 72

	// The 72h window still covers the settlement instant; only the
	// already-consumed flag stands between the streak and the reset.
	lastCompleted := time.Date(2025, time.March, 8, 21, 0, 0, 0, time.UTC)
	state := entity.HabitStreak{
		CurrentStreak:   10,
		LongestStreak:   10,
		LastCompletedAt: &lastCompleted,
		GracePeriodUsed: true,
	}
	facts := Facts{Day: "2025-03-10", SettledAt: settledAt().AddDate(0, 0, 1), Scheduled: true}

	next, event, err := SettleDay(state, habit, facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if event != EventReset {
		t.Errorf("expected reset when grace already consumed, got %q", event)
	}
	if next.CurrentStreak != 0 {
		t.Errorf("expected streak reset to 0, got %d", next.CurrentStreak)
	}
}

func TestSettleDay_MissWithoutGraceResets(t *testing.T) {
	state := entity.HabitStreak{CurrentStreak: 5, LongestStreak: 5, MissedDaysCount: 2}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true}

	next, event, err := SettleDay(state, testHabit(), facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if next.CurrentStreak != 0 {
		t.Errorf("expected streak 0, got %d", next.CurrentStreak)
	}
	if next.PreviousStreak != 5 {
		t.Errorf("expected previous streak snapshot 5, got %d", next.PreviousStreak)
	}
	if next.MissedDaysCount != 3 {
		t.Errorf("expected missed days 3, got %d", next.MissedDaysCount)
	}
	if next.LastResetReason != entity.ResetReasonMissed {
		t.Errorf("expected reason %q, got %q", entity.ResetReasonMissed, next.LastResetReason)
	}
	if event != EventReset {
		t.Errorf("expected reset event, got %q", event)
	}
}

func TestSettleDay_MissAtZeroStreakEmitsNoResetEvent(t *testing.T) {
	state := entity.HabitStreak{CurrentStreak: 0, LongestStreak: 8}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true}

	_, event, err := SettleDay(state, testHabit(), facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if event != EventNone {
		t.Errorf("expected no event for a zero-streak miss, got %q", event)
	}
}

func TestSettleDay_ExplicitSkipPreservesStreak(t *testing.T) {
	state := entity.HabitStreak{CurrentStreak: 6, LongestStreak: 6}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true, Skipped: true}

	next, event, err := SettleDay(state, testHabit(), facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if next.CurrentStreak != 6 {
		t.Errorf("expected streak preserved at 6, got %d", next.CurrentStreak)
	}
	if event != EventNone {
		t.Errorf("expected no event for an explicit skip, got %q", event)
	}
}

func TestSettleDay_CountBasedMissToleratedWhileGoalReachable(t *testing.T) {
	goal := int32(3)
	habit := testHabit()
	habit.RecurrenceType = entity.RecurrenceTimesPerWeek
	habit.TimesPerPeriod = &goal

	state := entity.HabitStreak{CurrentStreak: 4, LongestStreak: 4}
	facts := Facts{
		Day: "2025-03-05", SettledAt: settledAt(), Scheduled: true,
		PeriodCompleted: 1, PeriodDaysLeft: 4,
	}

	next, event, err := SettleDay(state, habit, facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}
	if next.CurrentStreak != 4 || event != EventNone {
		t.Errorf("expected streak untouched while goal reachable, got streak %d event %q", next.CurrentStreak, event)
	}
}

func TestSettleDay_CountBasedResetsWhenGoalUnreachable(t *testing.T) {
	goal := int32(3)
	habit := testHabit()
	habit.RecurrenceType = entity.RecurrenceTimesPerWeek
	habit.TimesPerPeriod = &goal

	state := entity.HabitStreak{CurrentStreak: 4, LongestStreak: 4}
	facts := Facts{
		Day: "2025-03-08", SettledAt: settledAt(), Scheduled: true,
		PeriodCompleted: 1, PeriodDaysLeft: 1,
	}

	next, event, err := SettleDay(state, habit, facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}
	if event != EventReset {
		t.Errorf("expected reset when period goal is unreachable, got %q", event)
	}
	if next.CurrentStreak != 0 {
		t.Errorf("expected streak 0, got %d", next.CurrentStreak)
	}
}

func TestSettleDay_CorruptStateSurfacesError(t *testing.T) {
	state := entity.HabitStreak{CurrentStreak: 5, LongestStreak: 3}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true, Completed: true}

	_, _, err := SettleDay(state, testHabit(), facts)
	if err == nil {
		t.Fatal("expected error for longest < current invariant violation")
	}
}

func TestSettleDay_DeterministicForSameInputs(t *testing.T) {
	habit := testHabit()
	habit.GracePeriodEnabled = true
	habit.GracePeriodHours = 24

	lastCompleted := time.Date(2025, time.March, 8, 21, 0, 0, 0, time.UTC)
	state := entity.HabitStreak{CurrentStreak: 10, LongestStreak: 12, LastCompletedAt: &lastCompleted}
	facts := Facts{Day: "2025-03-09", SettledAt: settledAt(), Scheduled: true}

	first, firstEvent, err := SettleDay(state, habit, facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}
	second, secondEvent, err := SettleDay(state, habit, facts)
	if err != nil {
		t.Fatalf("SettleDay failed: %v", err)
	}

	if first != second || firstEvent != secondEvent {
		t.Error("expected identical outputs for identical inputs")
	}
}
