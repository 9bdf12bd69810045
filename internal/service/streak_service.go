package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"streaks-service/internal/domain/entity"
	"streaks-service/internal/domain/repository"
	"streaks-service/internal/domain/service"
	"streaks-service/internal/schedule"
	"streaks-service/internal/streak"
)

type streakService struct {
	habitRepo  repository.HabitRepository
	streakRepo repository.StreakRepository
	logRepo    repository.HabitLogRepository
	userRepo   repository.UserRepository
	notifier   service.Notifier
	logger     *zap.Logger
}

// NewStreakService creates the streak service
func NewStreakService(
	habitRepo repository.HabitRepository,
	streakRepo repository.StreakRepository,
	logRepo repository.HabitLogRepository,
	userRepo repository.UserRepository,
	notifier service.Notifier,
	logger *zap.Logger,
) service.StreakService {
	return &streakService{
		habitRepo:  habitRepo,
		streakRepo: streakRepo,
		logRepo:    logRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

// RolloverDay settles yesterday for every active habit. One habit's
// failure is logged and counted, never escalated past its row.
func (s *streakService) RolloverDay(ctx context.Context, now time.Time) (*service.RolloverResult, error) {
	tracked, err := s.habitRepo.ListActiveTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active habits: %w", err)
	}

	result := &service.RolloverResult{}
	for _, t := range tracked {
		if t.Streak == nil || t.Owner == nil {
			continue
		}
		result.Processed++

		facts, err := s.buildDayFacts(ctx, t, now)
		if err != nil {
			s.logger.Warn("failed to build day facts",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			result.RowErrors++
			continue
		}

		// A manual completion settles its day immediately; settling it
		// again here would count the same day twice.
		if settledThrough(t, facts.Day) {
			if facts.Completed {
				result.Completed++
			}
			continue
		}

		next, event, err := streak.SettleDay(*t.Streak, t.Habit, facts)
		if err != nil {
			// Corrupt state is a bug upstream; surface it loudly and
			// leave the row untouched.
			s.logger.Error("streak invariant violation",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			result.RowErrors++
			continue
		}

		next.UpdatedAt = time.Now().UTC()
		if err := s.streakRepo.Update(ctx, &next); err != nil {
			s.logger.Warn("failed to persist streak",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			result.RowErrors++
			continue
		}

		switch event {
		case streak.EventMilestone:
			result.Completed++
			result.Milestones++
		case streak.EventGraceUsed:
			result.GraceUsed++
		case streak.EventReset:
			result.Resets++
			s.logger.Info("streak reset",
				zap.String("habit_id", t.Habit.ID.String()),
				zap.Int32("previous_streak", next.PreviousStreak))
		default:
			if facts.Completed {
				result.Completed++
			}
		}
	}

	return result, nil
}

// buildDayFacts assembles yesterday's facts for one habit from the log
// ledger and the owner's preferences.
func (s *streakService) buildDayFacts(ctx context.Context, t *repository.TrackedHabit, now time.Time) (streak.Facts, error) {
	yesterdayLocal := t.Owner.GetLocalTime(now).AddDate(0, 0, -1)
	day := yesterdayLocal.Format("2006-01-02")

	facts := streak.Facts{
		Day:        day,
		SettledAt:  now,
		Scheduled:  schedule.IsScheduled(t.Habit, yesterdayLocal),
		OnVacation: t.Owner.OnVacation,
	}

	if !facts.Scheduled {
		return facts, nil
	}

	completed, err := s.logRepo.HasStatusForDate(ctx, t.Habit.ID, day, entity.LogStatusCompleted)
	if err != nil {
		return facts, fmt.Errorf("failed to check completion: %w", err)
	}
	facts.Completed = completed

	if !completed {
		skipped, err := s.logRepo.HasStatusForDate(ctx, t.Habit.ID, day, entity.LogStatusSkipped)
		if err != nil {
			return facts, fmt.Errorf("failed to check skip: %w", err)
		}
		facts.Skipped = skipped
	}

	if t.Habit.IsCountBased() {
		periodStart, periodEnd := schedule.PeriodBounds(t.Habit, yesterdayLocal)
		count, err := s.logRepo.CountCompletedInRange(ctx, t.Habit.ID,
			periodStart.Format("2006-01-02"), day)
		if err != nil {
			return facts, fmt.Errorf("failed to count period completions: %w", err)
		}
		facts.PeriodCompleted = count
		facts.PeriodDaysLeft = int32(periodEnd.Sub(truncateDay(yesterdayLocal)).Hours() / 24)
	}

	return facts, nil
}

// ScanMilestones emits one notification per habit whose streak sits
// exactly on a milestone it has not been announced for since the last
// reset. The last_milestone marker keeps a streak holding at a
// milestone (e.g. under grace) from being announced twice.
func (s *streakService) ScanMilestones(ctx context.Context, now time.Time) (int, error) {
	tracked, err := s.habitRepo.ListActiveTracked(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active habits: %w", err)
	}

	notified := 0
	for _, t := range tracked {
		if t.Streak == nil || t.Owner == nil {
			continue
		}
		current := t.Streak.CurrentStreak
		if !streak.IsMilestone(current) || t.Streak.LastMilestone == current {
			continue
		}
		if !t.Owner.NotificationsEnabled {
			continue
		}

		title, body := milestoneContent(t.Habit.Name, current)
		metadata := map[string]string{
			"habit_id": t.Habit.ID.String(),
			"streak":   fmt.Sprintf("%d", current),
		}
		if err := s.notifier.Send(ctx, t.Owner.ID, entity.NotificationTypeMilestone, title, body, metadata); err != nil {
			s.logger.Warn("failed to send milestone notification",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			continue
		}

		if err := s.streakRepo.SetLastMilestone(ctx, t.Habit.ID, current); err != nil {
			s.logger.Warn("failed to record milestone marker",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			continue
		}
		notified++
	}

	return notified, nil
}

// RecordCompletion appends a completion to the ledger and settles the
// streak immediately, without waiting for the nightly rollover.
func (s *streakService) RecordCompletion(ctx context.Context, habitID, userID uuid.UUID, now time.Time, notes *string) (*entity.HabitStreak, error) {
	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	state, err := s.streakRepo.GetByHabitID(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	owner, day := s.ownerLocalDay(ctx, habit, now)

	exists, err := s.logRepo.HasStatusForDate(ctx, habitID, day, entity.LogStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing completion: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("habit already completed for date %s", day)
	}

	if err := s.logRepo.Create(ctx, &entity.HabitLog{
		ID:        uuid.New(),
		HabitID:   habitID,
		UserID:    userID,
		LogDate:   day,
		Status:    entity.LogStatusCompleted,
		Notes:     notes,
		LoggedAt:  now,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("failed to create completion log: %w", err)
	}

	facts := streak.Facts{
		Day:        day,
		SettledAt:  now,
		Scheduled:  true, // A manual completion always counts for today
		Completed:  true,
		OnVacation: owner,
	}
	next, _, err := streak.SettleDay(*state, habit, facts)
	if err != nil {
		return nil, err
	}

	next.UpdatedAt = time.Now().UTC()
	if err := s.streakRepo.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to persist streak: %w", err)
	}

	return &next, nil
}

// RecordSkip appends a skip entry for today. Skips preserve the streak
// at settlement time but never extend it.
func (s *streakService) RecordSkip(ctx context.Context, habitID, userID uuid.UUID, now time.Time, notes *string) error {
	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return err
	}

	_, day := s.ownerLocalDay(ctx, habit, now)

	exists, err := s.logRepo.HasStatusForDate(ctx, habitID, day, entity.LogStatusSkipped)
	if err != nil {
		return fmt.Errorf("failed to check existing skip: %w", err)
	}
	if exists {
		return fmt.Errorf("habit already skipped for date %s", day)
	}

	if err := s.logRepo.Create(ctx, &entity.HabitLog{
		ID:        uuid.New(),
		HabitID:   habitID,
		UserID:    userID,
		LogDate:   day,
		Status:    entity.LogStatusSkipped,
		Notes:     notes,
		LoggedAt:  now,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to create skip log: %w", err)
	}

	return nil
}

// ownerLocalDay resolves the owner's vacation flag and local date for
// the habit. Falls back to UTC when the owner row cannot be read; the
// log date is still recorded.
func (s *streakService) ownerLocalDay(ctx context.Context, habit *entity.Habit, now time.Time) (bool, string) {
	owner, err := s.userRepo.GetByID(ctx, habit.UserID)
	if err != nil || owner == nil {
		return false, now.UTC().Format("2006-01-02")
	}
	return owner.OnVacation, owner.GetLocalDate(now)
}

// settledThrough reports whether the streak row already reflects the
// given owner-local day: the last recorded completion landed on that day
// or later.
func settledThrough(t *repository.TrackedHabit, day string) bool {
	if t.Streak.LastCompletedAt == nil {
		return false
	}
	return t.Owner.GetLocalDate(*t.Streak.LastCompletedAt) >= day
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
