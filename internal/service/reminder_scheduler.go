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
)

// preservationWindow is the rolling dedup window for streak-preservation
// reminders: at most one per habit within it.
const preservationWindow = 2 * time.Hour

// defaultReminderClock is used when a habit has no configured reminder time.
const defaultReminderClock = "09:00"

type reminderScheduler struct {
	habitRepo    repository.HabitRepository
	reminderRepo repository.ReminderRepository
	logRepo      repository.HabitLogRepository
	notifier     service.Notifier
	logger       *zap.Logger
}

// NewReminderScheduler creates the reminder scheduler
func NewReminderScheduler(
	habitRepo repository.HabitRepository,
	reminderRepo repository.ReminderRepository,
	logRepo repository.HabitLogRepository,
	notifier service.Notifier,
	logger *zap.Logger,
) service.ReminderScheduler {
	return &reminderScheduler{
		habitRepo:    habitRepo,
		reminderRepo: reminderRepo,
		logRepo:      logRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// PrepareNextDay synthesizes tomorrow's standard reminders for every
// active habit scheduled tomorrow whose owner allows notifications.
// Idempotent: dedup key is (habit, type, calendar date), re-derived from
// persisted rows on every run.
func (s *reminderScheduler) PrepareNextDay(ctx context.Context, now time.Time) (int, error) {
	tracked, err := s.habitRepo.ListActiveTracked(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active habits: %w", err)
	}

	prepared := 0
	for _, t := range tracked {
		if t.Owner == nil || !t.Owner.NotificationsEnabled {
			continue
		}

		tomorrowLocal := t.Owner.GetLocalTime(now).AddDate(0, 0, 1)
		if !schedule.IsScheduled(t.Habit, tomorrowLocal) {
			continue
		}

		forDate := tomorrowLocal.Format("2006-01-02")
		exists, err := s.reminderRepo.ExistsForDate(ctx, t.Habit.ID, entity.ReminderTypeDaily, forDate)
		if err != nil {
			s.logger.Warn("failed to check existing reminder",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		streakLen := int32(0)
		if t.Streak != nil {
			streakLen = t.Streak.CurrentStreak
		}

		reminder := &entity.ScheduledReminder{
			ID:             uuid.New(),
			HabitID:        t.Habit.ID,
			UserID:         t.Owner.ID,
			Type:           entity.ReminderTypeDaily,
			Status:         entity.ReminderStatusPrepared,
			ScheduledFor:   reminderInstant(t.Habit, t.Owner, tomorrowLocal),
			ForDate:        forDate,
			Title:          dailyReminderTitle(t.Habit.Name),
			Body:           dailyReminderBody(t.Habit.Name, streakLen),
			Priority:       priorityNormal,
			StreakSnapshot: streakLen,
			CreatedAt:      now.UTC(),
		}

		if err := s.reminderRepo.Create(ctx, reminder); err != nil {
			s.logger.Warn("failed to create reminder",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			continue
		}
		prepared++
	}

	return prepared, nil
}

// ScanAtRisk emits one warning reminder per at-risk habit: streak above
// the threshold, scheduled today, not yet completed, owner reachable.
// Streak-preservation reminders are rate-limited to one per rolling
// window and dispatched immediately; plain warnings dedup per calendar
// day and wait for the regular dispatch cycle.
func (s *reminderScheduler) ScanAtRisk(ctx context.Context, now time.Time, threshold int32, reminderType entity.ReminderType) (int, error) {
	tracked, err := s.habitRepo.ListActiveTracked(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active habits: %w", err)
	}

	created := 0
	for _, t := range tracked {
		if t.Streak == nil || t.Streak.CurrentStreak <= threshold {
			continue
		}
		if t.Owner == nil || !t.Owner.NotificationsEnabled || t.Owner.OnVacation {
			continue
		}
		if t.Owner.InQuietHours(now) {
			continue
		}

		todayLocal := t.Owner.GetLocalTime(now)
		if !schedule.IsScheduled(t.Habit, todayLocal) {
			continue
		}

		today := todayLocal.Format("2006-01-02")
		completed, err := s.logRepo.HasStatusForDate(ctx, t.Habit.ID, today, entity.LogStatusCompleted)
		if err != nil {
			s.logger.Warn("failed to check completion",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			continue
		}
		if completed {
			continue
		}

		duplicate, err := s.alreadyWarned(ctx, t.Habit.ID, reminderType, today, now)
		if err != nil {
			s.logger.Warn("failed to check reminder dedup window",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			continue
		}
		if duplicate {
			continue
		}

		reminder := &entity.ScheduledReminder{
			ID:             uuid.New(),
			HabitID:        t.Habit.ID,
			UserID:         t.Owner.ID,
			Type:           reminderType,
			Status:         entity.ReminderStatusPrepared,
			ScheduledFor:   now,
			ForDate:        today,
			Priority:       warningPriority(reminderType),
			StreakSnapshot: t.Streak.CurrentStreak,
			CreatedAt:      now.UTC(),
		}
		reminder.Title, reminder.Body = warningContent(reminderType, t.Habit.Name, t.Streak.CurrentStreak)

		if err := s.reminderRepo.Create(ctx, reminder); err != nil {
			s.logger.Warn("failed to create warning reminder",
				zap.String("habit_id", t.Habit.ID.String()), zap.Error(err))
			continue
		}
		created++

		// Preservation warnings are urgent: deliver without waiting for
		// the next dispatch cycle.
		if reminderType == entity.ReminderTypePreservation {
			s.dispatchOne(ctx, &repository.DueReminder{
				Reminder: reminder,
				Habit:    t.Habit,
				Owner:    t.Owner,
			}, now, &service.DispatchResult{})
		}
	}

	return created, nil
}

// Dispatch delivers all due, unsent, prepared reminders. Each row either
// reaches a terminal state or is left untouched when another job won the
// transition first; one row's failure never aborts the batch.
func (s *reminderScheduler) Dispatch(ctx context.Context, now time.Time) (*service.DispatchResult, error) {
	due, err := s.reminderRepo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	result := &service.DispatchResult{}
	for _, d := range due {
		s.dispatchOne(ctx, d, now, result)
	}

	return result, nil
}

// dispatchOne processes a single due reminder through the skip checks
// and the notification sink, applying exactly one terminal transition.
// The row is claimed (prepared -> sent) before the notification goes
// out: the loser of that transition backs off without sending, so two
// racing dispatch runs cannot both deliver.
func (s *reminderScheduler) dispatchOne(ctx context.Context, d *repository.DueReminder, now time.Time, result *service.DispatchResult) {
	reminder := d.Reminder
	if reminder.IsTerminal() {
		return
	}
	result.Processed++

	if d.Owner == nil || !d.Owner.NotificationsEnabled {
		s.skip(ctx, reminder, "Notifications disabled", result)
		return
	}
	if d.Owner.OnVacation {
		s.skip(ctx, reminder, "On vacation", result)
		return
	}

	completed, err := s.logRepo.HasStatusForDate(ctx, reminder.HabitID, reminder.ForDate, entity.LogStatusCompleted)
	if err != nil {
		s.fail(ctx, reminder, fmt.Sprintf("completion check failed: %v", err), result)
		return
	}
	if completed {
		s.skip(ctx, reminder, "Already completed", result)
		return
	}

	won, err := s.reminderRepo.MarkSent(ctx, reminder.ID, now)
	if err != nil {
		s.logger.Warn("failed to claim reminder",
			zap.String("reminder_id", reminder.ID.String()), zap.Error(err))
		result.Failed++
		return
	}
	if !won {
		return
	}
	reminder.Status = entity.ReminderStatusSent

	metadata := map[string]string{
		"habit_id":      reminder.HabitID.String(),
		"reminder_id":   reminder.ID.String(),
		"reminder_type": string(reminder.Type),
	}
	if err := s.notifier.Send(ctx, reminder.UserID, notificationTypeFor(reminder.Type), reminder.Title, reminder.Body, metadata); err != nil {
		s.fail(ctx, reminder, err.Error(), result)
		return
	}
	result.Sent++
}

func (s *reminderScheduler) skip(ctx context.Context, reminder *entity.ScheduledReminder, reason string, result *service.DispatchResult) {
	won, err := s.reminderRepo.MarkSkipped(ctx, reminder.ID, reason)
	if err != nil {
		s.logger.Warn("failed to mark reminder skipped",
			zap.String("reminder_id", reminder.ID.String()), zap.Error(err))
		return
	}
	if won {
		result.Skipped++
	}
}

func (s *reminderScheduler) fail(ctx context.Context, reminder *entity.ScheduledReminder, reason string, result *service.DispatchResult) {
	s.logger.Warn("reminder dispatch failed",
		zap.String("reminder_id", reminder.ID.String()),
		zap.String("reason", reason))
	won, err := s.reminderRepo.MarkFailed(ctx, reminder.ID, reason)
	if err != nil {
		s.logger.Warn("failed to mark reminder failed",
			zap.String("reminder_id", reminder.ID.String()), zap.Error(err))
		return
	}
	if won {
		result.Failed++
	}
}

// alreadyWarned applies the type-specific dedup rule: preservation uses
// a rolling window, plain warnings one per calendar day.
func (s *reminderScheduler) alreadyWarned(ctx context.Context, habitID uuid.UUID, reminderType entity.ReminderType, today string, now time.Time) (bool, error) {
	if reminderType == entity.ReminderTypePreservation {
		return s.reminderRepo.ExistsSince(ctx, habitID, reminderType, now.Add(-preservationWindow))
	}
	return s.reminderRepo.ExistsForDate(ctx, habitID, reminderType, today)
}

// reminderInstant resolves the habit's reminder clock on the given local
// day to a UTC instant.
func reminderInstant(habit *entity.Habit, owner *entity.User, localDay time.Time) time.Time {
	clock := defaultReminderClock
	if habit.ReminderTime != nil && *habit.ReminderTime != "" {
		clock = *habit.ReminderTime
	}

	var hour, minute int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		hour, minute = 9, 0
	}

	local := time.Date(localDay.Year(), localDay.Month(), localDay.Day(), hour, minute, 0, 0, time.UTC)
	offset := time.Duration(owner.TimezoneOffsetHours) * time.Hour
	return local.Add(-offset)
}

func notificationTypeFor(reminderType entity.ReminderType) entity.NotificationType {
	switch reminderType {
	case entity.ReminderTypeStreakRisk:
		return entity.NotificationTypeStreakRisk
	case entity.ReminderTypePreservation:
		return entity.NotificationTypePreservation
	default:
		return entity.NotificationTypeReminder
	}
}

func warningPriority(reminderType entity.ReminderType) int32 {
	if reminderType == entity.ReminderTypePreservation {
		return priorityUrgent
	}
	return priorityHigh
}
