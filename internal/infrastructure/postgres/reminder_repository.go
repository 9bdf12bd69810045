package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"streaks-service/internal/domain/entity"
	"streaks-service/internal/domain/repository"
)

type reminderRepository struct {
	pool *pgxpool.Pool
}

// NewReminderRepository creates a new PostgreSQL reminder repository
func NewReminderRepository(pool *pgxpool.Pool) repository.ReminderRepository {
	return &reminderRepository{pool: pool}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *entity.ScheduledReminder) error {
	query := `
		INSERT INTO scheduled_reminders (
			id, habit_id, user_id, type, status, scheduled_for, for_date,
			title, body, priority, streak_snapshot, status_reason, sent_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.pool.Exec(ctx, query,
		reminder.ID, reminder.HabitID, reminder.UserID, reminder.Type, reminder.Status,
		reminder.ScheduledFor, reminder.ForDate,
		reminder.Title, reminder.Body, reminder.Priority, reminder.StreakSnapshot,
		reminder.StatusReason, reminder.SentAt, reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil
}

func (r *reminderRepository) ExistsForDate(ctx context.Context, habitID uuid.UUID, reminderType entity.ReminderType, forDate string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM scheduled_reminders
			WHERE habit_id = $1 AND type = $2 AND for_date = $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, habitID, reminderType, forDate).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reminder for date: %w", err)
	}

	return exists, nil
}

func (r *reminderRepository) ExistsSince(ctx context.Context, habitID uuid.UUID, reminderType entity.ReminderType, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM scheduled_reminders
			WHERE habit_id = $1 AND type = $2 AND created_at >= $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, habitID, reminderType, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check recent reminder: %w", err)
	}

	return exists, nil
}

func (r *reminderRepository) ListDue(ctx context.Context, now time.Time) ([]*repository.DueReminder, error) {
	query := `
		SELECT
			sr.id, sr.habit_id, sr.user_id, sr.type, sr.status, sr.scheduled_for, sr.for_date,
			sr.title, sr.body, sr.priority, sr.streak_snapshot, sr.status_reason, sr.sent_at, sr.created_at,
			h.id, h.user_id, h.name, h.description,
			h.recurrence_type, h.weekly_days, h.interval_days, h.times_per_period,
			h.reminder_time, h.grace_period_enabled, h.grace_period_hours, h.skip_on_vacation,
			h.start_date, h.end_date, h.is_active, h.created_at, h.updated_at,
			u.id, u.email, u.name, u.notifications_enabled, u.weekly_digest_enabled,
			u.on_vacation, u.vacation_start, u.vacation_end,
			u.quiet_hours_start, u.quiet_hours_end,
			u.timezone_offset_hours, u.daily_goal, u.created_at, u.updated_at
		FROM scheduled_reminders sr
		JOIN habits h ON h.id = sr.habit_id
		JOIN users u ON u.id = sr.user_id
		WHERE sr.status = 'prepared'
		  AND sr.scheduled_for <= $1
		ORDER BY sr.priority DESC, sr.scheduled_for ASC
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	var due []*repository.DueReminder
	for rows.Next() {
		reminder := &entity.ScheduledReminder{}
		habit := &entity.Habit{}
		owner := &entity.User{}

		err := rows.Scan(
			&reminder.ID, &reminder.HabitID, &reminder.UserID, &reminder.Type, &reminder.Status,
			&reminder.ScheduledFor, &reminder.ForDate,
			&reminder.Title, &reminder.Body, &reminder.Priority, &reminder.StreakSnapshot,
			&reminder.StatusReason, &reminder.SentAt, &reminder.CreatedAt,
			&habit.ID, &habit.UserID, &habit.Name, &habit.Description,
			&habit.RecurrenceType, &habit.WeeklyDays, &habit.IntervalDays, &habit.TimesPerPeriod,
			&habit.ReminderTime, &habit.GracePeriodEnabled, &habit.GracePeriodHours, &habit.SkipOnVacation,
			&habit.StartDate, &habit.EndDate, &habit.IsActive, &habit.CreatedAt, &habit.UpdatedAt,
			&owner.ID, &owner.Email, &owner.Name, &owner.NotificationsEnabled, &owner.WeeklyDigestEnabled,
			&owner.OnVacation, &owner.VacationStart, &owner.VacationEnd,
			&owner.QuietHoursStart, &owner.QuietHoursEnd,
			&owner.TimezoneOffsetHours, &owner.DailyGoal, &owner.CreatedAt, &owner.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due reminder: %w", err)
		}

		due = append(due, &repository.DueReminder{Reminder: reminder, Habit: habit, Owner: owner})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due reminders: %w", err)
	}

	return due, nil
}

// transition applies a compare-and-swap state change: the update only
// lands while the row is still prepared.
func (r *reminderRepository) transition(ctx context.Context, reminderID uuid.UUID, status entity.ReminderStatus, reason *string, sentAt *time.Time) (bool, error) {
	query := `
		UPDATE scheduled_reminders SET
			status = $1,
			status_reason = $2,
			sent_at = $3
		WHERE id = $4 AND status = 'prepared'
	`

	result, err := r.pool.Exec(ctx, query, status, reason, sentAt, reminderID)
	if err != nil {
		return false, fmt.Errorf("failed to transition reminder: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, reminderID uuid.UUID, sentAt time.Time) (bool, error) {
	return r.transition(ctx, reminderID, entity.ReminderStatusSent, nil, &sentAt)
}

func (r *reminderRepository) MarkSkipped(ctx context.Context, reminderID uuid.UUID, reason string) (bool, error) {
	return r.transition(ctx, reminderID, entity.ReminderStatusSkipped, &reason, nil)
}

// MarkFailed also demotes a claimed row whose delivery failed after the
// prepared -> sent transition was won.
func (r *reminderRepository) MarkFailed(ctx context.Context, reminderID uuid.UUID, reason string) (bool, error) {
	query := `
		UPDATE scheduled_reminders SET
			status = 'failed',
			status_reason = $1,
			sent_at = NULL
		WHERE id = $2 AND status IN ('prepared', 'sent')
	`

	result, err := r.pool.Exec(ctx, query, reason, reminderID)
	if err != nil {
		return false, fmt.Errorf("failed to transition reminder: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
