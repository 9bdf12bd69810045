package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"streaks-service/internal/domain/entity"
	"streaks-service/internal/domain/repository"
)

const habitColumns = `
	id, user_id, name, description,
	recurrence_type, weekly_days, interval_days, times_per_period,
	reminder_time, grace_period_enabled, grace_period_hours, skip_on_vacation,
	start_date, end_date, is_active, created_at, updated_at
`

type habitRepository struct {
	pool *pgxpool.Pool
}

// NewHabitRepository creates a new PostgreSQL habit repository
func NewHabitRepository(pool *pgxpool.Pool) repository.HabitRepository {
	return &habitRepository{pool: pool}
}

func scanHabit(row pgx.Row) (*entity.Habit, error) {
	habit := &entity.Habit{}
	err := row.Scan(
		&habit.ID, &habit.UserID, &habit.Name, &habit.Description,
		&habit.RecurrenceType, &habit.WeeklyDays, &habit.IntervalDays, &habit.TimesPerPeriod,
		&habit.ReminderTime, &habit.GracePeriodEnabled, &habit.GracePeriodHours, &habit.SkipOnVacation,
		&habit.StartDate, &habit.EndDate, &habit.IsActive, &habit.CreatedAt, &habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return habit, nil
}

func (r *habitRepository) GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	habit, err := scanHabit(r.pool.QueryRow(ctx, query, habitID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("habit not found or unauthorized")
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

func (r *habitRepository) ListActiveTracked(ctx context.Context) ([]*repository.TrackedHabit, error) {
	query := `
		SELECT
			h.id, h.user_id, h.name, h.description,
			h.recurrence_type, h.weekly_days, h.interval_days, h.times_per_period,
			h.reminder_time, h.grace_period_enabled, h.grace_period_hours, h.skip_on_vacation,
			h.start_date, h.end_date, h.is_active, h.created_at, h.updated_at,
			s.id, s.current_streak, s.longest_streak, s.last_completed_at,
			s.missed_days_count, s.grace_period_used, s.previous_streak,
			s.last_milestone, s.last_reset_reason, s.updated_at,
			u.id, u.email, u.name, u.notifications_enabled, u.weekly_digest_enabled,
			u.on_vacation, u.vacation_start, u.vacation_end,
			u.quiet_hours_start, u.quiet_hours_end,
			u.timezone_offset_hours, u.daily_goal, u.created_at, u.updated_at
		FROM habits h
		JOIN habit_streaks s ON s.habit_id = h.id
		JOIN users u ON u.id = h.user_id
		WHERE h.is_active = TRUE
		ORDER BY h.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active habits: %w", err)
	}
	defer rows.Close()

	var tracked []*repository.TrackedHabit
	for rows.Next() {
		habit := &entity.Habit{}
		streak := &entity.HabitStreak{}
		owner := &entity.User{}

		err := rows.Scan(
			&habit.ID, &habit.UserID, &habit.Name, &habit.Description,
			&habit.RecurrenceType, &habit.WeeklyDays, &habit.IntervalDays, &habit.TimesPerPeriod,
			&habit.ReminderTime, &habit.GracePeriodEnabled, &habit.GracePeriodHours, &habit.SkipOnVacation,
			&habit.StartDate, &habit.EndDate, &habit.IsActive, &habit.CreatedAt, &habit.UpdatedAt,
			&streak.ID, &streak.CurrentStreak, &streak.LongestStreak, &streak.LastCompletedAt,
			&streak.MissedDaysCount, &streak.GracePeriodUsed, &streak.PreviousStreak,
			&streak.LastMilestone, &streak.LastResetReason, &streak.UpdatedAt,
			&owner.ID, &owner.Email, &owner.Name, &owner.NotificationsEnabled, &owner.WeeklyDigestEnabled,
			&owner.OnVacation, &owner.VacationStart, &owner.VacationEnd,
			&owner.QuietHoursStart, &owner.QuietHoursEnd,
			&owner.TimezoneOffsetHours, &owner.DailyGoal, &owner.CreatedAt, &owner.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked habit: %w", err)
		}

		streak.HabitID = habit.ID
		streak.UserID = habit.UserID
		tracked = append(tracked, &repository.TrackedHabit{Habit: habit, Streak: streak, Owner: owner})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracked habits: %w", err)
	}

	return tracked, nil
}
