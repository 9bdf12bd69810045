package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"streaks-service/internal/domain/entity"
	"streaks-service/internal/domain/repository"
)

type streakRepository struct {
	pool *pgxpool.Pool
}

// NewStreakRepository creates a new PostgreSQL streak repository
func NewStreakRepository(pool *pgxpool.Pool) repository.StreakRepository {
	return &streakRepository{pool: pool}
}

func (r *streakRepository) Create(ctx context.Context, streak *entity.HabitStreak) error {
	query := `
		INSERT INTO habit_streaks (
			id, habit_id, user_id,
			current_streak, longest_streak, last_completed_at,
			missed_days_count, grace_period_used, previous_streak,
			last_milestone, last_reset_reason, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9,
			$10, $11, $12
		)
	`

	_, err := r.pool.Exec(ctx, query,
		streak.ID, streak.HabitID, streak.UserID,
		streak.CurrentStreak, streak.LongestStreak, streak.LastCompletedAt,
		streak.MissedDaysCount, streak.GracePeriodUsed, streak.PreviousStreak,
		streak.LastMilestone, streak.LastResetReason, streak.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create streak: %w", err)
	}

	return nil
}

func (r *streakRepository) GetByHabitID(ctx context.Context, habitID uuid.UUID) (*entity.HabitStreak, error) {
	query := `
		SELECT
			id, habit_id, user_id,
			current_streak, longest_streak, last_completed_at,
			missed_days_count, grace_period_used, previous_streak,
			last_milestone, last_reset_reason, updated_at
		FROM habit_streaks
		WHERE habit_id = $1
	`

	streak := &entity.HabitStreak{}
	err := r.pool.QueryRow(ctx, query, habitID).Scan(
		&streak.ID, &streak.HabitID, &streak.UserID,
		&streak.CurrentStreak, &streak.LongestStreak, &streak.LastCompletedAt,
		&streak.MissedDaysCount, &streak.GracePeriodUsed, &streak.PreviousStreak,
		&streak.LastMilestone, &streak.LastResetReason, &streak.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("streak not found")
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	return streak, nil
}

func (r *streakRepository) Update(ctx context.Context, streak *entity.HabitStreak) error {
	query := `
		UPDATE habit_streaks SET
			current_streak = $1,
			longest_streak = $2,
			last_completed_at = $3,
			missed_days_count = $4,
			grace_period_used = $5,
			previous_streak = $6,
			last_milestone = $7,
			last_reset_reason = $8,
			updated_at = $9
		WHERE habit_id = $10
	`

	result, err := r.pool.Exec(ctx, query,
		streak.CurrentStreak, streak.LongestStreak, streak.LastCompletedAt,
		streak.MissedDaysCount, streak.GracePeriodUsed, streak.PreviousStreak,
		streak.LastMilestone, streak.LastResetReason, streak.UpdatedAt,
		streak.HabitID,
	)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("streak not found")
	}

	return nil
}

func (r *streakRepository) SetLastMilestone(ctx context.Context, habitID uuid.UUID, milestone int32) error {
	query := `
		UPDATE habit_streaks SET
			last_milestone = $1,
			updated_at = $2
		WHERE habit_id = $3
	`

	result, err := r.pool.Exec(ctx, query, milestone, time.Now().UTC(), habitID)
	if err != nil {
		return fmt.Errorf("failed to set last milestone: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("streak not found")
	}

	return nil
}
