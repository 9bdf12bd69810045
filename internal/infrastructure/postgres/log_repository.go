package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"streaks-service/internal/domain/entity"
	"streaks-service/internal/domain/repository"
)

type logRepository struct {
	pool *pgxpool.Pool
}

// NewHabitLogRepository creates a new PostgreSQL habit log repository
func NewHabitLogRepository(pool *pgxpool.Pool) repository.HabitLogRepository {
	return &logRepository{pool: pool}
}

func (r *logRepository) Create(ctx context.Context, log *entity.HabitLog) error {
	query := `
		INSERT INTO habit_logs (
			id, habit_id, user_id, log_date, status, notes, logged_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.pool.Exec(ctx, query,
		log.ID, log.HabitID, log.UserID, log.LogDate, log.Status, log.Notes, log.LoggedAt, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create habit log: %w", err)
	}

	return nil
}

func (r *logRepository) HasStatusForDate(ctx context.Context, habitID uuid.UUID, date string, status entity.LogStatus) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM habit_logs
			WHERE habit_id = $1 AND log_date = $2 AND status = $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, habitID, date, status).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check habit log: %w", err)
	}

	return exists, nil
}

func (r *logRepository) CountCompletedInRange(ctx context.Context, habitID uuid.UUID, fromDate, toDate string) (int32, error) {
	query := `
		SELECT COUNT(*) FROM habit_logs
		WHERE habit_id = $1
		  AND status = 'completed'
		  AND log_date >= $2
		  AND log_date <= $3
	`

	var count int32
	if err := r.pool.QueryRow(ctx, query, habitID, fromDate, toDate).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}

	return count, nil
}

func (r *logRepository) CountCompletedForUserOnDate(ctx context.Context, userID uuid.UUID, date string) (int32, error) {
	query := `
		SELECT COUNT(*) FROM habit_logs
		WHERE user_id = $1
		  AND status = 'completed'
		  AND log_date = $2
	`

	var count int32
	if err := r.pool.QueryRow(ctx, query, userID, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count user completions: %w", err)
	}

	return count, nil
}

func (r *logRepository) CompletionCountsForUser(ctx context.Context, userID uuid.UUID, fromDate, toDate string) ([]*repository.CompletionCount, error) {
	query := `
		SELECT l.habit_id, h.name, COUNT(*)
		FROM habit_logs l
		JOIN habits h ON h.id = l.habit_id
		WHERE l.user_id = $1
		  AND l.status = 'completed'
		  AND l.log_date >= $2
		  AND l.log_date <= $3
		GROUP BY l.habit_id, h.name
	`

	rows, err := r.pool.Query(ctx, query, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate completions: %w", err)
	}
	defer rows.Close()

	var counts []*repository.CompletionCount
	for rows.Next() {
		c := &repository.CompletionCount{UserID: userID}
		if err := rows.Scan(&c.HabitID, &c.HabitName, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan completion count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completion counts: %w", err)
	}

	return counts, nil
}
