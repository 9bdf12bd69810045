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

const userColumns = `
	id, email, name, notifications_enabled, weekly_digest_enabled,
	on_vacation, vacation_start, vacation_end,
	quiet_hours_start, quiet_hours_end,
	timezone_offset_hours, daily_goal, created_at, updated_at
`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.NotificationsEnabled, &user.WeeklyDigestEnabled,
		&user.OnVacation, &user.VacationStart, &user.VacationEnd,
		&user.QuietHoursStart, &user.QuietHoursEnd,
		&user.TimezoneOffsetHours, &user.DailyGoal, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *userRepository) listUsers(ctx context.Context, query string) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *userRepository) ListDigestRecipients(ctx context.Context) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE notifications_enabled = TRUE
		  AND weekly_digest_enabled = TRUE
		  AND on_vacation = FALSE
		ORDER BY created_at ASC
	`
	return r.listUsers(ctx, query)
}

func (r *userRepository) ListWithDailyGoal(ctx context.Context) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE notifications_enabled = TRUE
		  AND daily_goal IS NOT NULL
		  AND daily_goal > 0
		ORDER BY created_at ASC
	`
	return r.listUsers(ctx, query)
}
