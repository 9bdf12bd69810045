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

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new PostgreSQL notification repository
func NewNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, type, status, title, body, metadata,
			sent_at, failed_at, error, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11
		)
	`

	_, err := r.pool.Exec(ctx, query,
		notification.ID, notification.UserID, notification.Type, notification.Status,
		notification.Title, notification.Body, notification.Metadata,
		notification.SentAt, notification.FailedAt, notification.Error, notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, notificationID uuid.UUID, status entity.NotificationStatus, sentAt, failedAt *time.Time, errMsg *string) error {
	query := `
		UPDATE notifications SET
			status = $1,
			sent_at = $2,
			failed_at = $3,
			error = $4
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query, status, sentAt, failedAt, errMsg, notificationID)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

func (r *notificationRepository) ExistsForUserSince(ctx context.Context, userID uuid.UUID, notificationType entity.NotificationType, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND created_at >= $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, notificationType, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check notification history: %w", err)
	}

	return exists, nil
}
