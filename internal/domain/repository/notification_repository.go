package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

// NotificationRepository defines the interface for notification persistence
type NotificationRepository interface {
	// Create creates a new notification record
	Create(ctx context.Context, notification *entity.Notification) error

	// UpdateStatus updates the delivery status of a notification
	UpdateStatus(ctx context.Context, notificationID uuid.UUID, status entity.NotificationStatus, sentAt, failedAt *time.Time, errMsg *string) error

	// ExistsForUserSince checks whether a notification of the given type
	// was created for the user at or after the given instant
	ExistsForUserSince(ctx context.Context, userID uuid.UUID, notificationType entity.NotificationType, since time.Time) (bool, error)
}
