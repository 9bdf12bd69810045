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
)

type notificationService struct {
	repo      repository.NotificationRepository
	publisher service.PushPublisher
	logger    *zap.Logger
}

// NewNotificationService creates the notification sink: every Send
// persists a Notification row and pairs it with one push attempt.
func NewNotificationService(
	repo repository.NotificationRepository,
	publisher service.PushPublisher,
	logger *zap.Logger,
) service.Notifier {
	return &notificationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *notificationService) Send(ctx context.Context, userID uuid.UUID, notificationType entity.NotificationType, title, body string, metadata map[string]string) error {
	notification := &entity.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notificationType,
		Status:    entity.NotificationStatusPending,
		Title:     title,
		Body:      body,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	err := s.publisher.Publish(ctx, &service.PushEvent{
		NotificationID: notification.ID.String(),
		UserID:         userID.String(),
		Type:           string(notificationType),
		Title:          title,
		Body:           body,
		Metadata:       metadata,
	})

	now := time.Now().UTC()
	if err != nil {
		errMsg := err.Error()
		if updateErr := s.repo.UpdateStatus(ctx, notification.ID, entity.NotificationStatusFailed, nil, &now, &errMsg); updateErr != nil {
			return fmt.Errorf("failed to update notification status: %w", updateErr)
		}
		return fmt.Errorf("failed to publish push event: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, notification.ID, entity.NotificationStatusSent, &now, nil, nil); err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	s.logger.Debug("notification sent",
		zap.String("user_id", userID.String()),
		zap.String("type", string(notificationType)))

	return nil
}
