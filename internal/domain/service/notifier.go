package service

import (
	"context"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

// Notifier is the notification sink: it persists a user-visible
// notification and fans it out to push delivery. Callers treat a
// returned error as non-fatal and never retry within the same job run.
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, notificationType entity.NotificationType, title, body string, metadata map[string]string) error
}

// PushEvent is the payload handed to the push transport
type PushEvent struct {
	NotificationID string            `json:"notification_id"`
	UserID         string            `json:"user_id"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// PushPublisher publishes push events to the delivery transport
type PushPublisher interface {
	Publish(ctx context.Context, event *PushEvent) error
}

// GoalMarker records that a user's daily goal notification went out for
// a given date, so re-running the scan the same day stays silent.
type GoalMarker interface {
	// MarkNotified records the marker; returns false if it already existed
	MarkNotified(ctx context.Context, userID uuid.UUID, date string) (bool, error)

	// Release removes the marker, so a send that failed after claiming
	// it can be retried by a later run
	Release(ctx context.Context, userID uuid.UUID, date string) error
}

// DigestMailer delivers the weekly digest email
type DigestMailer interface {
	SendWeeklyDigest(ctx context.Context, to, name string, entries []DigestEntry) error
}

// DigestEntry is one ranked habit line in a weekly digest
type DigestEntry struct {
	HabitName string
	Count     int32
}
