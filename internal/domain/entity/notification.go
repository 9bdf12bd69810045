package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the kind of user-visible notification
type NotificationType string

const (
	NotificationTypeReminder     NotificationType = "reminder"
	NotificationTypeMilestone    NotificationType = "milestone"
	NotificationTypeStreakRisk   NotificationType = "streak_warning"
	NotificationTypePreservation NotificationType = "streak_preservation"
	NotificationTypeWeeklyDigest NotificationType = "weekly_digest"
	NotificationTypeGoalAchieved NotificationType = "goal_achieved"
)

// NotificationStatus represents the delivery status of a notification
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is the durable, user-visible counterpart of a delivered
// reminder or achievement event. Always paired with a push attempt.
type Notification struct {
	ID     uuid.UUID
	UserID uuid.UUID

	Type     NotificationType
	Status   NotificationStatus
	Title    string
	Body     string
	Metadata map[string]string

	SentAt    *time.Time
	FailedAt  *time.Time
	Error     *string
	CreatedAt time.Time
}
