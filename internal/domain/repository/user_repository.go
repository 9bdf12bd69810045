package repository

import (
	"context"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

// UserRepository defines the interface for user preference reads
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// ListDigestRecipients retrieves users opted in to the weekly digest
	// who allow notifications and are not on vacation
	ListDigestRecipients(ctx context.Context) ([]*entity.User, error)

	// ListWithDailyGoal retrieves users with a configured daily goal who
	// allow notifications
	ListWithDailyGoal(ctx context.Context) ([]*entity.User, error)
}
