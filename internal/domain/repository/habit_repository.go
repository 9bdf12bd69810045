package repository

import (
	"context"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

// TrackedHabit bundles an active habit with its streak row and the
// owner's delivery/vacation preferences, the shape every scan job reads.
type TrackedHabit struct {
	Habit  *entity.Habit
	Streak *entity.HabitStreak
	Owner  *entity.User
}

// HabitRepository defines the interface for habit persistence
type HabitRepository interface {
	// GetByIDAndUserID retrieves a habit by ID and user ID (for authorization)
	GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)

	// ListActiveTracked retrieves all active habits joined with their
	// streak row and owner preferences
	ListActiveTracked(ctx context.Context) ([]*TrackedHabit, error)
}
