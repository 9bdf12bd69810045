package repository

import (
	"context"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
)

// StreakRepository defines the interface for habit streak persistence
type StreakRepository interface {
	// Create creates a streak row for a habit
	Create(ctx context.Context, streak *entity.HabitStreak) error

	// GetByHabitID retrieves the streak row for a habit
	GetByHabitID(ctx context.Context, habitID uuid.UUID) (*entity.HabitStreak, error)

	// Update persists the full streak state for a habit
	Update(ctx context.Context, streak *entity.HabitStreak) error

	// SetLastMilestone records the milestone value a notification was
	// emitted for, so a streak holding at a milestone is announced once
	SetLastMilestone(ctx context.Context, habitID uuid.UUID, milestone int32) error
}
