package entity

import (
	"time"

	"github.com/google/uuid"
)

// LogStatus represents the kind of fact recorded for a day
type LogStatus string

const (
	LogStatusCompleted LogStatus = "completed"
	LogStatusSkipped   LogStatus = "skipped"
)

// HabitLog is an append-only record of a completion or skip for a habit
// on a specific date. Immutable once written.
type HabitLog struct {
	ID      uuid.UUID
	HabitID uuid.UUID
	UserID  uuid.UUID

	LogDate string // Date in format "YYYY-MM-DD" (in the owner's timezone)
	Status  LogStatus
	Notes   *string

	LoggedAt  time.Time
	CreatedAt time.Time
}
