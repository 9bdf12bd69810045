package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"streaks-service/internal/domain/service"
)

// markerTTL keeps goal markers around long enough to cover any same-day
// re-run, then lets them expire.
const markerTTL = 26 * time.Hour

// GoalMarker tracks per-user-per-day "goal achieved already notified"
// markers in Redis.
type GoalMarker struct {
	client *redis.Client
}

// NewGoalMarker creates a new goal marker store
func NewGoalMarker(client *redis.Client) service.GoalMarker {
	return &GoalMarker{client: client}
}

func (m *GoalMarker) key(userID uuid.UUID, date string) string {
	return fmt.Sprintf("goal_notified:%s:%s", userID.String(), date)
}

// MarkNotified sets the marker with SET NX. Returns true when this call
// created the marker, false when it already existed.
func (m *GoalMarker) MarkNotified(ctx context.Context, userID uuid.UUID, date string) (bool, error) {
	created, err := m.client.SetNX(ctx, m.key(userID, date), "1", markerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set goal marker: %w", err)
	}
	return created, nil
}

// Release deletes the marker after a failed delivery.
func (m *GoalMarker) Release(ctx context.Context, userID uuid.UUID, date string) error {
	if err := m.client.Del(ctx, m.key(userID, date)).Err(); err != nil {
		return fmt.Errorf("failed to release goal marker: %w", err)
	}
	return nil
}
