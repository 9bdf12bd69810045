package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"streaks-service/internal/domain/entity"
	"streaks-service/internal/domain/repository"
	"streaks-service/internal/domain/service"
)

type engagementService struct {
	userRepo         repository.UserRepository
	logRepo          repository.HabitLogRepository
	notificationRepo repository.NotificationRepository
	notifier         service.Notifier
	goalMarker       service.GoalMarker
	mailer           service.DigestMailer
	logger           *zap.Logger
}

// NewEngagementService creates the weekly digest and daily goal service
func NewEngagementService(
	userRepo repository.UserRepository,
	logRepo repository.HabitLogRepository,
	notificationRepo repository.NotificationRepository,
	notifier service.Notifier,
	goalMarker service.GoalMarker,
	mailer service.DigestMailer,
	logger *zap.Logger,
) service.EngagementService {
	return &engagementService{
		userRepo:         userRepo,
		logRepo:          logRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
		goalMarker:       goalMarker,
		mailer:           mailer,
		logger:           logger,
	}
}

// WeeklyDigest aggregates each opted-in user's completions over the
// trailing 7 days, ranks habits by completion count, and emits one
// summary notification (plus an email when the user has an address).
func (s *engagementService) WeeklyDigest(ctx context.Context, now time.Time) (int, error) {
	recipients, err := s.userRepo.ListDigestRecipients(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list digest recipients: %w", err)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	sent := 0
	for _, user := range recipients {
		// The week is bounded by the recipient's calendar, like every
		// other date-range aggregation in this service.
		local := user.GetLocalTime(now)
		from := local.AddDate(0, 0, -7).Format("2006-01-02")
		to := local.AddDate(0, 0, -1).Format("2006-01-02")

		entries, err := s.logRepo.CompletionCountsForUser(ctx, user.ID, from, to)
		if err != nil {
			s.logger.Warn("failed to aggregate completions",
				zap.String("user_id", user.ID.String()), zap.Error(err))
			continue
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Count != entries[j].Count {
				return entries[i].Count > entries[j].Count
			}
			return entries[i].HabitName < entries[j].HabitName
		})

		title, body := digestSummary(entries)
		if err := s.notifier.Send(ctx, user.ID, entity.NotificationTypeWeeklyDigest, title, body, map[string]string{
			"week_ending": to,
		}); err != nil {
			s.logger.Warn("failed to send weekly digest",
				zap.String("user_id", user.ID.String()), zap.Error(err))
			continue
		}
		sent++

		if user.Email != "" && s.mailer != nil {
			digestEntries := make([]service.DigestEntry, 0, len(entries))
			for _, e := range entries {
				digestEntries = append(digestEntries, service.DigestEntry{HabitName: e.HabitName, Count: e.Count})
			}
			if err := s.mailer.SendWeeklyDigest(ctx, user.Email, user.Name, digestEntries); err != nil {
				s.logger.Warn("failed to send digest email",
					zap.String("user_id", user.ID.String()), zap.Error(err))
			}
		}
	}

	return sent, nil
}

// DailyGoalScan congratulates each user who met their configured daily
// goal today, at most once per day. The redis marker is the primary
// dedup; on marker errors the notification table is consulted instead.
func (s *engagementService) DailyGoalScan(ctx context.Context, now time.Time) (int, error) {
	users, err := s.userRepo.ListWithDailyGoal(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users with daily goals: %w", err)
	}

	notified := 0
	for _, user := range users {
		if user.DailyGoal == nil || *user.DailyGoal <= 0 || user.OnVacation {
			continue
		}

		today := user.GetLocalDate(now)
		completions, err := s.logRepo.CountCompletedForUserOnDate(ctx, user.ID, today)
		if err != nil {
			s.logger.Warn("failed to count completions",
				zap.String("user_id", user.ID.String()), zap.Error(err))
			continue
		}
		if completions < *user.DailyGoal {
			continue
		}

		fresh, err := s.goalMarker.MarkNotified(ctx, user.ID, today)
		if err != nil {
			s.logger.Warn("goal marker unavailable, falling back to notification history",
				zap.String("user_id", user.ID.String()), zap.Error(err))
			exists, histErr := s.notificationRepo.ExistsForUserSince(ctx, user.ID, entity.NotificationTypeGoalAchieved, startOfLocalDay(user, now))
			if histErr != nil || exists {
				continue
			}
			fresh = true
		}
		if !fresh {
			continue
		}

		title, body := goalAchievedContent(completions, *user.DailyGoal)
		if err := s.notifier.Send(ctx, user.ID, entity.NotificationTypeGoalAchieved, title, body, map[string]string{
			"date": today,
		}); err != nil {
			s.logger.Warn("failed to send goal notification",
				zap.String("user_id", user.ID.String()), zap.Error(err))
			// Give the marker back so a later run can retry the send.
			if relErr := s.goalMarker.Release(ctx, user.ID, today); relErr != nil {
				s.logger.Warn("failed to release goal marker",
					zap.String("user_id", user.ID.String()), zap.Error(relErr))
			}
			continue
		}
		notified++
	}

	return notified, nil
}

// startOfLocalDay returns the UTC instant the user's current local day began.
func startOfLocalDay(user *entity.User, now time.Time) time.Time {
	local := user.GetLocalTime(now)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(-time.Duration(user.TimezoneOffsetHours) * time.Hour)
}

// digestSummary renders the notification title and ranked body lines.
func digestSummary(entries []*repository.CompletionCount) (string, string) {
	title := "Your week in habits"
	if len(entries) == 0 {
		return title, "No completions logged this week. A small step today restarts the momentum."
	}

	var b strings.Builder
	total := int32(0)
	for i, e := range entries {
		total += e.Count
		if i < 5 {
			fmt.Fprintf(&b, "%d. %s: %d times\n", i+1, e.HabitName, e.Count)
		}
	}
	header := fmt.Sprintf("%d completions across %d habits this week. Top habits:\n", total, len(entries))
	return title, header + strings.TrimRight(b.String(), "\n")
}
