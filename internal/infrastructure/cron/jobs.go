package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	"streaks-service/internal/config"
	"streaks-service/internal/domain/entity"
	"streaks-service/internal/domain/service"
)

// Job names, also the values operators pass to RunJob.
const (
	JobDailyRollover    = "daily_rollover"
	JobMilestoneScan    = "milestone_scan"
	JobAtRiskScan       = "at_risk_scan"
	JobReminderDispatch = "reminder_dispatch"
	JobPreservationScan = "preservation_scan"
	JobNextDayPrepare   = "next_day_prepare"
	JobWeeklyDigest     = "weekly_digest"
	JobDailyGoalScan    = "daily_goal_scan"
)

// Streak-length thresholds for the at-risk and preservation scans.
const (
	atRiskThreshold       int32 = 2
	preservationThreshold int32 = 7
)

// BuildJobs binds every batch job to its orchestration function, with
// cadences from config.
func BuildJobs(cfg *config.JobsConfig, streaks service.StreakService, reminders service.ReminderScheduler, engagement service.EngagementService) []Job {
	return []Job{
		{
			Name: JobDailyRollover,
			Spec: cfg.DailyRollover,
			Run: func(ctx context.Context) ([]zap.Field, error) {
				result, err := streaks.RolloverDay(ctx, time.Now().UTC())
				if err != nil {
					return nil, err
				}
				return []zap.Field{
					zap.Int("processed", result.Processed),
					zap.Int("completed", result.Completed),
					zap.Int("graceUsed", result.GraceUsed),
					zap.Int("resets", result.Resets),
					zap.Int("rowErrors", result.RowErrors),
				}, nil
			},
		},
		{
			Name: JobMilestoneScan,
			Spec: cfg.MilestoneScan,
			Run: func(ctx context.Context) ([]zap.Field, error) {
				notified, err := streaks.ScanMilestones(ctx, time.Now().UTC())
				if err != nil {
					return nil, err
				}
				return []zap.Field{zap.Int("notified", notified)}, nil
			},
		},
		{
			Name: JobAtRiskScan,
			Spec: cfg.AtRiskScan,
			Run: func(ctx context.Context) ([]zap.Field, error) {
				created, err := reminders.ScanAtRisk(ctx, time.Now().UTC(), atRiskThreshold, entity.ReminderTypeStreakRisk)
				if err != nil {
					return nil, err
				}
				return []zap.Field{zap.Int("created", created)}, nil
			},
		},
		{
			Name: JobReminderDispatch,
			Spec: cfg.ReminderDispatch,
			Run: func(ctx context.Context) ([]zap.Field, error) {
				result, err := reminders.Dispatch(ctx, time.Now().UTC())
				if err != nil {
					return nil, err
				}
				return []zap.Field{
					zap.Int("processed", result.Processed),
					zap.Int("sent", result.Sent),
					zap.Int("skipped", result.Skipped),
					zap.Int("failed", result.Failed),
				}, nil
			},
		},
		{
			Name: JobPreservationScan,
			Spec: cfg.PreservationScan,
			Run: func(ctx context.Context) ([]zap.Field, error) {
				created, err := reminders.ScanAtRisk(ctx, time.Now().UTC(), preservationThreshold, entity.ReminderTypePreservation)
				if err != nil {
					return nil, err
				}
				return []zap.Field{zap.Int("created", created)}, nil
			},
		},
		{
			Name: JobNextDayPrepare,
			Spec: cfg.NextDayPrepare,
			Run: func(ctx context.Context) ([]zap.Field, error) {
				prepared, err := reminders.PrepareNextDay(ctx, time.Now().UTC())
				if err != nil {
					return nil, err
				}
				return []zap.Field{zap.Int("prepared", prepared)}, nil
			},
		},
		{
			Name: JobWeeklyDigest,
			Spec: cfg.WeeklyDigest,
			Run: func(ctx context.Context) ([]zap.Field, error) {
				sent, err := engagement.WeeklyDigest(ctx, time.Now().UTC())
				if err != nil {
					return nil, err
				}
				return []zap.Field{zap.Int("sent", sent)}, nil
			},
		},
		{
			Name: JobDailyGoalScan,
			Spec: cfg.DailyGoalScan,
			Run: func(ctx context.Context) ([]zap.Field, error) {
				notified, err := engagement.DailyGoalScan(ctx, time.Now().UTC())
				if err != nil {
					return nil, err
				}
				return []zap.Field{zap.Int("notified", notified)}, nil
			},
		},
	}
}
