package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"streaks-service/internal/config"
	cronpkg "streaks-service/internal/infrastructure/cron"
	"streaks-service/internal/infrastructure/kafka"
	"streaks-service/internal/infrastructure/postgres"
	redisinfra "streaks-service/internal/infrastructure/redis"
	"streaks-service/internal/infrastructure/smtp"
	"streaks-service/internal/service"
	"streaks-service/pkg/logger"
)

// App represents the application
type App struct {
	config      *config.Config
	logger      *zap.Logger
	runner      *cronpkg.Runner
	dbPool      *pgxpool.Pool
	redisClient *goredis.Client
	publisher   *kafka.PushPublisher
}

// New creates a new application
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.With(zap.String("service", cfg.Service.Name))
	log.Info("configuration loaded", zap.String("environment", cfg.Service.Environment))

	ctx := context.Background()
	dbPool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("connected to PostgreSQL")

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("connected to Redis")

	publisher := kafka.NewPushPublisher(&cfg.Kafka)

	mailer, err := smtp.NewClient(&cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	// Repositories
	habitRepo := postgres.NewHabitRepository(dbPool)
	streakRepo := postgres.NewStreakRepository(dbPool)
	logRepo := postgres.NewHabitLogRepository(dbPool)
	reminderRepo := postgres.NewReminderRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	goalMarker := redisinfra.NewGoalMarker(redisClient)

	// Services
	notifier := service.NewNotificationService(notificationRepo, publisher, log)
	streakSvc := service.NewStreakService(habitRepo, streakRepo, logRepo, userRepo, notifier, log)
	reminderSvc := service.NewReminderScheduler(habitRepo, reminderRepo, logRepo, notifier, log)
	engagementSvc := service.NewEngagementService(userRepo, logRepo, notificationRepo, notifier, goalMarker, mailer, log)
	log.Info("services initialized")

	// Job runner
	timeout := cfg.Jobs.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	runner := cronpkg.NewRunner(log, timeout)
	for _, job := range cronpkg.BuildJobs(&cfg.Jobs, streakSvc, reminderSvc, engagementSvc) {
		if err := runner.Register(job); err != nil {
			return nil, fmt.Errorf("failed to register job: %w", err)
		}
	}

	return &App{
		config:      cfg,
		logger:      log,
		runner:      runner,
		dbPool:      dbPool,
		redisClient: redisClient,
		publisher:   publisher,
	}, nil
}

// Run starts the application
func (a *App) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	if a.config.Jobs.Enabled {
		a.runner.Start()
	} else {
		a.logger.Info("job runner is disabled in configuration")
	}

	a.logger.Info("service started", zap.String("name", a.config.Service.Name))

	<-quit
	a.logger.Info("shutting down")

	if a.config.Jobs.Enabled {
		a.runner.Stop()
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close kafka publisher", zap.Error(err))
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warn("failed to close redis client", zap.Error(err))
	}
	a.dbPool.Close()

	a.logger.Info("shutdown complete")
	return nil
}
