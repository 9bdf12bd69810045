package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"streaks-service/internal/domain/entity"
	"streaks-service/internal/domain/repository"
	"streaks-service/internal/domain/service"
)

// In-memory fakes for the repository ports and collaborators.

type fakeHabitRepo struct {
	tracked []*repository.TrackedHabit
	listErr error
}

func (f *fakeHabitRepo) GetByIDAndUserID(_ context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	for _, t := range f.tracked {
		if t.Habit.ID == habitID && t.Habit.UserID == userID {
			return t.Habit, nil
		}
	}
	return nil, fmt.Errorf("habit not found or unauthorized")
}

func (f *fakeHabitRepo) ListActiveTracked(_ context.Context) ([]*repository.TrackedHabit, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tracked, nil
}

type fakeStreakRepo struct {
	streaks map[uuid.UUID]*entity.HabitStreak // keyed by habit ID
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{streaks: make(map[uuid.UUID]*entity.HabitStreak)}
}

func (f *fakeStreakRepo) Create(_ context.Context, streak *entity.HabitStreak) error {
	f.streaks[streak.HabitID] = streak
	return nil
}

func (f *fakeStreakRepo) GetByHabitID(_ context.Context, habitID uuid.UUID) (*entity.HabitStreak, error) {
	s, ok := f.streaks[habitID]
	if !ok {
		return nil, fmt.Errorf("streak not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStreakRepo) Update(_ context.Context, streak *entity.HabitStreak) error {
	existing, ok := f.streaks[streak.HabitID]
	if !ok {
		return fmt.Errorf("streak not found")
	}
	*existing = *streak
	return nil
}

func (f *fakeStreakRepo) SetLastMilestone(_ context.Context, habitID uuid.UUID, milestone int32) error {
	s, ok := f.streaks[habitID]
	if !ok {
		return fmt.Errorf("streak not found")
	}
	s.LastMilestone = milestone
	return nil
}

type fakeLogRepo struct {
	logs       []*entity.HabitLog
	habitNames map[uuid.UUID]string // optional, for CompletionCountsForUser
	failHabit  uuid.UUID            // HasStatusForDate errors for this habit
}

func (f *fakeLogRepo) Create(_ context.Context, log *entity.HabitLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeLogRepo) HasStatusForDate(_ context.Context, habitID uuid.UUID, date string, status entity.LogStatus) (bool, error) {
	if habitID == f.failHabit {
		return false, fmt.Errorf("connection reset")
	}
	for _, l := range f.logs {
		if l.HabitID == habitID && l.LogDate == date && l.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLogRepo) CountCompletedInRange(_ context.Context, habitID uuid.UUID, fromDate, toDate string) (int32, error) {
	var count int32
	for _, l := range f.logs {
		if l.HabitID == habitID && l.Status == entity.LogStatusCompleted &&
			l.LogDate >= fromDate && l.LogDate <= toDate {
			count++
		}
	}
	return count, nil
}

func (f *fakeLogRepo) CountCompletedForUserOnDate(_ context.Context, userID uuid.UUID, date string) (int32, error) {
	var count int32
	for _, l := range f.logs {
		if l.UserID == userID && l.Status == entity.LogStatusCompleted && l.LogDate == date {
			count++
		}
	}
	return count, nil
}

func (f *fakeLogRepo) CompletionCountsForUser(_ context.Context, userID uuid.UUID, fromDate, toDate string) ([]*repository.CompletionCount, error) {
	byHabit := make(map[uuid.UUID]*repository.CompletionCount)
	var order []uuid.UUID
	for _, l := range f.logs {
		if l.UserID != userID || l.Status != entity.LogStatusCompleted || l.LogDate < fromDate || l.LogDate > toDate {
			continue
		}
		c, ok := byHabit[l.HabitID]
		if !ok {
			name := f.habitNames[l.HabitID]
			if name == "" {
				name = l.HabitID.String()
			}
			c = &repository.CompletionCount{UserID: userID, HabitID: l.HabitID, HabitName: name}
			byHabit[l.HabitID] = c
			order = append(order, l.HabitID)
		}
		c.Count++
	}
	counts := make([]*repository.CompletionCount, 0, len(order))
	for _, id := range order {
		counts = append(counts, byHabit[id])
	}
	return counts, nil
}

type fakeReminderRepo struct {
	reminders map[uuid.UUID]*entity.ScheduledReminder
	habits    map[uuid.UUID]*entity.Habit
	owners    map[uuid.UUID]*entity.User
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{
		reminders: make(map[uuid.UUID]*entity.ScheduledReminder),
		habits:    make(map[uuid.UUID]*entity.Habit),
		owners:    make(map[uuid.UUID]*entity.User),
	}
}

func (f *fakeReminderRepo) join(tracked ...*repository.TrackedHabit) {
	for _, t := range tracked {
		f.habits[t.Habit.ID] = t.Habit
		f.owners[t.Owner.ID] = t.Owner
	}
}

func (f *fakeReminderRepo) Create(_ context.Context, reminder *entity.ScheduledReminder) error {
	cp := *reminder
	f.reminders[reminder.ID] = &cp
	return nil
}

func (f *fakeReminderRepo) ExistsForDate(_ context.Context, habitID uuid.UUID, reminderType entity.ReminderType, forDate string) (bool, error) {
	for _, r := range f.reminders {
		if r.HabitID == habitID && r.Type == reminderType && r.ForDate == forDate {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReminderRepo) ExistsSince(_ context.Context, habitID uuid.UUID, reminderType entity.ReminderType, since time.Time) (bool, error) {
	for _, r := range f.reminders {
		if r.HabitID == habitID && r.Type == reminderType && !r.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReminderRepo) ListDue(_ context.Context, now time.Time) ([]*repository.DueReminder, error) {
	var due []*repository.DueReminder
	for _, r := range f.reminders {
		if r.Status == entity.ReminderStatusPrepared && !r.ScheduledFor.After(now) {
			due = append(due, &repository.DueReminder{
				Reminder: r,
				Habit:    f.habits[r.HabitID],
				Owner:    f.owners[r.UserID],
			})
		}
	}
	return due, nil
}

func (f *fakeReminderRepo) transition(reminderID uuid.UUID, status entity.ReminderStatus, reason *string, sentAt *time.Time) (bool, error) {
	r, ok := f.reminders[reminderID]
	if !ok {
		return false, fmt.Errorf("reminder not found")
	}
	if r.Status != entity.ReminderStatusPrepared {
		return false, nil
	}
	r.Status = status
	r.StatusReason = reason
	r.SentAt = sentAt
	return true, nil
}

func (f *fakeReminderRepo) MarkSent(_ context.Context, reminderID uuid.UUID, sentAt time.Time) (bool, error) {
	return f.transition(reminderID, entity.ReminderStatusSent, nil, &sentAt)
}

func (f *fakeReminderRepo) MarkSkipped(_ context.Context, reminderID uuid.UUID, reason string) (bool, error) {
	return f.transition(reminderID, entity.ReminderStatusSkipped, &reason, nil)
}

func (f *fakeReminderRepo) MarkFailed(_ context.Context, reminderID uuid.UUID, reason string) (bool, error) {
	r, ok := f.reminders[reminderID]
	if !ok {
		return false, fmt.Errorf("reminder not found")
	}
	if r.Status != entity.ReminderStatusPrepared && r.Status != entity.ReminderStatusSent {
		return false, nil
	}
	r.Status = entity.ReminderStatusFailed
	r.StatusReason = &reason
	r.SentAt = nil
	return true, nil
}

func (f *fakeReminderRepo) byStatus(status entity.ReminderStatus) []*entity.ScheduledReminder {
	var out []*entity.ScheduledReminder
	for _, r := range f.reminders {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

type fakeNotificationRepo struct {
	notifications []*entity.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *entity.Notification) error {
	f.notifications = append(f.notifications, notification)
	return nil
}

func (f *fakeNotificationRepo) UpdateStatus(_ context.Context, notificationID uuid.UUID, status entity.NotificationStatus, sentAt, failedAt *time.Time, errMsg *string) error {
	for _, n := range f.notifications {
		if n.ID == notificationID {
			n.Status = status
			n.SentAt = sentAt
			n.FailedAt = failedAt
			n.Error = errMsg
			return nil
		}
	}
	return fmt.Errorf("notification not found")
}

func (f *fakeNotificationRepo) ExistsForUserSince(_ context.Context, userID uuid.UUID, notificationType entity.NotificationType, since time.Time) (bool, error) {
	for _, n := range f.notifications {
		if n.UserID == userID && n.Type == notificationType && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	users []*entity.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (f *fakeUserRepo) ListDigestRecipients(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range f.users {
		if u.NotificationsEnabled && u.WeeklyDigestEnabled && !u.OnVacation {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListWithDailyGoal(_ context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range f.users {
		if u.NotificationsEnabled && u.DailyGoal != nil && *u.DailyGoal > 0 {
			out = append(out, u)
		}
	}
	return out, nil
}

type sentNotification struct {
	UserID   uuid.UUID
	Type     entity.NotificationType
	Title    string
	Body     string
	Metadata map[string]string
}

type fakeNotifier struct {
	sent    []sentNotification
	failErr error
}

func (f *fakeNotifier) Send(_ context.Context, userID uuid.UUID, notificationType entity.NotificationType, title, body string, metadata map[string]string) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, sentNotification{UserID: userID, Type: notificationType, Title: title, Body: body, Metadata: metadata})
	return nil
}

type fakeGoalMarker struct {
	marked map[string]bool
	err    error
}

func newFakeGoalMarker() *fakeGoalMarker {
	return &fakeGoalMarker{marked: make(map[string]bool)}
}

func (f *fakeGoalMarker) MarkNotified(_ context.Context, userID uuid.UUID, date string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	key := userID.String() + ":" + date
	if f.marked[key] {
		return false, nil
	}
	f.marked[key] = true
	return true, nil
}

func (f *fakeGoalMarker) Release(_ context.Context, userID uuid.UUID, date string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.marked, userID.String()+":"+date)
	return nil
}

type fakeMailer struct {
	sent []string // recipient addresses
}

func (f *fakeMailer) SendWeeklyDigest(_ context.Context, to, _ string, _ []service.DigestEntry) error {
	f.sent = append(f.sent, to)
	return nil
}

type fakePublisher struct {
	events  []*service.PushEvent
	failErr error
}

func (f *fakePublisher) Publish(_ context.Context, event *service.PushEvent) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.events = append(f.events, event)
	return nil
}

// Builders for the common test fixtures.

func testUser() *entity.User {
	return &entity.User{
		ID:                   uuid.New(),
		Email:                "ann@example.com",
		Name:                 "Ann",
		NotificationsEnabled: true,
		WeeklyDigestEnabled:  true,
		TimezoneOffsetHours:  0,
	}
}

func testDailyHabit(userID uuid.UUID, name string) *entity.Habit {
	return &entity.Habit{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           name,
		RecurrenceType: entity.RecurrenceDaily,
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:       true,
	}
}

func testStreak(habit *entity.Habit, current int32) *entity.HabitStreak {
	return &entity.HabitStreak{
		ID:            uuid.New(),
		HabitID:       habit.ID,
		UserID:        habit.UserID,
		CurrentStreak: current,
		LongestStreak: current,
	}
}

func testTracked(habit *entity.Habit, streak *entity.HabitStreak, owner *entity.User) *repository.TrackedHabit {
	return &repository.TrackedHabit{Habit: habit, Streak: streak, Owner: owner}
}
