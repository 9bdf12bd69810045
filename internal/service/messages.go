package service

import (
	"fmt"

	"streaks-service/internal/domain/entity"
)

// Reminder priorities, higher is more urgent
const (
	priorityNormal int32 = 0
	priorityHigh   int32 = 1
	priorityUrgent int32 = 2
)

func dailyReminderTitle(habitName string) string {
	return fmt.Sprintf("Time for %s", habitName)
}

func dailyReminderBody(habitName string, streak int32) string {
	if streak > 0 {
		return fmt.Sprintf("Keep your %d-day streak going: complete %q today.", streak, habitName)
	}
	return fmt.Sprintf("Don't forget to complete %q today.", habitName)
}

func warningContent(reminderType entity.ReminderType, habitName string, streak int32) (string, string) {
	if reminderType == entity.ReminderTypePreservation {
		title := fmt.Sprintf("Your %d-day streak is on the line!", streak)
		body := fmt.Sprintf("You haven't completed %q yet today. Don't break a %d-day run now.", habitName, streak)
		return title, body
	}
	title := fmt.Sprintf("Streak at risk: %s", habitName)
	body := fmt.Sprintf("Your %d-day streak on %q ends tonight unless you complete it.", streak, habitName)
	return title, body
}

func milestoneContent(habitName string, streak int32) (string, string) {
	title := fmt.Sprintf("%d days strong!", streak)
	body := fmt.Sprintf("You've kept up %q for %d days in a row. Well done!", habitName, streak)
	return title, body
}

func goalAchievedContent(completions, goal int32) (string, string) {
	title := "Daily goal achieved!"
	body := fmt.Sprintf("You completed %d of %d habits today. Great work!", completions, goal)
	return title, body
}
