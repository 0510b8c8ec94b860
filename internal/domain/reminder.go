package domain

import (
	"context"
	"time"
)

// ReminderLeadTime is how long before an event's start its reminder fires.
const ReminderLeadTime = 24 * time.Hour

// RemindAtFor returns the reminder instant for an event start time.
func RemindAtFor(startAt time.Time) time.Time {
	return startAt.Add(-ReminderLeadTime)
}

// ReminderService manages pre-event reminders, keyed by (event, user). One
// active reminder exists per attendance record that is confirmed and
// subscribed; the orchestrator keeps that lifecycle in step.
type ReminderService interface {
	Schedule(ctx context.Context, eventID, userID string, remindAt time.Time) error
	Reschedule(ctx context.Context, eventID, userID string, remindAt time.Time) error
	CancelAll(ctx context.Context, eventID string) error
}
