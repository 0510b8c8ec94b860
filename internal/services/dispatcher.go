package services

import (
	"context"
	"fmt"
	"log/slog"

	"chapterevents/internal/domain"
)

type effectDispatcher struct {
	emails    domain.EmailService
	reminders domain.ReminderService
	logger    *slog.Logger
}

// NewEffectDispatcher returns a dispatcher that fans attendance-transition
// effects out to the email and reminder collaborators. Failures are logged
// and swallowed: by the time effects reach the dispatcher the transition has
// committed, and delivery is at-most-effort.
func NewEffectDispatcher(emails domain.EmailService, reminders domain.ReminderService, logger *slog.Logger) domain.EffectDispatcher {
	return &effectDispatcher{
		emails:    emails,
		reminders: reminders,
		logger:    logger,
	}
}

func (d *effectDispatcher) Dispatch(ctx context.Context, effects []domain.Effect) {
	for _, effect := range effects {
		if err := d.apply(ctx, effect); err != nil {
			eventID := ""
			if effect.Event != nil {
				eventID = effect.Event.ID
			}
			d.logger.Error("effect dispatch failed",
				"kind", effect.Kind,
				"event_id", eventID,
				"err", err,
			)
		}
	}
}

func (d *effectDispatcher) apply(ctx context.Context, effect domain.Effect) error {
	switch effect.Kind {
	case domain.EffectSendInvitation:
		return d.emails.SendRsvpInvitation(ctx, effect.User, effect.Event)
	case domain.EffectNotifyAdministrators:
		return d.emails.NotifyAdministrators(ctx, effect.Admins, effect.User, effect.Event)
	case domain.EffectSendConfirmation:
		return d.emails.SendRsvpConfirmation(ctx, effect.User, effect.Event)
	case domain.EffectSendCancellation:
		return d.emails.SendEventCancellation(ctx, effect.Recipients, effect.Event)
	case domain.EffectSendVenueChange:
		return d.emails.SendVenueChange(ctx, effect.Recipients, effect.Event, effect.Venue)
	case domain.EffectScheduleReminder:
		return d.reminders.Schedule(ctx, effect.Event.ID, effect.UserID, effect.RemindAt)
	case domain.EffectRescheduleReminder:
		return d.reminders.Reschedule(ctx, effect.Event.ID, effect.UserID, effect.RemindAt)
	case domain.EffectCancelReminders:
		return d.reminders.CancelAll(ctx, effect.Event.ID)
	default:
		return fmt.Errorf("unknown effect kind %q", effect.Kind)
	}
}
