package domain

import (
	"context"
	"time"
)

// EffectKind identifies a side effect emitted by an attendance transition.
type EffectKind string

const (
	EffectSendInvitation       EffectKind = "send_invitation"
	EffectNotifyAdministrators EffectKind = "notify_administrators"
	EffectSendConfirmation     EffectKind = "send_confirmation"
	EffectSendCancellation     EffectKind = "send_cancellation"
	EffectSendVenueChange      EffectKind = "send_venue_change"
	EffectScheduleReminder     EffectKind = "schedule_reminder"
	EffectRescheduleReminder   EffectKind = "reschedule_reminder"
	EffectCancelReminders      EffectKind = "cancel_reminders"
)

// Effect is a side-effect command collected during a transition and executed
// only after the transactional write commits. Recipients are resolved by the
// orchestrator; the dispatcher is a dumb fan-out. Which fields are set
// depends on Kind.
type Effect struct {
	Kind  EffectKind
	Event *Event
	// User is the single target for invitation/confirmation/reminder effects.
	User *User
	// Admins receive administrator alerts.
	Admins []*User
	// Recipients are the resolved addresses for batch notices.
	Recipients []string
	// Venue is set for venue-change notices when the event is physical.
	Venue *Venue
	// RemindAt is set for reminder scheduling effects. The target user of a
	// reminder effect is identified by UserID rather than a full User row.
	UserID   string
	RemindAt time.Time
}

// EffectDispatcher executes effects after a transition has committed.
// Delivery is at-most-effort: failures are reported out-of-band and never
// affect the transition that emitted the effects.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, effects []Effect)
}
