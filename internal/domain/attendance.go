package domain

import (
	"context"
	"time"
)

// RsvpStatus is an attendee's RSVP state for one event.
type RsvpStatus string

const (
	// StatusConfirmed means the attendee holds a guaranteed slot within capacity.
	StatusConfirmed RsvpStatus = "confirmed"
	// StatusWaitlisted means the attendee is queued behind capacity or blocked
	// by the invite-only policy.
	StatusWaitlisted RsvpStatus = "waitlisted"
	// StatusDeclined means the attendee opted out; the record is retained so
	// the same user can re-RSVP later.
	StatusDeclined RsvpStatus = "declined"
)

// Active reports whether the status counts as a live RSVP (not declined).
func (s RsvpStatus) Active() bool { return s == StatusConfirmed || s == StatusWaitlisted }

// AttendanceRecord is a user's RSVP for one event. There is at most one
// record per (event, user) pair; it is created on the first RSVP action and
// mutated in place afterwards.
// swagger:model AttendanceRecord
type AttendanceRecord struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	// Seq is a store-assigned monotonic sequence recording arrival order.
	// Waitlist promotion consumes records in ascending Seq.
	Seq        int64       `json:"seq"`
	Status     RsvpStatus  `json:"status"`
	Subscribed bool        `json:"subscribed"`
	Role       ChapterRole `json:"role"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewAttendanceRecord creates an AttendanceRecord. Seq is set by the
// repository on create.
func NewAttendanceRecord(eventID, userID string, status RsvpStatus, subscribed bool) *AttendanceRecord {
	now := time.Now()
	return &AttendanceRecord{
		EventID:    eventID,
		UserID:     userID,
		Status:     status,
		Subscribed: subscribed,
		Role:       RoleMember,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// DeriveStatus computes the status a fresh RSVP gets for the event given the
// current confirmed count. Invite-only events always waitlist (an organizer
// must confirm separately); otherwise a full event waitlists and anything
// else confirms. Every fresh-RSVP status in the system must come from here.
func DeriveStatus(event *Event, confirmedCount int) RsvpStatus {
	if event.InviteOnly {
		return StatusWaitlisted
	}
	if event.Capacity > 0 && confirmedCount >= event.Capacity {
		return StatusWaitlisted
	}
	return StatusConfirmed
}

// Attendee bundles an attendance record with its user.
type Attendee struct {
	Record *AttendanceRecord `json:"record"`
	User   *User             `json:"user"`
}

// AttendanceTx exposes the attendance state of a single event inside one
// transaction scope. All reads and writes observe and produce a consistent
// snapshot; the event row itself is locked for the duration.
type AttendanceTx interface {
	// Event returns the locked event row.
	Event(ctx context.Context) (*Event, error)
	// Record returns the attendance record for userID, or ErrNotFound.
	Record(ctx context.Context, userID string) (*AttendanceRecord, error)
	// ConfirmedCount counts records with status confirmed.
	ConfirmedCount(ctx context.Context) (int, error)
	// Waitlist returns waitlisted records in arrival order (ascending Seq).
	Waitlist(ctx context.Context) ([]*AttendanceRecord, error)
	CreateRecord(ctx context.Context, rec *AttendanceRecord) error
	SetStatus(ctx context.Context, userID string, status RsvpStatus) (*AttendanceRecord, error)
	DeleteRecord(ctx context.Context, userID string) error
}

// AttendanceStore runs fn within a transaction that serializes all attendance
// writes for one event, so concurrent RSVPs cannot both observe the same
// vacancy. Returns ErrNotFound when the event does not exist. If fn returns
// an error the transaction is rolled back and no state changes.
type AttendanceStore interface {
	WithEvent(ctx context.Context, eventID string, fn func(tx AttendanceTx) error) error
}

// AttendanceRepository provides non-transactional attendance reads used for
// recipient selection and listings.
type AttendanceRepository interface {
	// ListByEvent returns all attendees of the event with their users, in
	// arrival order.
	ListByEvent(ctx context.Context, eventID string) ([]*Attendee, error)
}

// RsvpService drives every attendance-state transition. No other component
// mutates attendance records.
type RsvpService interface {
	// Rsvp toggles the caller's RSVP: creates a record on first contact,
	// declines an active one (promoting from the waitlist when a confirmed
	// slot frees up), and re-activates a declined one.
	Rsvp(ctx context.Context, eventID, userID string) (*AttendanceRecord, error)
	// ConfirmRsvp unconditionally confirms an existing record, bypassing
	// capacity and invite-only policy. The caller is trusted to have checked
	// permissions upstream.
	ConfirmRsvp(ctx context.Context, eventID, userID string) (*AttendanceRecord, error)
	// DeleteRsvp hard-deletes the record. Distinct from declining: no
	// notifications are sent and no promotion runs.
	DeleteRsvp(ctx context.Context, eventID, userID string) error
	// CancelEvent flags the event canceled, cancels its reminders, and
	// notifies subscribed, non-declined attendees.
	CancelEvent(ctx context.Context, eventID string) (*Event, error)
	// UpdateEventSchedule applies timing/venue changes and fires the matching
	// notification and reminder side effects.
	UpdateEventSchedule(ctx context.Context, eventID string, update *EventScheduleUpdate) (*Event, error)
	// ListAttendees returns the event's attendance list in arrival order.
	ListAttendees(ctx context.Context, eventID string) ([]*Attendee, error)
}
