package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
// Implementations may fan a single message out to multiple recipients.
type Mailer interface {
	Send(to []string, subject, html, text string) error
	// SendWithICal sends the message with an iCalendar attachment.
	SendWithICal(to []string, subject, html, text, ical string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EmailService composes and sends the domain-level notifications emitted by
// attendance transitions.
type EmailService interface {
	// SendRsvpInvitation mails the RSVPing user add-to-calendar links for the
	// event, with an iCal attachment.
	SendRsvpInvitation(ctx context.Context, user *User, event *Event) error
	// SendRsvpConfirmation tells a user their reservation was confirmed.
	SendRsvpConfirmation(ctx context.Context, user *User, event *Event) error
	// NotifyAdministrators alerts chapter administrators of a new RSVP.
	NotifyAdministrators(ctx context.Context, admins []*User, rsvpingUser *User, event *Event) error
	// SendEventCancellation tells attendees the event was canceled.
	SendEventCancellation(ctx context.Context, recipients []string, event *Event) error
	// SendVenueChange tells attendees where the event now takes place. venue
	// may be nil for online-only events.
	SendVenueChange(ctx context.Context, recipients []string, event *Event, venue *Venue) error
}
