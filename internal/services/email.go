package services

import (
	"context"
	"fmt"
	"strings"

	"chapterevents/internal/adapters/calendar"
	"chapterevents/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	// clientLocation is the public base URL of the web client, used for the
	// event and unsubscribe links embedded in messages.
	clientLocation string
}

// NewEmailService returns an EmailService that renders the notification
// templates and sends them through the given Mailer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, clientLocation string) domain.EmailService {
	return &emailService{
		mailer:         mailer,
		renderer:       renderer,
		clientLocation: strings.TrimRight(clientLocation, "/"),
	}
}

func (s *emailService) eventURL(event *domain.Event) string {
	return fmt.Sprintf("%s/events/%s", s.clientLocation, event.ID)
}

func (s *emailService) unsubscribeURL(event *domain.Event) string {
	return fmt.Sprintf("%s/chapters/%s?unsubscribe=true", s.clientLocation, event.ChapterID)
}

func (s *emailService) linkDetails(event *domain.Event) calendar.LinkDetails {
	d := calendar.LinkDetails{
		Title:       event.Name,
		Start:       event.StartAt,
		End:         event.EndsAt,
		Description: event.Description,
		URL:         s.eventURL(event),
	}
	if event.VenueType.IsOnline() && event.StreamingURL != nil {
		d.Location = *event.StreamingURL
	}
	return d
}

// SendRsvpInvitation sends add-to-calendar links plus an iCal attachment
// using the "rsvp_invitation" template.
func (s *emailService) SendRsvpInvitation(ctx context.Context, user *domain.User, event *domain.Event) error {
	details := s.linkDetails(event)
	data := map[string]any{
		"FirstName":      user.FirstName,
		"EventName":      event.Name,
		"GoogleLink":     calendar.GoogleLink(details),
		"OutlookLink":    calendar.OutlookLink(details),
		"EventURL":       s.eventURL(event),
		"UnsubscribeURL": s.unsubscribeURL(event),
	}
	subject, htmlBody, textBody, err := s.renderer.Render("rsvp_invitation", data)
	if err != nil {
		return fmt.Errorf("failed to render rsvp_invitation template: %w", err)
	}
	if err := s.mailer.SendWithICal([]string{user.Email}, subject, htmlBody, textBody, calendar.ICal(details)); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}

// SendRsvpConfirmation uses the "rsvp_confirmation" template.
func (s *emailService) SendRsvpConfirmation(ctx context.Context, user *domain.User, event *domain.Event) error {
	data := map[string]any{
		"FirstName":      user.FirstName,
		"EventName":      event.Name,
		"EventURL":       s.eventURL(event),
		"UnsubscribeURL": s.unsubscribeURL(event),
	}
	subject, htmlBody, textBody, err := s.renderer.Render("rsvp_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render rsvp_confirmation template: %w", err)
	}
	if err := s.mailer.Send([]string{user.Email}, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

// NotifyAdministrators uses the "new_rsvp_alert" template.
func (s *emailService) NotifyAdministrators(ctx context.Context, admins []*domain.User, rsvpingUser *domain.User, event *domain.Event) error {
	if len(admins) == 0 {
		return nil
	}
	emails := make([]string, 0, len(admins))
	for _, admin := range admins {
		emails = append(emails, admin.Email)
	}
	data := map[string]any{
		"UserName":       strings.TrimSpace(rsvpingUser.FirstName + " " + rsvpingUser.LastName),
		"EventName":      event.Name,
		"UnsubscribeURL": s.unsubscribeURL(event),
	}
	subject, htmlBody, textBody, err := s.renderer.Render("new_rsvp_alert", data)
	if err != nil {
		return fmt.Errorf("failed to render new_rsvp_alert template: %w", err)
	}
	if err := s.mailer.Send(emails, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send administrator alert: %w", err)
	}
	return nil
}

// SendEventCancellation uses the "event_cancellation" template.
func (s *emailService) SendEventCancellation(ctx context.Context, recipients []string, event *domain.Event) error {
	if len(recipients) == 0 {
		return nil
	}
	data := map[string]any{
		"EventName":      event.Name,
		"UnsubscribeURL": s.unsubscribeURL(event),
	}
	subject, htmlBody, textBody, err := s.renderer.Render("event_cancellation", data)
	if err != nil {
		return fmt.Errorf("failed to render event_cancellation template: %w", err)
	}
	if err := s.mailer.Send(recipients, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send cancellation email: %w", err)
	}
	return nil
}

// SendVenueChange uses the "venue_change" template. venue is nil for
// online-only events; the template then shows just the streaming URL.
func (s *emailService) SendVenueChange(ctx context.Context, recipients []string, event *domain.Event, venue *domain.Venue) error {
	if len(recipients) == 0 {
		return nil
	}
	streamingURL := ""
	if event.VenueType.IsOnline() && event.StreamingURL != nil {
		streamingURL = *event.StreamingURL
	}
	data := map[string]any{
		"EventName":      event.Name,
		"Venue":          venue,
		"StreamingURL":   streamingURL,
		"UnsubscribeURL": s.unsubscribeURL(event),
	}
	subject, htmlBody, textBody, err := s.renderer.Render("venue_change", data)
	if err != nil {
		return fmt.Errorf("failed to render venue_change template: %w", err)
	}
	if err := s.mailer.Send(recipients, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send venue change email: %w", err)
	}
	return nil
}
