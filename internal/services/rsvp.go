package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chapterevents/internal/domain"
)

type rsvpService struct {
	store          domain.AttendanceStore
	attendanceRepo domain.AttendanceRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	chapterRepo    domain.ChapterMemberRepository
	venueRepo      domain.VenueRepository
	dispatcher     domain.EffectDispatcher
	logger         *slog.Logger
}

// NewRsvpService creates the RSVP transition orchestrator. Every attendance
// mutation goes through it; side effects are collected during the
// transaction and handed to the dispatcher after commit.
func NewRsvpService(
	store domain.AttendanceStore,
	attendanceRepo domain.AttendanceRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	chapterRepo domain.ChapterMemberRepository,
	venueRepo domain.VenueRepository,
	dispatcher domain.EffectDispatcher,
	logger *slog.Logger,
) domain.RsvpService {
	return &rsvpService{
		store:          store,
		attendanceRepo: attendanceRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		chapterRepo:    chapterRepo,
		venueRepo:      venueRepo,
		dispatcher:     dispatcher,
		logger:         logger,
	}
}

func (s *rsvpService) Rsvp(ctx context.Context, eventID, userID string) (*domain.AttendanceRecord, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var (
		rec     *domain.AttendanceRecord
		effects []domain.Effect
		invited bool
	)
	err = s.store.WithEvent(ctx, eventID, func(tx domain.AttendanceTx) error {
		event, err := tx.Event(ctx)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		existing, err := tx.Record(ctx, userID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			rec, effects, err = s.createRsvp(ctx, tx, event, user)
			if err != nil {
				return err
			}
			invited = true
			return nil

		case err != nil:
			return fmt.Errorf("get attendance record: %w", err)

		case existing.Status.Active():
			// Active record: this RSVP is a decline.
			rec, err = tx.SetStatus(ctx, userID, domain.StatusDeclined)
			if err != nil {
				return fmt.Errorf("decline: %w", err)
			}
			if !event.InviteOnly && existing.Status == domain.StatusConfirmed {
				promoted, err := s.promote(ctx, tx, event, userID)
				if err != nil {
					return err
				}
				effects = append(effects, promoted...)
			}
			return nil

		default:
			// Declined record: the user is re-RSVPing. Same status derivation
			// as a fresh RSVP.
			count, err := tx.ConfirmedCount(ctx)
			if err != nil {
				return fmt.Errorf("count confirmed: %w", err)
			}
			status := domain.DeriveStatus(event, count)
			rec, err = tx.SetStatus(ctx, userID, status)
			if err != nil {
				return fmt.Errorf("reactivate: %w", err)
			}
			if status == domain.StatusConfirmed && rec.Subscribed {
				effects = append(effects, domain.Effect{
					Kind:     domain.EffectScheduleReminder,
					Event:    event,
					UserID:   userID,
					RemindAt: domain.RemindAtFor(event.StartAt),
				})
			}
			invited = true
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	if invited {
		effects = append(effects, s.invitationEffects(ctx, rec, user)...)
	}
	s.dispatcher.Dispatch(context.WithoutCancel(ctx), effects)
	return rec, nil
}

// createRsvp handles the first RSVP for a (user, event) pair.
func (s *rsvpService) createRsvp(ctx context.Context, tx domain.AttendanceTx, event *domain.Event, user *domain.User) (*domain.AttendanceRecord, []domain.Effect, error) {
	count, err := tx.ConfirmedCount(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("count confirmed: %w", err)
	}
	status := domain.DeriveStatus(event, count)

	subscribed := true
	membership, err := s.chapterRepo.GetMembership(ctx, event.ChapterID, user.ID)
	if err == nil {
		subscribed = membership.Subscribed
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("get chapter membership: %w", err)
	}

	rec := domain.NewAttendanceRecord(event.ID, user.ID, status, subscribed)
	if err := tx.CreateRecord(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("create attendance record: %w", err)
	}

	var effects []domain.Effect
	if status == domain.StatusConfirmed && subscribed {
		effects = append(effects, domain.Effect{
			Kind:     domain.EffectScheduleReminder,
			Event:    event,
			UserID:   user.ID,
			RemindAt: domain.RemindAtFor(event.StartAt),
		})
	}
	return rec, effects, nil
}

// promote backfills the vacancy left by vacatingUserID from the waitlist.
// Must run inside the same transaction as the decline. The promoted user gets
// a reminder when subscribed; no other notification is sent.
func (s *rsvpService) promote(ctx context.Context, tx domain.AttendanceTx, event *domain.Event, vacatingUserID string) ([]domain.Effect, error) {
	waitlist, err := tx.Waitlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	next := domain.NextInLine(waitlist, vacatingUserID)
	if next == nil {
		return nil, nil
	}
	if _, err := tx.SetStatus(ctx, next.UserID, domain.StatusConfirmed); err != nil {
		return nil, fmt.Errorf("promote %s: %w", next.UserID, err)
	}
	if !next.Subscribed {
		return nil, nil
	}
	return []domain.Effect{{
		Kind:     domain.EffectScheduleReminder,
		Event:    event,
		UserID:   next.UserID,
		RemindAt: domain.RemindAtFor(event.StartAt),
	}}, nil
}

// invitationEffects builds the invitation and administrator-alert effects for
// a fresh or re-activated RSVP. Recipient resolution happens outside the
// transaction; a lookup failure here only costs the alert, never the RSVP.
func (s *rsvpService) invitationEffects(ctx context.Context, rec *domain.AttendanceRecord, user *domain.User) []domain.Effect {
	event, err := s.eventRepo.GetByID(ctx, rec.EventID)
	if err != nil {
		s.logger.Error("resolve event for invitation", "event_id", rec.EventID, "err", err)
		return nil
	}
	effects := []domain.Effect{{
		Kind:  domain.EffectSendInvitation,
		Event: event,
		User:  user,
	}}
	admins, err := s.chapterRepo.ListAdministrators(ctx, event.ChapterID)
	if err != nil {
		s.logger.Error("list chapter administrators", "chapter_id", event.ChapterID, "err", err)
		return effects
	}
	if len(admins) > 0 {
		effects = append(effects, domain.Effect{
			Kind:   domain.EffectNotifyAdministrators,
			Event:  event,
			User:   user,
			Admins: admins,
		})
	}
	return effects
}

func (s *rsvpService) ConfirmRsvp(ctx context.Context, eventID, userID string) (*domain.AttendanceRecord, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var (
		rec     *domain.AttendanceRecord
		effects []domain.Effect
	)
	err = s.store.WithEvent(ctx, eventID, func(tx domain.AttendanceTx) error {
		event, err := tx.Event(ctx)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if _, err := tx.Record(ctx, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get attendance record: %w", err)
		}
		// Explicit bypass of capacity and invite-only policy; the caller has
		// already been authorized to confirm.
		rec, err = tx.SetStatus(ctx, userID, domain.StatusConfirmed)
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		effects = append(effects, domain.Effect{
			Kind:  domain.EffectSendConfirmation,
			Event: event,
			User:  user,
		})
		if rec.Subscribed {
			effects = append(effects, domain.Effect{
				Kind:     domain.EffectScheduleReminder,
				Event:    event,
				UserID:   userID,
				RemindAt: domain.RemindAtFor(event.StartAt),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(context.WithoutCancel(ctx), effects)
	return rec, nil
}

func (s *rsvpService) DeleteRsvp(ctx context.Context, eventID, userID string) error {
	return s.store.WithEvent(ctx, eventID, func(tx domain.AttendanceTx) error {
		if _, err := tx.Record(ctx, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get attendance record: %w", err)
		}
		// Hard delete. Unlike a decline this frees no slot for the waitlist.
		if err := tx.DeleteRecord(ctx, userID); err != nil {
			return fmt.Errorf("delete attendance record: %w", err)
		}
		return nil
	})
}

func (s *rsvpService) CancelEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.MarkCanceled(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark event canceled: %w", err)
	}

	effects := []domain.Effect{{
		Kind:  domain.EffectCancelReminders,
		Event: event,
	}}

	attendees, err := s.attendanceRepo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("list attendees for cancellation", "event_id", eventID, "err", err)
	} else if recipients := subscribedEmails(attendees, true); len(recipients) > 0 {
		effects = append(effects, domain.Effect{
			Kind:       domain.EffectSendCancellation,
			Event:      event,
			Recipients: recipients,
		})
	}

	s.dispatcher.Dispatch(context.WithoutCancel(ctx), effects)
	return event, nil
}

func (s *rsvpService) UpdateEventSchedule(ctx context.Context, eventID string, update *domain.EventScheduleUpdate) (*domain.Event, error) {
	prev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	updated, err := s.eventRepo.UpdateSchedule(ctx, eventID, update)
	if err != nil {
		return nil, fmt.Errorf("update event schedule: %w", err)
	}

	var effects []domain.Effect
	timeChanged := !updated.StartAt.Equal(prev.StartAt)
	venueChanged := venueDiffers(prev, updated)

	if timeChanged || venueChanged {
		attendees, err := s.attendanceRepo.ListByEvent(ctx, eventID)
		if err != nil {
			s.logger.Error("list attendees for schedule change", "event_id", eventID, "err", err)
			attendees = nil
		}

		if timeChanged {
			remindAt := domain.RemindAtFor(updated.StartAt)
			for _, a := range attendees {
				if a.Record.Status == domain.StatusConfirmed && a.Record.Subscribed {
					effects = append(effects, domain.Effect{
						Kind:     domain.EffectRescheduleReminder,
						Event:    updated,
						UserID:   a.Record.UserID,
						RemindAt: remindAt,
					})
				}
			}
		}

		if venueChanged {
			if recipients := subscribedEmails(attendees, false); len(recipients) > 0 {
				var venue *domain.Venue
				if updated.VenueType.IsPhysical() && updated.VenueID != nil {
					venue, err = s.venueRepo.GetByID(ctx, *updated.VenueID)
					if err != nil {
						s.logger.Error("get venue for change notice", "venue_id", *updated.VenueID, "err", err)
						venue = nil
					}
				}
				effects = append(effects, domain.Effect{
					Kind:       domain.EffectSendVenueChange,
					Event:      updated,
					Recipients: recipients,
					Venue:      venue,
				})
			}
		}
	}

	s.dispatcher.Dispatch(context.WithoutCancel(ctx), effects)
	return updated, nil
}

func (s *rsvpService) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	attendees, err := s.attendanceRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, nil
}

// subscribedEmails selects the addresses of subscribed attendees. With
// excludeDeclined, declined records are skipped (cancellation notices);
// venue changes go to subscribed attendees of any status.
func subscribedEmails(attendees []*domain.Attendee, excludeDeclined bool) []string {
	var emails []string
	for _, a := range attendees {
		if !a.Record.Subscribed {
			continue
		}
		if excludeDeclined && a.Record.Status == domain.StatusDeclined {
			continue
		}
		emails = append(emails, a.User.Email)
	}
	return emails
}

// venueDiffers reports whether the update moved the event: venue type change,
// streaming URL change for an online event, or venue change for a physical one.
func venueDiffers(prev, updated *domain.Event) bool {
	if prev.VenueType != updated.VenueType {
		return true
	}
	if updated.VenueType.IsOnline() && !strPtrEqual(prev.StreamingURL, updated.StreamingURL) {
		return true
	}
	if updated.VenueType.IsPhysical() && !strPtrEqual(prev.VenueID, updated.VenueID) {
		return true
	}
	return false
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
