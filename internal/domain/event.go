package domain

import (
	"context"
	"time"
)

// VenueType describes where an event takes place.
type VenueType string

const (
	VenuePhysical          VenueType = "physical"
	VenueOnline            VenueType = "online"
	VenuePhysicalAndOnline VenueType = "physical_and_online"
)

// IsPhysical reports whether the event has a physical venue.
func (v VenueType) IsPhysical() bool { return v != VenueOnline }

// IsOnline reports whether the event is streamed.
func (v VenueType) IsOnline() bool { return v != VenuePhysical }

// Event represents a chapter event with a capacity-limited attendee list.
// swagger:model Event
type Event struct {
	ID          string `json:"id"`
	ChapterID   string `json:"chapter_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	// Capacity is the maximum number of confirmed attendees. Zero means unbounded.
	Capacity     int       `json:"capacity"`
	InviteOnly   bool      `json:"invite_only"`
	Canceled     bool      `json:"canceled"`
	StartAt      time.Time `json:"start_at"`
	EndsAt       time.Time `json:"ends_at"`
	VenueType    VenueType `json:"venue_type"`
	VenueID      *string   `json:"venue_id,omitempty"`
	StreamingURL *string   `json:"streaming_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Venue is a physical location an event can be held at.
// swagger:model Venue
type Venue struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StreetAddress string `json:"street_address,omitempty"`
	City          string `json:"city"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
}

// EventScheduleUpdate carries the slice of an event update that the RSVP
// state machine reacts to: timing and venue details. Nil fields are left
// unchanged.
type EventScheduleUpdate struct {
	StartAt      *time.Time
	EndsAt       *time.Time
	VenueType    *VenueType
	VenueID      *string
	StreamingURL *string
}

// EventRepository defines the interface for event storage. Event creation and
// general CRUD belong to the chapter administration surface; the RSVP core
// reads events and flips the slice of state it owns.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	MarkCanceled(ctx context.Context, id string) (*Event, error)
	UpdateSchedule(ctx context.Context, id string, update *EventScheduleUpdate) (*Event, error)
}

// VenueRepository defines the interface for venue lookup.
type VenueRepository interface {
	GetByID(ctx context.Context, id string) (*Venue, error)
}
