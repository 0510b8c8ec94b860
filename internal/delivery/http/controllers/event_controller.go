package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"chapterevents/internal/delivery/http/helpers"
	"chapterevents/internal/delivery/http/middleware"
	"chapterevents/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.RsvpService
}

func NewEventController(logger *slog.Logger, svc domain.RsvpService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// EventSuccessResponse is the success response envelope for the event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Flags the event canceled, cancels all of its reminders, and emails subscribed attendees who have not declined. Attendance statuses are left untouched.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "Canceled event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/cancel [post]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	event, err := c.Service.CancelEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventScheduleRequest is the request body for PATCH /events/{eventID}.
// Omitted fields are left unchanged.
type UpdateEventScheduleRequest struct {
	StartAt      *time.Time `json:"start_at"`
	EndsAt       *time.Time `json:"ends_at"`
	VenueType    *string    `json:"venue_type"`
	VenueID      *string    `json:"venue_id"`
	StreamingURL *string    `json:"streaming_url"`
}

// Validate implements helpers.Validator.
func (req *UpdateEventScheduleRequest) Validate() []string {
	var errs []string
	if req.StartAt == nil && req.EndsAt == nil && req.VenueType == nil &&
		req.VenueID == nil && req.StreamingURL == nil {
		errs = append(errs, "at least one field must be set")
	}
	if req.VenueType != nil {
		switch domain.VenueType(*req.VenueType) {
		case domain.VenuePhysical, domain.VenueOnline, domain.VenuePhysicalAndOnline:
		default:
			errs = append(errs, "venue_type must be physical, online, or physical_and_online")
		}
	}
	if req.StartAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartAt) {
		errs = append(errs, "ends_at must not precede start_at")
	}
	return errs
}

func (req *UpdateEventScheduleRequest) toUpdate() *domain.EventScheduleUpdate {
	update := &domain.EventScheduleUpdate{
		StartAt:      req.StartAt,
		EndsAt:       req.EndsAt,
		VenueID:      req.VenueID,
		StreamingURL: req.StreamingURL,
	}
	if req.VenueType != nil {
		vt := domain.VenueType(*req.VenueType)
		update.VenueType = &vt
	}
	return update
}

// UpdateEventSchedule godoc
// @Summary Update an event's schedule or venue
// @Description Applies a partial update to the event's timing and venue fields. A start time change moves reminders for confirmed subscribed attendees; a venue change emails subscribed attendees the new location.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateEventScheduleRequest true "Fields to update"
// @Success 200 {object} controllers.EventSuccessResponse "Updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEventSchedule(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathEventID(w, r)
	if !ok {
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateEventScheduleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	event, err := c.Service.UpdateEventSchedule(r.Context(), eventID, req.toUpdate())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
