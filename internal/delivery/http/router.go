package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"chapterevents/internal/delivery/http/controllers"
	"chapterevents/internal/delivery/http/middleware"
	"chapterevents/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	rsvpController *controllers.RsvpController,
	eventController *controllers.EventController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// RSVP
	mux.HandleFunc("POST /events/{eventID}/rsvp", auth(rsvpController.Rsvp))
	mux.HandleFunc("POST /events/{eventID}/rsvps/{userID}/confirm", auth(rsvpController.ConfirmRsvp))
	mux.HandleFunc("DELETE /events/{eventID}/rsvps/{userID}", auth(rsvpController.DeleteRsvp))
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(rsvpController.ListAttendees))

	// Events
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(eventController.CancelEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.UpdateEventSchedule))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
