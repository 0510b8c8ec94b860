package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"chapterevents/internal/delivery/http/helpers"
	"chapterevents/internal/delivery/http/middleware"
	"chapterevents/internal/domain"
)

const (
	testEventID = "6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b"
	testUserID  = "11111111-2222-4333-8444-555555555555"
)

type mockRsvpService struct {
	record    *domain.AttendanceRecord
	event     *domain.Event
	attendees []*domain.Attendee
	err       error

	lastEventID string
	lastUserID  string
	lastUpdate  *domain.EventScheduleUpdate
}

func (m *mockRsvpService) Rsvp(_ context.Context, eventID, userID string) (*domain.AttendanceRecord, error) {
	m.lastEventID, m.lastUserID = eventID, userID
	return m.record, m.err
}

func (m *mockRsvpService) ConfirmRsvp(_ context.Context, eventID, userID string) (*domain.AttendanceRecord, error) {
	m.lastEventID, m.lastUserID = eventID, userID
	return m.record, m.err
}

func (m *mockRsvpService) DeleteRsvp(_ context.Context, eventID, userID string) error {
	m.lastEventID, m.lastUserID = eventID, userID
	return m.err
}

func (m *mockRsvpService) CancelEvent(_ context.Context, eventID string) (*domain.Event, error) {
	m.lastEventID = eventID
	return m.event, m.err
}

func (m *mockRsvpService) UpdateEventSchedule(_ context.Context, eventID string, update *domain.EventScheduleUpdate) (*domain.Event, error) {
	m.lastEventID, m.lastUpdate = eventID, update
	return m.event, m.err
}

func (m *mockRsvpService) ListAttendees(_ context.Context, eventID string) ([]*domain.Attendee, error) {
	m.lastEventID = eventID
	return m.attendees, m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func authedRequest(method, target string) *http.Request {
	return authedClone(httptest.NewRequest(method, target, nil))
}

func authedClone(req *http.Request) *http.Request {
	return req.WithContext(middleware.SetUserID(req.Context(), testUserID))
}

func TestRsvpController_Rsvp_Unauthorized(t *testing.T) {
	ctrl := NewRsvpController(testLogger(), &mockRsvpService{})

	req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/rsvp", nil)
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()

	ctrl.Rsvp(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRsvpController_Rsvp_InvalidEventID(t *testing.T) {
	ctrl := NewRsvpController(testLogger(), &mockRsvpService{})

	req := authedRequest(http.MethodPost, "/events/not-a-uuid/rsvp")
	req.SetPathValue("eventID", "not-a-uuid")
	w := httptest.NewRecorder()

	ctrl.Rsvp(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRsvpController_Rsvp_Success(t *testing.T) {
	svc := &mockRsvpService{
		record: &domain.AttendanceRecord{EventID: testEventID, UserID: testUserID, Status: domain.StatusConfirmed},
	}
	ctrl := NewRsvpController(testLogger(), svc)

	req := authedRequest(http.MethodPost, "/events/"+testEventID+"/rsvp")
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()

	ctrl.Rsvp(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if svc.lastEventID != testEventID || svc.lastUserID != testUserID {
		t.Fatalf("service called with (%q, %q)", svc.lastEventID, svc.lastUserID)
	}

	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("expected no error, got %v", resp.Error)
	}
}

func TestRsvpController_Rsvp_NotFound(t *testing.T) {
	svc := &mockRsvpService{err: domain.ErrNotFound}
	ctrl := NewRsvpController(testLogger(), svc)

	req := authedRequest(http.MethodPost, "/events/"+testEventID+"/rsvp")
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()

	ctrl.Rsvp(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != helpers.ErrCodeNotFound {
		t.Fatalf("expected not_found error, got %v", resp.Error)
	}
}

func TestRsvpController_ConfirmRsvp(t *testing.T) {
	svc := &mockRsvpService{
		record: &domain.AttendanceRecord{EventID: testEventID, UserID: testUserID, Status: domain.StatusConfirmed},
	}
	ctrl := NewRsvpController(testLogger(), svc)

	req := authedRequest(http.MethodPost, "/events/"+testEventID+"/rsvps/"+testUserID+"/confirm")
	req.SetPathValue("eventID", testEventID)
	req.SetPathValue("userID", testUserID)
	w := httptest.NewRecorder()

	ctrl.ConfirmRsvp(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if svc.lastUserID != testUserID {
		t.Fatalf("expected confirm for %q, got %q", testUserID, svc.lastUserID)
	}
}

func TestRsvpController_ConfirmRsvp_InvalidUserID(t *testing.T) {
	ctrl := NewRsvpController(testLogger(), &mockRsvpService{})

	req := authedRequest(http.MethodPost, "/events/"+testEventID+"/rsvps/bogus/confirm")
	req.SetPathValue("eventID", testEventID)
	req.SetPathValue("userID", "bogus")
	w := httptest.NewRecorder()

	ctrl.ConfirmRsvp(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRsvpController_DeleteRsvp(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"missing record", domain.ErrNotFound, http.StatusNotFound},
		{"service failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRsvpService{err: tt.svcErr}
			ctrl := NewRsvpController(testLogger(), svc)

			req := authedRequest(http.MethodDelete, "/events/"+testEventID+"/rsvps/"+testUserID)
			req.SetPathValue("eventID", testEventID)
			req.SetPathValue("userID", testUserID)
			w := httptest.NewRecorder()

			ctrl.DeleteRsvp(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRsvpController_ListAttendees_Paginates(t *testing.T) {
	attendees := make([]*domain.Attendee, 0, 5)
	for i := 0; i < 5; i++ {
		attendees = append(attendees, &domain.Attendee{
			Record: &domain.AttendanceRecord{EventID: testEventID, Seq: int64(i + 1)},
			User:   &domain.User{ID: testUserID},
		})
	}
	svc := &mockRsvpService{attendees: attendees}
	ctrl := NewRsvpController(testLogger(), svc)

	req := authedRequest(http.MethodGet, "/events/"+testEventID+"/attendees?page=2&page_size=2")
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()

	ctrl.ListAttendees(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp ListAttendeesSuccessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 attendees on page 2, got %d", len(resp.Data))
	}
	if resp.Data[0].Record.Seq != 3 {
		t.Fatalf("expected page 2 to start at seq 3, got %d", resp.Data[0].Record.Seq)
	}
	if resp.Meta.Total != 5 || resp.Meta.TotalPages != 3 {
		t.Fatalf("unexpected pagination meta: %+v", resp.Meta)
	}
}
