// Package calendar builds add-to-calendar links and iCalendar payloads for
// events. Everything here is pure: no state, no I/O.
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LinkDetails carries the event fields that go into calendar links.
type LinkDetails struct {
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
	// URL is included in the iCal payload when set.
	URL string
}

const googleTimeLayout = "20060102T150405Z"

// GoogleLink returns a Google Calendar event-creation URL.
func GoogleLink(d LinkDetails) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", d.Title)
	q.Set("dates", fmt.Sprintf("%s/%s",
		d.Start.UTC().Format(googleTimeLayout),
		d.End.UTC().Format(googleTimeLayout)))
	if d.Description != "" {
		q.Set("details", d.Description)
	}
	if d.Location != "" {
		q.Set("location", d.Location)
	}
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}

// OutlookLink returns an Outlook Live event-compose URL.
func OutlookLink(d LinkDetails) string {
	q := url.Values{}
	q.Set("path", "/calendar/action/compose")
	q.Set("rru", "addevent")
	q.Set("subject", d.Title)
	q.Set("startdt", d.Start.UTC().Format(time.RFC3339))
	q.Set("enddt", d.End.UTC().Format(time.RFC3339))
	if d.Description != "" {
		q.Set("body", d.Description)
	}
	if d.Location != "" {
		q.Set("location", d.Location)
	}
	return "https://outlook.live.com/calendar/0/deeplink/compose?" + q.Encode()
}

// ICal returns an iCalendar payload with a single VEVENT, suitable for
// attaching to an invitation email. Each call produces a fresh UID.
func ICal(d LinkDetails) string {
	var b strings.Builder
	writeLine := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}
	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:-//chapterevents//calendar//EN")
	writeLine("BEGIN:VEVENT")
	writeLine("UID:" + uuid.NewString())
	writeLine("DTSTAMP:" + time.Now().UTC().Format(googleTimeLayout))
	writeLine("DTSTART:" + d.Start.UTC().Format(googleTimeLayout))
	writeLine("DTEND:" + d.End.UTC().Format(googleTimeLayout))
	writeLine("SUMMARY:" + escapeText(d.Title))
	if d.Description != "" {
		writeLine("DESCRIPTION:" + escapeText(d.Description))
	}
	if d.Location != "" {
		writeLine("LOCATION:" + escapeText(d.Location))
	}
	if d.URL != "" {
		writeLine("URL:" + d.URL)
	}
	writeLine("END:VEVENT")
	writeLine("END:VCALENDAR")
	return b.String()
}

// escapeText escapes text per RFC 5545 §3.3.11.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}
