// Package ics serializes event sets to the iCalendar format and parses
// uploaded iCalendar files back into events.
package ics

import (
	"fmt"
	"strings"
	"time"

	"civiccal/internal/model"
)

const (
	prodID = "-//civiccal//municipal calendar//EN"

	dateTimeLayout = "20060102T150405"
	dateLayout     = "20060102"
)

// Write serializes events into a text/calendar document: one VEVENT per
// event inside a single VCALENDAR. All-day events use the date-only
// DTSTART/DTEND form; timed events use the local date-time form.
//
// DTSTAMP is deliberately not emitted: exporting the same event set twice
// must yield byte-identical output.
func Write(events []model.Event) []byte {
	var b strings.Builder

	line(&b, "BEGIN:VCALENDAR")
	line(&b, "VERSION:2.0")
	line(&b, "PRODID:"+prodID)
	line(&b, "CALSCALE:GREGORIAN")

	for _, ev := range events {
		writeEvent(&b, ev)
	}

	line(&b, "END:VCALENDAR")
	return []byte(b.String())
}

func writeEvent(b *strings.Builder, ev model.Event) {
	line(b, "BEGIN:VEVENT")
	line(b, "UID:"+escape(ev.ID))
	line(b, "SUMMARY:"+escape(ev.Title))

	if ev.AllDay {
		line(b, "DTSTART:"+ev.Start.Format(dateLayout))
		line(b, "DTEND:"+ev.End.Format(dateLayout))
	} else {
		line(b, "DTSTART:"+ev.Start.Format(dateTimeLayout))
		line(b, "DTEND:"+ev.End.Format(dateTimeLayout))
	}

	if ev.Location != "" {
		line(b, "LOCATION:"+escape(ev.Location))
	}
	if ev.Description != "" {
		line(b, "DESCRIPTION:"+escape(ev.Description))
	}
	if ev.Type != "" {
		line(b, "CATEGORIES:"+escape(string(ev.Type)))
	}

	line(b, "END:VEVENT")
}

func line(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteString("\r\n")
}

// escape applies iCalendar text escaping to property values.
func escape(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, ";", "\\;")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, "\n", "\\n")
	return text
}

// Filename returns the download filename for an export covering the
// given range, e.g. "calendar-20240301-20240331.ics".
func Filename(start, end time.Time) string {
	return fmt.Sprintf("calendar-%s-%s.ics", start.Format(dateLayout), end.Format(dateLayout))
}
