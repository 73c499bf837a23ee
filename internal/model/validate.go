package model

import "strings"

// FieldErrors maps a form field name to its validation message. The empty
// string key is the catch-all slot for errors not attached to a single
// field.
type FieldErrors map[string]string

// Error implements error. The message is a stable, sorted-free summary;
// callers that need per-field detail inspect the map directly.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "invalid event"
	}
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		if field == "" {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, field+": "+msg)
	}
	return "invalid event: " + strings.Join(parts, "; ")
}

// Validate checks an event against the form rules before it may be
// committed or sent to the API. The catalog is consulted for the type
// tag. A nil return means the event is acceptable.
func Validate(ev Event, catalog TypeCatalog) FieldErrors {
	fe := FieldErrors{}

	if strings.TrimSpace(ev.Title) == "" {
		fe["title"] = "title is required"
	}
	if ev.Type == "" {
		fe["type"] = "event type is required"
	} else if catalog != nil && !catalog.Has(ev.Type) {
		fe["type"] = "unknown event type: " + string(ev.Type)
	}
	if ev.Start.IsZero() {
		fe["start"] = "start date is required"
	}
	if ev.End.IsZero() {
		fe["end"] = "end date is required"
	}
	if !ev.Start.IsZero() && !ev.End.IsZero() && ev.End.Before(ev.Start) {
		fe["end"] = "end must not be before start"
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}
