package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "civiccal/internal/log"
	"civiccal/internal/model"
)

// Parse reads an iCalendar payload (e.g. an uploaded .ics file) into
// events. Malformed VEVENTs are logged and skipped; the rest of the
// calendar still imports.
//
//   - All-day detection inspects the DTSTART value format (VALUE=DATE or
//     a value without a time component).
//   - CATEGORIES is mapped onto the event type when one of its values
//     matches a tag in the catalog; otherwise the type is left empty and
//     the caller decides how to classify the event.
//   - Recurrence properties (RRULE and friends) are ignored.
func Parse(body []byte, catalog model.TypeCatalog) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve, catalog)
		if perr != nil {
			appLog.Error("ics import: skipping vevent", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics import: parsed calendar", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent, catalog model.TypeCatalog) (model.Event, error) {
	var out model.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.ID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if out.Title == "" {
		return out, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return out, errors.New("missing DTSTART")
	}

	out.AllDay = isDateOnly(dtStart)

	start, err := parseICSTime(dtStart.Value)
	if err != nil {
		return out, err
	}
	out.Start = start
	out.End = start

	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil && dtEnd.Value != "" {
		end, err := parseICSTime(dtEnd.Value)
		if err != nil {
			return out, err
		}
		out.End = end
	}
	if out.End.Before(out.Start) {
		return out, errors.New("DTEND before DTSTART")
	}

	// Use the raw property name to avoid constant mismatch across
	// library versions.
	if p := ve.GetProperty("CATEGORIES"); p != nil {
		for _, cat := range strings.Split(p.Value, ",") {
			tag := model.EventType(strings.TrimSpace(cat))
			if catalog.Has(tag) {
				out.Type = tag
				break
			}
		}
	}

	return out, nil
}

// isDateOnly reports whether a DTSTART property carries a date-only
// value, either via VALUE=DATE or by lacking a time component.
func isDateOnly(p *ical.IANAProperty) bool {
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses the basic ICS date / date-time / UTC forms.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation(dateTimeLayout, v, time.Local)
	}
	return time.ParseInLocation(dateLayout, v, time.Local)
}
