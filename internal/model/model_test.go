package model

import (
	"testing"
	"time"
)

var catalog = TypeCatalog{
	"commission": {Label: "City Commission", Color: "#2563eb"},
	"county":     {Label: "County", Color: "#16a34a"},
}

func validEvent() Event {
	return Event{
		Title: "Budget Meeting",
		Type:  "commission",
		Start: time.Date(2024, time.March, 20, 19, 0, 0, 0, time.Local),
		End:   time.Date(2024, time.March, 20, 21, 0, 0, 0, time.Local),
	}
}

func TestValidateAcceptsWellFormedEvent(t *testing.T) {
	if fe := Validate(validEvent(), catalog); fe != nil {
		t.Errorf("unexpected validation errors: %v", fe)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Event)
		wantField string
	}{
		{
			name:      "missing title",
			mutate:    func(ev *Event) { ev.Title = "  " },
			wantField: "title",
		},
		{
			name:      "missing type",
			mutate:    func(ev *Event) { ev.Type = "" },
			wantField: "type",
		},
		{
			name:      "unknown type",
			mutate:    func(ev *Event) { ev.Type = "carnival" },
			wantField: "type",
		},
		{
			name:      "missing start",
			mutate:    func(ev *Event) { ev.Start = time.Time{} },
			wantField: "start",
		},
		{
			name:      "missing end",
			mutate:    func(ev *Event) { ev.End = time.Time{} },
			wantField: "end",
		},
		{
			name:      "end before start",
			mutate:    func(ev *Event) { ev.End = ev.Start.Add(-time.Hour) },
			wantField: "end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(&ev)

			fe := Validate(ev, catalog)
			if fe == nil {
				t.Fatal("expected validation errors, got none")
			}
			if _, ok := fe[tt.wantField]; !ok {
				t.Errorf("no error attached to field %q: %v", tt.wantField, fe)
			}
		})
	}
}

func TestValidateEqualStartEndAllowed(t *testing.T) {
	ev := validEvent()
	ev.End = ev.Start
	if fe := Validate(ev, catalog); fe != nil {
		t.Errorf("end == start should validate, got %v", fe)
	}
}

func TestFieldErrorsError(t *testing.T) {
	fe := FieldErrors{"title": "title is required"}
	if fe.Error() == "" {
		t.Error("empty error message")
	}
}

func TestTypeCatalog(t *testing.T) {
	if !catalog.Has("commission") {
		t.Error("Has(commission) = false")
	}
	if catalog.Has("carnival") {
		t.Error("Has(carnival) = true")
	}
	if got := len(catalog.Tags()); got != 2 {
		t.Errorf("Tags() returned %d tags, want 2", got)
	}
}

func TestViewValid(t *testing.T) {
	if !ViewMonth.Valid() || !ViewWeek.Valid() {
		t.Error("month/week must be valid views")
	}
	if View("year").Valid() {
		t.Error("unknown view reported valid")
	}
}
