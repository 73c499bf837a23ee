package model

import "time"

// EventType is the closed classification tag of a calendar event. The set
// of valid tags is defined by the configured TypeCatalog, not by this
// package; an EventType is just the tag string.
type EventType string

// TypeInfo carries the display attributes of a single event type tag.
type TypeInfo struct {
	Label string `yaml:"label" json:"label"`
	Color string `yaml:"color" json:"color"`
}

// TypeCatalog maps type tags to their display attributes. It is loaded
// once from configuration and treated as read-only for the lifetime of
// the process; components receive it injected rather than reaching for a
// package-level singleton.
type TypeCatalog map[EventType]TypeInfo

// Has reports whether the tag is part of the catalog.
func (c TypeCatalog) Has(t EventType) bool {
	_, ok := c[t]
	return ok
}

// Tags returns all tags in the catalog in unspecified order.
func (c TypeCatalog) Tags() []EventType {
	tags := make([]EventType, 0, len(c))
	for t := range c {
		tags = append(tags, t)
	}
	return tags
}

// Event is the central calendar entity.
//
// Start and End carry local-timezone semantics. End is never before
// Start for a validated event. When AllDay is set, time-of-day components
// are ignored for placement: the event occupies every calendar day in
// [Start, End] inclusive. Timed events occupy a single span and are
// bucketed by the hour of Start.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Type        EventType `json:"type"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day"`
}

// View selects which calendar layout is active.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
)

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	return v == ViewMonth || v == ViewWeek
}
