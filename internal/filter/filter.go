// Package filter maintains the set of selected event type tags and
// derives the visible event subset.
package filter

import (
	"sort"

	"civiccal/internal/model"
)

// Selection is the set of currently-enabled type tags. An event is
// visible iff its type is a member; the empty selection shows nothing,
// not everything.
type Selection map[model.EventType]struct{}

// All returns a selection containing every tag of the catalog.
func All(catalog model.TypeCatalog) Selection {
	s := make(Selection, len(catalog))
	for t := range catalog {
		s[t] = struct{}{}
	}
	return s
}

// Toggle flips membership of t in the selection.
func (s Selection) Toggle(t model.EventType) {
	if _, ok := s[t]; ok {
		delete(s, t)
		return
	}
	s[t] = struct{}{}
}

// Clear empties the selection.
func (s Selection) Clear() {
	for t := range s {
		delete(s, t)
	}
}

// Has reports whether t is selected.
func (s Selection) Has(t model.EventType) bool {
	_, ok := s[t]
	return ok
}

// Tags returns the selected tags sorted lexically, for stable wire
// output.
func (s Selection) Tags() []model.EventType {
	tags := make([]model.EventType, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for t := range s {
		out[t] = struct{}{}
	}
	return out
}

// Visible returns the events whose type is in the selection, preserving
// input order. The input slice is never mutated.
func Visible(events []model.Event, s Selection) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if s.Has(ev.Type) {
			out = append(out, ev)
		}
	}
	return out
}
