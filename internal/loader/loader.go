// Package loader fetches and merges events for the currently visible
// date window.
package loader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"civiccal/internal/client"
	"civiccal/internal/grid"
	appLog "civiccal/internal/log"
	"civiccal/internal/model"
)

// Loader owns the in-memory event set for the session and keeps it in
// sync with the calendar API as the visible window changes.
//
// Loads race freely; each load takes a monotonically increasing token
// and a completed load merges only while its token is still the latest
// issued, so a stale response can never clobber fresher state.
type Loader struct {
	api client.EventAPI

	token atomic.Uint64

	mu      sync.Mutex
	events  []model.Event
	loading bool
	lastErr error
}

// New creates a Loader backed by the given API.
func New(api client.EventAPI) *Loader {
	return &Loader{api: api}
}

// LoadPeriod fetches the events for the window containing ref in the
// given view and merges them into the in-memory set keyed by id.
// Existing ids are preserved; only genuinely new ids are appended, so a
// refetch never overwrites local edits made since the last fetch.
//
// On fetch failure the event set is left untouched and the error is both
// returned and retained as the loader's error state.
func (l *Loader) LoadPeriod(ctx context.Context, ref time.Time, view model.View) error {
	token := l.token.Add(1)

	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	fetched, err := l.fetchWindow(ctx, ref, view)

	l.mu.Lock()
	defer l.mu.Unlock()

	if token != l.token.Load() {
		// A newer load has been issued; this response is stale.
		appLog.Debug("loader: discarding stale response", "token", token)
		return nil
	}
	l.loading = false

	if err != nil {
		appLog.Error("loader: period fetch failed", err, "view", string(view))
		l.lastErr = err
		return err
	}
	l.lastErr = nil
	l.events = mergeByID(l.events, fetched)

	appLog.Info("loader: period loaded",
		"view", string(view),
		"fetched", len(fetched),
		"total", len(l.events),
	)
	return nil
}

// fetchWindow issues the API requests for the visible window. Month view
// fetches its (month, year); week view fetches every month the 7-day
// window overlaps, which is one request normally and two when the week
// straddles a month boundary.
func (l *Loader) fetchWindow(ctx context.Context, ref time.Time, view model.View) ([]model.Event, error) {
	if view == model.ViewMonth {
		return l.api.GetCalendarEvents(ctx, ref.Month(), ref.Year(), view)
	}

	days := grid.WeekDays(ref)
	first, last := days[0], days[len(days)-1]

	events, err := l.api.GetCalendarEvents(ctx, first.Month(), first.Year(), view)
	if err != nil {
		return nil, err
	}
	if first.Month() != last.Month() {
		more, err := l.api.GetCalendarEvents(ctx, last.Month(), last.Year(), view)
		if err != nil {
			return nil, err
		}
		events = mergeByID(events, more)
	}
	return events, nil
}

// Events returns a copy of the current in-memory event set.
func (l *Loader) Events() []model.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Loading reports whether a load issued through LoadPeriod is pending.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the error state of the most recently committed load.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Upsert inserts or replaces one event by id in the in-memory set, for
// create/update outcomes confirmed by the API.
func (l *Loader) Upsert(ev model.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.events {
		if l.events[i].ID == ev.ID {
			l.events[i] = ev
			return
		}
	}
	l.events = append(l.events, ev)
}

// Remove deletes one event by id from the in-memory set, for delete
// outcomes confirmed by the API. It reports whether the id was present.
func (l *Loader) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.events {
		if l.events[i].ID == id {
			l.events = append(l.events[:i], l.events[i+1:]...)
			return true
		}
	}
	return false
}

// mergeByID appends to existing the incoming events whose id is not
// already present. Existing entries win; order of existing entries is
// preserved and new ids append in incoming order.
func mergeByID(existing, incoming []model.Event) []model.Event {
	known := make(map[string]struct{}, len(existing))
	for _, ev := range existing {
		known[ev.ID] = struct{}{}
	}

	out := existing
	for _, ev := range incoming {
		if _, ok := known[ev.ID]; ok {
			continue
		}
		known[ev.ID] = struct{}{}
		out = append(out, ev)
	}
	return out
}
