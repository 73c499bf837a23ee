// Package controller owns the calendar session state and composes the
// grid, placement, filter, loader and export components.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"civiccal/internal/client"
	"civiccal/internal/export"
	"civiccal/internal/filter"
	"civiccal/internal/grid"
	"civiccal/internal/ics"
	appLog "civiccal/internal/log"
	"civiccal/internal/loader"
	"civiccal/internal/model"
	"civiccal/internal/place"
)

// Direction selects where Navigate moves the visible window.
type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// Controller is the calendar state machine: (currentDate, view,
// selection, events). All methods are safe for concurrent use; the
// underlying event set is owned by the loader and mutated only through
// load/create/update/delete outcomes.
type Controller struct {
	api      client.EventAPI
	loader   *loader.Loader
	exporter *export.Exporter
	catalog  model.TypeCatalog

	mu        sync.Mutex
	current   time.Time
	view      model.View
	selection filter.Selection
	selected  string // id of the event opened in detail view, "" if none
}

// New creates a Controller in its initial state: month view, current
// date today in loc (nil means time.Local), full type selection. The
// first load is the caller's to trigger (typically Refresh at startup).
func New(api client.EventAPI, exp *export.Exporter, catalog model.TypeCatalog, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		api:       api,
		loader:    loader.New(api),
		exporter:  exp,
		catalog:   catalog,
		current:   time.Now().In(loc),
		view:      model.ViewMonth,
		selection: filter.All(catalog),
	}
}

// Catalog returns the injected read-only type catalog.
func (c *Controller) Catalog() model.TypeCatalog {
	return c.catalog
}

// State is a snapshot of the controller for rendering.
type State struct {
	Current   time.Time
	View      model.View
	Selection filter.Selection
	Selected  string
	Loading   bool
	LastErr   error
}

// State returns a consistent snapshot of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Current:   c.current,
		View:      c.view,
		Selection: c.selection.Clone(),
		Selected:  c.selected,
		Loading:   c.loader.Loading(),
		LastErr:   c.loader.Err(),
	}
}

// Navigate advances the visible window one month (month view) or seven
// days (week view) in the given direction, then reloads the new window.
func (c *Controller) Navigate(ctx context.Context, dir Direction) error {
	c.mu.Lock()
	step := 1
	if dir == Prev {
		step = -1
	}
	if c.view == model.ViewMonth {
		c.current = c.current.AddDate(0, step, 0)
	} else {
		c.current = c.current.AddDate(0, 0, 7*step)
	}
	current, view := c.current, c.view
	c.mu.Unlock()

	return c.loader.LoadPeriod(ctx, current, view)
}

// ChangeView switches between month and week view and reloads the new
// window.
func (c *Controller) ChangeView(ctx context.Context, view model.View) error {
	if !view.Valid() {
		return fmt.Errorf("unknown view %q", view)
	}

	c.mu.Lock()
	c.view = view
	current := c.current
	c.mu.Unlock()

	return c.loader.LoadPeriod(ctx, current, view)
}

// Refresh reloads the current window unconditionally.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	current, view := c.current, c.view
	c.mu.Unlock()

	return c.loader.LoadPeriod(ctx, current, view)
}

// ToggleFilter flips one type tag in the filter selection. Filtering is
// client-side over already-loaded events; no fetch is triggered.
func (c *Controller) ToggleFilter(t model.EventType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Toggle(t)
}

// ClearFilters empties the filter selection, hiding all events.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Clear()
}

// SelectEvent opens the detail view for the given event id. It returns
// the event, or an error if the id is not in the loaded set.
func (c *Controller) SelectEvent(id string) (model.Event, error) {
	for _, ev := range c.loader.Events() {
		if ev.ID == id {
			c.mu.Lock()
			c.selected = id
			c.mu.Unlock()
			return ev, nil
		}
	}
	return model.Event{}, fmt.Errorf("event %q not loaded", id)
}

// Events returns the full loaded event set.
func (c *Controller) Events() []model.Event {
	return c.loader.Events()
}

// FilteredEvents returns the loaded events visible under the current
// filter selection.
func (c *Controller) FilteredEvents() []model.Event {
	c.mu.Lock()
	sel := c.selection.Clone()
	c.mu.Unlock()
	return filter.Visible(c.loader.Events(), sel)
}

// MonthCells returns the 42 placed cells for the current month window.
func (c *Controller) MonthCells() []place.DayCell {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	return place.MonthCells(c.FilteredEvents(), current)
}

// WeekColumns returns the 7 placed columns for the current week window.
func (c *Controller) WeekColumns() []place.WeekColumn {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	return place.WeekColumns(c.FilteredEvents(), current)
}

// Window returns the inclusive date span of the current view.
func (c *Controller) Window() (time.Time, time.Time) {
	c.mu.Lock()
	current, view := c.current, c.view
	c.mu.Unlock()

	if view == model.ViewMonth {
		return grid.MonthWindow(current)
	}
	return grid.WeekWindow(current)
}

// Export produces the ICS artifact for the current window and filter
// selection via the two-step export strategy.
func (c *Controller) Export(ctx context.Context) export.Result {
	start, end := c.Window()

	c.mu.Lock()
	types := c.selection.Tags()
	c.mu.Unlock()

	return c.exporter.Export(ctx, start, end, types, c.FilteredEvents())
}

// CreateEvent validates ev, submits it to the API and, on success, adds
// the created event (carrying the server-assigned id) to the local set.
// Validation failures return model.FieldErrors and commit nothing.
func (c *Controller) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	if fe := model.Validate(ev, c.catalog); fe != nil {
		return model.Event{}, fe
	}

	created, err := c.api.CreateEvent(ctx, ev)
	if err != nil {
		appLog.Error("controller: create failed", err, "title", ev.Title)
		return model.Event{}, err
	}
	c.loader.Upsert(created)
	return created, nil
}

// UpdateEvent validates ev, submits the update and, on success, replaces
// the event in the local set.
func (c *Controller) UpdateEvent(ctx context.Context, ev model.Event) error {
	if ev.ID == "" {
		return errors.New("update requires an event id")
	}
	if fe := model.Validate(ev, c.catalog); fe != nil {
		return fe
	}

	if err := c.api.UpdateEvent(ctx, ev); err != nil {
		appLog.Error("controller: update failed", err, "id", ev.ID)
		return err
	}
	c.loader.Upsert(ev)
	return nil
}

// DeleteEvent submits the delete and removes the event locally only
// after the API reports success; there is no optimistic removal.
func (c *Controller) DeleteEvent(ctx context.Context, id string) error {
	if err := c.api.DeleteEvent(ctx, id); err != nil {
		appLog.Error("controller: delete failed", err, "id", id)
		return err
	}
	c.loader.Remove(id)

	c.mu.Lock()
	if c.selected == id {
		c.selected = ""
	}
	c.mu.Unlock()
	return nil
}

// ImportICS parses an uploaded iCalendar payload and merges the events
// into the local set by id.
func (c *Controller) ImportICS(body []byte) (int, error) {
	events, err := ics.Parse(body, c.catalog)
	if err != nil {
		return 0, err
	}
	for _, ev := range events {
		c.loader.Upsert(ev)
	}
	return len(events), nil
}
