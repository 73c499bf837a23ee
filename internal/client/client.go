// Package client implements the HTTP client for the upstream municipal
// calendar API. The rest of the engine consumes it through the EventAPI
// interface so tests can substitute a fake.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appLog "civiccal/internal/log"
	"civiccal/internal/model"
)

// EventAPI is the contract the calendar engine depends on.
type EventAPI interface {
	// GetCalendarEvents fetches the events for a (month, year) window.
	// A missing endpoint (404) yields an empty slice, not an error.
	GetCalendarEvents(ctx context.Context, month time.Month, year int, view model.View) ([]model.Event, error)

	// ExportCalendar asks the server to produce an ICS export for the
	// given range and type filter. A nil error means the server reported
	// success and the returned body is the export payload.
	ExportCalendar(ctx context.Context, req ExportRequest) ([]byte, error)

	CreateEvent(ctx context.Context, ev model.Event) (model.Event, error)
	UpdateEvent(ctx context.Context, ev model.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// ExportRequest mirrors the server-side export endpoint's parameters.
type ExportRequest struct {
	Format     string            `json:"format"`
	StartDate  time.Time         `json:"start_date"`
	EndDate    time.Time         `json:"end_date"`
	EventTypes []model.EventType `json:"event_types"`
}

// Client talks to the calendar API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given API base URL, e.g.
// "https://api.example.gov/v1".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// externalEvent is the wire shape delivered by the calendar API.
type externalEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	EventType   string `json:"event_type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	AllDay      bool   `json:"all_day"`
}

type eventsResponse struct {
	Events []externalEvent `json:"events"`
}

func (c *Client) GetCalendarEvents(ctx context.Context, month time.Month, year int, view model.View) ([]model.Event, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(int(month)))
	q.Set("year", strconv.Itoa(year))
	q.Set("view", string(view))

	endpoint := c.baseURL + "/calendar/events?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body eventsResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		events := make([]model.Event, 0, len(body.Events))
		for _, ext := range body.Events {
			ev, mapErr := mapExternal(ext)
			if mapErr != nil {
				// Skip malformed rows but keep the rest of the batch.
				appLog.Error("calendar api: skipping malformed event", mapErr, "id", ext.ID)
				continue
			}
			events = append(events, ev)
		}
		return events, nil

	case http.StatusNotFound:
		// Endpoint not implemented yet on this deployment: empty result,
		// not an error.
		appLog.Warn("calendar api: events endpoint missing, treating as empty", "month", int(month), "year", year)
		return nil, nil

	default:
		return nil, fmt.Errorf("calendar api: events request failed: %s", resp.Status)
	}
}

func (c *Client) ExportCalendar(ctx context.Context, exp ExportRequest) ([]byte, error) {
	if exp.Format == "" {
		exp.Format = "ics"
	}

	payload, err := json.Marshal(exportWire{
		Format:     exp.Format,
		StartDate:  exp.StartDate.Format("2006-01-02"),
		EndDate:    exp.EndDate.Format("2006-01-02"),
		EventTypes: exp.EventTypes,
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/calendar/export"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar api: export request failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("calendar api: export returned empty body")
	}
	return body, nil
}

type exportWire struct {
	Format     string            `json:"format"`
	StartDate  string            `json:"start_date"`
	EndDate    string            `json:"end_date"`
	EventTypes []model.EventType `json:"event_types"`
}

func (c *Client) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	payload, err := json.Marshal(mapInternal(ev))
	if err != nil {
		return model.Event{}, err
	}

	endpoint := c.baseURL + "/calendar/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.Event{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Event{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return model.Event{}, fmt.Errorf("calendar api: create failed: %s", resp.Status)
	}

	var created externalEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return model.Event{}, err
	}
	return mapExternal(created)
}

func (c *Client) UpdateEvent(ctx context.Context, ev model.Event) error {
	if ev.ID == "" {
		return errors.New("calendar api: update requires an event id")
	}

	payload, err := json.Marshal(mapInternal(ev))
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/calendar/events/" + url.PathEscape(ev.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("calendar api: update failed: %s", resp.Status)
	}
	return nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("calendar api: delete requires an event id")
	}

	endpoint := c.baseURL + "/calendar/events/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("calendar api: delete failed: %s", resp.Status)
	}
	return nil
}

// mapExternal converts a wire event 1:1 into the internal shape.
func mapExternal(ext externalEvent) (model.Event, error) {
	if ext.ID == "" {
		return model.Event{}, errors.New("event has no id")
	}

	start, err := parseAPITime(ext.StartDate)
	if err != nil {
		return model.Event{}, fmt.Errorf("bad start_date %q: %w", ext.StartDate, err)
	}
	end, err := parseAPITime(ext.EndDate)
	if err != nil {
		return model.Event{}, fmt.Errorf("bad end_date %q: %w", ext.EndDate, err)
	}

	return model.Event{
		ID:          ext.ID,
		Title:       ext.Title,
		Description: ext.Description,
		Location:    ext.Location,
		Type:        model.EventType(ext.EventType),
		Start:       start,
		End:         end,
		AllDay:      ext.AllDay,
	}, nil
}

func mapInternal(ev model.Event) externalEvent {
	return externalEvent{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		EventType:   string(ev.Type),
		StartDate:   ev.Start.Format("2006-01-02T15:04:05"),
		EndDate:     ev.End.Format("2006-01-02T15:04:05"),
		AllDay:      ev.AllDay,
	}
}

// parseAPITime accepts the timestamp forms the API is known to emit:
// RFC3339, local date-time, and date-only.
func parseAPITime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", v, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", v, time.Local)
}
