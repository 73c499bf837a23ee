package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"civiccal/internal/client"
	"civiccal/internal/model"
)

type fakeRemote struct {
	body []byte
	err  error
	got  *client.ExportRequest
}

func (f *fakeRemote) ExportCalendar(_ context.Context, req client.ExportRequest) ([]byte, error) {
	f.got = &req
	return f.body, f.err
}

func window() (time.Time, time.Time) {
	return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local),
		time.Date(2024, time.March, 31, 23, 59, 59, 0, time.Local)
}

func localEvents() []model.Event {
	return []model.Event{{
		ID:    "evt-1",
		Title: "Budget Meeting",
		Type:  "commission",
		Start: time.Date(2024, time.March, 20, 19, 0, 0, 0, time.Local),
		End:   time.Date(2024, time.March, 20, 21, 0, 0, 0, time.Local),
	}}
}

func TestExportRemoteSuccess(t *testing.T) {
	remote := &fakeRemote{body: []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")}
	e := New(remote)

	start, end := window()
	res := e.Export(context.Background(), start, end, []model.EventType{"commission"}, localEvents())

	if res.Fallback {
		t.Error("server-side export succeeded but Fallback is set")
	}
	if string(res.Body) != string(remote.body) {
		t.Error("result body is not the remote payload")
	}
	if remote.got == nil {
		t.Fatal("remote was not called")
	}
	if remote.got.Format != "ics" {
		t.Errorf("format = %q, want ics", remote.got.Format)
	}
	if len(remote.got.EventTypes) != 1 || remote.got.EventTypes[0] != "commission" {
		t.Errorf("event types = %v", remote.got.EventTypes)
	}
}

func TestExportFallsBackOnRemoteFailure(t *testing.T) {
	remote := &fakeRemote{err: errors.New("export endpoint unavailable")}
	e := New(remote)

	start, end := window()
	res := e.Export(context.Background(), start, end, nil, localEvents())

	if !res.Fallback {
		t.Error("Fallback not set after remote failure")
	}
	body := string(res.Body)
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Errorf("fallback body is not ICS:\n%s", body)
	}
	if !strings.Contains(body, "UID:evt-1") {
		t.Errorf("fallback body missing local event:\n%s", body)
	}
	if res.Filename != "calendar-20240301-20240331.ics" {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestExportWithoutRemote(t *testing.T) {
	e := New(nil)

	start, end := window()
	res := e.Export(context.Background(), start, end, nil, localEvents())
	if !res.Fallback {
		t.Error("nil remote must always serialize locally")
	}
	if !strings.Contains(string(res.Body), "SUMMARY:Budget Meeting") {
		t.Error("local serialization missing event")
	}
}

func TestExportAlwaysProducesOutput(t *testing.T) {
	remote := &fakeRemote{err: errors.New("unreachable")}
	e := New(remote)

	start, end := window()
	res := e.Export(context.Background(), start, end, nil, nil)
	if len(res.Body) == 0 {
		t.Error("export produced no output even with empty local set")
	}
}
