// Package export produces the downloadable ICS artifact, preferring the
// server-side export endpoint and falling back to local serialization.
package export

import (
	"context"
	"time"

	"civiccal/internal/client"
	"civiccal/internal/ics"
	appLog "civiccal/internal/log"
	"civiccal/internal/model"
)

// Remote is the server-side half of the export strategy. Satisfied by
// client.Client.
type Remote interface {
	ExportCalendar(ctx context.Context, req client.ExportRequest) ([]byte, error)
}

// Result is the produced calendar file.
type Result struct {
	Body     []byte
	Filename string
	// Fallback is true when the body was serialized locally because the
	// remote export did not succeed.
	Fallback bool
}

// Exporter runs the two-step export: try the remote endpoint first; on
// any non-success, serialize the locally available filtered event set.
// Export therefore always produces output for whatever data is loaded,
// even when the backend is unreachable.
type Exporter struct {
	remote Remote
}

// New creates an Exporter. remote may be nil, in which case only the
// local serializer runs.
func New(remote Remote) *Exporter {
	return &Exporter{remote: remote}
}

// Export produces the ICS document for the given range, type filter and
// locally loaded events (already narrowed to the visible/filter subset).
func (e *Exporter) Export(ctx context.Context, start, end time.Time, types []model.EventType, local []model.Event) Result {
	name := ics.Filename(start, end)

	if e.remote != nil {
		body, err := e.remote.ExportCalendar(ctx, client.ExportRequest{
			Format:     "ics",
			StartDate:  start,
			EndDate:    end,
			EventTypes: types,
		})
		if err == nil {
			appLog.Info("export: server-side export succeeded", "bytes", len(body))
			return Result{Body: body, Filename: name}
		}
		appLog.Warn("export: server-side export failed, falling back to local serialization", "err", err)
	}

	return Result{
		Body:     ics.Write(local),
		Filename: name,
		Fallback: true,
	}
}
