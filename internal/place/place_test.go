package place

import (
	"testing"
	"time"

	"civiccal/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestEventsForDayAllDaySpan(t *testing.T) {
	// An all-day event spanning March 20-22 appears on each of the three
	// days and no others.
	ev := model.Event{
		ID:     "e1",
		Title:  "Spring Break",
		Type:   "school-board",
		Start:  day(2024, time.March, 20),
		End:    day(2024, time.March, 22),
		AllDay: true,
	}
	events := []model.Event{ev}

	for d := 20; d <= 22; d++ {
		got := EventsForDay(events, day(2024, time.March, d))
		if len(got) != 1 {
			t.Errorf("March %d: got %d events, want 1", d, len(got))
		}
	}
	for _, d := range []int{19, 23} {
		got := EventsForDay(events, day(2024, time.March, d))
		if len(got) != 0 {
			t.Errorf("March %d: got %d events, want 0", d, len(got))
		}
	}
}

func TestEventsForDayTimed(t *testing.T) {
	ev := model.Event{
		ID:    "e2",
		Title: "Budget Meeting",
		Type:  "commission",
		Start: time.Date(2024, time.March, 20, 19, 0, 0, 0, time.Local),
		End:   time.Date(2024, time.March, 20, 21, 0, 0, 0, time.Local),
	}
	events := []model.Event{ev}

	if got := EventsForDay(events, day(2024, time.March, 20)); len(got) != 1 {
		t.Errorf("event day: got %d events, want 1", len(got))
	}
	if got := EventsForDay(events, day(2024, time.March, 21)); len(got) != 0 {
		t.Errorf("next day: got %d events, want 0", len(got))
	}
}

func TestEventsForDayMidnightSpan(t *testing.T) {
	// A timed event crossing midnight overlaps both days.
	ev := model.Event{
		ID:    "e3",
		Title: "Election Night Count",
		Type:  "election",
		Start: time.Date(2024, time.November, 5, 20, 0, 0, 0, time.Local),
		End:   time.Date(2024, time.November, 6, 2, 0, 0, 0, time.Local),
	}
	events := []model.Event{ev}

	if got := EventsForDay(events, day(2024, time.November, 5)); len(got) != 1 {
		t.Errorf("Nov 5: got %d events, want 1", len(got))
	}
	if got := EventsForDay(events, day(2024, time.November, 6)); len(got) != 1 {
		t.Errorf("Nov 6: got %d events, want 1", len(got))
	}
}

func TestTimedEventsForHourStartHourOnly(t *testing.T) {
	// A multi-hour event buckets only into its starting hour's cell.
	ev := model.Event{
		ID:    "e4",
		Title: "Work Session",
		Type:  "commission",
		Start: time.Date(2024, time.March, 20, 14, 30, 0, 0, time.Local),
		End:   time.Date(2024, time.March, 20, 17, 0, 0, 0, time.Local),
	}
	allDay := model.Event{
		ID:     "e5",
		Title:  "Filing Deadline",
		Type:   "election",
		Start:  day(2024, time.March, 20),
		End:    day(2024, time.March, 20),
		AllDay: true,
	}
	events := []model.Event{ev, allDay}

	d := day(2024, time.March, 20)
	if got := TimedEventsForHour(events, d, 14); len(got) != 1 || got[0].ID != "e4" {
		t.Errorf("hour 14: got %v, want [e4]", got)
	}
	for _, h := range []int{13, 15, 16, 17} {
		if got := TimedEventsForHour(events, d, h); len(got) != 0 {
			t.Errorf("hour %d: got %d events, want 0", h, len(got))
		}
	}
}

func TestAllDayLane(t *testing.T) {
	allDay := model.Event{
		ID:     "a1",
		Title:  "Early Voting",
		Type:   "election",
		Start:  day(2024, time.March, 18),
		End:    day(2024, time.March, 22),
		AllDay: true,
	}
	timed := model.Event{
		ID:    "t1",
		Title: "Planning Meeting",
		Type:  "county",
		Start: time.Date(2024, time.March, 20, 9, 0, 0, 0, time.Local),
		End:   time.Date(2024, time.March, 20, 10, 0, 0, 0, time.Local),
	}
	events := []model.Event{allDay, timed}

	lane := AllDayEventsForDay(events, day(2024, time.March, 20))
	if len(lane) != 1 || lane[0].ID != "a1" {
		t.Errorf("all-day lane = %v, want [a1]", lane)
	}

	cols := WeekColumns(events, day(2024, time.March, 20))
	if len(cols) != 7 {
		t.Fatalf("got %d columns, want 7", len(cols))
	}
	// March 20 2024 is a Wednesday, column index 3.
	wed := cols[3]
	if len(wed.AllDay) != 1 || wed.AllDay[0].ID != "a1" {
		t.Errorf("wednesday all-day lane = %v, want [a1]", wed.AllDay)
	}
	if len(wed.Hours[9].Events) != 1 || wed.Hours[9].Events[0].ID != "t1" {
		t.Errorf("wednesday 09:00 cell = %v, want [t1]", wed.Hours[9].Events)
	}
	// The all-day event must not leak into the hourly grid.
	for h := 0; h < 24; h++ {
		for _, ev := range wed.Hours[h].Events {
			if ev.AllDay {
				t.Errorf("hour %d contains all-day event %s", h, ev.ID)
			}
		}
	}
}

func TestDayCellOverflow(t *testing.T) {
	// Five events on one day: 2 inline, "+3 more", and the overflow list
	// keeps the original order.
	d := day(2024, time.March, 20)
	var events []model.Event
	titles := []string{"First", "Second", "Third", "Fourth", "Fifth"}
	for i, title := range titles {
		events = append(events, model.Event{
			ID:    title,
			Title: title,
			Type:  "commission",
			Start: d.Add(time.Duration(18-i) * time.Hour), // deliberately not time-sorted
			End:   d.Add(time.Duration(19-i) * time.Hour),
		})
	}

	cells := MonthCells(events, d)
	if len(cells) != 42 {
		t.Fatalf("got %d cells, want 42", len(cells))
	}

	var cell DayCell
	found := false
	for _, c := range cells {
		if c.Day.Equal(d) {
			cell = c
			found = true
			break
		}
	}
	if !found {
		t.Fatal("day cell for March 20 not found in grid")
	}

	if len(cell.Inline) != MaxInline {
		t.Errorf("inline = %d events, want %d", len(cell.Inline), MaxInline)
	}
	if cell.More != 3 {
		t.Errorf("More = %d, want 3", cell.More)
	}
	if len(cell.All) != 5 {
		t.Fatalf("All = %d events, want 5", len(cell.All))
	}
	// Stable original order, no re-sort by time.
	for i, title := range titles {
		if cell.All[i].ID != title {
			t.Errorf("All[%d] = %s, want %s", i, cell.All[i].ID, title)
		}
	}
}

func TestDayCellNoOverflowAtLimit(t *testing.T) {
	d := day(2024, time.March, 20)
	events := []model.Event{
		{ID: "1", Title: "One", Type: "county", Start: d.Add(9 * time.Hour), End: d.Add(10 * time.Hour)},
		{ID: "2", Title: "Two", Type: "county", Start: d.Add(11 * time.Hour), End: d.Add(12 * time.Hour)},
	}

	cell := dayCell(events, d, time.March)
	if cell.More != 0 {
		t.Errorf("More = %d, want 0", cell.More)
	}
	if len(cell.Inline) != 2 {
		t.Errorf("inline = %d events, want 2", len(cell.Inline))
	}
}
