// Package place buckets events into the cells produced by internal/grid.
package place

import (
	"time"

	"civiccal/internal/grid"
	"civiccal/internal/model"
)

// MaxInline is the number of events rendered directly in a month-view day
// cell; events beyond it collapse into a "+N more" affordance.
const MaxInline = 2

// DayCell is one month-view cell: the day, the events rendered inline,
// and how many more are hidden behind the overflow affordance. Events
// keeps the original event order; the overflow list is All minus Inline
// with no re-sort.
type DayCell struct {
	Day     time.Time
	Inline  []model.Event
	All     []model.Event
	More    int
	Today   bool
	InMonth bool
}

// HourCell is one week-view cell: the timed events whose start falls in
// the given hour of the given day.
type HourCell struct {
	Day    time.Time
	Hour   int
	Events []model.Event
}

// WeekColumn is one day of the week view: a separate all-day lane plus
// 24 hour cells.
type WeekColumn struct {
	Day    time.Time
	Today  bool
	AllDay []model.Event
	Hours  [24]HourCell
}

// EventsForDay returns the subsequence of events overlapping the calendar
// day of d. An event overlaps the day when [Start, End] intersects
// [00:00:00, 23:59:59] of that day; the rule applies uniformly to all-day
// and timed events.
func EventsForDay(events []model.Event, d time.Time) []model.Event {
	dayStart := grid.DayStart(d)
	dayEnd := grid.DayEnd(d)

	var out []model.Event
	for _, ev := range events {
		if overlaps(ev.Start, ev.End, dayStart, dayEnd) {
			out = append(out, ev)
		}
	}
	return out
}

// TimedEventsForHour returns the timed events whose start falls on day d
// in the given hour. Multi-hour events appear only in their starting
// hour's cell.
func TimedEventsForHour(events []model.Event, d time.Time, hour int) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if ev.AllDay {
			continue
		}
		if grid.SameDay(ev.Start, d) && ev.Start.Hour() == hour {
			out = append(out, ev)
		}
	}
	return out
}

// AllDayEventsForDay returns the all-day events overlapping day d; they
// occupy the separate all-day lane in week view.
func AllDayEventsForDay(events []model.Event, d time.Time) []model.Event {
	var out []model.Event
	for _, ev := range EventsForDay(events, d) {
		if ev.AllDay {
			out = append(out, ev)
		}
	}
	return out
}

// MonthCells assigns events into the 42-cell month grid containing ref.
func MonthCells(events []model.Event, ref time.Time) []DayCell {
	days := grid.MonthDays(ref)
	cells := make([]DayCell, len(days))
	for i, day := range days {
		cells[i] = dayCell(events, day, ref.Month())
	}
	return cells
}

// WeekColumns assigns events into the 7 columns of the week containing
// ref, separating the all-day lane from the hourly grid.
func WeekColumns(events []model.Event, ref time.Time) []WeekColumn {
	days := grid.WeekDays(ref)
	cols := make([]WeekColumn, len(days))
	for i, day := range days {
		col := WeekColumn{
			Day:    day,
			Today:  grid.IsToday(day),
			AllDay: AllDayEventsForDay(events, day),
		}
		for h := 0; h < 24; h++ {
			col.Hours[h] = HourCell{
				Day:    day,
				Hour:   h,
				Events: TimedEventsForHour(events, day, h),
			}
		}
		cols[i] = col
	}
	return cols
}

func dayCell(events []model.Event, day time.Time, month time.Month) DayCell {
	all := EventsForDay(events, day)
	cell := DayCell{
		Day:     day,
		All:     all,
		Inline:  all,
		Today:   grid.IsToday(day),
		InMonth: day.Month() == month,
	}
	if len(all) > MaxInline {
		cell.Inline = all[:MaxInline]
		cell.More = len(all) - MaxInline
	}
	return cell
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
