package engine

import (
	"time"

	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// Unit is a calendar granularity understood by DateMath.
type Unit int

const (
	UnitDay Unit = iota
	UnitWeek
	UnitMonth
	UnitYear
)

// DateMath is the set of calendar primitives the grid builder, the controller and the
// projector consume. Implementations must be calendar-correct (leap years, month lengths).
type DateMath interface {
	StartOf(u Unit, t time.Time) time.Time
	EndOf(u Unit, t time.Time) time.Time
	Add(u Unit, n int, t time.Time) time.Time
	Sub(u Unit, n int, t time.Time) time.Time
	Diff(u Unit, later, earlier time.Time) int
	IsSame(u Unit, a, b time.Time) bool
	Format(t time.Time, layout string) string
}

// Dates implements DateMath on top of the time package.
// WeekStart only affects UnitWeek boundaries.
type Dates struct {
	WeekStart time.Weekday
}

var (
	// MondayWeeks is used by the week view.
	MondayWeeks = Dates{WeekStart: time.Monday}
	// SundayWeeks is used by the month and year views.
	SundayWeeks = Dates{WeekStart: time.Sunday}
)

var _ DateMath = Dates{}

// StartOf returns the first instant of the unit containing t, in t's location.
// Where DST skips midnight, a day starts at the end of the gap.
func (d Dates) StartOf(u Unit, t time.Time) time.Time {
	y, m, day := t.Date()
	loc := t.Location()
	switch u {
	case UnitWeek:
		offset := (int(t.Weekday()) - int(d.WeekStart) + 7) % 7
		return civilDate(y, m, day-offset, 0, loc)
	case UnitMonth:
		return civilDate(y, m, 1, 0, loc)
	case UnitYear:
		return civilDate(y, time.January, 1, 0, loc)
	default:
		return civilDate(y, m, day, 0, loc)
	}
}

// EndOf returns the last nanosecond of the unit containing t.
func (d Dates) EndOf(u Unit, t time.Time) time.Time {
	return d.Add(u, 1, d.StartOf(u, t)).Add(-time.Nanosecond)
}

// Add shifts t by n units, keeping the wall clock. Month and year shifts clamp the day to
// the length of the target month instead of overflowing: Jan 31 + 1 month is the last day
// of February.
func (d Dates) Add(u Unit, n int, t time.Time) time.Time {
	switch u {
	case UnitWeek:
		return addDays(t, n*7)
	case UnitMonth:
		return addMonths(t, n)
	case UnitYear:
		return addMonths(t, n*12)
	default:
		return addDays(t, n)
	}
}

// Sub shifts t back by n units.
func (d Dates) Sub(u Unit, n int, t time.Time) time.Time {
	return d.Add(u, -n, t)
}

// Diff returns the number of whole units between earlier and later (negative when later
// is before earlier). Partial units are truncated towards zero.
func (d Dates) Diff(u Unit, later, earlier time.Time) int {
	switch u {
	case UnitWeek:
		return d.Diff(UnitDay, later, earlier) / 7
	case UnitMonth:
		return diffMonths(later, earlier)
	case UnitYear:
		return diffMonths(later, earlier) / 12
	default:
		return diffDays(later, earlier)
	}
}

// IsSame reports whether a and b fall into the same unit.
func (d Dates) IsSame(u Unit, a, b time.Time) bool {
	return d.StartOf(u, a).Equal(d.StartOf(u, b.In(a.Location())))
}

// Format renders t with a Go reference layout.
func (d Dates) Format(t time.Time, layout string) string {
	return t.Format(layout)
}

// IsToday reports whether t falls on the same calendar day as now.
func (d Dates) IsToday(t, now time.Time) bool {
	return d.IsSame(UnitDay, t, now)
}

// EachDay lists the start of every day from start to end inclusive.
func (d Dates) EachDay(start, end time.Time) []time.Time {
	y, m, first := start.Date()
	var days []time.Time
	for i := 0; ; i++ {
		day := civilDate(y, m, first+i, 0, start.Location())
		if day.After(end) {
			return days
		}
		days = append(days, day)
	}
}

// DaysIn returns the number of days of t's month.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func addMonths(t time.Time, n int) time.Time {
	y, m, day := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := DaysIn(first); day > last {
		day = last
	}
	return civilDate(first.Year(), first.Month(), day, wallClock(t), t.Location())
}

func addDays(t time.Time, n int) time.Time {
	y, m, day := t.Date()
	return civilDate(y, m, day+n, wallClock(t), t.Location())
}

// civilDate returns wall clock wall on the calendar day y-m-d (normalized like time.Date).
// time.Date resolves a wall clock inside a DST gap to an instant that may belong to the
// previous day; the result is then moved to the end of the gap, the first instant that
// exists on that day.
func civilDate(y int, m time.Month, d int, wall time.Duration, loc *time.Location) time.Time {
	want := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	hh, rest := wall/time.Hour, wall%time.Hour
	mm, rest := rest/time.Minute, rest%time.Minute
	ss, ns := rest/time.Second, rest%time.Second
	t := time.Date(y, m, d, int(hh), int(mm), int(ss), int(ns), loc)
	if civilDay(t) >= civilDay(want) {
		return t
	}
	if _, end := t.ZoneBounds(); !end.IsZero() && civilDay(end) == civilDay(want) {
		return end
	}
	return t
}

// ParseDay reads a YYYY-MM-DD date as the start of that day in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(config.DateFormatFullDash, value)
	if err != nil {
		return time.Time{}, err
	}
	return dayIn(t, loc), nil
}

// dayIn returns the start of t's calendar day in loc.
func dayIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return civilDate(y, m, d, 0, loc)
}

// civilDay numbers calendar days independently of DST so that a 23h or 25h day still counts as one.
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func wallClock(t time.Time) time.Duration {
	hh, mm, ss := t.Clock()
	return time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute +
		time.Duration(ss)*time.Second + time.Duration(t.Nanosecond())
}

func diffDays(later, earlier time.Time) int {
	earlier = earlier.In(later.Location())
	days := civilDay(later) - civilDay(earlier)
	switch {
	case days > 0 && wallClock(later) < wallClock(earlier):
		days--
	case days < 0 && wallClock(later) > wallClock(earlier):
		days++
	}
	return days
}

func diffMonths(later, earlier time.Time) int {
	earlier = earlier.In(later.Location())
	ly, lm, ld := later.Date()
	ey, em, ed := earlier.Date()
	months := (ly-ey)*12 + int(lm) - int(em)

	// position within the month, compared as (day, wall clock)
	laterRest := time.Duration(ld)*24*time.Hour + wallClock(later)
	earlierRest := time.Duration(ed)*24*time.Hour + wallClock(earlier)
	switch {
	case months > 0 && laterRest < earlierRest:
		months--
	case months < 0 && laterRest > earlierRest:
		months++
	}
	return months
}
