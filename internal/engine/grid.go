package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// Cell is one renderable day of a week, month or mini-month grid.
type Cell struct {
	Date            time.Time `json:"date"`
	Label           string    `json:"label"`
	InCurrentPeriod bool      `json:"inCurrentPeriod"`
	IsToday         bool      `json:"isToday"`
	IsSelected      bool      `json:"isSelected"`
	IsBeforeBirth   bool      `json:"isBeforeBirth"`
	IsBirthday      bool      `json:"isBirthday"`
}

// Selectable reports whether clicking the cell may move the anchor.
func (c Cell) Selectable() bool {
	return !c.IsBeforeBirth
}

// HourSlot is one row of the day view.
type HourSlot struct {
	Hour          int    `json:"hour"`
	Label         string `json:"label"`
	IsCurrentHour bool   `json:"isCurrentHour"`
}

// MonthGrid is a Sunday-start month padded to whole weeks.
type MonthGrid struct {
	Month              time.Time `json:"month"`
	Title              string    `json:"title"`
	Cells              []Cell    `json:"cells"`
	IsCurrentMonth     bool      `json:"isCurrentMonth"`
	IsBirthMonth       bool      `json:"isBirthMonth"`
	IsBeforeBirthMonth bool      `json:"isBeforeBirthMonth"`
}

// Grid is the data handed to the presentation layer for the day, week, month and year views.
// Exactly one of Hours, Days or Months is populated.
type Grid struct {
	View            ViewMode    `json:"view"`
	Anchor          time.Time   `json:"anchor"`
	Title           string      `json:"title"`
	IsCurrentPeriod bool        `json:"isCurrentPeriod"`
	Weekdays        []string    `json:"weekdays,omitempty"`
	Hours           []HourSlot  `json:"hours,omitempty"`
	Days            []Cell      `json:"days,omitempty"`
	Months          []MonthGrid `json:"months,omitempty"`
}

// Builder produces grids. It only reads the clock; it never mutates anything.
type Builder struct {
	Clock Clock
}

// NewBuilder returns a Builder reading the given clock.
func NewBuilder(c Clock) *Builder {
	return &Builder{Clock: c}
}

// Build returns the cells of view around anchor. The lifetime view has no grid and
// yields an empty one; use Projector instead.
func (b *Builder) Build(view ViewMode, anchor, birth time.Time) Grid {
	now := nowIn(b.Clock, anchor.Location())
	birthStart := SundayWeeks.StartOf(UnitDay, birth.In(anchor.Location()))

	var g Grid
	switch view {
	case ViewDay:
		g = buildDay(anchor, now)
	case ViewWeek:
		g = buildWeek(anchor, birthStart, now)
	case ViewMonth:
		g = buildMonth(anchor, birthStart, now)
	case ViewYear:
		g = buildYear(anchor, birthStart, now)
	default:
		g = Grid{}
	}
	g.View = view
	g.Anchor = anchor

	slog.Debug(config.MsgRendered,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyView, view.String(),
		config.LogKeyAnchor, anchor.Format(config.DateFormatFullDash),
		config.LogKeyCells, len(g.Hours)+len(g.Days)+len(g.Months),
	)
	return g
}

func buildDay(anchor, now time.Time) Grid {
	d := SundayWeeks
	day := d.StartOf(UnitDay, anchor)
	isToday := d.IsToday(day, now)

	hours := make([]HourSlot, config.HoursPerDay)
	for h := range hours {
		hours[h] = HourSlot{
			Hour:          h,
			Label:         fmt.Sprintf(config.FormatHourSlot, h),
			IsCurrentHour: isToday && h == now.Hour(),
		}
	}

	return Grid{
		Title:           d.Format(day, config.TitleFormatDay),
		IsCurrentPeriod: isToday,
		Hours:           hours,
	}
}

func buildWeek(anchor, birthStart, now time.Time) Grid {
	d := MondayWeeks
	start := d.StartOf(UnitWeek, anchor)
	end := d.EndOf(UnitWeek, anchor)

	days := d.EachDay(start, end)
	cells := make([]Cell, 0, len(days))
	weekdays := make([]string, 0, len(days))
	for _, day := range days {
		cells = append(cells, Cell{
			Date:            day,
			Label:           d.Format(day, config.TitleFormatDayNumber),
			InCurrentPeriod: true,
			IsToday:         d.IsToday(day, now),
			IsSelected:      d.IsSame(UnitDay, day, anchor),
			IsBeforeBirth:   day.Before(birthStart),
			IsBirthday:      d.IsSame(UnitDay, day, birthStart),
		})
		weekdays = append(weekdays, d.Format(day, config.TitleFormatWeekday))
	}

	return Grid{
		Title: fmt.Sprintf(config.FormatWeekRange,
			d.Format(start, config.TitleFormatWeekStart),
			d.Format(end, config.TitleFormatWeekEnd)),
		IsCurrentPeriod: !now.Before(start) && !now.After(end),
		Weekdays:        weekdays,
		Days:            cells,
	}
}

func buildMonth(anchor, birthStart, now time.Time) Grid {
	d := SundayWeeks
	return Grid{
		Title:           d.Format(anchor, config.TitleFormatMonth),
		IsCurrentPeriod: d.IsSame(UnitMonth, now, anchor),
		Weekdays:        weekdayHeader(d, anchor),
		Days:            monthCells(anchor, anchor, birthStart, now, false),
	}
}

func buildYear(anchor, birthStart, now time.Time) Grid {
	d := SundayWeeks
	yearStart := d.StartOf(UnitYear, anchor)

	months := make([]MonthGrid, 0, config.MonthsInYear)
	for i := 0; i < config.MonthsInYear; i++ {
		month := d.Add(UnitMonth, i, yearStart)
		months = append(months, MonthGrid{
			Month:              month,
			Title:              d.Format(month, config.TitleFormatMiniMonth),
			Cells:              monthCells(month, anchor, birthStart, now, true),
			IsCurrentMonth:     d.IsSame(UnitMonth, now, month),
			IsBirthMonth:       d.IsSame(UnitMonth, birthStart, month),
			IsBeforeBirthMonth: d.EndOf(UnitMonth, month).Before(birthStart),
		})
	}

	return Grid{
		Title:           d.Format(anchor, config.TitleFormatYear),
		IsCurrentPeriod: now.Year() == anchor.Year(),
		Weekdays:        weekdayHeader(d, anchor),
		Months:          months,
	}
}

// monthCells lists month's days padded with the neighbouring months to whole Sunday-start
// weeks. Mini calendars only highlight today inside their own month, so that a padding
// copy of today is not lit twice on the year page.
func monthCells(month, anchor, birthStart, now time.Time, todayInMonthOnly bool) []Cell {
	d := SundayWeeks
	gridStart := d.StartOf(UnitWeek, d.StartOf(UnitMonth, month))
	gridEnd := d.EndOf(UnitWeek, d.EndOf(UnitMonth, month))

	days := d.EachDay(gridStart, gridEnd)
	cells := make([]Cell, 0, len(days))
	for _, day := range days {
		inMonth := d.IsSame(UnitMonth, day, month)
		isToday := d.IsToday(day, now)
		if todayInMonthOnly {
			isToday = isToday && inMonth
		}
		cells = append(cells, Cell{
			Date:            day,
			Label:           d.Format(day, config.TitleFormatDayNumber),
			InCurrentPeriod: inMonth,
			IsToday:         isToday,
			IsSelected:      d.IsSame(UnitDay, day, anchor),
			IsBeforeBirth:   day.Before(birthStart),
			IsBirthday:      d.IsSame(UnitDay, day, birthStart),
		})
	}
	return cells
}

func weekdayHeader(d Dates, anchor time.Time) []string {
	start := d.StartOf(UnitWeek, anchor)
	names := make([]string, 0, config.DaysPerWeek)
	for i := 0; i < config.DaysPerWeek; i++ {
		names = append(names, d.Format(d.Add(UnitDay, i, start), config.TitleFormatWeekday))
	}
	return names
}
