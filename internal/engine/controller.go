package engine

import (
	"log/slog"
	"time"

	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// State is the whole session: what the user is looking at and for whom.
type State struct {
	Anchor time.Time `json:"anchor"`
	View   ViewMode  `json:"view"`
	Birth  BirthDate `json:"birthDate"`
}

// Rendering is the output of one render pass. Grid is nil for the lifetime view,
// Projection is nil for every other view.
type Rendering struct {
	State      State       `json:"state"`
	Grid       *Grid       `json:"grid,omitempty"`
	Projection *Projection `json:"projection,omitempty"`
}

// Controller owns the session State and moves the anchor date.
// It is not safe for concurrent use; the UI drives it from a single goroutine.
type Controller struct {
	Clock Clock
	Dates Dates

	state State
}

// NewController starts a session anchored on today.
func NewController(clock Clock, birth BirthDate, view ViewMode) *Controller {
	c := &Controller{Clock: clock, Dates: SundayWeeks}
	c.state = State{
		Anchor: nowIn(clock, birth.Time().Location()),
		View:   view,
		Birth:  birth,
	}
	return c
}

// State returns a copy of the session state.
func (c *Controller) State() State {
	return c.state
}

// Navigate moves the anchor one unit of the active view. The lifetime view has no anchor
// to move.
func (c *Controller) Navigate(dir Direction) {
	unit, ok := c.state.View.Unit()
	if !ok {
		return
	}
	old := c.state.Anchor
	c.state.Anchor = c.Dates.Add(unit, dir.sign(), old)

	slog.Debug(config.MsgNavigated,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyDirection, dir.String(),
		config.LogKeyOld, old.Format(config.DateFormatFullDash),
		config.LogKeyNew, c.state.Anchor.Format(config.DateFormatFullDash),
	)
}

// JumpToToday anchors the session on the current time.
func (c *Controller) JumpToToday() {
	c.state.Anchor = nowIn(c.Clock, c.state.Anchor.Location())
}

// SelectDate anchors the session on d. Dates before the birth day are ignored and
// false is returned.
func (c *Controller) SelectDate(d time.Time) bool {
	if c.beforeBirth(d) {
		slog.Debug(config.MsgSelectRejected,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyValue, d.Format(config.DateFormatFullDash))
		return false
	}
	c.state.Anchor = d
	return true
}

// SelectMonth anchors the session on the first day of m's month, unless the whole month
// lies before the birth day.
func (c *Controller) SelectMonth(m time.Time) bool {
	if c.beforeBirth(c.Dates.EndOf(UnitMonth, m)) {
		return false
	}
	c.state.Anchor = c.Dates.StartOf(UnitMonth, m)
	return true
}

// SetView switches the active view without touching the anchor.
func (c *Controller) SetView(v ViewMode) {
	if c.state.View == v {
		return
	}
	slog.Debug(config.MsgViewChanged,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyOld, c.state.View.String(),
		config.LogKeyNew, v.String())
	c.state.View = v
}

// Render computes the cells of the active view.
func (c *Controller) Render() Rendering {
	r := Rendering{State: c.state}
	birth := c.state.Birth.Time()
	if c.state.View == ViewLifetime {
		p := NewProjector(c.Clock).Project(birth, config.LifeExpectancyYears)
		r.Projection = &p
		return r
	}
	g := NewBuilder(c.Clock).Build(c.state.View, c.state.Anchor, birth)
	r.Grid = &g
	return r
}

func (c *Controller) beforeBirth(d time.Time) bool {
	if c.state.Birth.IsZero() {
		return false
	}
	birthStart := c.Dates.StartOf(UnitDay, c.state.Birth.Time().In(d.Location()))
	return d.Before(birthStart)
}
