package engine

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// ViewMode selects which grid (or the lifetime projection) is rendered.
type ViewMode int

const (
	ViewDay ViewMode = iota
	ViewWeek
	ViewMonth
	ViewYear
	ViewLifetime
)

var viewNames = [...]string{
	ViewDay:      config.ViewDay,
	ViewWeek:     config.ViewWeek,
	ViewMonth:    config.ViewMonth,
	ViewYear:     config.ViewYear,
	ViewLifetime: config.ViewLifetime,
}

// Views returns every view in switcher order.
func Views() []ViewMode {
	return []ViewMode{ViewDay, ViewWeek, ViewMonth, ViewYear, ViewLifetime}
}

func (v ViewMode) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("ViewMode(%d)", int(v))
	}
	return viewNames[v]
}

// Unit returns the navigation step of the view. Lifetime has none.
func (v ViewMode) Unit() (Unit, bool) {
	switch v {
	case ViewDay:
		return UnitDay, true
	case ViewWeek:
		return UnitWeek, true
	case ViewMonth:
		return UnitMonth, true
	case ViewYear:
		return UnitYear, true
	default:
		return 0, false
	}
}

// ParseViewMode accepts the lowercase view names, ignoring case and surrounding spaces.
func ParseViewMode(s string) (ViewMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range viewNames {
		if n == name {
			return ViewMode(i), nil
		}
	}
	return 0, fmt.Errorf("%s: %q", config.ErrUnknownView, s)
}

func (v ViewMode) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *ViewMode) UnmarshalText(text []byte) error {
	parsed, err := ParseViewMode(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Direction is a navigation step.
type Direction int

const (
	DirPrevious Direction = iota
	DirNext
)

func (d Direction) String() string {
	if d == DirPrevious {
		return config.DirPrevious
	}
	return config.DirNext
}

// sign converts the direction into a unit multiplier.
func (d Direction) sign() int {
	if d == DirPrevious {
		return -1
	}
	return 1
}
