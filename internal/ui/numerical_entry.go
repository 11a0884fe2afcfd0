package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// NumericalEntry is an Entry that only takes digits, typed or pasted.
// A positive MaxDigits caps the length of the text.
type NumericalEntry struct {
	widget.Entry
	MaxDigits int
}

// NewNumericalEntry creates a new instance of NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// NewPortEntry is a NumericalEntry sized for a TCP port.
func NewPortEntry() *NumericalEntry {
	entry := NewNumericalEntry()
	entry.MaxDigits = config.PortMaxDigits
	return entry
}

// TypedRune drops anything but 0-9, and digits past MaxDigits.
func (e *NumericalEntry) TypedRune(r rune) {
	if r < '0' || r > '9' || e.full() {
		return
	}
	e.Entry.TypedRune(r)
}

// TypedShortcut filters pasted text through TypedRune. Other shortcuts pass through.
// SetText still accepts anything; the Validator covers that path.
func (e *NumericalEntry) TypedShortcut(s fyne.Shortcut) {
	paste, ok := s.(*fyne.ShortcutPaste)
	if !ok || paste.Clipboard == nil {
		e.Entry.TypedShortcut(s)
		return
	}
	for _, r := range paste.Clipboard.Content() {
		e.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

func (e *NumericalEntry) full() bool {
	return e.MaxDigits > 0 && len([]rune(e.Text)) >= e.MaxDigits
}
