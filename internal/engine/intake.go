package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// ValidationKind identifies which intake rule rejected a birth date.
type ValidationKind int

const (
	KindEmptyInput ValidationKind = iota + 1
	KindNotInPast
	KindUnreasonablyOld
)

func (k ValidationKind) String() string {
	switch k {
	case KindEmptyInput:
		return "EmptyInput"
	case KindNotInPast:
		return "NotInPast"
	case KindUnreasonablyOld:
		return "UnreasonablyOld"
	default:
		return fmt.Sprintf("ValidationKind(%d)", int(k))
	}
}

// TranslationKey returns the i18n message ID for the kind.
func (k ValidationKind) TranslationKey() string {
	switch k {
	case KindNotInPast:
		return config.TKeyErrNotInPast
	case KindUnreasonablyOld:
		return config.TKeyErrTooOld
	default:
		return config.TKeyErrEmptyInput
	}
}

// ValidationError is the only user-facing error of the life calendar.
// errors.Is matches any ValidationError of the same Kind.
type ValidationError struct {
	Kind    ValidationKind
	Message string
	Input   string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrEmptyInput      = &ValidationError{Kind: KindEmptyInput, Message: config.MsgEmptyInput}
	ErrNotInPast       = &ValidationError{Kind: KindNotInPast, Message: config.MsgNotInPast}
	ErrUnreasonablyOld = &ValidationError{Kind: KindUnreasonablyOld, Message: config.MsgUnreasonablyOld}
)

func newValidationError(sentinel *ValidationError, input string) *ValidationError {
	return &ValidationError{Kind: sentinel.Kind, Message: sentinel.Message, Input: input}
}

// BirthDate is a validated birth date. The zero value means "not provided yet".
type BirthDate struct {
	t time.Time
}

// Time returns the underlying instant.
func (b BirthDate) Time() time.Time { return b.t }

// IsZero reports whether no birth date was accepted.
func (b BirthDate) IsZero() bool { return b.t.IsZero() }

func (b BirthDate) String() string {
	return b.t.Format(config.DateFormatFullDash)
}

func (b BirthDate) MarshalText() ([]byte, error) {
	if b.IsZero() {
		return []byte{}, nil
	}
	return []byte(b.String()), nil
}

// UnmarshalText reads back a date written by MarshalText, at the start of that day in
// time.Local like dates accepted against the real clock. It does not re-run the intake rules.
func (b *BirthDate) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*b = BirthDate{}
		return nil
	}
	t, err := ParseDay(string(text), time.Local)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}
	b.t = t
	return nil
}

// ValidateBirthDate parses raw and applies the intake rules in order:
// empty or unparseable input, a date not strictly before now, then a coarse
// "more than 120 calendar years ago" check on the year numbers alone.
// The last rule is intentionally looser than Projection.Age.
func ValidateBirthDate(raw string, now time.Time) (BirthDate, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return BirthDate{}, newValidationError(ErrEmptyInput, raw)
	}

	parsed, yearKnown, err := parseDate(value, now.Location())
	if err != nil || !yearKnown {
		return BirthDate{}, newValidationError(ErrEmptyInput, raw)
	}

	if !parsed.Before(now) {
		return BirthDate{}, newValidationError(ErrNotInPast, raw)
	}

	if now.Year()-parsed.Year() > config.MaxBirthYearsAgo {
		return BirthDate{}, newValidationError(ErrUnreasonablyOld, raw)
	}

	slog.Info(config.MsgBirthAccepted,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyDOB, parsed.Format(config.DateFormatFullDash))

	return BirthDate{t: parsed}, nil
}

// BirthDateFromVCard validates the BDAY of the first card that carries one.
// A stream without any BDAY is reported as empty input.
func BirthDateFromVCard(r io.Reader, now time.Time) (BirthDate, error) {
	decoder := vcard.NewDecoder(r)
	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return BirthDate{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}
		return ValidateBirthDate(bday.Value, now)
	}

	return BirthDate{}, fmt.Errorf("%s: %w", config.ErrVCardNoBDAY, newValidationError(ErrEmptyInput, ""))
}

// parseDate handles ISO 8601 and the vCard date variants. Dates without a time part are
// placed at the start of their day in loc.
func parseDate(value string, loc *time.Location) (time.Time, bool, error) {
	// Date-only layouts are read as UTC and moved to loc afterwards, since ParseInLocation
	// lands on the previous evening when loc skips that midnight.
	for _, f := range []string{config.DateFormatFullDash, config.DateFormatFullBasic} {
		if t, err := time.Parse(f, value); err == nil {
			return dayIn(t, loc), true, nil
		}
	}

	for _, f := range []string{config.DateFormatRFC3339, config.DateFormatFullT} {
		if t, err := time.ParseInLocation(f, value, loc); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (year unknown), vCard specific
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := civilDate(config.DefaultLeapYear, t.Month(), t.Day(), 0, loc)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
