package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// uidNamespace seeds the name-based UUIDs so that a re-export yields the same event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.UIDNamespace))

// Exporter turns a lifetime projection into an iCalendar feed with one all-day event per
// year bucket, on the birthday anniversary of that year.
type Exporter struct {
	Clock Clock

	// ReminderTrigger is an ISO 8601 duration (e.g. "-P1D"); empty disables alarms.
	ReminderTrigger string

	// FormatSummary allows the UI to inject localized strings into the logic layer.
	FormatSummary func(age int) string
}

// Export encodes p. It stops early when ctx is cancelled.
func (e *Exporter) Export(ctx context.Context, p Projection) ([]byte, error) {
	start := time.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Logic runs on the local calendar date; only the stamp is UTC.
	now := nowIn(e.Clock, p.Birth.Location())
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, b := range p.Buckets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		event := e.createEvent(p.Birth, b)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgExported,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyEvents, len(cal.Children),
		config.LogKeyDuration, time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// createEvent builds the anniversary event of bucket b. Feb 29 births land on Mar 1 in
// non-leap years.
func (e *Exporter) createEvent(birth time.Time, b YearBucket) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, eventUID(birth, b.Year))

	summary := e.summary(b.AgeAtYear)
	event.Props.SetText(config.PropSummary, summary)
	if b.Status == StatusCurrent {
		event.Props.SetText(config.PropDescription, config.DescCurrent)
	}

	eventDate := civilDate(b.Year, birth.Month(), birth.Day(), 0, birth.Location())
	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(eventDate)
	event.Props.Set(dtStartProp)

	if e.ReminderTrigger != "" && b.Status != StatusPast {
		addAlarm(event, e.ReminderTrigger, summary)
	}
	return event
}

func (e *Exporter) summary(age int) string {
	if e.FormatSummary != nil {
		if s := e.FormatSummary(age); s != "" {
			return s
		}
	}
	if age == 0 {
		return config.SummaryBirth
	}
	return fmt.Sprintf(config.SummaryAge, age)
}

func eventUID(birth time.Time, year int) string {
	key := fmt.Sprintf(config.FormatUIDKey, birth.Format(config.DateFormatFullDash), year)
	id := uuid.NewSHA1(uidNamespace, []byte(key))
	return fmt.Sprintf(config.FormatUID, id.String(), config.ICalDomain)
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
