package engine_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks & Helpers
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixedNow is Saturday June 15th 2024, 10:30 UTC.
var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func mustBirth(t *testing.T, raw string) engine.BirthDate {
	t.Helper()
	b, err := engine.ValidateBirthDate(raw, fixedNow)
	require.NoError(t, err)
	return b
}

// -----------------------------------------------------------------------------
// Export
// -----------------------------------------------------------------------------

func TestExport_LifeCalendar(t *testing.T) {
	clock := MockClock{CurrentTime: fixedNow}
	p := engine.NewProjector(clock).Project(day(1990, 6, 15), config.LifeExpectancyYears)

	exp := &engine.Exporter{Clock: clock, ReminderTrigger: config.DefaultReminder}
	ics, err := exp.Export(context.Background(), p)
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "X-WR-CALNAME:"+config.ICalCalName)
	assert.Equal(t, config.LifeExpectancyYears, strings.Count(icsStr, "BEGIN:VEVENT"), "One event per year bucket")
	assert.Contains(t, icsStr, "SUMMARY:Birth\r\n")
	assert.Contains(t, icsStr, "SUMMARY:Birthday (34)")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240615")
	assert.Contains(t, icsStr, "DESCRIPTION:"+config.DescCurrent)

	// Alarms are only attached from the current year onward: 2024..2079.
	assert.Equal(t, 56, strings.Count(icsStr, "BEGIN:VALARM"))
	assert.Contains(t, icsStr, "TRIGGER:-P1D")
}

func TestExport_DeterministicUIDs(t *testing.T) {
	clock := MockClock{CurrentTime: fixedNow}
	p := engine.NewProjector(clock).Project(day(1990, 6, 15), 5)
	exp := &engine.Exporter{Clock: clock}

	first, err := exp.Export(context.Background(), p)
	require.NoError(t, err)
	second, err := exp.Export(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, first, second, "Re-exports must be byte-identical for a fixed clock")
	assert.Contains(t, string(first), "@"+config.ICalDomain)
	assert.NotContains(t, string(first), "VALARM", "No reminder configured")
}

func TestExport_LeaplingAnniversaries(t *testing.T) {
	clock := MockClock{CurrentTime: fixedNow}
	p := engine.NewProjector(clock).Project(day(2000, 2, 29), 5)

	ics, err := (&engine.Exporter{Clock: clock}).Export(context.Background(), p)
	require.NoError(t, err)

	assert.Contains(t, string(ics), "DTSTART;VALUE=DATE:20000229")
	assert.Contains(t, string(ics), "DTSTART;VALUE=DATE:20010301", "Non-leap years fall on March 1st")
	assert.Contains(t, string(ics), "DTSTART;VALUE=DATE:20040229")
}

func TestExport_LocalizedSummary(t *testing.T) {
	clock := MockClock{CurrentTime: fixedNow}
	p := engine.NewProjector(clock).Project(day(1990, 6, 15), 2)

	exp := &engine.Exporter{
		Clock: clock,
		FormatSummary: func(age int) string {
			if age == 0 {
				return "Naissance"
			}
			return ""
		},
	}
	ics, err := exp.Export(context.Background(), p)
	require.NoError(t, err)

	assert.Contains(t, string(ics), "SUMMARY:Naissance")
	assert.Contains(t, string(ics), "SUMMARY:Birthday (1)", "Empty localization falls back to the default")
}

func TestExport_EmptyProjection(t *testing.T) {
	ics, err := (&engine.Exporter{Clock: MockClock{CurrentTime: fixedNow}}).Export(context.Background(), engine.Projection{Birth: day(1990, 6, 15)})
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(ics))
}

func TestExport_ContextCancelled(t *testing.T) {
	clock := MockClock{CurrentTime: fixedNow}
	p := engine.NewProjector(clock).Project(day(1990, 6, 15), config.LifeExpectancyYears)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&engine.Exporter{Clock: clock}).Export(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}
