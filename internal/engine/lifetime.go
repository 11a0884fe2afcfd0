package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tartampluch/go-lifecalendar/internal/config"
)

// Status places a year bucket relative to the current year.
type Status int

const (
	StatusPast Status = iota
	StatusCurrent
	StatusFuture
)

func (s Status) String() string {
	switch s {
	case StatusPast:
		return config.StatusPast
	case StatusCurrent:
		return config.StatusCurrent
	case StatusFuture:
		return config.StatusFuture
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusPast, StatusCurrent, StatusFuture} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// YearBucket is one year of a projected lifespan.
type YearBucket struct {
	Year        int    `json:"year"`
	AgeAtYear   int    `json:"ageAtYear"`
	Status      Status `json:"status"`
	IsBirthYear bool   `json:"isBirthYear"`
	IsDecade    bool   `json:"isDecade"`
}

// Projection summarises a life from birth to the life expectancy horizon.
type Projection struct {
	Birth          time.Time       `json:"birth"`
	Age            int             `json:"age"`
	WeeksLived     int             `json:"weeksLived"`
	LifeExpectancy int             `json:"lifeExpectancy"`
	PercentLived   decimal.Decimal `json:"percentLived"`
	NextBirthday   time.Time       `json:"nextBirthday"`
	AgeNext        int             `json:"ageNext"`
	Buckets        []YearBucket    `json:"buckets"`
}

// Projector derives ages and year buckets from a birth date.
type Projector struct {
	Clock Clock
}

// NewProjector returns a Projector reading the given clock.
func NewProjector(c Clock) *Projector {
	return &Projector{Clock: c}
}

// Project computes the lifetime view. A non-positive lifeExpectancyYears falls back to
// config.LifeExpectancyYears.
func (p *Projector) Project(birth time.Time, lifeExpectancyYears int) Projection {
	if lifeExpectancyYears <= 0 {
		lifeExpectancyYears = config.LifeExpectancyYears
	}
	d := SundayWeeks
	now := nowIn(p.Clock, birth.Location())
	birthYear := birth.Year()
	currentYear := now.Year()

	buckets := make([]YearBucket, lifeExpectancyYears)
	for i := range buckets {
		year := birthYear + i
		buckets[i] = YearBucket{
			Year:        year,
			AgeAtYear:   i,
			Status:      statusFor(year, currentYear),
			IsBirthYear: i == 0,
			IsDecade:    i%config.DecadeSpan == 0,
		}
	}

	nextOcc, ageNext := calculateNextOccurrence(now, birth)

	return Projection{
		Birth:          birth,
		Age:            max(d.Diff(UnitYear, now, birth), 0),
		WeeksLived:     max(d.Diff(UnitWeek, now, birth), 0),
		LifeExpectancy: lifeExpectancyYears,
		PercentLived:   percentLived(d, birth, now, lifeExpectancyYears),
		NextBirthday:   nextOcc,
		AgeNext:        ageNext,
		Buckets:        buckets,
	}
}

func statusFor(year, currentYear int) Status {
	switch {
	case year < currentYear:
		return StatusPast
	case year == currentYear:
		return StatusCurrent
	default:
		return StatusFuture
	}
}

// percentLived is the share of days lived out of the expected span, capped to [0, 100].
func percentLived(d Dates, birth, now time.Time, years int) decimal.Decimal {
	total := d.Diff(UnitDay, d.Add(UnitYear, years, birth), birth)
	if total <= 0 {
		return decimal.Zero
	}
	lived := min(max(d.Diff(UnitDay, now, birth), 0), total)

	hundred := decimal.NewFromInt(100)
	return decimal.NewFromInt(int64(lived)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(config.PercentPrecision)
}

// Rows chunks buckets into display rows of size entries; the last row may be shorter.
func Rows(buckets []YearBucket, size int) [][]YearBucket {
	if size <= 0 {
		size = config.LifetimeRowSize
	}
	rows := make([][]YearBucket, 0, (len(buckets)+size-1)/size)
	for start := 0; start < len(buckets); start += size {
		end := min(start+size, len(buckets))
		rows = append(rows, buckets[start:end])
	}
	return rows
}

// calculateNextOccurrence determines the next birthday date relative to 'now'.
// A birthday falling today counts as the next one.
func calculateNextOccurrence(now time.Time, birthDate time.Time) (time.Time, int) {
	currentYear := now.Year()
	loc := now.Location()

	// Go's time.Date normalizes Feb 29 to March 1st if currentYear is not a leap year.
	candidate := civilDate(currentYear, birthDate.Month(), birthDate.Day(), 0, loc)
	todayStart := dayIn(now, loc)

	if candidate.Before(todayStart) {
		candidate = civilDate(currentYear+1, birthDate.Month(), birthDate.Day(), 0, loc)
	}

	return candidate, candidate.Year() - birthDate.Year()
}
