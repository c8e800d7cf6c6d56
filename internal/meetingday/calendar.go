// Package meetingday owns the day boundary: every meeting date in the system is
// computed or parsed here, in the team's zone rather than UTC.
package meetingday

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type Calendar struct {
	name string
	loc  *time.Location
}

func New(timezone string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Calendar{name: timezone, loc: loc}, nil
}

func (c *Calendar) Location() *time.Location { return c.loc }
func (c *Calendar) Name() string             { return c.name }

// DateOf returns the meeting date containing t. Dates are represented as
// midnight UTC carrying the local year, month and day, which is what a
// Postgres DATE column round-trips to.
func (c *Calendar) DateOf(t time.Time) time.Time {
	l := t.In(c.loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *Calendar) Today(now time.Time) time.Time {
	return c.DateOf(now)
}

// At resolves a wall-clock "HH:MM" on a meeting date to an instant.
func (c *Calendar) At(date time.Time, clock string) (time.Time, error) {
	hm, err := time.Parse(ClockLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hm.Hour(), hm.Minute(), 0, 0, c.loc), nil
}

func Parse(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

func Format(date time.Time) string {
	return date.Format(DateLayout)
}
