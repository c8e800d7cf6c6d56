package meetingday

import (
	"testing"
	"time"
)

func mustCalendar(t *testing.T) *Calendar {
	t.Helper()
	c, err := New("America/New_York")
	if err != nil {
		t.Fatalf("failed to create calendar: %v", err)
	}
	return c
}

func TestDateOf_UsesTeamZone(t *testing.T) {
	c := mustCalendar(t)
	// 02:30 UTC on the 15th is still the evening of the 14th in New York.
	late := time.Date(2026, 10, 15, 2, 30, 0, 0, time.UTC)
	if got := Format(c.DateOf(late)); got != "2026-10-14" {
		t.Fatalf("expected 2026-10-14, got %s", got)
	}
	morning := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)
	if got := Format(c.Today(morning)); got != "2026-10-15" {
		t.Fatalf("expected 2026-10-15, got %s", got)
	}
}

func TestDateOf_IsMidnightUTC(t *testing.T) {
	c := mustCalendar(t)
	d := c.DateOf(time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC))
	if d.Location() != time.UTC || d.Hour() != 0 || d.Minute() != 0 {
		t.Fatalf("expected midnight UTC date, got %v", d)
	}
}

func TestAt(t *testing.T) {
	c := mustCalendar(t)
	date, err := Parse("2026-10-14")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	at, err := c.At(date, "18:45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 10, 14, 22, 45, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("expected %v, got %v", want, at.UTC())
	}
	if _, err := c.At(date, "6pm"); err == nil {
		t.Fatal("expected error for malformed clock time")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("10/14/2026"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}
