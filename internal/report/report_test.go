package report

import (
	"context"
	"testing"
	"time"

	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/repository/repotest"
)

type mockSweeper struct{ calls int }

func (m *mockSweeper) AutoClose(_ context.Context) (int64, error) {
	m.calls++
	return 0, nil
}

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func at(d, hour, minute int) *time.Time {
	t := time.Date(2026, 10, d, hour, minute, 0, 0, time.UTC)
	return &t
}

func TestBuild_OpenSessionCountsDayButNoHours(t *testing.T) {
	students := []repository.Student{{ID: 7, FullName: "Ada Lovelace"}}
	sessions := []repository.DailySession{
		{StudentID: 7, MeetingDate: day(13), ClockInAt: at(13, 13, 0), ClockOutAt: at(13, 14, 30)},
		{StudentID: 7, MeetingDate: day(14), ClockInAt: at(14, 13, 0)},
	}
	rows := Build(students, sessions)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].DaysClockedIn != 2 {
		t.Fatalf("expected 2 days, got %d", rows[0].DaysClockedIn)
	}
	if rows[0].HoursTotal != 1.5 {
		t.Fatalf("expected 1.5 hours, got %v", rows[0].HoursTotal)
	}
	if rows[0].LastDay == nil || !rows[0].LastDay.Equal(day(14)) {
		t.Fatalf("expected last day 2026-10-14, got %v", rows[0].LastDay)
	}
}

func TestBuild_StudentWithoutSessions(t *testing.T) {
	rows := Build([]repository.Student{{ID: 1, FullName: "Grace Hopper"}}, nil)
	if len(rows) != 1 || rows[0].DaysClockedIn != 0 || rows[0].HoursTotal != 0 || rows[0].LastDay != nil {
		t.Fatalf("expected zero row, got %+v", rows)
	}
}

func TestBuild_RoundsToTwoDecimals(t *testing.T) {
	students := []repository.Student{{ID: 1, FullName: "Ada Lovelace"}}
	sessions := []repository.DailySession{
		{StudentID: 1, MeetingDate: day(1), ClockInAt: at(1, 13, 0), ClockOutAt: at(1, 13, 20)},
	}
	if got := Build(students, sessions)[0].HoursTotal; got != 0.33 {
		t.Fatalf("expected 0.33, got %v", got)
	}
}

func TestAttendance(t *testing.T) {
	store := repotest.New()
	ada := store.SeedStudent("Ada Lovelace", "Electrical")
	store.SeedStudent("Grace Hopper", "")
	store.PutSession(repository.DailySession{StudentID: ada.ID, MeetingDate: day(14), ClockInAt: at(14, 13, 0), ClockOutAt: at(14, 14, 30)})
	store.PutSession(repository.DailySession{StudentID: ada.ID, MeetingDate: day(20), ClockInAt: at(20, 13, 0), ClockOutAt: at(20, 14, 0)})
	sweeper := &mockSweeper{}
	svc := NewService(store, sweeper)

	rows, err := svc.Attendance(context.Background(), day(14), day(14))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].FullName != "Ada Lovelace" || rows[0].DaysClockedIn != 1 || rows[0].HoursTotal != 1.5 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[1].DaysClockedIn != 0 {
		t.Fatalf("expected Grace with no days, got %+v", rows[1])
	}

	if _, err := svc.Attendance(context.Background(), day(15), day(14)); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
