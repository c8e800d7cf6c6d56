package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/repository"
)

const messageInvalidRange = "start must not be after end"

type Row struct {
	StudentID     int64
	FullName      string
	Subteam       *string
	DaysClockedIn int
	HoursTotal    float64
	LastDay       *time.Time
}

// Sweeper closes forgotten sessions before figures are read.
type Sweeper interface {
	AutoClose(ctx context.Context) (int64, error)
}

type Source interface {
	ListStudents(ctx context.Context, activeOnly bool) ([]repository.Student, error)
	ListSessionsInRange(ctx context.Context, start, end time.Time) ([]repository.DailySession, error)
}

type Service struct {
	source  Source
	sweeper Sweeper
}

func NewService(source Source, sweeper Sweeper) *Service {
	return &Service{source: source, sweeper: sweeper}
}

// Attendance reports every active student over the inclusive date range.
func (s *Service) Attendance(ctx context.Context, start, end time.Time) ([]Row, error) {
	if start.After(end) {
		return nil, apperr.Validation(messageInvalidRange)
	}
	if _, err := s.sweeper.AutoClose(ctx); err != nil {
		return nil, err
	}
	students, err := s.source.ListStudents(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	sessions, err := s.source.ListSessionsInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return Build(students, sessions), nil
}

// Build aggregates clocked-in sessions per student. A session without a
// clock-out contributes a day but no hours.
func Build(students []repository.Student, sessions []repository.DailySession) []Row {
	days := make(map[int64]map[time.Time]struct{})
	seconds := make(map[int64]float64)
	last := make(map[int64]time.Time)
	for _, s := range sessions {
		if s.ClockInAt == nil {
			continue
		}
		if days[s.StudentID] == nil {
			days[s.StudentID] = make(map[time.Time]struct{})
		}
		days[s.StudentID][s.MeetingDate] = struct{}{}
		if s.ClockOutAt != nil {
			seconds[s.StudentID] += s.ClockOutAt.Sub(*s.ClockInAt).Seconds()
		}
		if l, ok := last[s.StudentID]; !ok || s.MeetingDate.After(l) {
			last[s.StudentID] = s.MeetingDate
		}
	}

	rows := make([]Row, 0, len(students))
	for _, st := range students {
		row := Row{
			StudentID:     st.ID,
			FullName:      st.FullName,
			Subteam:       st.Subteam,
			DaysClockedIn: len(days[st.ID]),
			HoursTotal:    math.Round(seconds[st.ID]/3600*100) / 100,
		}
		if l, ok := last[st.ID]; ok {
			row.LastDay = &l
		}
		rows = append(rows, row)
	}
	return rows
}
