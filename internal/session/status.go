package session

import (
	"strings"
	"time"

	"github.com/warlocks1507/checkin/internal/repository"
)

type Status string

const (
	StatusNotClockedIn Status = "not_clocked_in"
	StatusClockedIn    Status = "clocked_in"
	StatusClockedOut   Status = "clocked_out"
)

// DeriveStatus classifies a session; a nil session has not been clocked into.
func DeriveStatus(s *repository.DailySession) Status {
	switch {
	case s == nil || s.ClockInAt == nil:
		return StatusNotClockedIn
	case s.ClockOutAt == nil:
		return StatusClockedIn
	default:
		return StatusClockedOut
	}
}

type NeedKind string

const (
	NeedHelp NeedKind = "help"
	NeedTask NeedKind = "task"
)

func (k NeedKind) Valid() bool {
	return k == NeedHelp || k == NeedTask
}

func nonEmpty(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// applyClockIn keeps the first clock-in of an open day and re-opens a closed one.
func applyClockIn(s *repository.DailySession, now time.Time, subteam, workingOn string, taskID *int64) {
	if s.ClockInAt == nil {
		s.ClockInAt = timePtr(now)
	}
	s.ClockOutAt = nil
	applyWorkingState(s, now, subteam, workingOn)
	if taskID != nil {
		id := *taskID
		s.TaskID = &id
	}
	s.UpdatedAt = now
}

func applyClockOut(s *repository.DailySession, now time.Time) {
	s.ClockOutAt = timePtr(now)
	s.UpdatedAt = now
}

// applyWorkingState overwrites only with non-empty values.
func applyWorkingState(s *repository.DailySession, now time.Time, subteam, workingOn string) {
	if v := nonEmpty(subteam); v != nil {
		s.Subteam = v
	}
	if v := nonEmpty(workingOn); v != nil {
		s.WorkingOn = v
	}
	s.UpdatedAt = now
}

func applyNeed(s *repository.DailySession, now time.Time, kind NeedKind, value bool) {
	var at *time.Time
	if value {
		at = timePtr(now)
	}
	switch kind {
	case NeedHelp:
		s.NeedHelp, s.NeedHelpAt = value, at
	case NeedTask:
		s.NeedTask, s.NeedTaskAt = value, at
	}
	s.UpdatedAt = now
}
