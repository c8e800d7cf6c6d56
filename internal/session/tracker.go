package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/meetingday"
	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/webhook"
)

const historyLimit = 30

type Tracker struct {
	repo           repository.Repository
	cal            *meetingday.Calendar
	notifier       webhook.Notifier
	autoCloseAfter time.Duration
	now            func() time.Time
}

func NewTracker(repo repository.Repository, cal *meetingday.Calendar, notifier webhook.Notifier, autoCloseAfter time.Duration) *Tracker {
	return &Tracker{
		repo:           repo,
		cal:            cal,
		notifier:       notifier,
		autoCloseAfter: autoCloseAfter,
		now:            time.Now,
	}
}

type View struct {
	Session *repository.DailySession
	Status  Status
}

func viewOf(s *repository.DailySession) *View {
	return &View{Session: s, Status: DeriveStatus(s)}
}

type ClockInInput struct {
	StudentID int64
	Subteam   string
	WorkingOn string
	TaskID    *int64
}

type WorkingStateInput struct {
	StudentID int64
	Subteam   string
	WorkingOn string
}

type NeedInput struct {
	StudentID int64
	Kind      NeedKind
	Value     bool
}

type BoardRow struct {
	Student     repository.Student
	MeetingDate time.Time
	Session     *repository.DailySession
	Status      Status
}

type StudentCard struct {
	Student  repository.Student
	Sessions []View
}

// AutoClose closes every session left open longer than the auto-close duration,
// stamping clock-out at clock-in plus that duration.
func (t *Tracker) AutoClose(ctx context.Context) (int64, error) {
	return t.autoClose(ctx, t.now())
}

func (t *Tracker) autoClose(ctx context.Context, now time.Time) (int64, error) {
	n, err := t.repo.CloseStaleSessions(ctx, repository.CloseStaleSessionsInput{Now: now, MaxOpen: t.autoCloseAfter})
	if err != nil {
		return 0, fmt.Errorf("auto-close sessions: %w", err)
	}
	if n > 0 {
		slog.Info("auto-closed sessions", "count", n, "max_open", t.autoCloseAfter.String())
	}
	return n, nil
}

func activeStudent(ctx context.Context, repo repository.StudentRepository, id int64) (*repository.Student, error) {
	if id <= 0 {
		return nil, apperr.Validation(messageMissingStudentID)
	}
	s, err := repo.GetStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if s == nil || !s.IsActive {
		return nil, apperr.NotFound(messageStudentNotFound)
	}
	return s, nil
}

// mutateToday runs fn against today's session row for an active student inside
// one transaction and persists the result.
func (t *Tracker) mutateToday(ctx context.Context, studentID int64, now time.Time, fn func(tx repository.Repository, s *repository.DailySession) error) (*repository.Student, *repository.DailySession, error) {
	if _, err := t.autoClose(ctx, now); err != nil {
		return nil, nil, err
	}
	var student *repository.Student
	var session *repository.DailySession
	err := t.repo.WithTx(ctx, func(tx repository.Repository) error {
		st, err := activeStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		ds, err := tx.UpsertSession(ctx, repository.UpsertSessionInput{
			StudentID:   studentID,
			MeetingDate: t.cal.Today(now),
			Now:         now,
		})
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}
		if err := fn(tx, ds); err != nil {
			return err
		}
		if err := tx.UpdateSession(ctx, ds); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		student, session = st, ds
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return student, session, nil
}

func (t *Tracker) ClockIn(ctx context.Context, in ClockInInput) (*View, error) {
	now := t.now()
	_, s, err := t.mutateToday(ctx, in.StudentID, now, func(tx repository.Repository, ds *repository.DailySession) error {
		if in.TaskID != nil {
			task, err := tx.GetTask(ctx, *in.TaskID)
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}
			if task == nil {
				return apperr.NotFound(messageTaskNotFound)
			}
		}
		applyClockIn(ds, now, in.Subteam, in.WorkingOn, in.TaskID)
		if in.TaskID == nil {
			return nil
		}
		if _, err := tx.AssignStudent(ctx, repository.AssignmentInput{TaskID: *in.TaskID, StudentID: in.StudentID, Now: now}); err != nil {
			return fmt.Errorf("assign task: %w", err)
		}
		if err := tx.StartTask(ctx, *in.TaskID, now); err != nil {
			return fmt.Errorf("start task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("student clocked in", "student_id", in.StudentID, "session_id", s.ID)
	return viewOf(s), nil
}

func (t *Tracker) ClockOut(ctx context.Context, studentID int64) (*View, error) {
	now := t.now()
	_, s, err := t.mutateToday(ctx, studentID, now, func(_ repository.Repository, ds *repository.DailySession) error {
		applyClockOut(ds, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("student clocked out", "student_id", studentID, "session_id", s.ID)
	return viewOf(s), nil
}

func (t *Tracker) UpdateWorkingState(ctx context.Context, in WorkingStateInput) (*View, error) {
	now := t.now()
	_, s, err := t.mutateToday(ctx, in.StudentID, now, func(_ repository.Repository, ds *repository.DailySession) error {
		applyWorkingState(ds, now, in.Subteam, in.WorkingOn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(s), nil
}

// ToggleNeed sets a need flag; raising one notifies mentors on a best-effort basis.
func (t *Tracker) ToggleNeed(ctx context.Context, in NeedInput) (*View, error) {
	if !in.Kind.Valid() {
		return nil, apperr.Validation(messageInvalidNeedType)
	}
	now := t.now()
	student, s, err := t.mutateToday(ctx, in.StudentID, now, func(_ repository.Repository, ds *repository.DailySession) error {
		applyNeed(ds, now, in.Kind, in.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if in.Value {
		n := buildNeedNotification(t.cal, in.Kind, *student, s, now)
		if err := t.notifier.Notify(ctx, n); err != nil {
			slog.Error("failed to send need notification", "error", err, "student_id", student.ID, "event", n.Event)
		}
	}
	return viewOf(s), nil
}

// Today never creates a row; a student with no session yet is not_clocked_in.
func (t *Tracker) Today(ctx context.Context, studentID int64) (*View, error) {
	now := t.now()
	if _, err := t.autoClose(ctx, now); err != nil {
		return nil, err
	}
	if _, err := activeStudent(ctx, t.repo, studentID); err != nil {
		return nil, err
	}
	s, err := t.repo.GetSession(ctx, studentID, t.cal.Today(now))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return viewOf(s), nil
}

// StatusBoard returns one row per active student for date, defaulting to today.
func (t *Tracker) StatusBoard(ctx context.Context, date *time.Time) ([]BoardRow, error) {
	now := t.now()
	if _, err := t.autoClose(ctx, now); err != nil {
		return nil, err
	}
	day := t.cal.Today(now)
	if date != nil {
		day = *date
	}
	students, err := t.repo.ListStudents(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	sessions, err := t.repo.ListSessionsByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	byStudent := make(map[int64]*repository.DailySession, len(sessions))
	for i := range sessions {
		byStudent[sessions[i].StudentID] = &sessions[i]
	}
	rows := make([]BoardRow, 0, len(students))
	for _, st := range students {
		s := byStudent[st.ID]
		rows = append(rows, BoardRow{Student: st, MeetingDate: day, Session: s, Status: DeriveStatus(s)})
	}
	return rows, nil
}

func (t *Tracker) StudentHistory(ctx context.Context, studentID int64) (*StudentCard, error) {
	if _, err := t.autoClose(ctx, t.now()); err != nil {
		return nil, err
	}
	st, err := t.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if st == nil {
		return nil, apperr.NotFound(messageStudentNotFound)
	}
	sessions, err := t.repo.ListSessionsByStudent(ctx, studentID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	card := &StudentCard{Student: *st, Sessions: make([]View, 0, len(sessions))}
	for i := range sessions {
		card.Sessions = append(card.Sessions, *viewOf(&sessions[i]))
	}
	return card, nil
}
