package repository

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is wrapped around unique constraint violations.
var ErrDuplicate = errors.New("duplicate key")

// Lookups return (nil, nil) when the row does not exist.

type CreateStudentInput struct {
	FullName string
	Subteam  *string
	Now      time.Time
}

// UpdateStudentInput leaves nil fields untouched; a non-nil empty Subteam clears it.
type UpdateStudentInput struct {
	ID       int64
	FullName *string
	Subteam  *string
	IsActive *bool
}

type UpsertSessionInput struct {
	StudentID   int64
	MeetingDate time.Time
	Now         time.Time
}

type CloseStaleSessionsInput struct {
	Now     time.Time
	MaxOpen time.Duration
}

type TaskFilter struct {
	Subteam         string
	Status          TaskStatus
	IncludeArchived bool
}

type CreateTaskInput struct {
	Title       string
	Subteam     string
	Status      TaskStatus
	Description string
	Now         time.Time
}

type UpdateTaskInput struct {
	ID          int64
	Title       *string
	Subteam     *string
	Description *string
	Status      *TaskStatus
	Now         time.Time
}

type SetTaskArchivedInput struct {
	ID       int64
	Archived bool
	Now      time.Time
}

type AssignmentInput struct {
	TaskID    int64
	StudentID int64
	Now       time.Time
}

type InsertCommentInput struct {
	TaskID      int64
	AuthorType  CommentAuthorType
	AuthorLabel string
	Comment     string
	Now         time.Time
}

type CreateCorrectionInput struct {
	StudentID         int64
	MeetingDate       time.Time
	RequestedClockIn  time.Time
	RequestedClockOut *time.Time
	Reason            string
	Now               time.Time
}

type DecideCorrectionInput struct {
	ID        int64
	Status    CorrectionStatus
	DecidedBy *string
	Applied   bool
	Now       time.Time
}

type CorrectionFilter struct {
	Status CorrectionStatus
}

type StudentRepository interface {
	ListStudents(ctx context.Context, activeOnly bool) ([]Student, error)
	GetStudent(ctx context.Context, id int64) (*Student, error)
	UpsertStudent(ctx context.Context, input CreateStudentInput) (*Student, error)
	UpdateStudent(ctx context.Context, input UpdateStudentInput) (*Student, error)
}

type SessionRepository interface {
	// UpsertSession creates the row for (student, date) or refreshes updated_at
	// on the existing one; inside a transaction the row stays locked until commit.
	UpsertSession(ctx context.Context, input UpsertSessionInput) (*DailySession, error)
	UpdateSession(ctx context.Context, s *DailySession) error
	GetSession(ctx context.Context, studentID int64, meetingDate time.Time) (*DailySession, error)
	ListSessionsByDate(ctx context.Context, meetingDate time.Time) ([]DailySession, error)
	ListSessionsByStudent(ctx context.Context, studentID int64, limit int) ([]DailySession, error)
	ListSessionsInRange(ctx context.Context, start, end time.Time) ([]DailySession, error)
	CloseStaleSessions(ctx context.Context, input CloseStaleSessionsInput) (int64, error)
}

type TaskRepository interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]TaskListRow, error)
	GetTask(ctx context.Context, id int64) (*Task, error)
	CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error)
	UpdateTask(ctx context.Context, input UpdateTaskInput) (*Task, error)
	SetTaskArchived(ctx context.Context, input SetTaskArchivedInput) (*Task, error)
	TouchTask(ctx context.Context, id int64, now time.Time) error
	// StartTask moves a todo task to in_progress and leaves other statuses alone.
	StartTask(ctx context.Context, id int64, now time.Time) error
	// AssignStudent reports false when an active assignment already existed.
	AssignStudent(ctx context.Context, input AssignmentInput) (bool, error)
	UnassignStudent(ctx context.Context, input AssignmentInput) (bool, error)
}

type CommentRepository interface {
	ListComments(ctx context.Context, taskID int64) ([]TaskComment, error)
	InsertComment(ctx context.Context, input InsertCommentInput) (*TaskComment, error)
}

type CorrectionRepository interface {
	CreateCorrection(ctx context.Context, input CreateCorrectionInput) (*AttendanceCorrection, error)
	GetCorrection(ctx context.Context, id int64) (*AttendanceCorrection, error)
	ListCorrections(ctx context.Context, filter CorrectionFilter) ([]AttendanceCorrection, error)
	// DecideCorrection returns nil when the correction is missing or no longer pending.
	DecideCorrection(ctx context.Context, input DecideCorrectionInput) (*AttendanceCorrection, error)
}

type Repository interface {
	StudentRepository
	SessionRepository
	TaskRepository
	CommentRepository
	CorrectionRepository
	// WithTx runs fn against a transaction-scoped Repository, committing when
	// fn returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
