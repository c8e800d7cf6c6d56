package repository

import "time"

type Student struct {
	ID        int64
	FullName  string
	Subteam   *string
	IsActive  bool
	CreatedAt time.Time
}

// DailySession is unique per (StudentID, MeetingDate). MeetingDate is midnight
// UTC carrying the team-local calendar day.
type DailySession struct {
	ID          int64
	StudentID   int64
	MeetingDate time.Time
	ClockInAt   *time.Time
	ClockOutAt  *time.Time
	Subteam     *string
	WorkingOn   *string
	NeedHelp    bool
	NeedHelpAt  *time.Time
	NeedTask    bool
	NeedTaskAt  *time.Time
	TaskID      *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusBlocked, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          int64
	Title       string
	Subteam     string
	Status      TaskStatus
	Description string
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskAssignment struct {
	ID           int64
	TaskID       int64
	StudentID    int64
	AssignedAt   time.Time
	UnassignedAt *time.Time
}

type TaskAssignee struct {
	StudentID int64
	FullName  string
}

// TaskListRow carries the raw activity inputs; staleness is derived by the caller.
type TaskListRow struct {
	Task
	LastCommentAt  *time.Time
	LastAssignedAt *time.Time
	Assignees      []TaskAssignee
}

type CommentAuthorType string

const (
	AuthorStudent CommentAuthorType = "student"
	AuthorMentor  CommentAuthorType = "mentor"
)

type TaskComment struct {
	ID          int64
	TaskID      int64
	AuthorType  CommentAuthorType
	AuthorLabel string
	Comment     string
	CreatedAt   time.Time
}

type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "pending"
	CorrectionApproved CorrectionStatus = "approved"
	CorrectionDenied   CorrectionStatus = "denied"
)

type AttendanceCorrection struct {
	ID                int64
	StudentID         int64
	MeetingDate       time.Time
	RequestedClockIn  time.Time
	RequestedClockOut *time.Time
	Reason            string
	Status            CorrectionStatus
	DecidedAt         *time.Time
	DecidedBy         *string
	Applied           bool
	CreatedAt         time.Time
}
