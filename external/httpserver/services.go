package httpserver

import (
	"context"
	"time"

	"github.com/warlocks1507/checkin/internal/correction"
	"github.com/warlocks1507/checkin/internal/report"
	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/roster"
	"github.com/warlocks1507/checkin/internal/session"
	"github.com/warlocks1507/checkin/internal/taskboard"
)

type Tracker interface {
	ClockIn(ctx context.Context, in session.ClockInInput) (*session.View, error)
	ClockOut(ctx context.Context, studentID int64) (*session.View, error)
	UpdateWorkingState(ctx context.Context, in session.WorkingStateInput) (*session.View, error)
	ToggleNeed(ctx context.Context, in session.NeedInput) (*session.View, error)
	Today(ctx context.Context, studentID int64) (*session.View, error)
	StatusBoard(ctx context.Context, date *time.Time) ([]session.BoardRow, error)
	StudentHistory(ctx context.Context, studentID int64) (*session.StudentCard, error)
}

type Roster interface {
	ListActive(ctx context.Context) ([]repository.Student, error)
	ListAll(ctx context.Context) ([]repository.Student, error)
	Create(ctx context.Context, in roster.CreateInput) (*repository.Student, error)
	Update(ctx context.Context, in roster.UpdateInput) (*repository.Student, error)
}

type Tasks interface {
	List(ctx context.Context, in taskboard.ListInput) ([]taskboard.TaskView, error)
	Create(ctx context.Context, in taskboard.CreateInput) (*repository.Task, error)
	Update(ctx context.Context, in taskboard.UpdateInput) (*repository.Task, error)
	Archive(ctx context.Context, id int64) (*repository.Task, error)
	Unarchive(ctx context.Context, id int64) (*repository.Task, error)
	Join(ctx context.Context, taskID, studentID int64) error
	Assign(ctx context.Context, taskID, studentID int64) error
	Leave(ctx context.Context, taskID, studentID int64) error
	ListComments(ctx context.Context, taskID int64) ([]repository.TaskComment, error)
	PostComment(ctx context.Context, in taskboard.CommentInput) (*repository.TaskComment, error)
}

type Reports interface {
	Attendance(ctx context.Context, start, end time.Time) ([]report.Row, error)
}

type Corrections interface {
	Request(ctx context.Context, in correction.RequestInput) (*repository.AttendanceCorrection, error)
	List(ctx context.Context, status string) ([]repository.AttendanceCorrection, error)
	Decide(ctx context.Context, in correction.DecideInput) (*repository.AttendanceCorrection, error)
}

// Services is everything the HTTP surface dispatches to.
type Services struct {
	Tracker     Tracker
	Roster      Roster
	Tasks       Tasks
	Reports     Reports
	Corrections Corrections
}

type handlers struct {
	svc Services
}
