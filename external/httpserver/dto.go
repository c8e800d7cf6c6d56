package httpserver

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/meetingday"
	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/report"
	"github.com/warlocks1507/checkin/internal/session"
	"github.com/warlocks1507/checkin/internal/taskboard"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind decodes an optional JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return apperr.Validation("Invalid JSON body")
		}
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			if fe.Tag() == "required" {
				return apperr.Validation("Missing " + fe.Field())
			}
			return apperr.Validation("Invalid " + fe.Field())
		}
		return apperr.Validation(err.Error())
	}
	return nil
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid id")
	}
	return int64(id), nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type studentIDRequest struct {
	StudentID int64 `json:"studentId" validate:"required,gt=0"`
}

type clockInRequest struct {
	StudentID int64  `json:"studentId" validate:"required,gt=0"`
	Subteam   string `json:"subteam"`
	WorkingOn string `json:"workingOn"`
	TaskID    *int64 `json:"taskId" validate:"omitempty,gt=0"`
}

type workingStateRequest struct {
	StudentID int64  `json:"studentId" validate:"required,gt=0"`
	Subteam   string `json:"subteam"`
	WorkingOn string `json:"workingOn"`
}

type needRequest struct {
	StudentID int64  `json:"studentId" validate:"required,gt=0"`
	Type      string `json:"type"`
	Value     bool   `json:"value"`
}

type correctionRequest struct {
	StudentID    int64  `json:"studentId" validate:"required,gt=0"`
	MeetingDate  string `json:"meetingDate" validate:"required"`
	ClockInTime  string `json:"clockInTime" validate:"required"`
	ClockOutTime string `json:"clockOutTime"`
	Reason       string `json:"reason" validate:"required"`
}

type decideRequest struct {
	Status    string `json:"status" validate:"required,oneof=approved denied"`
	DecidedBy string `json:"decidedBy"`
}

type createTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Subteam     string `json:"subteam" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Subteam     *string `json:"subteam"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type commentRequest struct {
	StudentID        *int64 `json:"studentId"`
	AuthorLabel      string `json:"authorLabel"`
	AuthorLabelSnake string `json:"author_label"`
	Comment          string `json:"comment"`
}

type createStudentRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Subteam  string `json:"subteam"`
}

type updateStudentRequest struct {
	FullName *string `json:"full_name"`
	Subteam  *string `json:"subteam"`
	IsActive *bool   `json:"is_active"`
}

type studentResponse struct {
	ID       int64   `json:"id"`
	FullName string  `json:"full_name"`
	Subteam  *string `json:"subteam"`
	IsActive bool    `json:"is_active"`
}

func toStudent(s repository.Student) studentResponse {
	return studentResponse{ID: s.ID, FullName: s.FullName, Subteam: s.Subteam, IsActive: s.IsActive}
}

func toStudents(list []repository.Student) []studentResponse {
	out := make([]studentResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toStudent(s))
	}
	return out
}

type sessionResponse struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"student_id"`
	MeetingDate string     `json:"meeting_date"`
	ClockInAt   *time.Time `json:"clock_in_at"`
	ClockOutAt  *time.Time `json:"clock_out_at"`
	Subteam     *string    `json:"subteam"`
	WorkingOn   *string    `json:"working_on"`
	NeedHelp    bool       `json:"need_help"`
	NeedHelpAt  *time.Time `json:"need_help_at"`
	NeedTask    bool       `json:"need_task"`
	NeedTaskAt  *time.Time `json:"need_task_at"`
	TaskID      *int64     `json:"task_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toSession(s *repository.DailySession) *sessionResponse {
	if s == nil {
		return nil
	}
	return &sessionResponse{
		ID:          s.ID,
		StudentID:   s.StudentID,
		MeetingDate: meetingday.Format(s.MeetingDate),
		ClockInAt:   s.ClockInAt,
		ClockOutAt:  s.ClockOutAt,
		Subteam:     s.Subteam,
		WorkingOn:   s.WorkingOn,
		NeedHelp:    s.NeedHelp,
		NeedHelpAt:  s.NeedHelpAt,
		NeedTask:    s.NeedTask,
		NeedTaskAt:  s.NeedTaskAt,
		TaskID:      s.TaskID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type sessionViewResponse struct {
	Session *sessionResponse `json:"session"`
	Status  session.Status   `json:"status"`
}

func toSessionView(v *session.View) sessionViewResponse {
	return sessionViewResponse{Session: toSession(v.Session), Status: v.Status}
}

type boardRowResponse struct {
	StudentID   int64          `json:"student_id"`
	FullName    string         `json:"full_name"`
	Subteam     *string        `json:"subteam"`
	MeetingDate string         `json:"meeting_date"`
	Status      session.Status `json:"status"`
	ClockInAt   *time.Time     `json:"clock_in_at"`
	ClockOutAt  *time.Time     `json:"clock_out_at"`
	WorkingOn   *string        `json:"working_on"`
	NeedHelp    bool           `json:"need_help"`
	NeedTask    bool           `json:"need_task"`
	NeedHelpAt  *time.Time     `json:"need_help_at"`
	NeedTaskAt  *time.Time     `json:"need_task_at"`
	UpdatedAt   *time.Time     `json:"updated_at"`
}

func toBoardRow(r session.BoardRow) boardRowResponse {
	out := boardRowResponse{
		StudentID:   r.Student.ID,
		FullName:    r.Student.FullName,
		Subteam:     r.Student.Subteam,
		MeetingDate: meetingday.Format(r.MeetingDate),
		Status:      r.Status,
	}
	if s := r.Session; s != nil {
		if s.Subteam != nil {
			out.Subteam = s.Subteam
		}
		updated := s.UpdatedAt
		out.ClockInAt, out.ClockOutAt = s.ClockInAt, s.ClockOutAt
		out.WorkingOn = s.WorkingOn
		out.NeedHelp, out.NeedHelpAt = s.NeedHelp, s.NeedHelpAt
		out.NeedTask, out.NeedTaskAt = s.NeedTask, s.NeedTaskAt
		out.UpdatedAt = &updated
	}
	return out
}

type studentCardResponse struct {
	Student  studentResponse       `json:"student"`
	Sessions []sessionViewResponse `json:"sessions"`
}

type reportRowResponse struct {
	StudentID     int64   `json:"student_id"`
	FullName      string  `json:"full_name"`
	Subteam       *string `json:"subteam"`
	DaysClockedIn int     `json:"days_clocked_in"`
	HoursTotal    float64 `json:"hours_total"`
	LastDay       *string `json:"last_day"`
}

func toReportRow(r report.Row) reportRowResponse {
	out := reportRowResponse{
		StudentID:     r.StudentID,
		FullName:      r.FullName,
		Subteam:       r.Subteam,
		DaysClockedIn: r.DaysClockedIn,
		HoursTotal:    r.HoursTotal,
	}
	if r.LastDay != nil {
		d := meetingday.Format(*r.LastDay)
		out.LastDay = &d
	}
	return out
}

type taskResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Subteam     string                `json:"subteam"`
	Status      repository.TaskStatus `json:"status"`
	Description string                `json:"description"`
	Archived    bool                  `json:"archived"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func toTask(t *repository.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Subteam:     t.Subteam,
		Status:      t.Status,
		Description: t.Description,
		Archived:    t.Archived,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type assigneeResponse struct {
	StudentID int64  `json:"student_id"`
	FullName  string `json:"full_name"`
}

type taskListItemResponse struct {
	taskResponse
	LastActivityAt time.Time          `json:"last_activity_at"`
	IsStale        bool               `json:"is_stale"`
	Assignees      []assigneeResponse `json:"assignees"`
}

func toTaskListItem(v taskboard.TaskView) taskListItemResponse {
	assignees := make([]assigneeResponse, 0, len(v.Assignees))
	for _, a := range v.Assignees {
		assignees = append(assignees, assigneeResponse{StudentID: a.StudentID, FullName: a.FullName})
	}
	return taskListItemResponse{
		taskResponse:   toTask(&v.Task),
		LastActivityAt: v.LastActivityAt,
		IsStale:        v.IsStale,
		Assignees:      assignees,
	}
}

type commentResponse struct {
	ID          int64                        `json:"id"`
	TaskID      int64                        `json:"task_id"`
	AuthorType  repository.CommentAuthorType `json:"author_type"`
	AuthorLabel string                       `json:"author_label"`
	Comment     string                       `json:"comment"`
	CreatedAt   time.Time                    `json:"created_at"`
}

func toComment(c repository.TaskComment) commentResponse {
	return commentResponse{
		ID:          c.ID,
		TaskID:      c.TaskID,
		AuthorType:  c.AuthorType,
		AuthorLabel: c.AuthorLabel,
		Comment:     c.Comment,
		CreatedAt:   c.CreatedAt,
	}
}

type correctionResponse struct {
	ID                int64                       `json:"id"`
	StudentID         int64                       `json:"student_id"`
	MeetingDate       string                      `json:"meeting_date"`
	RequestedClockIn  time.Time                   `json:"requested_clock_in"`
	RequestedClockOut *time.Time                  `json:"requested_clock_out"`
	Reason            string                      `json:"reason"`
	Status            repository.CorrectionStatus `json:"status"`
	DecidedAt         *time.Time                  `json:"decided_at"`
	DecidedBy         *string                     `json:"decided_by"`
	Applied           bool                        `json:"applied"`
	CreatedAt         time.Time                   `json:"created_at"`
}

func toCorrection(c repository.AttendanceCorrection) correctionResponse {
	return correctionResponse{
		ID:                c.ID,
		StudentID:         c.StudentID,
		MeetingDate:       meetingday.Format(c.MeetingDate),
		RequestedClockIn:  c.RequestedClockIn,
		RequestedClockOut: c.RequestedClockOut,
		Reason:            c.Reason,
		Status:            c.Status,
		DecidedAt:         c.DecidedAt,
		DecidedBy:         c.DecidedBy,
		Applied:           c.Applied,
		CreatedAt:         c.CreatedAt,
	}
}
