package taskboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/repository"
)

const (
	messageMissingTitle     = "Missing title"
	messageMissingSubteam   = "Missing subteam"
	messageMissingStudentID = "Missing studentId"
	messageMissingComment   = "Missing comment"
	messageInvalidStatus    = "Invalid status"
	messageTaskNotFound     = "Task not found"
	messageStudentNotFound  = "Student not found"

	defaultMentorLabel = "Mentor"
)

type Service struct {
	repo       repository.Repository
	staleAfter time.Duration
	now        func() time.Time
}

func NewService(repo repository.Repository, staleAfter time.Duration) *Service {
	return &Service{repo: repo, staleAfter: staleAfter, now: time.Now}
}

type TaskView struct {
	repository.Task
	Assignees      []repository.TaskAssignee
	LastActivityAt time.Time
	IsStale        bool
}

type ListInput struct {
	Subteam         string
	Status          string
	IncludeArchived bool
}

type CreateInput struct {
	Title       string
	Subteam     string
	Description string
	Status      string
}

type UpdateInput struct {
	ID          int64
	Title       *string
	Subteam     *string
	Description *string
	Status      *string
}

type CommentInput struct {
	TaskID      int64
	StudentID   *int64
	AuthorLabel string
	Comment     string
}

// LastActivity is the latest of the task's own update, its newest comment and
// its newest active assignment.
func LastActivity(row repository.TaskListRow) time.Time {
	last := row.UpdatedAt
	for _, t := range []*time.Time{row.LastCommentAt, row.LastAssignedAt} {
		if t != nil && t.After(last) {
			last = *t
		}
	}
	return last
}

func IsStale(lastActivity, now time.Time, staleAfter time.Duration) bool {
	return lastActivity.Before(now.Add(-staleAfter))
}

func parseStatus(raw string) (repository.TaskStatus, error) {
	st := repository.TaskStatus(strings.TrimSpace(raw))
	if !st.Valid() {
		return "", apperr.Validation(messageInvalidStatus)
	}
	return st, nil
}

func (s *Service) List(ctx context.Context, in ListInput) ([]TaskView, error) {
	filter := repository.TaskFilter{
		Subteam:         strings.TrimSpace(in.Subteam),
		IncludeArchived: in.IncludeArchived,
	}
	if strings.TrimSpace(in.Status) != "" {
		st, err := parseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	rows, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	now := s.now()
	out := make([]TaskView, 0, len(rows))
	for _, row := range rows {
		last := LastActivity(row)
		assignees := row.Assignees
		if assignees == nil {
			assignees = []repository.TaskAssignee{}
		}
		out = append(out, TaskView{
			Task:           row.Task,
			Assignees:      assignees,
			LastActivityAt: last,
			IsStale:        IsStale(last, now, s.staleAfter),
		})
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*repository.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation(messageMissingTitle)
	}
	subteam := strings.TrimSpace(in.Subteam)
	if subteam == "" {
		return nil, apperr.Validation(messageMissingSubteam)
	}
	status := repository.TaskStatusTodo
	if strings.TrimSpace(in.Status) != "" {
		st, err := parseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}
	task, err := s.repo.CreateTask(ctx, repository.CreateTaskInput{
		Title:       title,
		Subteam:     subteam,
		Status:      status,
		Description: in.Description,
		Now:         s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	slog.Info("task created", "task_id", task.ID, "subteam", task.Subteam)
	return task, nil
}

// Update applies the given fields; blank strings keep the current value.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*repository.Task, error) {
	input := repository.UpdateTaskInput{ID: in.ID, Description: in.Description, Now: s.now()}
	if in.Title != nil {
		if v := strings.TrimSpace(*in.Title); v != "" {
			input.Title = &v
		}
	}
	if in.Subteam != nil {
		if v := strings.TrimSpace(*in.Subteam); v != "" {
			input.Subteam = &v
		}
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		st, err := parseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		input.Status = &st
	}
	task, err := s.repo.UpdateTask(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if task == nil {
		return nil, apperr.NotFound(messageTaskNotFound)
	}
	return task, nil
}

func (s *Service) Archive(ctx context.Context, id int64) (*repository.Task, error) {
	return s.setArchived(ctx, id, true)
}

func (s *Service) Unarchive(ctx context.Context, id int64) (*repository.Task, error) {
	return s.setArchived(ctx, id, false)
}

func (s *Service) setArchived(ctx context.Context, id int64, archived bool) (*repository.Task, error) {
	task, err := s.repo.SetTaskArchived(ctx, repository.SetTaskArchivedInput{ID: id, Archived: archived, Now: s.now()})
	if err != nil {
		return nil, fmt.Errorf("set task archived: %w", err)
	}
	if task == nil {
		return nil, apperr.NotFound(messageTaskNotFound)
	}
	slog.Info("task archive state changed", "task_id", id, "archived", archived)
	return task, nil
}

func requireTask(ctx context.Context, repo repository.TaskRepository, id int64) error {
	task, err := repo.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return apperr.NotFound(messageTaskNotFound)
	}
	return nil
}

func requireActiveStudent(ctx context.Context, repo repository.StudentRepository, id int64) error {
	if id <= 0 {
		return apperr.Validation(messageMissingStudentID)
	}
	st, err := repo.GetStudent(ctx, id)
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}
	if st == nil || !st.IsActive {
		return apperr.NotFound(messageStudentNotFound)
	}
	return nil
}

// assign inserts an active assignment unless one exists and bumps the task.
func (s *Service) assign(ctx context.Context, taskID, studentID int64) error {
	now := s.now()
	return s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := requireActiveStudent(ctx, tx, studentID); err != nil {
			return err
		}
		if err := requireTask(ctx, tx, taskID); err != nil {
			return err
		}
		if _, err := tx.AssignStudent(ctx, repository.AssignmentInput{TaskID: taskID, StudentID: studentID, Now: now}); err != nil {
			return fmt.Errorf("assign student: %w", err)
		}
		if err := tx.TouchTask(ctx, taskID, now); err != nil {
			return fmt.Errorf("touch task: %w", err)
		}
		return nil
	})
}

func (s *Service) Join(ctx context.Context, taskID, studentID int64) error {
	if err := s.assign(ctx, taskID, studentID); err != nil {
		return err
	}
	slog.Info("student joined task", "task_id", taskID, "student_id", studentID)
	return nil
}

// Assign is the mentor path to the same idempotent assignment as Join.
func (s *Service) Assign(ctx context.Context, taskID, studentID int64) error {
	if err := s.assign(ctx, taskID, studentID); err != nil {
		return err
	}
	slog.Info("student assigned to task", "task_id", taskID, "student_id", studentID)
	return nil
}

// Leave stamps the active assignment only, keeping earlier rows as history.
func (s *Service) Leave(ctx context.Context, taskID, studentID int64) error {
	if studentID <= 0 {
		return apperr.Validation(messageMissingStudentID)
	}
	now := s.now()
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := requireTask(ctx, tx, taskID); err != nil {
			return err
		}
		if _, err := tx.UnassignStudent(ctx, repository.AssignmentInput{TaskID: taskID, StudentID: studentID, Now: now}); err != nil {
			return fmt.Errorf("unassign student: %w", err)
		}
		if err := tx.TouchTask(ctx, taskID, now); err != nil {
			return fmt.Errorf("touch task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("student left task", "task_id", taskID, "student_id", studentID)
	return nil
}

func (s *Service) ListComments(ctx context.Context, taskID int64) ([]repository.TaskComment, error) {
	if err := requireTask(ctx, s.repo, taskID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListComments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if list == nil {
		list = []repository.TaskComment{}
	}
	return list, nil
}

// PostComment attributes the comment to the student when one is given, and to
// a mentor label otherwise.
func (s *Service) PostComment(ctx context.Context, in CommentInput) (*repository.TaskComment, error) {
	text := strings.TrimSpace(in.Comment)
	if text == "" {
		return nil, apperr.Validation(messageMissingComment)
	}
	now := s.now()
	var comment *repository.TaskComment
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := requireTask(ctx, tx, in.TaskID); err != nil {
			return err
		}
		input := repository.InsertCommentInput{TaskID: in.TaskID, Comment: text, Now: now}
		if in.StudentID != nil && *in.StudentID > 0 {
			st, err := tx.GetStudent(ctx, *in.StudentID)
			if err != nil {
				return fmt.Errorf("get student: %w", err)
			}
			if st == nil {
				return apperr.NotFound(messageStudentNotFound)
			}
			input.AuthorType = repository.AuthorStudent
			input.AuthorLabel = st.FullName
		} else {
			input.AuthorType = repository.AuthorMentor
			input.AuthorLabel = strings.TrimSpace(in.AuthorLabel)
			if input.AuthorLabel == "" {
				input.AuthorLabel = defaultMentorLabel
			}
		}
		c, err := tx.InsertComment(ctx, input)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		if err := tx.TouchTask(ctx, in.TaskID, now); err != nil {
			return fmt.Errorf("touch task: %w", err)
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}
