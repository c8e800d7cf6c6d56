package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/repository"
)

const (
	messageMissingFullName = "Missing full_name"
	messageStudentNotFound = "Student not found"
	messageDuplicateName   = "A student with that name already exists"
)

type Service struct {
	repo repository.StudentRepository
	now  func() time.Time
}

func NewService(repo repository.StudentRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	FullName string
	Subteam  string
}

type UpdateInput struct {
	ID       int64
	FullName *string
	Subteam  *string
	IsActive *bool
}

func (s *Service) ListActive(ctx context.Context) ([]repository.Student, error) {
	list, err := s.repo.ListStudents(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return list, nil
}

func (s *Service) ListAll(ctx context.Context) ([]repository.Student, error) {
	list, err := s.repo.ListStudents(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return list, nil
}

// Create adds a student, or reactivates and re-subteams one with the same name.
func (s *Service) Create(ctx context.Context, in CreateInput) (*repository.Student, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, apperr.Validation(messageMissingFullName)
	}
	var subteam *string
	if v := strings.TrimSpace(in.Subteam); v != "" {
		subteam = &v
	}
	st, err := s.repo.UpsertStudent(ctx, repository.CreateStudentInput{FullName: name, Subteam: subteam, Now: s.now()})
	if err != nil {
		return nil, fmt.Errorf("upsert student: %w", err)
	}
	slog.Info("student saved", "student_id", st.ID)
	return st, nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*repository.Student, error) {
	input := repository.UpdateStudentInput{ID: in.ID, IsActive: in.IsActive}
	// A blank name keeps the current one.
	if in.FullName != nil {
		if name := strings.TrimSpace(*in.FullName); name != "" {
			input.FullName = &name
		}
	}
	if in.Subteam != nil {
		v := strings.TrimSpace(*in.Subteam)
		input.Subteam = &v
	}
	st, err := s.repo.UpdateStudent(ctx, input)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(messageDuplicateName)
		}
		return nil, fmt.Errorf("update student: %w", err)
	}
	if st == nil {
		return nil, apperr.NotFound(messageStudentNotFound)
	}
	slog.Info("student updated", "student_id", st.ID, "is_active", st.IsActive)
	return st, nil
}
