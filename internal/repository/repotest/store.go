// Package repotest provides an in-memory repository.Repository that enforces
// the same uniqueness rules as the Postgres schema.
package repotest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warlocks1507/checkin/internal/repository"
)

type state struct {
	students    []repository.Student
	sessions    []repository.DailySession
	tasks       []repository.Task
	assignments []repository.TaskAssignment
	comments    []repository.TaskComment
	corrections []repository.AttendanceCorrection
	nextID      int64
}

func (s *state) clone() state {
	c := *s
	c.students = slices.Clone(s.students)
	c.sessions = slices.Clone(s.sessions)
	c.tasks = slices.Clone(s.tasks)
	c.assignments = slices.Clone(s.assignments)
	c.comments = slices.Clone(s.comments)
	c.corrections = slices.Clone(s.corrections)
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

type Store struct {
	mu *sync.Mutex
	st *state
	// FailOn makes the named method return an error, for rollback tests.
	FailOn map[string]error
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: &state{}, FailOn: map[string]error{}}
}

func (s *Store) fail(method string) error {
	return s.FailOn[method]
}

// WithTx snapshots the store and restores it when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Repository) error) error {
	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		*s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Assignments returns every assignment row, active or not.
func (s *Store) Assignments() []repository.TaskAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.assignments)
}

// Sessions returns every session row.
func (s *Store) Sessions() []repository.DailySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.sessions)
}

// PutSession stores a session row directly, replacing one with the same id.
func (s *Store) PutSession(ds repository.DailySession) repository.DailySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ds.ID == 0 {
		ds.ID = s.st.id()
	}
	for i := range s.st.sessions {
		if s.st.sessions[i].ID == ds.ID {
			s.st.sessions[i] = ds
			return ds
		}
	}
	s.st.sessions = append(s.st.sessions, ds)
	return ds
}

// PutTask stores a task row directly, replacing one with the same id.
func (s *Store) PutTask(t repository.Task) repository.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.st.id()
	}
	for i := range s.st.tasks {
		if s.st.tasks[i].ID == t.ID {
			s.st.tasks[i] = t
			return t
		}
	}
	s.st.tasks = append(s.st.tasks, t)
	return t
}

func (s *Store) ListStudents(_ context.Context, activeOnly bool) ([]repository.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.Student
	for _, st := range s.st.students {
		if activeOnly && !st.IsActive {
			continue
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *Store) GetStudent(_ context.Context, id int64) (*repository.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.st.students {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, nil
}

func (s *Store) UpsertStudent(_ context.Context, input repository.CreateStudentInput) (*repository.Student, error) {
	if err := s.fail("UpsertStudent"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.students {
		if s.st.students[i].FullName == input.FullName {
			s.st.students[i].Subteam = input.Subteam
			s.st.students[i].IsActive = true
			st := s.st.students[i]
			return &st, nil
		}
	}
	st := repository.Student{ID: s.st.id(), FullName: input.FullName, Subteam: input.Subteam, IsActive: true, CreatedAt: input.Now}
	s.st.students = append(s.st.students, st)
	return &st, nil
}

func (s *Store) UpdateStudent(_ context.Context, input repository.UpdateStudentInput) (*repository.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.st.students {
		if s.st.students[i].ID == input.ID {
			idx = i
		}
	}
	if idx < 0 {
		return nil, nil
	}
	st := s.st.students[idx]
	if input.FullName != nil {
		for _, other := range s.st.students {
			if other.ID != st.ID && other.FullName == *input.FullName {
				return nil, fmt.Errorf("%w: students.full_name", repository.ErrDuplicate)
			}
		}
		st.FullName = *input.FullName
	}
	if input.Subteam != nil {
		if *input.Subteam == "" {
			st.Subteam = nil
		} else {
			v := *input.Subteam
			st.Subteam = &v
		}
	}
	if input.IsActive != nil {
		st.IsActive = *input.IsActive
	}
	s.st.students[idx] = st
	return &st, nil
}

func (s *Store) UpsertSession(_ context.Context, input repository.UpsertSessionInput) (*repository.DailySession, error) {
	if err := s.fail("UpsertSession"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.sessions {
		ds := &s.st.sessions[i]
		if ds.StudentID == input.StudentID && ds.MeetingDate.Equal(input.MeetingDate) {
			ds.UpdatedAt = input.Now
			out := *ds
			return &out, nil
		}
	}
	ds := repository.DailySession{
		ID:          s.st.id(),
		StudentID:   input.StudentID,
		MeetingDate: input.MeetingDate,
		CreatedAt:   input.Now,
		UpdatedAt:   input.Now,
	}
	s.st.sessions = append(s.st.sessions, ds)
	return &ds, nil
}

func (s *Store) UpdateSession(_ context.Context, ds *repository.DailySession) error {
	if err := s.fail("UpdateSession"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.sessions {
		if s.st.sessions[i].ID == ds.ID {
			s.st.sessions[i] = *ds
			return nil
		}
	}
	return nil
}

func (s *Store) GetSession(_ context.Context, studentID int64, meetingDate time.Time) (*repository.DailySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ds := range s.st.sessions {
		if ds.StudentID == studentID && ds.MeetingDate.Equal(meetingDate) {
			return &ds, nil
		}
	}
	return nil, nil
}

func (s *Store) ListSessionsByDate(_ context.Context, meetingDate time.Time) ([]repository.DailySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.DailySession
	for _, ds := range s.st.sessions {
		if ds.MeetingDate.Equal(meetingDate) {
			out = append(out, ds)
		}
	}
	return out, nil
}

func (s *Store) ListSessionsByStudent(_ context.Context, studentID int64, limit int) ([]repository.DailySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.DailySession
	for _, ds := range s.st.sessions {
		if ds.StudentID == studentID {
			out = append(out, ds)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MeetingDate.After(out[j].MeetingDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListSessionsInRange(_ context.Context, start, end time.Time) ([]repository.DailySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.DailySession
	for _, ds := range s.st.sessions {
		if ds.ClockInAt == nil || ds.MeetingDate.Before(start) || ds.MeetingDate.After(end) {
			continue
		}
		out = append(out, ds)
	}
	return out, nil
}

func (s *Store) CloseStaleSessions(_ context.Context, input repository.CloseStaleSessionsInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := input.Now.Add(-input.MaxOpen)
	var n int64
	for i := range s.st.sessions {
		ds := &s.st.sessions[i]
		if ds.ClockInAt == nil || ds.ClockOutAt != nil || !ds.ClockInAt.Before(cutoff) {
			continue
		}
		out := ds.ClockInAt.Add(input.MaxOpen)
		ds.ClockOutAt = &out
		ds.UpdatedAt = input.Now
		n++
	}
	return n, nil
}

func statusRank(st repository.TaskStatus) int {
	switch st {
	case repository.TaskStatusTodo:
		return 1
	case repository.TaskStatusInProgress:
		return 2
	case repository.TaskStatusBlocked:
		return 3
	case repository.TaskStatusDone:
		return 4
	}
	return 5
}

func (s *Store) ListTasks(_ context.Context, filter repository.TaskFilter) ([]repository.TaskListRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.TaskListRow
	for _, t := range s.st.tasks {
		if filter.Subteam != "" && t.Subteam != filter.Subteam {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if !filter.IncludeArchived && t.Archived {
			continue
		}
		row := repository.TaskListRow{Task: t}
		for _, c := range s.st.comments {
			if c.TaskID == t.ID && (row.LastCommentAt == nil || c.CreatedAt.After(*row.LastCommentAt)) {
				at := c.CreatedAt
				row.LastCommentAt = &at
			}
		}
		for _, a := range s.st.assignments {
			if a.TaskID != t.ID || a.UnassignedAt != nil {
				continue
			}
			if row.LastAssignedAt == nil || a.AssignedAt.After(*row.LastAssignedAt) {
				at := a.AssignedAt
				row.LastAssignedAt = &at
			}
			for _, st := range s.st.students {
				if st.ID == a.StudentID {
					row.Assignees = append(row.Assignees, repository.TaskAssignee{StudentID: st.ID, FullName: st.FullName})
				}
			}
		}
		sort.Slice(row.Assignees, func(i, j int) bool { return row.Assignees[i].FullName < row.Assignees[j].FullName })
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := statusRank(out[i].Status), statusRank(out[j].Status)
		if ri != rj {
			return ri < rj
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetTask(_ context.Context, id int64) (*repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.st.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateTask(_ context.Context, input repository.CreateTaskInput) (*repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := repository.Task{
		ID:          s.st.id(),
		Title:       input.Title,
		Subteam:     input.Subteam,
		Status:      input.Status,
		Description: input.Description,
		CreatedAt:   input.Now,
		UpdatedAt:   input.Now,
	}
	s.st.tasks = append(s.st.tasks, t)
	return &t, nil
}

func (s *Store) mutateTask(id int64, fn func(t *repository.Task)) *repository.Task {
	for i := range s.st.tasks {
		if s.st.tasks[i].ID == id {
			fn(&s.st.tasks[i])
			t := s.st.tasks[i]
			return &t
		}
	}
	return nil
}

func (s *Store) UpdateTask(_ context.Context, input repository.UpdateTaskInput) (*repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateTask(input.ID, func(t *repository.Task) {
		if input.Title != nil {
			t.Title = *input.Title
		}
		if input.Subteam != nil {
			t.Subteam = *input.Subteam
		}
		if input.Description != nil {
			t.Description = *input.Description
		}
		if input.Status != nil {
			t.Status = *input.Status
		}
		t.UpdatedAt = input.Now
	}), nil
}

func (s *Store) SetTaskArchived(_ context.Context, input repository.SetTaskArchivedInput) (*repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateTask(input.ID, func(t *repository.Task) {
		t.Archived = input.Archived
		t.UpdatedAt = input.Now
	}), nil
}

func (s *Store) TouchTask(_ context.Context, id int64, now time.Time) error {
	if err := s.fail("TouchTask"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateTask(id, func(t *repository.Task) { t.UpdatedAt = now })
	return nil
}

func (s *Store) StartTask(_ context.Context, id int64, now time.Time) error {
	if err := s.fail("StartTask"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutateTask(id, func(t *repository.Task) {
		if t.Status == repository.TaskStatusTodo {
			t.Status = repository.TaskStatusInProgress
		}
		t.UpdatedAt = now
	})
	return nil
}

func (s *Store) AssignStudent(_ context.Context, input repository.AssignmentInput) (bool, error) {
	if err := s.fail("AssignStudent"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.st.assignments {
		if a.TaskID == input.TaskID && a.StudentID == input.StudentID && a.UnassignedAt == nil {
			return false, nil
		}
	}
	s.st.assignments = append(s.st.assignments, repository.TaskAssignment{
		ID:         s.st.id(),
		TaskID:     input.TaskID,
		StudentID:  input.StudentID,
		AssignedAt: input.Now,
	})
	return true, nil
}

func (s *Store) UnassignStudent(_ context.Context, input repository.AssignmentInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.st.assignments {
		a := &s.st.assignments[i]
		if a.TaskID == input.TaskID && a.StudentID == input.StudentID && a.UnassignedAt == nil {
			at := input.Now
			a.UnassignedAt = &at
			changed = true
		}
	}
	return changed, nil
}

func (s *Store) ListComments(_ context.Context, taskID int64) ([]repository.TaskComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.TaskComment
	for _, c := range s.st.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) InsertComment(_ context.Context, input repository.InsertCommentInput) (*repository.TaskComment, error) {
	if err := s.fail("InsertComment"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := repository.TaskComment{
		ID:          s.st.id(),
		TaskID:      input.TaskID,
		AuthorType:  input.AuthorType,
		AuthorLabel: input.AuthorLabel,
		Comment:     input.Comment,
		CreatedAt:   input.Now,
	}
	s.st.comments = append(s.st.comments, c)
	return &c, nil
}

func (s *Store) CreateCorrection(_ context.Context, input repository.CreateCorrectionInput) (*repository.AttendanceCorrection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := repository.AttendanceCorrection{
		ID:                s.st.id(),
		StudentID:         input.StudentID,
		MeetingDate:       input.MeetingDate,
		RequestedClockIn:  input.RequestedClockIn,
		RequestedClockOut: input.RequestedClockOut,
		Reason:            input.Reason,
		Status:            repository.CorrectionPending,
		CreatedAt:         input.Now,
	}
	s.st.corrections = append(s.st.corrections, c)
	return &c, nil
}

func (s *Store) GetCorrection(_ context.Context, id int64) (*repository.AttendanceCorrection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.st.corrections {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListCorrections(_ context.Context, filter repository.CorrectionFilter) ([]repository.AttendanceCorrection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.AttendanceCorrection
	for _, c := range s.st.corrections {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) DecideCorrection(_ context.Context, input repository.DecideCorrectionInput) (*repository.AttendanceCorrection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.corrections {
		c := &s.st.corrections[i]
		if c.ID != input.ID || c.Status != repository.CorrectionPending {
			continue
		}
		at := input.Now
		c.Status = input.Status
		c.DecidedAt = &at
		c.DecidedBy = input.DecidedBy
		c.Applied = input.Applied
		out := *c
		return &out, nil
	}
	return nil, nil
}

// SeedStudent adds an active student and returns it.
func (s *Store) SeedStudent(name, subteam string) repository.Student {
	var sub *string
	if strings.TrimSpace(subteam) != "" {
		sub = &subteam
	}
	st, _ := s.UpsertStudent(context.Background(), repository.CreateStudentInput{FullName: name, Subteam: sub})
	return *st
}

var _ repository.Repository = (*Store)(nil)
