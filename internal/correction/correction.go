package correction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/meetingday"
	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/webhook"
)

const (
	messageMissingStudentID   = "Missing studentId"
	messageMissingReason      = "Missing reason"
	messageInvalidMeetingDate = "Invalid meetingDate (YYYY-MM-DD)"
	messageFutureMeetingDate  = "meetingDate cannot be in the future"
	messageInvalidClockIn     = "Invalid clockInTime (HH:MM)"
	messageInvalidClockOut    = "Invalid clockOutTime (HH:MM)"
	messageClockOutBeforeIn   = "clockOutTime must be after clockInTime"
	messageFutureClockTime    = "Requested times cannot be in the future"
	messageInvalidStatus      = "Invalid status"
	messageStudentNotFound    = "Student not found"
	messageNotFound           = "Correction not found"
	messageAlreadyDecided     = "Correction already decided"

	messageRequestedFormat = "%s requested an attendance correction for %s"
)

type Service struct {
	repo      repository.Repository
	cal       *meetingday.Calendar
	notifier  webhook.Notifier
	autoApply bool
	now       func() time.Time
}

func NewService(repo repository.Repository, cal *meetingday.Calendar, notifier webhook.Notifier, autoApply bool) *Service {
	return &Service{repo: repo, cal: cal, notifier: notifier, autoApply: autoApply, now: time.Now}
}

type RequestInput struct {
	StudentID    int64
	MeetingDate  string
	ClockInTime  string
	ClockOutTime string
	Reason       string
}

type DecideInput struct {
	ID        int64
	Status    string
	DecidedBy string
}

func (s *Service) parseRequest(in RequestInput, now time.Time) (repository.CreateCorrectionInput, error) {
	var out repository.CreateCorrectionInput
	if in.StudentID <= 0 {
		return out, apperr.Validation(messageMissingStudentID)
	}
	date, err := meetingday.Parse(in.MeetingDate)
	if err != nil {
		return out, apperr.Validation(messageInvalidMeetingDate)
	}
	if date.After(s.cal.Today(now)) {
		return out, apperr.Validation(messageFutureMeetingDate)
	}
	clockIn, err := s.cal.At(date, in.ClockInTime)
	if err != nil {
		return out, apperr.Validation(messageInvalidClockIn)
	}
	if clockIn.After(now) {
		return out, apperr.Validation(messageFutureClockTime)
	}
	var clockOut *time.Time
	if strings.TrimSpace(in.ClockOutTime) != "" {
		t, err := s.cal.At(date, in.ClockOutTime)
		if err != nil {
			return out, apperr.Validation(messageInvalidClockOut)
		}
		if !t.After(clockIn) {
			return out, apperr.Validation(messageClockOutBeforeIn)
		}
		if t.After(now) {
			return out, apperr.Validation(messageFutureClockTime)
		}
		clockOut = &t
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return out, apperr.Validation(messageMissingReason)
	}
	return repository.CreateCorrectionInput{
		StudentID:         in.StudentID,
		MeetingDate:       date,
		RequestedClockIn:  clockIn,
		RequestedClockOut: clockOut,
		Reason:            reason,
		Now:               now,
	}, nil
}

// Request files a pending correction and notifies mentors on a best-effort basis.
func (s *Service) Request(ctx context.Context, in RequestInput) (*repository.AttendanceCorrection, error) {
	now := s.now()
	input, err := s.parseRequest(in, now)
	if err != nil {
		return nil, err
	}
	st, err := s.repo.GetStudent(ctx, in.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if st == nil || !st.IsActive {
		return nil, apperr.NotFound(messageStudentNotFound)
	}
	c, err := s.repo.CreateCorrection(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create correction: %w", err)
	}
	slog.Info("attendance correction requested", "correction_id", c.ID, "student_id", st.ID)

	if err := s.notifier.Notify(ctx, s.buildNotification(*st, c, now)); err != nil {
		slog.Error("failed to send correction notification", "error", err, "correction_id", c.ID)
	}
	return c, nil
}

func (s *Service) buildNotification(st repository.Student, c *repository.AttendanceCorrection, now time.Time) webhook.Notification {
	date := meetingday.Format(c.MeetingDate)
	n := webhook.Notification{
		SchemaVersion: webhook.NotificationSchemaVersion,
		Event:         webhook.EventCorrectionRequest,
		StudentID:     st.ID,
		StudentName:   st.FullName,
		MeetingDate:   date,
		OccurredAt:    now.In(s.cal.Location()).Format(time.RFC3339),
		Timezone:      s.cal.Name(),
		Message:       fmt.Sprintf(messageRequestedFormat, st.FullName, date),
	}
	if st.Subteam != nil {
		n.Subteam = *st.Subteam
	}
	return n
}

func parseStatus(raw string) (repository.CorrectionStatus, error) {
	st := repository.CorrectionStatus(strings.TrimSpace(raw))
	switch st {
	case repository.CorrectionPending, repository.CorrectionApproved, repository.CorrectionDenied:
		return st, nil
	}
	return "", apperr.Validation(messageInvalidStatus)
}

func (s *Service) List(ctx context.Context, status string) ([]repository.AttendanceCorrection, error) {
	var filter repository.CorrectionFilter
	if strings.TrimSpace(status) != "" {
		st, err := parseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	list, err := s.repo.ListCorrections(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	if list == nil {
		list = []repository.AttendanceCorrection{}
	}
	return list, nil
}

// Decide moves a pending correction to approved or denied. With auto-apply on,
// approval writes the requested times into the day's session in the same
// transaction.
func (s *Service) Decide(ctx context.Context, in DecideInput) (*repository.AttendanceCorrection, error) {
	status, err := parseStatus(in.Status)
	if err != nil || status == repository.CorrectionPending {
		return nil, apperr.Validation(messageInvalidStatus)
	}
	var decidedBy *string
	if v := strings.TrimSpace(in.DecidedBy); v != "" {
		decidedBy = &v
	}
	now := s.now()

	var decided *repository.AttendanceCorrection
	err = s.repo.WithTx(ctx, func(tx repository.Repository) error {
		c, err := tx.GetCorrection(ctx, in.ID)
		if err != nil {
			return fmt.Errorf("get correction: %w", err)
		}
		if c == nil {
			return apperr.NotFound(messageNotFound)
		}
		if c.Status != repository.CorrectionPending {
			return apperr.Conflict(messageAlreadyDecided)
		}
		applied := false
		if status == repository.CorrectionApproved && s.autoApply {
			if err := applyToSession(ctx, tx, c, now); err != nil {
				return err
			}
			applied = true
		}
		d, err := tx.DecideCorrection(ctx, repository.DecideCorrectionInput{
			ID:        c.ID,
			Status:    status,
			DecidedBy: decidedBy,
			Applied:   applied,
			Now:       now,
		})
		if err != nil {
			return fmt.Errorf("decide correction: %w", err)
		}
		if d == nil {
			return apperr.Conflict(messageAlreadyDecided)
		}
		decided = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("attendance correction decided", "correction_id", decided.ID, "status", decided.Status, "applied", decided.Applied)
	return decided, nil
}

func applyToSession(ctx context.Context, tx repository.Repository, c *repository.AttendanceCorrection, now time.Time) error {
	ds, err := tx.UpsertSession(ctx, repository.UpsertSessionInput{StudentID: c.StudentID, MeetingDate: c.MeetingDate, Now: now})
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	in := c.RequestedClockIn
	ds.ClockInAt = &in
	switch {
	case c.RequestedClockOut != nil:
		out := *c.RequestedClockOut
		ds.ClockOutAt = &out
	case ds.ClockOutAt != nil && ds.ClockOutAt.Before(in):
		// Left open; the auto-close sweep closes it at in plus the limit.
		ds.ClockOutAt = nil
	}
	ds.UpdatedAt = now
	if err := tx.UpdateSession(ctx, ds); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}
