package session

import (
	"time"

	"github.com/warlocks1507/checkin/internal/meetingday"
	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/webhook"
)

func buildNeedNotification(cal *meetingday.Calendar, kind NeedKind, student repository.Student, s *repository.DailySession, now time.Time) webhook.Notification {
	event := webhook.EventNeedHelp
	if kind == NeedTask {
		event = webhook.EventNeedTask
	}
	n := webhook.Notification{
		SchemaVersion: webhook.NotificationSchemaVersion,
		Event:         event,
		StudentID:     student.ID,
		StudentName:   student.FullName,
		MeetingDate:   meetingday.Format(s.MeetingDate),
		OccurredAt:    now.In(cal.Location()).Format(time.RFC3339),
		Timezone:      cal.Name(),
		Message:       needMessage(kind, student.FullName),
	}
	switch {
	case s.Subteam != nil:
		n.Subteam = *s.Subteam
	case student.Subteam != nil:
		n.Subteam = *student.Subteam
	}
	if s.WorkingOn != nil {
		n.WorkingOn = *s.WorkingOn
	}
	return n
}
