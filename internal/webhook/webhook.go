package webhook

import "context"

const NotificationSchemaVersion = "1"

type Event string

const (
	EventNeedHelp          Event = "need_help"
	EventNeedTask          Event = "need_task"
	EventCorrectionRequest Event = "correction_requested"
)

type Notification struct {
	SchemaVersion string `json:"schema_version"`
	Event         Event  `json:"event"`
	StudentID     int64  `json:"student_id"`
	StudentName   string `json:"student_name"`
	Subteam       string `json:"subteam"`
	WorkingOn     string `json:"working_on"`
	MeetingDate   string `json:"meeting_date"`
	OccurredAt    string `json:"occurred_at"`
	Timezone      string `json:"timezone"`
	Message       string `json:"message"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
