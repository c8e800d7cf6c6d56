package session

import "fmt"

const (
	messageMissingStudentID = "Missing studentId"
	messageStudentNotFound  = "Student not found"
	messageTaskNotFound     = "Task not found"
	messageInvalidNeedType  = "Invalid type"

	messageNeedHelpFormat = "%s needs help"
	messageNeedTaskFormat = "%s needs a task"
)

func needMessage(kind NeedKind, name string) string {
	if kind == NeedTask {
		return fmt.Sprintf(messageNeedTaskFormat, name)
	}
	return fmt.Sprintf(messageNeedHelpFormat, name)
}
