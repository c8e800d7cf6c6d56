package httpserver

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/warlocks1507/checkin/internal/correction"
	"github.com/warlocks1507/checkin/internal/session"
)

func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (h *handlers) listStudents(c *fiber.Ctx) error {
	list, err := h.svc.Roster.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"students": toStudents(list)})
}

func (h *handlers) clockIn(c *fiber.Ctx) error {
	var req clockInRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Tracker.ClockIn(c.UserContext(), session.ClockInInput{
		StudentID: req.StudentID,
		Subteam:   req.Subteam,
		WorkingOn: req.WorkingOn,
		TaskID:    req.TaskID,
	})
	if err != nil {
		return err
	}
	return c.JSON(toSessionView(v))
}

func (h *handlers) clockOut(c *fiber.Ctx) error {
	var req studentIDRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Tracker.ClockOut(c.UserContext(), req.StudentID)
	if err != nil {
		return err
	}
	return c.JSON(toSessionView(v))
}

func (h *handlers) updateWorkingState(c *fiber.Ctx) error {
	var req workingStateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Tracker.UpdateWorkingState(c.UserContext(), session.WorkingStateInput{
		StudentID: req.StudentID,
		Subteam:   req.Subteam,
		WorkingOn: req.WorkingOn,
	})
	if err != nil {
		return err
	}
	return c.JSON(toSessionView(v))
}

func (h *handlers) toggleNeed(c *fiber.Ctx) error {
	var req needRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Tracker.ToggleNeed(c.UserContext(), session.NeedInput{
		StudentID: req.StudentID,
		Kind:      session.NeedKind(strings.TrimSpace(req.Type)),
		Value:     req.Value,
	})
	if err != nil {
		return err
	}
	return c.JSON(toSessionView(v))
}

func (h *handlers) today(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Tracker.Today(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toSessionView(v))
}

func (h *handlers) requestCorrection(c *fiber.Ctx) error {
	var req correctionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	corr, err := h.svc.Corrections.Request(c.UserContext(), correction.RequestInput{
		StudentID:    req.StudentID,
		MeetingDate:  req.MeetingDate,
		ClockInTime:  req.ClockInTime,
		ClockOutTime: req.ClockOutTime,
		Reason:       req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"correction": toCorrection(*corr)})
}
