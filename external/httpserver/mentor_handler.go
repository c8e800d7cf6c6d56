package httpserver

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/correction"
	"github.com/warlocks1507/checkin/internal/meetingday"
)

const (
	messageInvalidDate  = "Invalid date (YYYY-MM-DD)"
	messageMissingRange = "Missing start/end (YYYY-MM-DD)"
	messageInvalidRange = "Invalid start/end (YYYY-MM-DD)"
)

func (h *handlers) statusBoard(c *fiber.Ctx) error {
	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := meetingday.Parse(raw)
		if err != nil {
			return apperr.Validation(messageInvalidDate)
		}
		date = &d
	}
	rows, err := h.svc.Tracker.StatusBoard(c.UserContext(), date)
	if err != nil {
		return err
	}
	out := make([]boardRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toBoardRow(r))
	}
	return c.JSON(fiber.Map{"rows": out})
}

func (h *handlers) studentCard(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	card, err := h.svc.Tracker.StudentHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	sessions := make([]sessionViewResponse, 0, len(card.Sessions))
	for i := range card.Sessions {
		sessions = append(sessions, toSessionView(&card.Sessions[i]))
	}
	return c.JSON(studentCardResponse{Student: toStudent(card.Student), Sessions: sessions})
}

func (h *handlers) report(c *fiber.Ctx) error {
	rawStart, rawEnd := c.Query("start"), c.Query("end")
	if rawStart == "" || rawEnd == "" {
		return apperr.Validation(messageMissingRange)
	}
	start, err := meetingday.Parse(rawStart)
	if err != nil {
		return apperr.Validation(messageInvalidRange)
	}
	end, err := meetingday.Parse(rawEnd)
	if err != nil {
		return apperr.Validation(messageInvalidRange)
	}
	rows, err := h.svc.Reports.Attendance(c.UserContext(), start, end)
	if err != nil {
		return err
	}
	out := make([]reportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toReportRow(r))
	}
	return c.JSON(fiber.Map{"rows": out})
}

func (h *handlers) listCorrections(c *fiber.Ctx) error {
	list, err := h.svc.Corrections.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return err
	}
	out := make([]correctionResponse, 0, len(list))
	for _, corr := range list {
		out = append(out, toCorrection(corr))
	}
	return c.JSON(fiber.Map{"corrections": out})
}

func (h *handlers) decideCorrection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req decideRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	corr, err := h.svc.Corrections.Decide(c.UserContext(), correction.DecideInput{
		ID:        id,
		Status:    req.Status,
		DecidedBy: req.DecidedBy,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"correction": toCorrection(*corr)})
}
