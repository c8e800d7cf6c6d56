package httpserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/warlocks1507/checkin/internal/roster"
)

func (h *handlers) listAllStudents(c *fiber.Ctx) error {
	list, err := h.svc.Roster.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"students": toStudents(list)})
}

func (h *handlers) createStudent(c *fiber.Ctx) error {
	var req createStudentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	st, err := h.svc.Roster.Create(c.UserContext(), roster.CreateInput{FullName: req.FullName, Subteam: req.Subteam})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"student": toStudent(*st)})
}

func (h *handlers) updateStudent(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req updateStudentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	st, err := h.svc.Roster.Update(c.UserContext(), roster.UpdateInput{
		ID:       id,
		FullName: req.FullName,
		Subteam:  req.Subteam,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"student": toStudent(*st)})
}
