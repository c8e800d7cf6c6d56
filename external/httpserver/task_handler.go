package httpserver

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/warlocks1507/checkin/internal/taskboard"
)

func (h *handlers) listTasks(c *fiber.Ctx) error {
	views, err := h.svc.Tasks.List(c.UserContext(), taskboard.ListInput{
		Subteam:         c.Query("subteam"),
		Status:          c.Query("status"),
		IncludeArchived: strings.EqualFold(c.Query("includeArchived"), "true"),
	})
	if err != nil {
		return err
	}
	out := make([]taskListItemResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toTaskListItem(v))
	}
	return c.JSON(fiber.Map{"tasks": out})
}

func (h *handlers) createTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.svc.Tasks.Create(c.UserContext(), taskboard.CreateInput{
		Title:       req.Title,
		Subteam:     req.Subteam,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"task": toTask(task)})
}

func (h *handlers) updateTask(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.svc.Tasks.Update(c.UserContext(), taskboard.UpdateInput{
		ID:          id,
		Title:       req.Title,
		Subteam:     req.Subteam,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"task": toTask(task)})
}

func (h *handlers) archiveTask(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	task, err := h.svc.Tasks.Archive(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"task": toTask(task)})
}

func (h *handlers) unarchiveTask(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	task, err := h.svc.Tasks.Unarchive(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"task": toTask(task)})
}

// membership binds the task id and student id shared by join, leave and assign.
func membership(c *fiber.Ctx) (int64, int64, error) {
	id, err := paramID(c)
	if err != nil {
		return 0, 0, err
	}
	var req studentIDRequest
	if err := bind(c, &req); err != nil {
		return 0, 0, err
	}
	return id, req.StudentID, nil
}

func (h *handlers) joinTask(c *fiber.Ctx) error {
	taskID, studentID, err := membership(c)
	if err != nil {
		return err
	}
	if err := h.svc.Tasks.Join(c.UserContext(), taskID, studentID); err != nil {
		return err
	}
	return c.JSON(okResponse{OK: true})
}

func (h *handlers) leaveTask(c *fiber.Ctx) error {
	taskID, studentID, err := membership(c)
	if err != nil {
		return err
	}
	if err := h.svc.Tasks.Leave(c.UserContext(), taskID, studentID); err != nil {
		return err
	}
	return c.JSON(okResponse{OK: true})
}

func (h *handlers) assignTask(c *fiber.Ctx) error {
	taskID, studentID, err := membership(c)
	if err != nil {
		return err
	}
	if err := h.svc.Tasks.Assign(c.UserContext(), taskID, studentID); err != nil {
		return err
	}
	return c.JSON(okResponse{OK: true})
}

func (h *handlers) listComments(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	list, err := h.svc.Tasks.ListComments(c.UserContext(), id)
	if err != nil {
		return err
	}
	out := make([]commentResponse, 0, len(list))
	for _, cm := range list {
		out = append(out, toComment(cm))
	}
	return c.JSON(fiber.Map{"comments": out})
}

func (h *handlers) postComment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	label := req.AuthorLabel
	if label == "" {
		label = req.AuthorLabelSnake
	}
	cm, err := h.svc.Tasks.PostComment(c.UserContext(), taskboard.CommentInput{
		TaskID:      id,
		StudentID:   req.StudentID,
		AuthorLabel: label,
		Comment:     req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comment": toComment(*cm)})
}
