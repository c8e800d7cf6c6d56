package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/warlocks1507/checkin/internal/access"
	"github.com/warlocks1507/checkin/internal/apperr"
	"github.com/warlocks1507/checkin/internal/config"
)

const (
	headerRequestID = "X-Request-ID"
	localsRequestID = "request_id"

	messageServerError = "Server error"

	requestTimeout = 10 * time.Second
)

type Server struct {
	app  *fiber.App
	addr string
}

func New(cfg *config.Config, authorizer *access.Authorizer, svc Services) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "checkin",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	})

	allowOrigins := "*"
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		allowOrigins = strings.Join(origins, ",")
	}
	app.Use(recover.New())
	app.Use(requestLogger)
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + headerAccessKey + ", " + headerAppKey + ", " + headerRequestID,
	}))
	app.Use(compress.New())

	h := &handlers{svc: svc}
	registerRoutes(app, h, authorizer)

	return &Server{app: app, addr: cfg.ListenAddr()}
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	slog.Info("http server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, h *handlers, authorizer *access.Authorizer) {
	mentor := func(p access.Permission) fiber.Handler { return requirePermission(authorizer, p) }

	app.Get("/health", h.health)

	api := app.Group("/api")
	api.Get("/students", h.listStudents)

	student := api.Group("/student")
	student.Post("/clock-in", h.clockIn)
	student.Post("/clock-out", h.clockOut)
	student.Post("/update", h.updateWorkingState)
	student.Post("/need", h.toggleNeed)
	student.Get("/today/:id", h.today)
	student.Post("/attendance-correction", h.requestCorrection)

	mentors := api.Group("/mentor")
	mentors.Get("/status", mentor(access.PermViewAttendance), h.statusBoard)
	mentors.Get("/student/:id", mentor(access.PermViewAttendance), h.studentCard)
	mentors.Get("/report", mentor(access.PermViewAttendance), h.report)
	mentors.Get("/corrections", mentor(access.PermDecideCorrections), h.listCorrections)
	mentors.Post("/corrections/:id/decide", mentor(access.PermDecideCorrections), h.decideCorrection)

	tasks := api.Group("/tasks")
	tasks.Get("/", h.listTasks)
	tasks.Post("/", mentor(access.PermManageTasks), h.createTask)
	tasks.Patch("/:id", mentor(access.PermManageTasks), h.updateTask)
	tasks.Post("/:id/join", h.joinTask)
	tasks.Post("/:id/leave", h.leaveTask)
	tasks.Post("/:id/assign", mentor(access.PermManageTasks), h.assignTask)
	tasks.Post("/:id/archive", mentor(access.PermManageTasks), h.archiveTask)
	tasks.Post("/:id/unarchive", mentor(access.PermManageTasks), h.unarchiveTask)
	tasks.Get("/:id/comments", h.listComments)
	tasks.Post("/:id/comments", h.postComment)

	admin := api.Group("/admin", requirePermission(authorizer, access.PermManageRoster))
	admin.Get("/students", h.listAllStudents)
	admin.Post("/students", h.createStudent)
	admin.Patch("/students/:id", h.updateStudent)
}

func requestLogger(c *fiber.Ctx) error {
	id := c.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(headerRequestID, id)
	c.Locals(localsRequestID, id)

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()
	if err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	slog.Info("http request",
		"request_id", id,
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start).String(),
	)
	return nil
}

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorResponse{Error: fe.Message})
	}
	status := statusForKind(apperr.KindOf(err))
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "error", err, "method", c.Method(), "path", c.Path(), "request_id", c.Locals(localsRequestID))
	}
	return c.Status(status).JSON(errorResponse{Error: apperr.Message(err, messageServerError)})
}
