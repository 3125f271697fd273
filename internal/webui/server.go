// Package webui serves the chat over a small JSON API.
package webui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"clima/internal/session"
	"clima/internal/status"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

const turnTimeout = 5 * time.Minute

var validate = validator.New()

// Server is the HTTP front of the chat. Each session id maps to its own
// conversation in the session store.
type Server struct {
	app      *fiber.App
	sessions *session.Store
	prober   *status.Prober
	addr     string
	log      *slog.Logger
}

func NewServer(sessions *session.Store, prober *status.Prober, addr string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	app := fiber.New(fiber.Config{
		AppName:               "clima",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
	app.Use(recover.New())

	s := &Server{
		app:      app,
		sessions: sessions,
		prober:   prober,
		addr:     addr,
		log:      log,
	}
	s.routes()
	return s
}

// App exposes the fiber app, mostly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "clima",
		})
	})

	api := s.app.Group("/api")
	api.Post("/chat", s.handleChat)
	api.Delete("/chat/:session", s.handleReset)
	api.Get("/status", s.handleStatus)
}

// Start listens until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("web api listening", "addr", s.addr)
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("web api shutting down")
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}

type ChatRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
	Message   string `json:"message" validate:"required"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), turnTimeout)
	defer cancel()

	reply := s.sessions.Get(req.SessionID).Send(ctx, req.Message)
	s.log.Debug("web turn", "session", req.SessionID, "in_chars", len(req.Message), "out_chars", len(reply))

	return c.JSON(ChatResponse{SessionID: req.SessionID, Reply: reply})
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	if !s.sessions.Reset(c.Params("session")) {
		return fiber.NewError(fiber.StatusNotFound, "unknown session")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleStatus serves the last scheduled probe; ?refresh=1 or a missing
// probe runs one now.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	if !c.QueryBool("refresh") {
		if r, ok := s.prober.Last(); ok {
			return c.JSON(r)
		}
	}
	return c.JSON(s.prober.Check(c.UserContext()))
}
