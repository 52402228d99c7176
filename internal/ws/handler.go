package ws

import (
	"net/http"

	"skill-readiness/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// LearnerFunc resolves the authenticated learner of a request.
type LearnerFunc func(c fiber.Ctx) (uuid.UUID, bool)

type Handler struct {
	hub     *Hub
	learner LearnerFunc
	log     *logger.Logger
}

func NewHandler(hub *Hub, learner LearnerFunc, log *logger.Logger) *Handler {
	return &Handler{hub: hub, learner: learner, log: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) HandleProgressWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	learnerID, ok := h.learner(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("ws upgrade failed", "learner_id", learnerID, "error", err)
			return
		}

		client := NewClient(h.hub, conn, learnerID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
