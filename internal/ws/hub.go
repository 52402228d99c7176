package ws

import (
	"sync"

	"skill-readiness/internal/pkg/logger"

	"github.com/google/uuid"
)

// Hub fans messages out to the sockets a learner has open. Messages never
// cross learners.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	publish    chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	log        *logger.Logger
}

type envelope struct {
	learnerID uuid.UUID
	payload   []byte
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		publish:    make(chan envelope, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.learnerID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.learnerID] = set
			}
			set[client] = true
			total := len(set)
			h.mutex.Unlock()
			h.log.Debug("ws connected", "learner_id", client.learnerID, "learner_clients", total)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case msg := <-h.publish:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[msg.learnerID]))
			for c := range h.clients[msg.learnerID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	set, ok := h.clients[client.learnerID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.learnerID)
	}
	h.log.Debug("ws disconnected", "learner_id", client.learnerID, "learner_clients", len(set))
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, id)
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	if h == nil {
		return
	}
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// Publish queues payload for every socket of learnerID. It never blocks.
func (h *Hub) Publish(learnerID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.publish <- envelope{learnerID: learnerID, payload: payload}:
	default:
		h.log.Warn("ws publish dropped", "learner_id", learnerID, "reason", "buffer_full")
	}
}

func (h *Hub) ClientCount(learnerID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[learnerID])
}
