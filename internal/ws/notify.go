package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventProgressUpdated    = "progress_updated"
	EventPersistenceWarning = "persistence_warning"
)

type Event struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Notifier publishes learner events onto a Hub.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) ProgressUpdated(learnerID uuid.UUID, data any) {
	n.send(learnerID, Event{Type: EventProgressUpdated, Data: data})
}

func (n *Notifier) PersistenceWarning(learnerID uuid.UUID, message string) {
	n.send(learnerID, Event{Type: EventPersistenceWarning, Message: message})
}

func (n *Notifier) send(learnerID uuid.UUID, evt Event) {
	if n == nil || n.hub == nil {
		return
	}
	evt.Timestamp = n.now().UTC().Format(time.RFC3339)
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Publish(learnerID, b)
}
