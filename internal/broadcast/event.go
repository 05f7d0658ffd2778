package broadcast

import (
	"bytes"
	"encoding/json"
	"time"

	"fieldservice-backend/internal/domain"
)

// Topic is the single notification topic every client subscribes to.
const Topic = "notifications"

type FrameType string

const (
	FrameWelcome      FrameType = "welcome"
	FrameNotification FrameType = "notification"
)

// Kind names the state change an event describes. Client-originated
// messages carry no kind.
type Kind string

const (
	KindRentalStarted  Kind = "rental_started"
	KindRentalReturned Kind = "rental_returned"
	KindRentalOverdue  Kind = "rental_overdue"
	KindJobClaimed     Kind = "job_claimed"
	KindJobCompleted   Kind = "job_completed"

	KindDeviceAvailability Kind = "device_availability_changed"
)

const DefaultWelcomeMessage = "Connected to realtime notifications."

const (
	defaultSender       = "server"
	defaultClientSender = "anonymous"
)

// Event is an ephemeral notification. It is never stored.
type Event struct {
	Kind      Kind
	Message   string
	Sender    string
	Timestamp time.Time
}

// Frame is the outbound wire shape.
type Frame struct {
	Type      FrameType `json:"type"`
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	Kind      Kind      `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func encode(t FrameType, e Event) ([]byte, error) {
	sender := e.Sender
	if sender == "" {
		sender = defaultSender
	}
	return json.Marshal(Frame{
		Type:      t,
		Message:   e.Message,
		Sender:    sender,
		Kind:      e.Kind,
		Timestamp: e.Timestamp.UTC(),
	})
}

type inboundMessage struct {
	Message *string `json:"message"`
	Sender  *string `json:"sender"`
}

// ParseInbound decodes a client message of the form
// {"message": "...", "sender": "..."}. Anything that is not a JSON object
// with string-valued fields yields domain.ErrUnparseable.
func ParseInbound(raw []byte) (Event, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Event{}, domain.ErrUnparseable
	}

	var m inboundMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return Event{}, domain.ErrUnparseable
	}

	e := Event{Sender: defaultClientSender}
	if m.Message != nil {
		e.Message = *m.Message
	}
	if m.Sender != nil {
		e.Sender = *m.Sender
	}
	return e, nil
}
