package broadcast

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/pubsub/v2"

	"fieldservice-backend/internal/logger"
	"fieldservice-backend/internal/metrics"
)

// Sink is the outbound half of a subscriber connection.
type Sink interface {
	Send(payload []byte) error
}

// Publisher is what state-changing code needs from the broadcaster.
type Publisher interface {
	Publish(e Event)
}

var ErrSubscriberClosed = errors.New("subscriber closed")

type State int

const (
	StateConnecting State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Config struct {
	Clock          clock.Clock
	WelcomeMessage string
	Metrics        *metrics.Collector
}

// Broadcaster fans events out to every subscriber of Topic. Each subscriber
// is served by its own goroutine and queue inside the hub, so a slow sink
// delays only itself and sees events in publish order.
type Broadcaster struct {
	hub     *pubsub.SimpleHub
	clock   clock.Clock
	welcome string
	metrics *metrics.Collector
	log     *slog.Logger

	mu   sync.Mutex
	subs map[string]*Subscription
}

var _ Publisher = (*Broadcaster)(nil)

func New(cfg Config) *Broadcaster {
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.WelcomeMessage == "" {
		cfg.WelcomeMessage = DefaultWelcomeMessage
	}
	return &Broadcaster{
		hub:     pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{}),
		clock:   cfg.Clock,
		welcome: cfg.WelcomeMessage,
		metrics: cfg.Metrics,
		log:     logger.WithComponent("broadcast"),
		subs:    make(map[string]*Subscription),
	}
}

type Subscription struct {
	id   string
	sink Sink
	b    *Broadcaster

	mu          sync.Mutex
	state       State
	unsubscribe func()
}

func (s *Subscription) ID() string { return s.id }

func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close is shorthand for Broadcaster.Unsubscribe.
func (s *Subscription) Close() {
	s.b.Unsubscribe(s)
}

// Subscribe registers sink and sends it, and only it, a welcome frame. If the
// welcome cannot be written the subscription ends up closed and the send
// error is returned.
func (b *Broadcaster) Subscribe(sink Sink) (*Subscription, error) {
	sub := &Subscription{id: uuid.NewString(), sink: sink, b: b, state: StateConnecting}

	welcome, err := encode(FrameWelcome, Event{Message: b.welcome, Timestamp: b.clock.Now()})
	if err != nil {
		return nil, err
	}
	if err := sink.Send(welcome); err != nil {
		sub.state = StateClosed
		return nil, fmt.Errorf("failed to send welcome: %w", err)
	}

	// Register before joining the hub so an Unsubscribe triggered by the
	// first failed delivery always finds the entry it removes.
	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()
	b.metrics.SubscriberAdded()

	sub.mu.Lock()
	if sub.state == StateClosed {
		// Broadcaster.Close got here first.
		sub.mu.Unlock()
		return nil, ErrSubscriberClosed
	}
	sub.unsubscribe = b.hub.Subscribe(Topic, sub.deliver)
	sub.state = StateActive
	sub.mu.Unlock()

	b.log.Debug("Subscriber added", "subscription", sub.id)
	return sub, nil
}

// Unsubscribe removes sub. Calling it more than once is a no-op.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.mu.Lock()
	if sub.state == StateClosed {
		sub.mu.Unlock()
		return
	}
	sub.state = StateClosed
	unsubscribe := sub.unsubscribe
	sub.unsubscribe = nil
	sub.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	b.mu.Lock()
	_, registered := b.subs[sub.id]
	delete(b.subs, sub.id)
	b.mu.Unlock()

	if registered {
		b.metrics.SubscriberRemoved()
	}
	b.log.Debug("Subscriber removed", "subscription", sub.id)
}

// Publish encodes e once and hands the same bytes to every subscriber,
// including whoever caused the event. It never waits for delivery.
func (b *Broadcaster) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = b.clock.Now()
	}
	payload, err := encode(FrameNotification, e)
	if err != nil {
		b.log.Error("Failed to encode event", "kind", e.Kind, "error", err)
		return
	}
	b.hub.Publish(Topic, payload)
	b.metrics.EventPublished(string(e.Kind))
	b.log.Debug("Event published", "kind", e.Kind, "sender", e.Sender)
}

// Receive handles a raw client message from sub's connection. Valid messages
// are republished to everyone, sender included. Unparseable input is dropped
// and reported as domain.ErrUnparseable for the caller to ignore.
func (b *Broadcaster) Receive(sub *Subscription, raw []byte) error {
	e, err := ParseInbound(raw)
	if err != nil {
		b.metrics.InboundDropped()
		b.log.Debug("Dropped unparseable client message", "subscription", subID(sub), "bytes", len(raw))
		return err
	}
	b.Publish(e)
	return nil
}

// Count is the number of active subscribers.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close unsubscribes everyone.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		b.Unsubscribe(s)
	}
}

// deliver runs on the hub's goroutine for this subscriber.
func (s *Subscription) deliver(topic string, data interface{}) {
	payload, ok := data.([]byte)
	if !ok {
		return
	}
	if s.State() != StateActive {
		return
	}

	err := s.sink.Send(payload)
	s.b.metrics.Delivery(err)
	if err != nil {
		s.b.log.Debug("Delivery failed, dropping subscriber", "subscription", s.id, "error", err)
		// Unsubscribing touches the hub, so don't do it from the hub's own
		// callback goroutine.
		go s.b.Unsubscribe(s)
	}
}

func subID(sub *Subscription) string {
	if sub == nil {
		return ""
	}
	return sub.id
}
