package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fieldservice-backend/internal/broadcast"
	"fieldservice-backend/internal/logger"
)

type NotificationConfig struct {
	WriteWait       time.Duration
	PongWait        time.Duration
	MaxMessageBytes int64
}

// NotificationHandler upgrades requests to websockets and attaches each
// connection to the broadcaster for its lifetime.
type NotificationHandler struct {
	broadcaster *broadcast.Broadcaster
	upgrader    websocket.Upgrader
	cfg         NotificationConfig

	stopOnce sync.Once
	stop     chan struct{}
}

func NewNotificationHandler(b *broadcast.Broadcaster, cfg NotificationConfig) *NotificationHandler {
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	return &NotificationHandler{
		broadcaster: b,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		cfg:  cfg,
		stop: make(chan struct{}),
	}
}

// Shutdown closes every open connection. http.Server.Shutdown does not
// track hijacked connections.
func (h *NotificationHandler) Shutdown() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// ServeHTTP implements the http.Handler interface.
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.Debug("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	sink := &connSink{conn: conn, writeWait: h.cfg.WriteWait}
	sub, err := h.broadcaster.Subscribe(sink)
	if err != nil {
		logger.Debug("Websocket closed before welcome", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer sub.Close()
	logger.Debug("Websocket connected", "remote", r.RemoteAddr, "subscription", sub.ID())

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}
	// Ping/pong lets the server notice a client that went away without
	// closing the socket.
	conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(conn, done)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Websocket read failed", "subscription", sub.ID(), "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		// Unparseable input is dropped and the connection stays open.
		_ = h.broadcaster.Receive(sub, data)
	}
}

func (h *NotificationHandler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(h.cfg.PongWait * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-h.stop:
			deadline := time.Now().Add(h.cfg.WriteWait)
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
			conn.Close()
			return
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteWait)
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
				// Expected when the other end goes away. Closing unblocks the reader.
				logger.Debug("Failed to write ping", "error", err)
				conn.Close()
				return
			}
		}
	}
}

// connSink serializes data frames onto one connection. WriteControl may run
// concurrently with it.
type connSink struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	writeWait time.Duration
}

func (s *connSink) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}
