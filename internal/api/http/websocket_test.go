package http_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldservice-backend/internal/broadcast"
)

func dial(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/notifications/"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) broadcast.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f broadcast.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func waitForSubscribers(t *testing.T, ts *testServer, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return ts.broadcaster.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestNotifications_Welcome(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	f := readFrame(t, conn)
	assert.Equal(t, broadcast.FrameWelcome, f.Type)
	assert.Equal(t, "Connected to realtime notifications.", f.Message)
}

func TestNotifications_ClientMessagesReachEveryone(t *testing.T) {
	ts := newTestServer(t)
	alice := dial(t, ts)
	bob := dial(t, ts)
	readFrame(t, alice)
	readFrame(t, bob)
	waitForSubscribers(t, ts, 2)

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("definitely not json")))
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(`{"message":"on my way","sender":"alice"}`)))

	for _, conn := range []*websocket.Conn{alice, bob} {
		f := readFrame(t, conn)
		assert.Equal(t, broadcast.FrameNotification, f.Type)
		assert.Equal(t, "on my way", f.Message)
		assert.Equal(t, "alice", f.Sender)
	}
}

func TestNotifications_StateChangesAreBroadcast(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	readFrame(t, conn)
	waitForSubscribers(t, ts, 1)

	status, _ := ts.do(t, "POST", "/api/devices/", deviceBody)
	require.Equal(t, http.StatusCreated, status)
	status, _ = ts.do(t, "POST", "/api/rentals/", rentalBody)
	require.Equal(t, http.StatusCreated, status)

	f := readFrame(t, conn)
	assert.Equal(t, broadcast.FrameNotification, f.Type)
	assert.Equal(t, broadcast.KindRentalStarted, f.Kind)
	assert.Equal(t, "clerk", f.Sender)
	assert.Contains(t, f.Message, "SN-001")
}

func TestNotifications_DisconnectUnsubscribes(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	readFrame(t, conn)
	waitForSubscribers(t, ts, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	waitForSubscribers(t, ts, 0)
}
