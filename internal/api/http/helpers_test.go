package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"

	apihttp "fieldservice-backend/internal/api/http"
	"fieldservice-backend/internal/broadcast"
	"fieldservice-backend/internal/repository/memory"
	"fieldservice-backend/internal/security"
	"fieldservice-backend/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type testServer struct {
	*httptest.Server
	store       *memory.Store
	broadcaster *broadcast.Broadcaster
	token       string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clk := testclock.NewClock(testNow)
	store := memory.NewStore(clk)
	b := broadcast.New(broadcast.Config{Clock: clk})
	tokens := security.NewTokenManager(testSecret, time.Hour)

	api := apihttp.NewAPI(
		service.NewCoordinatorService(store, b, clk, nil),
		service.NewInventoryService(store),
		service.NewStatsService(store, clk),
	)
	notifications := apihttp.NewNotificationHandler(b, apihttp.NotificationConfig{
		WriteWait:       time.Second,
		PongWait:        10 * time.Second,
		MaxMessageBytes: 4096,
	})
	router := apihttp.NewRouter(apihttp.RouterConfig{
		API:           api,
		Notifications: notifications,
		Tokens:        tokens,
	})

	token, err := tokens.GenerateAccessToken(7, "clerk", nil)
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		notifications.Shutdown()
		b.Close()
		srv.Close()
	})
	return &testServer{Server: srv, store: store, broadcaster: b, token: token}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (int, string) {
	t.Helper()
	return ts.doWithToken(t, method, path, body, ts.token)
}

func (ts *testServer) doWithToken(t *testing.T, method, path, body, token string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}
