package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

func dialWS(t *testing.T, httpURL, path string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	require.Eventually(t, func() bool {
		hub.lock.Lock()
		defer hub.lock.Unlock()
		return len(hub.clients) == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()

	ts := httptest.NewServer(http.HandlerFunc(hub.handleWS))
	defer ts.Close()

	first := dialWS(t, ts.URL, "/")
	second := dialWS(t, ts.URL, "/")
	waitForClients(t, hub, 2)

	hub.Broadcast([]byte(`{"event":"orderHistoryUpdated"}`))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"orderHistoryUpdated"}`, string(msg))
	}
}

func TestJournalWritePushesUpdateToWebSocket(t *testing.T) {
	fake := &fakeProxy{}
	srv, jrnl := newTestServer(fake)
	go srv.hub.Run()
	go srv.forwardJournalEvents()

	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	conn := dialWS(t, ts.URL, "/ws")
	waitForClients(t, srv.hub, 1)

	require.NoError(t, jrnl.Record(context.Background(), models.OrderRecord{
		Symbol: "AAPL",
		Side:   models.OrderSideBuy,
		Qty:    1,
		Type:   models.OrderTypeMarket,
		Status: models.OrderStatusDryRun,
		DryRun: true,
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"orderHistoryUpdated"}`, string(msg))
}

func TestBroadcastWithNoClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(testLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast([]byte("tick"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked with no consumer running")
	}
}
