package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexFitAPI/internal/activity"
	"flexFitAPI/services"
)

// liveTestServer upgrades straight into the session pumps, the same
// path Connect takes after the token check.
func liveTestServer(t *testing.T, h *LiveSessionHandler, manager *services.SessionManager) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		session := manager.Start("user_1")
		client := &liveClient{
			conn: conn,
			send: make(chan []byte, 8),
		}
		go h.writePump(client)
		go h.readPump(client, session.ID)
	}))
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	return conn
}

func waitForRecords(t *testing.T, store *memoryStore, want int) []activity.Record {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		records := store.snapshot()
		if len(records) == want {
			return records
		}
		require.True(t, time.Now().Before(deadline),
			"expected %d persisted records, got %d", want, len(records))
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDisconnectMidCountPersistsRunningCount(t *testing.T) {
	store := &memoryStore{}
	manager := services.NewSessionManager(store)
	srv := liveTestServer(t, NewLiveSessionHandler(manager), manager)
	defer srv.Close()

	conn := dialWS(t, srv)

	for i := 0; i < 7; i++ {
		require.NoError(t, conn.WriteJSON(map[string]string{"action": "pushup"}))
	}

	// Wait for the echo of the last rep so every increment has been
	// applied before the connection drops.
	var progress struct {
		Action string `json:"action"`
		Count  int    `json:"pushup_count"`
	}
	for progress.Count < 7 {
		require.NoError(t, conn.ReadJSON(&progress))
	}

	// Abrupt drop, no finish message and no teardown call.
	conn.Close()

	records := waitForRecords(t, store, 1)
	assert.Equal(t, 7, records[0].Count)
	assert.Equal(t, 0, records[0].Points)
	assert.Equal(t, "user_1", records[0].UserID)
}

func TestFinishMessageEndsSession(t *testing.T) {
	store := &memoryStore{}
	manager := services.NewSessionManager(store)
	srv := liveTestServer(t, NewLiveSessionHandler(manager), manager)
	defer srv.Close()

	conn := dialWS(t, srv)
	defer conn.Close()

	for i := 0; i < 23; i++ {
		require.NoError(t, conn.WriteJSON(map[string]string{"action": "pushup"}))
	}
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "finish"}))

	// Drain progress messages until the terminal result arrives.
	var msg struct {
		Action string                 `json:"action"`
		Result services.SessionResult `json:"result"`
	}
	for msg.Action != "session_ended" {
		require.NoError(t, conn.ReadJSON(&msg))
	}

	assert.Equal(t, 23, msg.Result.Count)
	assert.Equal(t, 2, msg.Result.Points)
	assert.True(t, msg.Result.Persisted)

	records := waitForRecords(t, store, 1)
	assert.Equal(t, 23, records[0].Count)
}
