package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/gorilla/websocket"

	"flexFitAPI/services"
)

const (
	// Time allowed to write a message to the peer.
	wsWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	wsPongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than wsPongWait.
	wsPingPeriod = (wsPongWait * 9) / 10

	// Maximum message size allowed from peer.
	wsMaxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsPayload struct {
	Action string `json:"action"`
}

// liveClient is one counting-screen connection. All writes to the peer
// go through the send channel so the write pump is the only writer.
type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *liveClient) enqueue(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("LiveSession: marshal failed:", err)
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer; drop the update rather than block counting.
	}
}

// LiveSessionHandler runs the counting screen over a websocket: each
// "pushup" message is one repetition, and the session's terminal write
// fires when the connection goes away, however it goes away. The
// deferred teardown on the read pump is what makes the on-exit
// persistence guarantee hold for clients that are killed mid-count.
type LiveSessionHandler struct {
	manager *services.SessionManager
}

func NewLiveSessionHandler(manager *services.SessionManager) *LiveSessionHandler {
	return &LiveSessionHandler{
		manager: manager,
	}
}

func (h *LiveSessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on a websocket handshake, so the
	// Clerk token rides in the query string and is verified here
	// instead of in the auth middleware.
	token := r.URL.Query().Get("token")
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "token query parameter required")
		return
	}

	claims, err := jwt.Verify(r.Context(), &jwt.VerifyParams{
		Token: token,
	})
	if err != nil {
		log.Printf("LiveSession: token verification failed: %v", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	clerkID := claims.Subject

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("LiveSession: upgrade failed: %v", err)
		return
	}

	session := h.manager.Start(clerkID)
	client := &liveClient{
		conn: conn,
		send: make(chan []byte, 8),
	}

	go h.writePump(client)
	go h.readPump(client, session.ID)
}

func (h *LiveSessionHandler) readPump(client *liveClient, sessionID string) {
	defer func() {
		// Runs on every exit path. This is the screen teardown.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		result, err := h.manager.Terminate(ctx, sessionID)
		cancel()

		if err == nil {
			data, merr := json.Marshal(map[string]interface{}{
				"action": "session_ended",
				"result": result,
			})
			if merr == nil {
				// The terminal result must not be lost to a full
				// buffer; give the write pump a chance to drain.
				select {
				case client.send <- data:
				case <-time.After(wsWriteWait):
				}
			}
		}
		close(client.send)
	}()

	client.conn.SetReadLimit(wsMaxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			// Disconnect, network drop, read deadline: all end the
			// session through the deferred teardown.
			return
		}

		var payload wsPayload
		if err := json.Unmarshal(message, &payload); err != nil {
			continue
		}

		session, ok := h.manager.Get(sessionID)
		if !ok {
			return
		}

		switch payload.Action {
		case "pushup":
			if err := session.Increment(); err != nil {
				return
			}
			client.enqueue(map[string]interface{}{
				"action":       "progress",
				"pushup_count": session.Count(),
				"flexpoints":   session.Points(),
			})

		case "finish":
			return
		}
	}
}

func (h *LiveSessionHandler) writePump(client *liveClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				// The read pump finished the session.
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			// Heartbeat: keep connection alive
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
