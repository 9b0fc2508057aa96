package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexFitAPI/internal/activity"
	"flexFitAPI/middleware"
	"flexFitAPI/services"
)

// memoryStore backs the handler tests with an in-memory record store.
type memoryStore struct {
	mu       sync.Mutex
	records  []activity.Record
	queryErr error
}

func (m *memoryStore) Append(ctx context.Context, userID string, count, points int, recordedAt time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := activity.Record{
		ID:         fmt.Sprintf("rec-%d", len(m.records)+1),
		UserID:     userID,
		Count:      count,
		Points:     points,
		RecordedAt: recordedAt.UTC(),
	}
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *memoryStore) QueryRange(ctx context.Context, userID string, startUTC, endUTC time.Time) ([]activity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	out := make([]activity.Record, 0)
	for _, rec := range m.records {
		if rec.UserID != userID || rec.RecordedAt.Before(startUTC) || rec.RecordedAt.After(endUTC) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *memoryStore) QueryAll(ctx context.Context, userID string) ([]activity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	out := make([]activity.Record, 0)
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// snapshot copies the records under the lock, for asserting against
// writes made by another goroutine.
func (m *memoryStore) snapshot() []activity.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]activity.Record(nil), m.records...)
}

func authedRequest(method, target string, clerkID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "response should be JSON: %s", rr.Body.String())
	return body
}

func TestStartSession(t *testing.T) {
	store := &memoryStore{}
	handler := NewSessionHandler(services.NewSessionManager(store))

	rr := httptest.NewRecorder()
	handler.StartSession(rr, authedRequest(http.MethodPost, "/api/v1/sessions", "user_1"))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	assert.NotEmpty(t, body["session_id"])
	assert.Equal(t, "user_1", body["user_id"])
}

func TestStartSessionUnauthenticated(t *testing.T) {
	handler := NewSessionHandler(services.NewSessionManager(&memoryStore{}))

	rr := httptest.NewRecorder()
	handler.StartSession(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIncrementAndEndFlow(t *testing.T) {
	store := &memoryStore{}
	manager := services.NewSessionManager(store)
	handler := NewSessionHandler(manager)

	session := manager.Start("user_1")

	for i := 0; i < 12; i++ {
		req := authedRequest(http.MethodPost, "/api/v1/sessions/"+session.ID+"/increment", "user_1")
		req = mux.SetURLVars(req, map[string]string{"sessionId": session.ID})
		rr := httptest.NewRecorder()
		handler.Increment(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, "increment %d", i)
	}

	req := authedRequest(http.MethodDelete, "/api/v1/sessions/"+session.ID, "user_1")
	req = mux.SetURLVars(req, map[string]string{"sessionId": session.ID})
	rr := httptest.NewRecorder()
	handler.EndSession(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	assert.Equal(t, float64(12), body["pushup_count"])
	assert.Equal(t, float64(1), body["flexpoints"])
	require.Len(t, store.snapshot(), 1)
}

func TestEndSessionIsIdempotent(t *testing.T) {
	store := &memoryStore{}
	manager := services.NewSessionManager(store)
	handler := NewSessionHandler(manager)

	session := manager.Start("user_1")
	session.Increment()

	end := func() *httptest.ResponseRecorder {
		req := authedRequest(http.MethodDelete, "/api/v1/sessions/"+session.ID, "user_1")
		req = mux.SetURLVars(req, map[string]string{"sessionId": session.ID})
		rr := httptest.NewRecorder()
		handler.EndSession(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, end().Code)

	rr := end()
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Session already ended", decodeBody(t, rr)["message"])
	assert.Len(t, store.snapshot(), 1, "retried DELETE must not write twice")
}

func TestSessionOwnershipEnforced(t *testing.T) {
	manager := services.NewSessionManager(&memoryStore{})
	handler := NewSessionHandler(manager)

	session := manager.Start("user_1")

	req := authedRequest(http.MethodPost, "/api/v1/sessions/"+session.ID+"/increment", "user_2")
	req = mux.SetURLVars(req, map[string]string{"sessionId": session.ID})
	rr := httptest.NewRecorder()
	handler.Increment(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestIncrementEndedSessionConflicts(t *testing.T) {
	store := &memoryStore{}
	manager := services.NewSessionManager(store)
	handler := NewSessionHandler(manager)

	session := manager.Start("user_1")
	session.Increment()
	// End the session object without removing it from the manager, the
	// way the idle reaper can race a late increment.
	session.Terminate(context.Background())

	req := authedRequest(http.MethodPost, "/api/v1/sessions/"+session.ID+"/increment", "user_1")
	req = mux.SetURLVars(req, map[string]string{"sessionId": session.ID})
	rr := httptest.NewRecorder()
	handler.Increment(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}
