// A counting session owns its in-memory count for one screen lifetime
// and guarantees exactly one terminal persistence attempt when it ends,
// no matter which exit path ended it (explicit finish, websocket
// disconnect, idle reap, server shutdown).
package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"flexFitAPI/internal/activity"
	"flexFitAPI/internal/daywindow"
	"flexFitAPI/middleware"
)

const (
	// Sessions untouched for this long are force-terminated so the
	// terminal write still happens when a client disappears without a
	// teardown call.
	sessionIdleTimeout = 10 * time.Minute

	reapInterval = time.Minute

	terminateTimeout = 10 * time.Second
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session already ended")
)

type sessionState int

const (
	stateActive sessionState = iota
	stateEnding
	stateEnded
)

// ActivitySession is one in-memory counting interval bound to a single
// user. The running count is owned exclusively by the session; nothing
// else reads or mutates it directly.
type ActivitySession struct {
	ID        string
	UserID    string
	StartedAt time.Time

	store activity.RecordStore

	mu           sync.Mutex
	state        sessionState
	runningCount int
	lastTouched  time.Time
	recordID     string
	persistErr   error
}

// SessionResult is the terminal outcome reported to the caller when a
// session ends.
type SessionResult struct {
	SessionID     string `json:"session_id"`
	UserID        string `json:"user_id"`
	Count         int    `json:"pushup_count"`
	Points        int    `json:"flexpoints"`
	Persisted     bool   `json:"persisted"`
	RecordID      string `json:"record_id,omitempty"`
	PersistFailed bool   `json:"persist_failed"`
}

func newActivitySession(userID string, store activity.RecordStore) *ActivitySession {
	now := time.Now()
	return &ActivitySession{
		ID:          uuid.New().String(),
		UserID:      userID,
		StartedAt:   now,
		store:       store,
		state:       stateActive,
		lastTouched: now,
	}
}

// Increment adds one repetition. Valid only while the session is
// active.
func (s *ActivitySession) Increment() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateActive {
		return ErrSessionEnded
	}
	s.runningCount++
	s.lastTouched = time.Now()
	return nil
}

// Count returns the running count.
func (s *ActivitySession) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningCount
}

// Points returns the flexpoints the running count is currently worth.
func (s *ActivitySession) Points() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return activity.PointsFor(s.runningCount)
}

func (s *ActivitySession) lastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

// Terminate runs the session's single terminal persistence attempt and
// moves it to its end state. A zero count skips the write entirely. A
// failed write is logged and reported in the result but never blocks
// the transition: the user is not held on the screen because of a
// transient write failure. Calling Terminate again is a no-op that
// returns the same outcome; a session never produces two records.
func (s *ActivitySession) Terminate(ctx context.Context) SessionResult {
	s.mu.Lock()
	if s.state != stateActive {
		res := s.resultLocked()
		s.mu.Unlock()
		return res
	}
	s.state = stateEnding
	count := s.runningCount
	s.mu.Unlock()

	var recordID string
	var persistErr error
	if count > 0 {
		// The record is attributed to the UTC calendar day of the
		// terminate call, not the wall-clock write instant.
		recordedAt := daywindow.WindowFor(time.Now()).StartUTC
		recordID, persistErr = s.store.Append(ctx, s.UserID, count, activity.PointsFor(count), recordedAt)
		if persistErr != nil {
			log.Printf("[Session %s] terminal write failed (count=%d): %v", s.ID, count, persistErr)
			middleware.RecordWriteFailures.Inc()
		} else {
			middleware.RecordsPersisted.Inc()
		}
	}

	s.mu.Lock()
	s.state = stateEnded
	s.recordID = recordID
	s.persistErr = persistErr
	res := s.resultLocked()
	s.mu.Unlock()
	return res
}

func (s *ActivitySession) resultLocked() SessionResult {
	return SessionResult{
		SessionID:     s.ID,
		UserID:        s.UserID,
		Count:         s.runningCount,
		Points:        activity.PointsFor(s.runningCount),
		Persisted:     s.recordID != "",
		RecordID:      s.recordID,
		PersistFailed: s.persistErr != nil,
	}
}

// SessionManager holds every live counting session and owns their
// teardown paths.
type SessionManager struct {
	store activity.RecordStore

	mu       sync.RWMutex
	sessions map[string]*ActivitySession
}

func NewSessionManager(store activity.RecordStore) *SessionManager {
	return &SessionManager{
		store:    store,
		sessions: make(map[string]*ActivitySession),
	}
}

// Start creates a new active session for the user.
func (m *SessionManager) Start(userID string) *ActivitySession {
	s := newActivitySession(userID, m.store)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	middleware.SessionsStarted.Inc()
	log.Printf("[Session %s] started for user %s", s.ID, userID)
	return s
}

// Get returns a live session by id.
func (m *SessionManager) Get(sessionID string) (*ActivitySession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// Terminate ends the session and removes it from the live set. Returns
// ErrSessionNotFound when the session was already terminated, which
// callers treat as the idempotent no-op case.
func (m *SessionManager) Terminate(ctx context.Context, sessionID string) (SessionResult, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return SessionResult{}, ErrSessionNotFound
	}
	return s.Terminate(ctx), nil
}

// TerminateAll flushes every live session. Called on server shutdown so
// in-flight counts are not lost with the process.
func (m *SessionManager) TerminateAll(ctx context.Context) {
	m.mu.Lock()
	stale := make([]*ActivitySession, 0, len(m.sessions))
	for id, s := range m.sessions {
		stale = append(stale, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Terminate(ctx)
	}
}

// ReapIdle force-terminates abandoned sessions on a fixed cadence. Run
// as a goroutine from main.
func (m *SessionManager) ReapIdle() {
	for {
		time.Sleep(reapInterval)
		cutoff := time.Now().Add(-sessionIdleTimeout)

		m.mu.Lock()
		var stale []*ActivitySession
		for id, s := range m.sessions {
			if s.lastActivity().Before(cutoff) {
				stale = append(stale, s)
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()

		for _, s := range stale {
			log.Printf("[Session %s] idle past deadline, force terminating", s.ID)
			ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
			s.Terminate(ctx)
			cancel()
		}
	}
}
