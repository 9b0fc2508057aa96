package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"flexFitAPI/middleware"
	"flexFitAPI/services"
)

type SessionHandler struct {
	manager *services.SessionManager
}

func NewSessionHandler(manager *services.SessionManager) *SessionHandler {
	return &SessionHandler{
		manager: manager,
	}
}

// StartSession opens a counting session for the authenticated user.
// This is the counting screen mounting.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	session := h.manager.Start(clerkID)

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"started_at": session.StartedAt,
	})
}

// Increment records one repetition on a running session.
func (h *SessionHandler) Increment(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	if err := session.Increment(); err != nil {
		respondWithError(w, http.StatusConflict, "Session already ended")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{
		"pushup_count": session.Count(),
		"flexpoints":   session.Points(),
	})
}

// GetSession returns the running count for the on-screen overlay.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.ownedSession(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":   session.ID,
		"pushup_count": session.Count(),
		"flexpoints":   session.Points(),
		"started_at":   session.StartedAt,
	})
}

// EndSession is the counting screen unmounting: it triggers the
// session's single terminal persistence attempt. Ending a session that
// is already gone is a no-op, so a retried DELETE never writes twice.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sessionID := mux.Vars(r)["sessionId"]

	if session, found := h.manager.Get(sessionID); found && session.UserID != clerkID {
		respondWithError(w, http.StatusForbidden, "Session belongs to another user")
		return
	}

	result, err := h.manager.Terminate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			respondWithJSON(w, http.StatusOK, map[string]string{"message": "Session already ended"})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to end session")
		return
	}

	if result.PersistFailed {
		// Report-and-continue: the screen is released either way, the
		// failed write is visible in the payload and the logs.
		log.Printf("EndSession Handler: session %s ended with a failed write", sessionID)
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *SessionHandler) ownedSession(w http.ResponseWriter, r *http.Request) (*services.ActivitySession, bool) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return nil, false
	}

	sessionID := mux.Vars(r)["sessionId"]
	session, found := h.manager.Get(sessionID)
	if !found {
		respondWithError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	if session.UserID != clerkID {
		respondWithError(w, http.StatusForbidden, "Session belongs to another user")
		return nil, false
	}
	return session, true
}
