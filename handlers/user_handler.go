package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"

	"flexFitAPI/middleware"
)

// UserHandler serves the profile screen straight from Clerk. The
// service keeps no user table of its own; the identity provider is the
// source of truth and only the id is ever attached to activity data.
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

type profileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	usr, err := clerkuser.Get(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	resp := profileResponse{ID: usr.ID}
	if usr.FirstName != nil {
		resp.DisplayName = *usr.FirstName
	}
	if usr.LastName != nil {
		resp.DisplayName = strings.TrimSpace(resp.DisplayName + " " + *usr.LastName)
	}
	if resp.DisplayName == "" && usr.Username != nil {
		resp.DisplayName = *usr.Username
	}
	if usr.ImageURL != nil {
		resp.AvatarURL = *usr.ImageURL
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
