package handlers

import (
	"net/http"

	"flexFitAPI/internal/exercise"
)

type ExerciseHandler struct{}

func NewExerciseHandler() *ExerciseHandler {
	return &ExerciseHandler{}
}

// GetExercises serves the static home-screen catalog.
func (h *ExerciseHandler) GetExercises(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, exercise.Catalog())
}
