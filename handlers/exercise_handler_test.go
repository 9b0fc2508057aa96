package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexFitAPI/internal/exercise"
)

func TestGetExercises(t *testing.T) {
	rr := httptest.NewRecorder()
	NewExerciseHandler().GetExercises(rr, httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var catalog []exercise.Exercise
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &catalog))
	require.NotEmpty(t, catalog)

	trackable := 0
	for _, e := range catalog {
		if e.Trackable {
			trackable++
		}
	}
	assert.NotZero(t, trackable, "at least one trackable exercise")
}
