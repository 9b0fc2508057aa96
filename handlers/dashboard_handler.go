package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"flexFitAPI/internal/activity"
	"flexFitAPI/internal/daywindow"
	"flexFitAPI/middleware"
	"flexFitAPI/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	summaryLoaders   *services.SummaryLoaderRegistry
}

func NewDashboardHandler(dashboardService *services.DashboardService, summaryLoaders *services.SummaryLoaderRegistry) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		summaryLoaders:   summaryLoaders,
	}
}

// GetDays returns the 7-day selector strip around today.
func (h *DashboardHandler) GetDays(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetClerkID(r.Context()); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	respondWithJSON(w, http.StatusOK, h.dashboardService.SelectableDays(time.Now()))
}

// GetDailySummary aggregates the authenticated user's records for one
// UTC calendar day. A failed query is an explicit error response so the
// client can show "could not load" instead of a fake empty day.
func (h *DashboardHandler) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	window := daywindow.WindowFor(time.Now())
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		window = daywindow.WindowFor(day)
	}

	summary, err := h.dashboardService.Summarize(ctx, clerkID, window)
	if err != nil {
		middleware.DashboardQueryFailures.Inc()

		var queryErr *activity.QueryError
		if errors.As(err, &queryErr) {
			respondWithError(w, http.StatusBadGateway, "Could not load daily summary")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to build daily summary")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// SelectDay switches the viewer's dashboard selection to one day of the
// selector strip and kicks off its summary query. The summary arrives
// through GetSelectedSummary; a slow query for a previously selected
// day can never overwrite the newer selection.
func (h *DashboardHandler) SelectDay(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	window := daywindow.WindowFor(day)
	// The query intentionally outlives this request; its result lands
	// in the viewer's loader for the next GetSelectedSummary poll.
	h.summaryLoaders.For(clerkID).Select(context.Background(), window)

	respondWithJSON(w, http.StatusAccepted, map[string]interface{}{
		"window": window,
	})
}

// GetSelectedSummary returns the viewer's current selection state: the
// selected window, its summary once loaded, and whether the load is
// still in flight.
func (h *DashboardHandler) GetSelectedSummary(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	window, summary, loading, err := h.summaryLoaders.For(clerkID).Current()
	if err != nil {
		middleware.DashboardQueryFailures.Inc()

		var queryErr *activity.QueryError
		if errors.As(err, &queryErr) {
			respondWithError(w, http.StatusBadGateway, "Could not load daily summary")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to build daily summary")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"window":  window,
		"summary": summary,
		"loading": loading,
	})
}
