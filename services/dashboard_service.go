package services

import (
	"context"
	"time"

	"flexFitAPI/internal/activity"
	"flexFitAPI/internal/daywindow"
)

// DashboardService reduces persisted activity records into per-day
// summary metrics. It only reads; the record store is append-only and
// all mutation goes through the session lifecycle.
type DashboardService struct {
	store activity.RecordStore
}

func NewDashboardService(store activity.RecordStore) *DashboardService {
	return &DashboardService{store: store}
}

// Summarize fetches every record in the window for the user and reduces
// them to a single daily summary. An empty day is a valid zero summary,
// not an error. A store failure is propagated unchanged so the caller
// can render a distinguishable "could not load" state instead of a
// silent zero-activity day.
func (s *DashboardService) Summarize(ctx context.Context, userID string, window daywindow.Window) (*activity.DailySummary, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	records, err := s.store.QueryRange(ctx, userID, window.StartUTC, window.EndUTC)
	if err != nil {
		return nil, err
	}

	totalCount := 0
	for _, rec := range records {
		totalCount += rec.Count
	}

	return &activity.DailySummary{
		Window:     window,
		TotalCount: totalCount,
		// Sum first, floor once. Two 5-rep sessions are worth one
		// point, not zero.
		TotalPoints: activity.PointsFor(totalCount),
	}, nil
}

// SelectableDays returns the dashboard's 7-day selector strip around
// the given instant.
func (s *DashboardService) SelectableDays(now time.Time) []daywindow.Window {
	return daywindow.Selectable(now)
}

// LifetimeTotals returns the user's all-time count and flexpoints,
// used as the spendable balance on the rewards screen.
func (s *DashboardService) LifetimeTotals(ctx context.Context, userID string) (int, int, error) {
	records, err := s.store.QueryAll(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	totalCount := 0
	for _, rec := range records {
		totalCount += rec.Count
	}
	return totalCount, activity.PointsFor(totalCount), nil
}
