package activity

import (
	"context"
	"time"

	"flexFitAPI/internal/daywindow"
)

// CountPerPoint is the pushup-to-flexpoint exchange rate.
const CountPerPoint = 10

// PointsFor derives flexpoints from a repetition count. Always floor,
// never rounded.
func PointsFor(count int) int {
	return count / CountPerPoint
}

// Record is one durable write representing the outcome of exactly one
// counting session. Immutable once written. RecordedAt is the UTC
// midnight of the day the activity is attributed to, not the wall-clock
// instant of the write.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Count      int       `json:"pushup_count"`
	Points     int       `json:"flexpoints"`
	RecordedAt time.Time `json:"lastUpdated"`
}

// DailySummary is the reduced metrics for all records in one window.
// TotalPoints is recomputed from the summed count so that several small
// sessions in one day do not lose points to per-record flooring.
type DailySummary struct {
	Window      daywindow.Window `json:"window"`
	TotalCount  int              `json:"total_count"`
	TotalPoints int              `json:"total_points"`
}

// RecordStore is the append-only persistence surface for activity
// records. Implementations must offer read-after-write consistency for
// a single user's writes: a QueryRange issued after an Append for the
// same user observes that record.
type RecordStore interface {
	// Append durably writes one record and returns its id. Fails with
	// *PersistenceError when the remote collaborator is unreachable or
	// rejects the write; never partially writes.
	Append(ctx context.Context, userID string, count, points int, recordedAt time.Time) (string, error)

	// QueryRange returns every record for userID whose RecordedAt lies
	// in the inclusive [startUTC, endUTC] bound. An empty day is a nil
	// error and an empty slice, never an error. Fails with *QueryError
	// on collaborator unavailability.
	QueryRange(ctx context.Context, userID string, startUTC, endUTC time.Time) ([]Record, error)

	// QueryAll returns every record for userID, for lifetime totals.
	QueryAll(ctx context.Context, userID string) ([]Record, error)
}

// PersistenceError marks a failed terminal write. Policy is
// report-and-continue: the session lifecycle never blocks on it.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "activity record write failed: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// QueryError marks a failed aggregation query. Callers must surface it
// as a distinguishable "could not load" state, never as a zero-activity
// day.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return "activity record query failed: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }
