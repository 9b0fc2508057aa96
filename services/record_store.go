package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"flexFitAPI/internal/activity"
)

// timestampLayout is the wire format of the lastUpdated field: an
// ISO-8601 UTC instant with millisecond precision. Range filters on
// this field rely on lexicographic order matching chronological order,
// which holds as long as every writer uses this exact layout.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FirestoreRecordStore persists one document per completed counting
// session in a Firestore collection. Documents are append-only; nothing
// in the service updates or deletes them.
type FirestoreRecordStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreRecordStore(client *firestore.Client, collection string) *FirestoreRecordStore {
	return &FirestoreRecordStore{
		client:     client,
		collection: collection,
	}
}

func (s *FirestoreRecordStore) Append(ctx context.Context, userID string, count, points int, recordedAt time.Time) (string, error) {
	if count < 0 {
		return "", fmt.Errorf("count must be non-negative, got %d", count)
	}
	if points != activity.PointsFor(count) {
		return "", fmt.Errorf("points %d does not match count %d", points, count)
	}

	doc, _, err := s.client.Collection(s.collection).Add(ctx, map[string]interface{}{
		"user_id":      userID,
		"pushup_count": count,
		"flexpoints":   points,
		"lastUpdated":  recordedAt.UTC().Format(timestampLayout),
	})
	if err != nil {
		return "", &activity.PersistenceError{Err: err}
	}

	return doc.ID, nil
}

func (s *FirestoreRecordStore) QueryRange(ctx context.Context, userID string, startUTC, endUTC time.Time) ([]activity.Record, error) {
	query := s.client.Collection(s.collection).
		Where("user_id", "==", userID).
		Where("lastUpdated", ">=", startUTC.UTC().Format(timestampLayout)).
		Where("lastUpdated", "<=", endUTC.UTC().Format(timestampLayout))

	return s.drain(query.Documents(ctx))
}

func (s *FirestoreRecordStore) QueryAll(ctx context.Context, userID string) ([]activity.Record, error) {
	query := s.client.Collection(s.collection).Where("user_id", "==", userID)
	return s.drain(query.Documents(ctx))
}

func (s *FirestoreRecordStore) drain(iter *firestore.DocumentIterator) ([]activity.Record, error) {
	defer iter.Stop()

	records := make([]activity.Record, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &activity.QueryError{Err: err}
		}

		rec, err := recordFromDoc(doc)
		if err != nil {
			// A malformed document is logged and skipped rather than
			// failing the whole day.
			log.Printf("RecordStore: skipping malformed document %s: %v", doc.Ref.ID, err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func recordFromDoc(doc *firestore.DocumentSnapshot) (activity.Record, error) {
	var raw struct {
		UserID      string `firestore:"user_id"`
		Count       int64  `firestore:"pushup_count"`
		Points      int64  `firestore:"flexpoints"`
		LastUpdated string `firestore:"lastUpdated"`
	}
	if err := doc.DataTo(&raw); err != nil {
		return activity.Record{}, fmt.Errorf("failed to decode record: %w", err)
	}

	recordedAt, err := time.Parse(timestampLayout, raw.LastUpdated)
	if err != nil {
		// Older clients wrote plain RFC3339.
		recordedAt, err = time.Parse(time.RFC3339, raw.LastUpdated)
		if err != nil {
			return activity.Record{}, fmt.Errorf("bad lastUpdated %q: %w", raw.LastUpdated, err)
		}
	}

	return activity.Record{
		ID:         doc.Ref.ID,
		UserID:     raw.UserID,
		Count:      int(raw.Count),
		Points:     int(raw.Points),
		RecordedAt: recordedAt.UTC(),
	}, nil
}
