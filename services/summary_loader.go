package services

import (
	"context"
	"sync"

	"flexFitAPI/internal/activity"
	"flexFitAPI/internal/daywindow"
)

// Summarizer is the slice of the dashboard the loader needs.
type Summarizer interface {
	Summarize(ctx context.Context, userID string, window daywindow.Window) (*activity.DailySummary, error)
}

// SummaryLoader serializes day selection for one dashboard viewer.
// Every Select bumps a generation token; a summarize result is applied
// only while its generation is still current, so the summary on display
// always belongs to the last selected window, never to whichever
// request happened to resolve first.
type SummaryLoader struct {
	summarizer Summarizer
	userID     string

	mu       sync.Mutex
	gen      uint64
	loading  bool
	selected daywindow.Window
	summary  *activity.DailySummary
	err      error
}

func NewSummaryLoader(summarizer Summarizer, userID string) *SummaryLoader {
	return &SummaryLoader{
		summarizer: summarizer,
		userID:     userID,
	}
}

// Select switches the viewer to a window and kicks off its summary
// query. Any in-flight query for a previously selected window keeps
// running but its result is dropped on arrival.
func (l *SummaryLoader) Select(ctx context.Context, window daywindow.Window) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.loading = true
	l.selected = window
	l.summary = nil
	l.err = nil
	l.mu.Unlock()

	go func() {
		summary, err := l.summarizer.Summarize(ctx, l.userID, window)

		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen {
			// Superseded selection; stale result, drop it.
			return
		}
		l.loading = false
		l.summary = summary
		l.err = err
	}()
}

// Current returns the state to display: the selected window, its
// summary once loaded, whether a load is still in flight, and the load
// error if the query failed.
func (l *SummaryLoader) Current() (daywindow.Window, *activity.DailySummary, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selected, l.summary, l.loading, l.err
}

// SummaryLoaderRegistry hands out one loader per viewer, so every
// request a user makes sees the same selection state.
type SummaryLoaderRegistry struct {
	summarizer Summarizer

	mu      sync.Mutex
	loaders map[string]*SummaryLoader
}

func NewSummaryLoaderRegistry(summarizer Summarizer) *SummaryLoaderRegistry {
	return &SummaryLoaderRegistry{
		summarizer: summarizer,
		loaders:    make(map[string]*SummaryLoader),
	}
}

// For returns the viewer's loader, creating it on first use.
func (r *SummaryLoaderRegistry) For(userID string) *SummaryLoader {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.loaders[userID]
	if !ok {
		l = NewSummaryLoader(r.summarizer, userID)
		r.loaders[userID] = l
	}
	return l
}
