// Package search embeds a query and retrieves the nearest stored documents.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/knowsprint/knowsprint/internal/domain"
	"github.com/knowsprint/knowsprint/internal/metrics"
)

const flowName = "search"

// DefaultK is the number of hits returned when the caller does not ask
// for a specific count.
const DefaultK = 5

// Result is the outcome of one search call.
type Result struct {
	Hits    []domain.SearchHit
	Seconds float64
}

// Service handles the search flow.
type Service struct {
	embed     Embedder
	repo      Repository
	tracker   Tracker
	collector Collector
}

// New creates a search service.
func New(embed Embedder, repo Repository, tracker Tracker, collector Collector) *Service {
	return &Service{embed: embed, repo: repo, tracker: tracker, collector: collector}
}

// Search returns up to k hits nearest to q, ordered by non-increasing score.
// An empty store is not an error.
func (s *Service) Search(ctx context.Context, q string, k int) (*Result, error) {
	start := time.Now()

	vector, err := s.embed.Embed(ctx, q)
	if err != nil {
		metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.repo.SearchKNN(ctx, vector, k)
	if err != nil {
		metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
		return nil, fmt.Errorf("search knn: %w", err)
	}

	seconds := time.Since(start).Seconds()
	metrics.FlowDuration.WithLabelValues(flowName).Observe(seconds)
	metrics.FlowRequestsTotal.WithLabelValues(flowName, "success").Inc()

	s.tracker.LogMetric(ctx, "search_seconds", seconds)
	s.collector.Track(ctx, "search", map[string]any{
		"q":       q,
		"k":       k,
		"latency": seconds,
		"hits":    len(hits),
	})

	return &Result{Hits: hits, Seconds: seconds}, nil
}
