// Package ingest embeds a text and upserts it into the vector store under a
// content-addressed id.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/knowsprint/knowsprint/internal/metrics"
)

const flowName = "ingest"

// Result is the outcome of one ingest call.
type Result struct {
	ID      string
	Seconds float64
}

// Service handles the ingest flow.
type Service struct {
	embed     Embedder
	repo      Repository
	tracker   Tracker
	collector Collector
}

// New creates an ingest service.
func New(embed Embedder, repo Repository, tracker Tracker, collector Collector) *Service {
	return &Service{embed: embed, repo: repo, tracker: tracker, collector: collector}
}

// Ingest embeds text and stores it. Tracking and analytics are side channels
// and cannot fail the call.
func (s *Service) Ingest(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	vector, err := s.embed.Embed(ctx, text)
	if err != nil {
		metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
		return nil, fmt.Errorf("embed text: %w", err)
	}

	id, err := s.repo.Upsert(ctx, text, vector)
	if err != nil {
		metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
		return nil, fmt.Errorf("upsert document: %w", err)
	}

	seconds := time.Since(start).Seconds()
	metrics.FlowDuration.WithLabelValues(flowName).Observe(seconds)
	metrics.FlowRequestsTotal.WithLabelValues(flowName, "success").Inc()

	s.tracker.LogParameters(ctx, map[string]string{"embed_model": s.embed.Model()})
	s.tracker.LogMetric(ctx, "ingest_seconds", seconds)
	s.collector.Track(ctx, "ingest", map[string]any{
		"id":      id,
		"latency": seconds,
	})

	return &Result{ID: id, Seconds: seconds}, nil
}
