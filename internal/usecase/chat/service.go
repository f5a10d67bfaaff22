// Package chat implements retrieval-augmented generation: embed the message,
// retrieve context from the vector store, and generate a reply grounded in it.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knowsprint/knowsprint/internal/domain"
	"github.com/knowsprint/knowsprint/internal/metrics"
)

const flowName = "chat"

// DefaultK is the number of context hits retrieved when the caller does
// not ask for a specific count.
const DefaultK = 3

const systemPrompt = "You are a concise assistant. Use the provided context when helpful."

// Result is the outcome of one chat call.
type Result struct {
	Reply   string
	Context []domain.SearchHit
}

// Service handles the chat flow.
type Service struct {
	embed     Embedder
	repo      Repository
	generate  Generator
	tracker   Tracker
	collector Collector
}

// New creates a chat service.
func New(embed Embedder, repo Repository, generate Generator, tracker Tracker, collector Collector) *Service {
	return &Service{
		embed:     embed,
		repo:      repo,
		generate:  generate,
		tracker:   tracker,
		collector: collector,
	}
}

// Chat retrieves up to k context hits for message and generates a reply.
// Only embedding and retrieval can fail the call; generation degrades to a
// placeholder on its own.
func (s *Service) Chat(ctx context.Context, message string, k int) (*Result, error) {
	start := time.Now()

	vector, err := s.embed.Embed(ctx, message)
	if err != nil {
		metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
		return nil, fmt.Errorf("embed message: %w", err)
	}

	hits, err := s.repo.SearchKNN(ctx, vector, k)
	if err != nil {
		metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	reply := s.generate.Generate(ctx, buildPrompt(message, hits))

	seconds := time.Since(start).Seconds()
	metrics.FlowDuration.WithLabelValues(flowName).Observe(seconds)
	metrics.FlowRequestsTotal.WithLabelValues(flowName, "success").Inc()

	s.tracker.LogMetric(ctx, "chat_seconds", seconds)
	s.collector.Track(ctx, "chat", map[string]any{"latency": seconds})

	return &Result{Reply: reply, Context: hits}, nil
}

// buildPrompt assembles the two-message RAG prompt. Context hits become a
// bulleted block ahead of the user message.
func buildPrompt(message string, hits []domain.SearchHit) []domain.ChatMessage {
	bullets := make([]string, 0, len(hits))
	for _, h := range hits {
		bullets = append(bullets, "- "+h.Text)
	}
	contextBlock := strings.Join(bullets, "\n\n")

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("Context:\n%s\n\nUser message: %s", contextBlock, message),
		},
	}
}
