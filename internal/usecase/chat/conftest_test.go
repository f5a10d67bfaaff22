package chat

import (
	"context"

	"github.com/knowsprint/knowsprint/internal/domain"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

type mockRepo struct {
	searchFn func(ctx context.Context, vector []float32, k int) ([]domain.SearchHit, error)
}

func (m *mockRepo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.SearchHit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, k)
	}
	return nil, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, messages []domain.ChatMessage) string
}

func (m *mockGenerator) Generate(ctx context.Context, messages []domain.ChatMessage) string {
	if m.generateFn != nil {
		return m.generateFn(ctx, messages)
	}
	return "generated reply"
}

type mockTracker struct {
	metrics map[string]float64
}

func (m *mockTracker) LogMetric(_ context.Context, name string, value float64) {
	if m.metrics == nil {
		m.metrics = make(map[string]float64)
	}
	m.metrics[name] = value
}

type mockCollector struct {
	events []string
}

func (m *mockCollector) Track(_ context.Context, event string, _ map[string]any) {
	m.events = append(m.events, event)
}
