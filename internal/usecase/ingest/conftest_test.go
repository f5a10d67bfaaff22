package ingest

import "context"

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
	model   string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbedder) Model() string {
	if m.model != "" {
		return m.model
	}
	return "test-model"
}

type mockRepo struct {
	upsertFn func(ctx context.Context, text string, vector []float32) (string, error)
}

func (m *mockRepo) Upsert(ctx context.Context, text string, vector []float32) (string, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, text, vector)
	}
	return "doc-id", nil
}

type mockTracker struct {
	params  []map[string]string
	metrics map[string]float64
}

func (m *mockTracker) LogParameters(_ context.Context, params map[string]string) {
	m.params = append(m.params, params)
}

func (m *mockTracker) LogMetric(_ context.Context, name string, value float64) {
	if m.metrics == nil {
		m.metrics = make(map[string]float64)
	}
	m.metrics[name] = value
}

type mockCollector struct {
	events   []string
	payloads []map[string]any
}

func (m *mockCollector) Track(_ context.Context, event string, payload map[string]any) {
	m.events = append(m.events, event)
	m.payloads = append(m.payloads, payload)
}
