package train

import "context"

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbedder) Model() string { return "test-model" }

type mockTracker struct {
	params  []map[string]string
	metrics map[string]float64
	assets  []string
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

func (m *mockTracker) LogAsset(_ context.Context, path string) {
	m.assets = append(m.assets, path)
}

type mockCollector struct {
	events   []string
	payloads []map[string]any
}

func (m *mockCollector) Track(_ context.Context, event string, payload map[string]any) {
	m.events = append(m.events, event)
	m.payloads = append(m.payloads, payload)
}
