package train

import "context"

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Tracker records experiment parameters, metrics, and assets, best-effort.
type Tracker interface {
	LogParameters(ctx context.Context, params map[string]string)
	LogMetric(ctx context.Context, name string, value float64)
	LogAsset(ctx context.Context, path string)
}

// Collector records analytics events, best-effort.
type Collector interface {
	Track(ctx context.Context, event string, payload map[string]any)
}
