package ingest

import "context"

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Repository stores content-addressed documents.
type Repository interface {
	Upsert(ctx context.Context, text string, vector []float32) (string, error)
}

// Tracker records experiment parameters and metrics, best-effort.
type Tracker interface {
	LogParameters(ctx context.Context, params map[string]string)
	LogMetric(ctx context.Context, name string, value float64)
}

// Collector records analytics events, best-effort.
type Collector interface {
	Track(ctx context.Context, event string, payload map[string]any)
}
