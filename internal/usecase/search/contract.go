package search

import (
	"context"

	"github.com/knowsprint/knowsprint/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Repository retrieves nearest neighbors for a query vector.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.SearchHit, error)
}

// Tracker records experiment metrics, best-effort.
type Tracker interface {
	LogMetric(ctx context.Context, name string, value float64)
}

// Collector records analytics events, best-effort.
type Collector interface {
	Track(ctx context.Context, event string, payload map[string]any)
}
