package health

import "context"

// Pinger checks vector-store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding-provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
