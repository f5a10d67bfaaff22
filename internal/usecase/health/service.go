// Package health reports process liveness and collaborator reachability.
package health

import (
	"context"

	"github.com/knowsprint/knowsprint/internal/version"
)

// Collaborator states reported in the health body.
const (
	StateOK           = "ok"
	StateUnconfigured = "unconfigured"
	StateUnreachable  = "unreachable"
)

// Status is the health report. OK is always true while the process serves
// requests; degraded collaborators show up in the detail fields.
type Status struct {
	OK        bool   `json:"ok"`
	Version   string `json:"version"`
	Store     string `json:"store"`
	Embedding string `json:"embedding"`
}

// Service handles health checks.
type Service struct {
	store     Pinger
	embedding EmbeddingChecker
}

// New creates a health service. A nil store or embedding checker means the
// collaborator was never configured.
func New(store Pinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding}
}

// Check reports liveness. Collaborator problems are informational and do not
// flip OK.
func (s *Service) Check(ctx context.Context) Status {
	st := Status{OK: true, Version: version.Version, Store: StateOK, Embedding: StateOK}

	switch {
	case s.store == nil:
		st.Store = StateUnconfigured
	case s.store.Ping(ctx) != nil:
		st.Store = StateUnreachable
	}

	switch {
	case s.embedding == nil:
		st.Embedding = StateUnconfigured
	case s.embedding.HealthCheck(ctx) != nil:
		st.Embedding = StateUnreachable
	}
	return st
}
