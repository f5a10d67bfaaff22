package search

import (
	"context"
	"errors"
	"testing"

	"github.com/knowsprint/knowsprint/internal/domain"
)

func TestSearch_Success(t *testing.T) {
	var gotK int
	repo := &mockRepo{
		searchFn: func(_ context.Context, _ []float32, k int) ([]domain.SearchHit, error) {
			gotK = k
			return []domain.SearchHit{
				{Text: "first", Score: 0.9},
				{Text: "second", Score: 0.5},
			}, nil
		},
	}
	tracker := &mockTracker{}
	collector := &mockCollector{}

	svc := New(&mockEmbedder{}, repo, tracker, collector)
	res, err := svc.Search(context.Background(), "vector database", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotK != 3 {
		t.Errorf("k = %d, want 3", gotK)
	}
	if len(res.Hits) != 2 || res.Hits[0].Score < res.Hits[1].Score {
		t.Errorf("unexpected hits %+v", res.Hits)
	}

	if _, ok := tracker.metrics["search_seconds"]; !ok {
		t.Errorf("tracker metrics = %v", tracker.metrics)
	}
	if len(collector.events) != 1 || collector.events[0] != "search" {
		t.Fatalf("collector events = %v", collector.events)
	}
	p := collector.payloads[0]
	if p["q"] != "vector database" || p["k"] != 3 || p["hits"] != 2 {
		t.Errorf("event payload = %v", p)
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	svc := New(&mockEmbedder{}, &mockRepo{}, &mockTracker{}, &mockCollector{})

	res, err := svc.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("empty store should not error: %v", err)
	}
	if len(res.Hits) != 0 {
		t.Errorf("hits = %v, want none", res.Hits)
	}
}

func TestSearch_EmbedFailure(t *testing.T) {
	embed := &mockEmbedder{
		embedFn: func(_ context.Context, _ string) ([]float32, error) {
			return nil, errors.New("provider down")
		},
	}
	svc := New(embed, &mockRepo{}, &mockTracker{}, &mockCollector{})

	if _, err := svc.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_StoreFailure(t *testing.T) {
	repo := &mockRepo{
		searchFn: func(_ context.Context, _ []float32, _ int) ([]domain.SearchHit, error) {
			return nil, domain.ErrStoreUnconfigured
		},
	}
	svc := New(&mockEmbedder{}, repo, &mockTracker{}, &mockCollector{})

	_, err := svc.Search(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrStoreUnconfigured) {
		t.Errorf("error = %v, want ErrStoreUnconfigured", err)
	}
}
