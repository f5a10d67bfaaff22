package chi

import (
	"context"

	"github.com/knowsprint/knowsprint/internal/domain"
	chatuc "github.com/knowsprint/knowsprint/internal/usecase/chat"
	healthuc "github.com/knowsprint/knowsprint/internal/usecase/health"
	ingestuc "github.com/knowsprint/knowsprint/internal/usecase/ingest"
	searchuc "github.com/knowsprint/knowsprint/internal/usecase/search"
	trainuc "github.com/knowsprint/knowsprint/internal/usecase/train"
)

type mockIngest struct {
	fn func(ctx context.Context, text string) (*ingestuc.Result, error)
}

func (m *mockIngest) Ingest(ctx context.Context, text string) (*ingestuc.Result, error) {
	if m.fn != nil {
		return m.fn(ctx, text)
	}
	return &ingestuc.Result{ID: "doc-id", Seconds: 0.01}, nil
}

type mockSearch struct {
	fn func(ctx context.Context, q string, k int) (*searchuc.Result, error)
}

func (m *mockSearch) Search(ctx context.Context, q string, k int) (*searchuc.Result, error) {
	if m.fn != nil {
		return m.fn(ctx, q, k)
	}
	return &searchuc.Result{Seconds: 0.01}, nil
}

type mockChat struct {
	fn func(ctx context.Context, message string, k int) (*chatuc.Result, error)
}

func (m *mockChat) Chat(ctx context.Context, message string, k int) (*chatuc.Result, error) {
	if m.fn != nil {
		return m.fn(ctx, message, k)
	}
	return &chatuc.Result{Reply: "ok"}, nil
}

type mockTrain struct {
	fn func(ctx context.Context, examples []domain.LabelledExample) (*trainuc.Report, error)
}

func (m *mockTrain) Train(ctx context.Context, examples []domain.LabelledExample) (*trainuc.Report, error) {
	if m.fn != nil {
		return m.fn(ctx, examples)
	}
	return &trainuc.Report{Seconds: 0.5, Accuracy: 1}, nil
}

type mockHealth struct {
	status healthuc.Status
}

func (m *mockHealth) Check(context.Context) healthuc.Status {
	if m.status.Store == "" {
		return healthuc.Status{OK: true, Store: healthuc.StateOK, Embedding: healthuc.StateOK}
	}
	return m.status
}
