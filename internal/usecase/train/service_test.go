package train

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/knowsprint/knowsprint/internal/domain"
)

// separableExamples maps positive texts to one side of a plane and negative
// texts to the other, so the classifier has an easy job.
func separableExamples() ([]domain.LabelledExample, *mockEmbedder) {
	examples := []domain.LabelledExample{
		{Text: "pos one", Label: 1},
		{Text: "pos two", Label: 1},
		{Text: "pos three", Label: 1},
		{Text: "pos four", Label: 1},
		{Text: "pos five", Label: 1},
		{Text: "neg one", Label: 0},
		{Text: "neg two", Label: 0},
		{Text: "neg three", Label: 0},
		{Text: "neg four", Label: 0},
		{Text: "neg five", Label: 0},
	}
	embed := &mockEmbedder{
		embedFn: func(_ context.Context, text string) ([]float32, error) {
			if strings.HasPrefix(text, "pos") {
				return []float32{2, 0.1}, nil
			}
			return []float32{-2, -0.1}, nil
		},
	}
	return examples, embed
}

func TestTrain_Success(t *testing.T) {
	examples, embed := separableExamples()
	tracker := &mockTracker{}
	collector := &mockCollector{}

	svc := New(embed, tracker, collector, zap.NewNop())
	report, err := svc.Train(context.Background(), examples)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if report.Accuracy < 0 || report.Accuracy > 1 {
		t.Errorf("accuracy = %v, want [0,1]", report.Accuracy)
	}
	if report.Seconds < 0 {
		t.Errorf("seconds = %v", report.Seconds)
	}
	if embed.calls != len(examples) {
		t.Errorf("embed calls = %d, want %d", embed.calls, len(examples))
	}

	if len(tracker.params) != 1 || tracker.params[0]["model"] != "logistic_regression" {
		t.Errorf("tracker params = %v", tracker.params)
	}
	for _, name := range []string{"train_seconds", "accuracy"} {
		if _, ok := tracker.metrics[name]; !ok {
			t.Errorf("tracker metric %q missing, got %v", name, tracker.metrics)
		}
	}
	if len(tracker.assets) != 1 {
		t.Errorf("tracker assets = %v, want one manifest", tracker.assets)
	}

	if len(collector.events) != 1 || collector.events[0] != "train" {
		t.Fatalf("collector events = %v", collector.events)
	}
	if _, ok := collector.payloads[0]["accuracy"]; !ok {
		t.Errorf("event payload = %v", collector.payloads[0])
	}
}

func TestTrain_EmptyInputIsValidationError(t *testing.T) {
	embed := &mockEmbedder{}
	svc := New(embed, &mockTracker{}, &mockCollector{}, zap.NewNop())

	_, err := svc.Train(context.Background(), nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if embed.calls != 0 {
		t.Error("validation failure must not reach the embedder")
	}
}

func TestTrain_TooFewExamplesIsValidationError(t *testing.T) {
	embed := &mockEmbedder{}
	svc := New(embed, &mockTracker{}, &mockCollector{}, zap.NewNop())

	examples := []domain.LabelledExample{
		{Text: "a", Label: 0},
		{Text: "b", Label: 1},
		{Text: "c", Label: 0},
	}
	_, err := svc.Train(context.Background(), examples)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %v is not a ValidationError", err)
	}
	if !strings.Contains(verr.Msg, "4") {
		t.Errorf("message %q should name the minimum", verr.Msg)
	}
	if embed.calls != 0 {
		t.Error("validation failure must not reach the embedder")
	}
}

func TestTrain_EmbedFailure(t *testing.T) {
	examples, _ := separableExamples()
	embed := &mockEmbedder{
		embedFn: func(_ context.Context, _ string) ([]float32, error) {
			return nil, errors.New("provider down")
		},
	}
	svc := New(embed, &mockTracker{}, &mockCollector{}, zap.NewNop())

	_, err := svc.Train(context.Background(), examples)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrValidation) {
		t.Error("embedding failure is not a validation error")
	}
}

func TestTrain_SingleLabelFailsFit(t *testing.T) {
	examples := []domain.LabelledExample{
		{Text: "a", Label: 1},
		{Text: "b", Label: 1},
		{Text: "c", Label: 1},
		{Text: "d", Label: 1},
	}
	svc := New(&mockEmbedder{}, &mockTracker{}, &mockCollector{}, zap.NewNop())

	_, err := svc.Train(context.Background(), examples)
	if err == nil {
		t.Fatal("expected fit error for single-label input")
	}
	if errors.Is(err, domain.ErrValidation) {
		t.Error("fit failure is not a validation error")
	}
}
