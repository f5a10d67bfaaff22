// Package train fits a logistic classifier over embedded example texts and
// reports held-out accuracy.
package train

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/knowsprint/knowsprint/internal/classifier"
	"github.com/knowsprint/knowsprint/internal/domain"
	"github.com/knowsprint/knowsprint/internal/metrics"
)

const flowName = "train"

const (
	// minExamples is the smallest set that still yields a non-degenerate
	// train/test partition at the fixed split fraction.
	minExamples   = 4
	testFraction  = 0.3
	splitSeed     = 42
	maxIterations = 200
)

// Report is the outcome of one training call.
type Report struct {
	Seconds  float64
	Accuracy float64
}

// Service handles the train flow.
type Service struct {
	embed     Embedder
	tracker   Tracker
	collector Collector
	logger    *zap.Logger
}

// New creates a train service.
func New(embed Embedder, tracker Tracker, collector Collector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, tracker: tracker, collector: collector, logger: logger}
}

// Train embeds the labelled examples, fits a logistic classifier on a 70/30
// reproducible split, and reports held-out accuracy. Undersized inputs return
// a validation error, not an internal failure. The fitted model is persisted
// to a temporary directory and uploaded to the tracker best-effort.
func (s *Service) Train(ctx context.Context, examples []domain.LabelledExample) (*Report, error) {
	if len(examples) == 0 {
		return nil, domain.NewValidation("provide labelledPairs [{text,label}]")
	}
	if len(examples) < minExamples {
		return nil, domain.NewValidation(
			fmt.Sprintf("need at least %d labelled examples, got %d", minExamples, len(examples)))
	}

	features := make([][]float64, 0, len(examples))
	labels := make([]int, 0, len(examples))
	for _, ex := range examples {
		vec, err := s.embed.Embed(ctx, ex.Text)
		if err != nil {
			metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
			return nil, fmt.Errorf("embed example: %w", err)
		}
		features = append(features, toFloat64(vec))
		labels = append(labels, ex.Label)
	}

	trainX, trainY, testX, testY := classifier.Split(features, labels, testFraction, splitSeed)

	start := time.Now()
	model, err := classifier.Fit(trainX, trainY, maxIterations)
	if err != nil {
		metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
		return nil, fmt.Errorf("fit classifier: %w", err)
	}
	seconds := time.Since(start).Seconds()

	accuracy, err := model.Accuracy(testX, testY)
	if err != nil {
		metrics.FlowRequestsTotal.WithLabelValues(flowName, "error").Inc()
		return nil, fmt.Errorf("evaluate classifier: %w", err)
	}

	metrics.FlowDuration.WithLabelValues(flowName).Observe(seconds)
	metrics.FlowRequestsTotal.WithLabelValues(flowName, "success").Inc()

	s.tracker.LogParameters(ctx, map[string]string{
		"model":       "logistic_regression",
		"embed_model": s.embed.Model(),
	})
	s.tracker.LogMetric(ctx, "train_seconds", seconds)
	s.tracker.LogMetric(ctx, "accuracy", accuracy)
	s.saveAndUpload(ctx, model)

	s.collector.Track(ctx, "train", map[string]any{
		"latency":  seconds,
		"accuracy": accuracy,
	})

	return &Report{Seconds: seconds, Accuracy: accuracy}, nil
}

// saveAndUpload persists the model to a transient directory and ships it to
// the tracker. Both steps are best-effort.
func (s *Service) saveAndUpload(ctx context.Context, model *classifier.Model) {
	dir, err := os.MkdirTemp("", "knowsprint-model-*")
	if err != nil {
		s.logger.Warn("model persistence skipped", zap.Error(err))
		return
	}
	path, err := model.Save(dir)
	if err != nil {
		s.logger.Warn("model persistence failed", zap.Error(err))
		return
	}
	s.tracker.LogAsset(ctx, path)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
