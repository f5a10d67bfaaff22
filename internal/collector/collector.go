// Package collector ships product analytics events to an external event
// collector. Delivery is best-effort: a failed or unconfigured collector
// never affects the calling flow.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 3 * time.Second

// Collector records named analytics events with an open payload.
type Collector interface {
	Track(ctx context.Context, event string, payload map[string]any)
}

// Config holds collector endpoint settings. An empty URL selects the
// local logging collector.
type Config struct {
	URL    string
	APIKey string
	Logger *zap.Logger
}

// New creates a collector. Without a URL events go to the local logger.
func New(cfg *Config) Collector {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URL == "" {
		return &local{logger: logger}
	}
	return &remote{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// local logs events instead of shipping them.
type local struct {
	logger *zap.Logger
}

func (c *local) Track(_ context.Context, event string, payload map[string]any) {
	c.logger.Debug("analytics event",
		zap.String("event", event),
		zap.Any("payload", payload),
	)
}

// remote POSTs events to the collector endpoint.
type remote struct {
	url    string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

func (c *remote) Track(ctx context.Context, event string, payload map[string]any) {
	if err := c.send(ctx, event, payload); err != nil {
		c.logger.Debug("analytics event delivery failed",
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func (c *remote) send(ctx context.Context, event string, payload map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post event: status %d: %s", resp.StatusCode, b)
	}
	return nil
}
