// Package tracker records experiment runs (parameters, metrics, assets)
// against an external tracking server. All calls are best-effort: tracking
// failures are logged at debug level and never surface to the caller.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 3 * time.Second

// Tracker records run parameters, metrics, and file assets.
type Tracker interface {
	LogParameters(ctx context.Context, params map[string]string)
	LogMetric(ctx context.Context, name string, value float64)
	LogAsset(ctx context.Context, path string)
}

// Config holds tracking server settings. An empty APIKey disables tracking.
type Config struct {
	BaseURL   string
	APIKey    string
	Workspace string
	Project   string
	Logger    *zap.Logger
}

// New creates a tracker. Without an API key it returns a no-op tracker so
// flows never have to check whether tracking is enabled.
func New(cfg *Config) Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" || cfg.BaseURL == "" {
		logger.Debug("experiment tracking disabled, no API key configured")
		return &noop{}
	}
	return &remote{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		workspace: cfg.Workspace,
		project:   cfg.Project,
		client:    &http.Client{Timeout: requestTimeout},
		logger:    logger,
	}
}

type noop struct{}

func (*noop) LogParameters(context.Context, map[string]string) {}
func (*noop) LogMetric(context.Context, string, float64)       {}
func (*noop) LogAsset(context.Context, string)                 {}

// remote talks to the tracking server over its REST API. A run is created
// lazily on the first logged value and reused for the process lifetime.
type remote struct {
	baseURL   string
	apiKey    string
	workspace string
	project   string
	client    *http.Client
	logger    *zap.Logger

	runOnce sync.Once
	runKey  string
}

// run returns the lazily created run key, or "" when creation failed.
func (t *remote) run(ctx context.Context) string {
	t.runOnce.Do(func() {
		body := map[string]string{
			"workspaceName": t.workspace,
			"projectName":   t.project,
		}
		var resp struct {
			RunKey string `json:"runKey"`
		}
		if err := t.postJSON(ctx, "/api/runs", body, &resp); err != nil {
			t.logger.Debug("tracker run creation failed", zap.Error(err))
			return
		}
		t.runKey = resp.RunKey
		t.logger.Debug("tracker run created", zap.String("run_key", t.runKey))
	})
	return t.runKey
}

func (t *remote) LogParameters(ctx context.Context, params map[string]string) {
	key := t.run(ctx)
	if key == "" {
		return
	}
	body := map[string]any{"runKey": key, "parameters": params}
	if err := t.postJSON(ctx, "/api/runs/parameters", body, nil); err != nil {
		t.logger.Debug("tracker log parameters failed", zap.Error(err))
	}
}

func (t *remote) LogMetric(ctx context.Context, name string, value float64) {
	key := t.run(ctx)
	if key == "" {
		return
	}
	body := map[string]any{"runKey": key, "name": name, "value": value}
	if err := t.postJSON(ctx, "/api/runs/metrics", body, nil); err != nil {
		t.logger.Debug("tracker log metric failed",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}

func (t *remote) LogAsset(ctx context.Context, path string) {
	key := t.run(ctx)
	if key == "" {
		return
	}
	if err := t.uploadAsset(ctx, key, path); err != nil {
		t.logger.Debug("tracker asset upload failed",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

func (t *remote) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, b)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (t *remote) uploadAsset(ctx context.Context, runKey, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("runKey", runKey); err != nil {
		return fmt.Errorf("write field: %w", err)
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy asset: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/runs/assets", &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload asset: status %d: %s", resp.StatusCode, b)
	}
	return nil
}
