// Package client is a typed HTTP client for the knowsprint API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 30 * time.Second

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey     string
	httpClient *http.Client
}

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithHTTPClient replaces the underlying HTTP client (timeouts, transport).
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}

// SearchHit is one retrieved document.
type SearchHit struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// LabelledExample is one training input.
type LabelledExample struct {
	Text  string `json:"text"`
	Label int    `json:"label"`
}

// IngestResult is the response of Ingest.
type IngestResult struct {
	OK      bool    `json:"ok"`
	ID      string  `json:"id"`
	Seconds float64 `json:"seconds"`
}

// SearchResult is the response of Search.
type SearchResult struct {
	Results []SearchHit `json:"results"`
	Seconds float64     `json:"seconds"`
}

// ChatResult is the response of Chat.
type ChatResult struct {
	Reply   string      `json:"reply"`
	Context []SearchHit `json:"context"`
}

// TrainResult is the response of Train. OK is false when the input was
// rejected by validation; Msg then explains why.
type TrainResult struct {
	OK       bool    `json:"ok"`
	Seconds  float64 `json:"seconds"`
	Accuracy float64 `json:"accuracy"`
	Msg      string  `json:"msg"`
}

// HealthResult is the response of Health.
type HealthResult struct {
	OK        bool   `json:"ok"`
	Version   string `json:"version"`
	Store     string `json:"store"`
	Embedding string `json:"embedding"`
}

// Client calls the knowsprint HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, apiKey: cfg.apiKey, hc: hc}
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*HealthResult, error) {
	var out HealthResult
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ingest calls POST /ingest.
func (c *Client) Ingest(ctx context.Context, text string) (*IngestResult, error) {
	var out IngestResult
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/ingest", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search calls GET /search. k <= 0 uses the server default.
func (c *Client) Search(ctx context.Context, q string, k int) (*SearchResult, error) {
	params := url.Values{"q": {q}}
	if k > 0 {
		params.Set("k", strconv.Itoa(k))
	}
	var out SearchResult
	if err := c.do(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat calls POST /chat. k <= 0 uses the server default.
func (c *Client) Chat(ctx context.Context, message string, k int) (*ChatResult, error) {
	body := map[string]any{"message": message}
	if k > 0 {
		body["k"] = k
	}
	var out ChatResult
	if err := c.do(ctx, http.MethodPost, "/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Train calls POST /train. A validation rejection comes back as a nil error
// with OK=false and Msg set.
func (c *Client) Train(ctx context.Context, examples []LabelledExample) (*TrainResult, error) {
	body := map[string]any{"labelledPairs": examples}
	var out TrainResult
	if err := c.do(ctx, http.MethodPost, "/train", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return parseAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &parsed) == nil && parsed.Detail != "" {
		apiErr.Detail = parsed.Detail
	} else {
		apiErr.Detail = string(data)
	}
	return apiErr
}
