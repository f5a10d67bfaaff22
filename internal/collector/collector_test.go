package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestNew_LocalWithoutURL(t *testing.T) {
	c := New(&Config{Logger: zap.NewNop()})
	if _, ok := c.(*local); !ok {
		t.Fatalf("expected local collector, got %T", c)
	}

	// Must not panic.
	c.Track(context.Background(), "search", map[string]any{"q": "redis", "k": 5})
}

func TestRemote_Track(t *testing.T) {
	var got struct {
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ck-1" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(&Config{URL: srv.URL, APIKey: "ck-1", Logger: zap.NewNop()})
	c.Track(context.Background(), "ingest", map[string]any{"id": "abc", "latency": 0.12})

	if got.Event != "ingest" {
		t.Errorf("event = %q", got.Event)
	}
	if got.Payload["id"] != "abc" {
		t.Errorf("payload = %v", got.Payload)
	}
}

func TestRemote_FailureIsSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(&Config{URL: srv.URL, Logger: zap.NewNop()})

	// No panic, no error surfaced.
	c.Track(context.Background(), "chat", map[string]any{"latency": 0.5})
}

func TestRemote_UnreachableIsSilent(t *testing.T) {
	c := New(&Config{URL: "http://127.0.0.1:1", Logger: zap.NewNop()})
	c.Track(context.Background(), "train", map[string]any{"accuracy": 1.0})
}
