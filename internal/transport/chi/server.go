// Package chi exposes the four orchestration flows over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/knowsprint/knowsprint/internal/domain"
	logpkg "github.com/knowsprint/knowsprint/internal/logger"
	chatuc "github.com/knowsprint/knowsprint/internal/usecase/chat"
	healthuc "github.com/knowsprint/knowsprint/internal/usecase/health"
	ingestuc "github.com/knowsprint/knowsprint/internal/usecase/ingest"
	searchuc "github.com/knowsprint/knowsprint/internal/usecase/search"
	trainuc "github.com/knowsprint/knowsprint/internal/usecase/train"
)

// IngestService runs the ingest flow.
type IngestService interface {
	Ingest(ctx context.Context, text string) (*ingestuc.Result, error)
}

// SearchService runs the search flow.
type SearchService interface {
	Search(ctx context.Context, q string, k int) (*searchuc.Result, error)
}

// ChatService runs the chat flow.
type ChatService interface {
	Chat(ctx context.Context, message string, k int) (*chatuc.Result, error)
}

// TrainService runs the train flow.
type TrainService interface {
	Train(ctx context.Context, examples []domain.LabelledExample) (*trainuc.Report, error)
}

// HealthService reports process liveness.
type HealthService interface {
	Check(ctx context.Context) healthuc.Status
}

// Server routes HTTP requests into the flow services.
type Server struct {
	ingest IngestService
	search SearchService
	chat   ChatService
	train  TrainService
	health HealthService
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest IngestService,
	search SearchService,
	chat ChatService,
	train TrainService,
	health HealthService,
) *Server {
	return &Server{
		ingest: ingest,
		search: search,
		chat:   chat,
		train:  train,
		health: health,
	}
}

// Routes mounts all endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Post("/ingest", s.Ingest)
	r.Get("/search", s.Search)
	r.Post("/chat", s.Chat)
	r.Post("/train", s.Train)
	r.Handle("/metrics", promhttp.Handler())
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check(r.Context()))
}

type ingestRequest struct {
	Text string `json:"text"`
}

type ingestResponse struct {
	OK      bool    `json:"ok"`
	ID      string  `json:"id"`
	Seconds float64 `json:"seconds"`
}

// Ingest handles POST /ingest.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeDetail(w, http.StatusBadRequest, "text is required")
		return
	}

	res, err := s.ingest.Ingest(r.Context(), req.Text)
	if err != nil {
		s.flowError(w, r, "Ingest", err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{OK: true, ID: res.ID, Seconds: res.Seconds})
}

type searchResponse struct {
	Results []domain.SearchHit `json:"results"`
	Seconds float64            `json:"seconds"`
}

// Search handles GET /search?q=&k=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeDetail(w, http.StatusBadRequest, "q is required")
		return
	}

	k, err := parseK(r.URL.Query().Get("k"), searchuc.DefaultK)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), q, k)
	if err != nil {
		s.flowError(w, r, "Search", err)
		return
	}

	hits := res.Hits
	if hits == nil {
		hits = []domain.SearchHit{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits, Seconds: res.Seconds})
}

type chatRequest struct {
	Message string `json:"message"`
	K       *int   `json:"k"`
}

type chatResponse struct {
	Reply   string             `json:"reply"`
	Context []domain.SearchHit `json:"context"`
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeDetail(w, http.StatusBadRequest, "message is required")
		return
	}

	k := chatuc.DefaultK
	if req.K != nil {
		k = *req.K
	}
	if k < 1 {
		writeDetail(w, http.StatusBadRequest, "k must be a positive integer")
		return
	}

	res, err := s.chat.Chat(r.Context(), req.Message, k)
	if err != nil {
		s.flowError(w, r, "Chat", err)
		return
	}

	hits := res.Context
	if hits == nil {
		hits = []domain.SearchHit{}
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: res.Reply, Context: hits})
}

type trainRequest struct {
	LabelledPairs []domain.LabelledExample `json:"labelledPairs"`
}

type trainResponse struct {
	OK       bool    `json:"ok"`
	Seconds  float64 `json:"seconds"`
	Accuracy float64 `json:"accuracy"`
}

type trainRejection struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

// Train handles POST /train. Undersized inputs are rejected with a normal
// 200 response carrying ok=false, not an error status.
func (s *Server) Train(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, err := s.train.Train(r.Context(), req.LabelledPairs)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusOK, trainRejection{OK: false, Msg: verr.Msg})
			return
		}
		s.flowError(w, r, "Training", err)
		return
	}

	writeJSON(w, http.StatusOK, trainResponse{
		OK:       true,
		Seconds:  report.Seconds,
		Accuracy: report.Accuracy,
	})
}

// parseK parses the k query parameter, applying the flow default when absent.
func parseK(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 {
		return 0, errors.New("k must be a positive integer")
	}
	return k, nil
}

// flowError translates an unhandled flow failure into the 500 contract,
// logging through the request-scoped logger so the entry carries the
// request id.
func (s *Server) flowError(w http.ResponseWriter, r *http.Request, flow string, err error) {
	logpkg.FromContext(r.Context()).Error("flow failed", zap.String("flow", flow), zap.Error(err))
	writeDetail(w, http.StatusInternalServerError, flow+" failed: "+err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
