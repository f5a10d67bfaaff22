// Package document stores content-addressed documents in the vector store
// and retrieves nearest neighbors for a query vector.
package document

import (
	"context"
	"crypto/sha1" //nolint:gosec // content addressing, not cryptography
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/knowsprint/knowsprint/internal/db"
	"github.com/knowsprint/knowsprint/internal/db/redis"
	"github.com/knowsprint/knowsprint/internal/domain"
)

const (
	fieldContent = "__content"
	fieldVector  = "vector"

	hnswM           = 32
	hnswEFConstruct = 400
)

// store is the consumer interface for document operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the vector-store side of the ingest, search, and chat flows.
// A nil store means the database address was never configured; every call then
// fails with domain.ErrStoreUnconfigured.
type Repo struct {
	store     store
	dim       int
	keyPrefix string

	mu      sync.Mutex
	ensured bool
}

// New creates a document repository over the given store. dim is the fixed
// embedding dimension; it is baked into the index schema on first creation.
func New(s store, dim int, keyPrefix string) *Repo {
	return &Repo{store: s, dim: dim, keyPrefix: keyPrefix}
}

// Unconfigured creates a repository with no backing store.
func Unconfigured() *Repo {
	return &Repo{}
}

func (r *Repo) indexName() string { return r.keyPrefix + "documents:idx" }
func (r *Repo) docPrefix() string { return r.keyPrefix + "documents:" }

// EnsureSchema creates the document index if it does not exist yet.
// Idempotent: an existing index (any racer's) is success.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if r.store == nil {
		return domain.ErrStoreUnconfigured
	}

	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.indexName(),
		Prefixes: []string{r.docPrefix()},
		Fields: []db.IndexField{
			{Name: fieldContent, Type: db.IndexFieldText},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           hnswM,
				VectorEFConstruct: hnswEFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// ensureSchemaOnce runs EnsureSchema at most once per process, retrying on
// failure so a store that comes up late does not wedge the repository.
func (r *Repo) ensureSchemaOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensured {
		return nil
	}
	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}
	r.ensured = true
	return nil
}

// Upsert writes (text, vector) under a content-addressed id: the SHA-1 hex of
// the text. The same text always maps to the same key, so re-ingesting
// overwrites instead of duplicating.
func (r *Repo) Upsert(ctx context.Context, text string, vector []float32) (string, error) {
	if r.store == nil {
		return "", domain.ErrStoreUnconfigured
	}

	if err := r.ensureSchemaOnce(ctx); err != nil {
		return "", err
	}

	id := ContentID(text)
	fields := map[string]string{
		fieldContent: text,
		fieldVector:  redis.VectorToBytes(vector),
	}
	if err := r.store.HSet(ctx, r.docPrefix()+id, fields); err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}
	return id, nil
}

// SearchKNN returns up to k hits nearest to the query vector, ordered by
// non-increasing score. An empty store yields an empty slice, not an error.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.SearchHit, error) {
	if r.store == nil {
		return nil, domain.ErrStoreUnconfigured
	}

	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldContent, "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, domain.SearchHit{
			Text:  entry.Fields[fieldContent],
			Score: entry.Score,
		})
	}
	return hits, nil
}

// ContentID derives the content-addressed document id from text.
func ContentID(text string) string {
	sum := sha1.Sum([]byte(text)) //nolint:gosec // content addressing, not cryptography
	return hex.EncodeToString(sum[:])
}
