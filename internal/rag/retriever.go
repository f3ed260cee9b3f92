package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"govgate/internal/logging"
	"govgate/internal/observability"
)

// DefaultTopK is the search result count when the caller passes k <= 0.
const DefaultTopK = 5

// HybridRetriever orchestrates ingestion into both indexes and fused search
// at query time. It owns tenant isolation: every operation requires a tenant
// id and both indexes partition by it.
type HybridRetriever struct {
	embedder Embedder
	vector   VectorIndex
	keyword  KeywordIndex
	fuser    Fuser
	metrics  *observability.Collector
	logger   logging.Logger
}

// NewHybridRetriever wires the retrieval engine. fuser defaults to UnionFuser
// and metrics may be nil.
func NewHybridRetriever(embedder Embedder, vector VectorIndex, keyword KeywordIndex, fuser Fuser, metrics *observability.Collector, logger logging.Logger) *HybridRetriever {
	if fuser == nil {
		fuser = UnionFuser{}
	}
	return &HybridRetriever{
		embedder: embedder,
		vector:   vector,
		keyword:  keyword,
		fuser:    fuser,
		metrics:  metrics,
		logger:   logging.OrNop(logger),
	}
}

// Ingest embeds the text and writes it to both indexes under a fresh id.
//
// The embedding step runs first, so its failure leaves no partial write. The
// index writes themselves are best-effort dual writes: a failure after the
// first write succeeded leaves the stores inconsistent and is surfaced to the
// caller rather than compensated.
func (r *HybridRetriever) Ingest(ctx context.Context, tenantID, text string, metadata map[string]string) (string, error) {
	start := time.Now()
	docID, err := r.ingest(ctx, tenantID, text, metadata)
	r.metrics.RecordRetrieval(ctx, "ingest", err, time.Since(start))
	return docID, err
}

func (r *HybridRetriever) ingest(ctx context.Context, tenantID, text string, metadata map[string]string) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant id is required")
	}
	if text == "" {
		return "", fmt.Errorf("document text is empty")
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed document: %w", err)
	}

	docID := uuid.NewString()

	if err := r.vector.Upsert(ctx, tenantID, docID, text, metadata, embedding); err != nil {
		return "", fmt.Errorf("vector index write: %w", err)
	}
	if err := r.keyword.Upsert(ctx, tenantID, docID, text, metadata); err != nil {
		// The vector write already landed; report the inconsistency instead
		// of hiding it.
		return "", fmt.Errorf("keyword index write (vector write already applied for %s): %w", docID, err)
	}

	r.logger.Debug("ingested document %s for tenant %s (%d chars)", docID, tenantID, len(text))
	return docID, nil
}

// Search embeds the query, fans out to both indexes and fuses the results.
// Returned values are raw document texts, ready to splice into a prompt as
// opaque context.
func (r *HybridRetriever) Search(ctx context.Context, tenantID, query string, k int) ([]string, error) {
	start := time.Now()
	results, err := r.search(ctx, tenantID, query, k)
	r.metrics.RecordRetrieval(ctx, "search", err, time.Since(start))
	return results, err
}

func (r *HybridRetriever) search(ctx context.Context, tenantID, query string, k int) ([]string, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var vectorHits, keywordHits []string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		vectorHits, err = r.vector.Query(groupCtx, tenantID, embedding, k)
		return err
	})
	group.Go(func() error {
		var err error
		keywordHits, err = r.keyword.Query(groupCtx, tenantID, query, k)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("index query: %w", err)
	}

	return r.fuser.Fuse(vectorHits, keywordHits, k), nil
}

// List enumerates every document stored for the tenant. The keyword index is
// the enumerable store; both indexes hold the same document set.
func (r *HybridRetriever) List(ctx context.Context, tenantID string) ([]DocumentInfo, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	return r.keyword.List(ctx, tenantID)
}
