package rag

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// VectorIndex is the per-tenant nearest-neighbor store. Every operation takes
// the tenant id as a mandatory partition key.
type VectorIndex interface {
	Upsert(ctx context.Context, tenantID, docID, text string, metadata map[string]string, embedding []float32) error
	Query(ctx context.Context, tenantID string, embedding []float32, k int) ([]string, error)
}

// chromemIndex implements VectorIndex with one chromem collection per tenant.
type chromemIndex struct {
	db       *chromem.DB
	embedder Embedder

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

// NewVectorIndex creates a vector index. persistPath may be empty for an
// in-memory index (tests); otherwise collections are persisted under it.
func NewVectorIndex(persistPath string, embedder Embedder) (VectorIndex, error) {
	var db *chromem.DB
	var err error

	if persistPath != "" {
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("create persistent vector DB: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	return &chromemIndex{
		db:          db,
		embedder:    embedder,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// collection returns the tenant's collection, creating it on first use. One
// collection per tenant id is what enforces isolation: queries can only ever
// see documents added under the same name.
func (v *chromemIndex) collection(tenantID string) (*chromem.Collection, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if c, ok := v.collections[tenantID]; ok {
		return c, nil
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return v.embedder.Embed(ctx, text)
	}
	c, err := v.db.GetOrCreateCollection("kb_"+tenantID, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("get collection for tenant %s: %w", tenantID, err)
	}

	v.collections[tenantID] = c
	return c, nil
}

func (v *chromemIndex) Upsert(ctx context.Context, tenantID, docID, text string, metadata map[string]string, embedding []float32) error {
	c, err := v.collection(tenantID)
	if err != nil {
		return err
	}

	err = c.AddDocument(ctx, chromem.Document{
		ID:        docID,
		Content:   text,
		Embedding: embedding,
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("vector upsert %s: %w", docID, err)
	}
	return nil
}

func (v *chromemIndex) Query(ctx context.Context, tenantID string, embedding []float32, k int) ([]string, error) {
	c, err := v.collection(tenantID)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection size.
	count := c.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := c.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Content)
	}
	return texts, nil
}
